package normalization

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeListWellFormed(t *testing.T) {
	got, err := DecodeList[Genre](`[{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}]`)
	if err != nil {
		t.Fatalf("DecodeList: %v", err)
	}
	want := []Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("genres mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeListBlankCells(t *testing.T) {
	for _, cell := range []string{"", "   ", "[]", "nan", "NaN", "None", "null"} {
		got, err := DecodeList[Keyword](cell)
		if err != nil {
			t.Fatalf("DecodeList(%q): unexpected error %v", cell, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("DecodeList(%q): want empty non-nil slice, got=%#v", cell, got)
		}
	}
}

func TestDecodeListMalformedNeverFails(t *testing.T) {
	cells := []string{
		`[{"id": 1, "name": "Action"`,
		`not a list`,
		`[{'id': 1, 'name': 'unterminated}]`,
		`{{{{`,
		`[1, 2, 3]`,
		`[{"id": "twelve", "name": "Drama"}]`,
		"\x00\x01\x02",
	}
	for _, cell := range cells {
		got, err := DecodeList[Genre](cell)
		if got == nil || len(got) != 0 {
			t.Fatalf("DecodeList(%q): want empty slice, got=%#v", cell, got)
		}
		var mf *MalformedFieldError
		if !errors.As(err, &mf) {
			t.Fatalf("DecodeList(%q): want *MalformedFieldError, got=%T %v", cell, err, err)
		}
	}
}

func TestDecodeListPythonLiteral(t *testing.T) {
	cell := `[{'cast_id': 242, 'character': "Jake 'Sully'", 'name': 'Sam Worthington', 'order': 0, 'gender': None}, {'cast_id': 3, 'character': 'O\'Brien', 'name': 'Zoë Saldaña', 'order': 1,}]`
	got, err := DecodeList[CastMember](cell)
	if err != nil {
		t.Fatalf("DecodeList: %v", err)
	}
	want := []CastMember{
		{CastID: 242, Character: "Jake 'Sully'", Name: "Sam Worthington", Order: 0},
		{CastID: 3, Character: "O'Brien", Name: "Zoë Saldaña", Order: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cast mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeListUnicodeEscapes(t *testing.T) {
	got, err := DecodeList[Country](`[{"iso_3166_1": "FR", "name": "République \"française\""}]`)
	if err != nil {
		t.Fatalf("DecodeList: %v", err)
	}
	if len(got) != 1 || got[0].Name != `République "française"` {
		t.Fatalf("unexpected country: %#v", got)
	}
}

func TestDecodeListSingleObject(t *testing.T) {
	got, err := DecodeList[Language](`{"iso_639_1": "en", "name": "English"}`)
	if err != nil {
		t.Fatalf("DecodeList: %v", err)
	}
	if diff := cmp.Diff([]Language{{Code: "en", Name: "English"}}, got); diff != "" {
		t.Fatalf("language mismatch (-want +got):\n%s", diff)
	}
}

func TestPythonLiteralToJSON(t *testing.T) {
	got, err := pythonLiteralToJSON(`[{'a': True, 'b': False, 'c': None, 'd': 'x"y'},]`)
	if err != nil {
		t.Fatalf("pythonLiteralToJSON: %v", err)
	}
	want := `[{"a": true, "b": false, "c": null, "d": "x\"y"}]`
	if got != want {
		t.Fatalf("want=%s got=%s", want, got)
	}
	if _, err := pythonLiteralToJSON(`['open`); err == nil {
		t.Fatalf("expected error for unterminated literal")
	}
}
