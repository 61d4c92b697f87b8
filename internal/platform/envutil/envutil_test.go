package envutil

import "testing"

func TestInt(t *testing.T) {
	t.Setenv("INGEST_CHUNK_SIZE", " 250 ")
	if got := Int("INGEST_CHUNK_SIZE", 500); got != 250 {
		t.Fatalf("Int: want=%d got=%d", 250, got)
	}
	t.Setenv("INGEST_CHUNK_SIZE", "lots")
	if got := Int("INGEST_CHUNK_SIZE", 500); got != 500 {
		t.Fatalf("Int fallback: want=%d got=%d", 500, got)
	}
}

func TestBool(t *testing.T) {
	cases := map[string]bool{"on": true, "0": false, "maybe": true, "": true}
	for raw, want := range cases {
		t.Setenv("OTEL_ENABLED", raw)
		if got := Bool("OTEL_ENABLED", true); got != want {
			t.Fatalf("Bool(%q): want=%v got=%v", raw, want, got)
		}
	}
}

func TestStringAndFloat(t *testing.T) {
	t.Setenv("NEO4J_DB_NAME", "")
	if got := String("NEO4J_DB_NAME", "movies"); got != "movies" {
		t.Fatalf("String: want=%q got=%q", "movies", got)
	}
	t.Setenv("OTEL_SAMPLER_RATIO", "0.25")
	if got := Float("OTEL_SAMPLER_RATIO", 1); got != 0.25 {
		t.Fatalf("Float: want=%v got=%v", 0.25, got)
	}
}
