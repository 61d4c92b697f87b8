package logger

import "testing"

func TestSanitizeKVsRedactsCredentials(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"neo4j_password", "hunter2",
		"ledger_dsn", "postgres://movies:s3cret@db:5432/movies",
		"chunk", 3,
	})
	if len(out) != 6 {
		t.Fatalf("len: want=%d got=%d", 6, len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("password: want=%q got=%v", "[REDACTED]", out[1])
	}
	if out[3] != "postgres://movies:***@db:5432/movies" {
		t.Fatalf("dsn: got=%v", out[3])
	}
	if out[5] != 3 {
		t.Fatalf("chunk: want=%d got=%v", 3, out[5])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"dataset", "movies", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestRedactUserinfoWithoutPassword(t *testing.T) {
	for _, raw := range []string{"bolt://localhost:7687", "neo4j://user@host", "file:ledger.db"} {
		if got := redactUserinfo(raw); got != raw {
			t.Fatalf("redactUserinfo(%q): got=%q", raw, got)
		}
	}
}
