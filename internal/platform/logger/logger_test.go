package logger

import "testing"

func TestSanitizeKVsRedactsAndHashes(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"postgres_password", "hunter2",
		"actor_user_id", "3f1e",
		"clan_id", "c1",
	})
	if len(out) != 6 {
		t.Fatalf("len: want=6 got=%d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("password: want=[REDACTED] got=%v", out[1])
	}
	if s, ok := out[3].(string); !ok || len(s) != len("hash:")+12 {
		t.Fatalf("actor_user_id: want hashed value got=%v", out[3])
	}
	if out[5] != "c1" {
		t.Fatalf("clan_id: want=c1 got=%v", out[5])
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"k", "v", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling key: got=%v", out)
	}
}
