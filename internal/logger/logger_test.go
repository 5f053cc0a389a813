package logger

import "testing"

func TestSanitizeKVsRedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{"user_id", 7, "password", "hunter2", "openai_api_key", "sk-1", "dangling"})

	if len(out) != 7 {
		t.Fatalf("unexpected length %d: %v", len(out), out)
	}
	if out[1] != 7 {
		t.Fatalf("user_id should be kept, got %v", out[1])
	}
	if out[3] != "[REDACTED]" || out[5] != "[REDACTED]" {
		t.Fatalf("sensitive values should be redacted: %v", out)
	}
	if out[6] != "dangling" {
		t.Fatalf("odd trailing value should be preserved: %v", out)
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "k", "v")
	l.Sync()
}
