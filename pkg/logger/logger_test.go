package logger

import "testing"

func TestNew_Formats(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"", "console", "json"} {
		l, err := New(Config{Level: "debug", Format: format})
		if err != nil {
			t.Fatalf("New(format=%q): %v", format, err)
		}
		l.Named("test").Debug("hello", String("k", "v"))
	}
}

func TestNew_Rejects(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
