package credentials

import (
	"strings"
	"testing"
)

func TestGenerateChildUsername(t *testing.T) {
	for i := 0; i < 50; i++ {
		username, err := GenerateChildUsername()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		parts := strings.Split(username, "-")
		if len(parts) != 2 {
			t.Fatalf("expected adjective-noun format, got %q", username)
		}
		if parts[0] == "" || parts[1] == "" {
			t.Errorf("empty username component in %q", username)
		}
	}
}

func TestGenerateChildPIN(t *testing.T) {
	pins := make(map[string]bool)
	for i := 0; i < 100; i++ {
		pin, err := GenerateChildPIN()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(pin) != 4 {
			t.Fatalf("expected 4-digit PIN, got %q", pin)
		}
		for _, c := range pin {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit character in PIN %q", pin)
			}
		}
		pins[pin] = true
	}

	// With 10000 possible PINs, 100 draws should not all collide
	if len(pins) < 2 {
		t.Error("PIN generation does not appear to be random")
	}
}
