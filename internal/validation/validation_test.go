package validation

import (
	"testing"

	"routinestar/internal/apperr"
)

func TestParseSessionDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "valid date",
			input: "2026-03-14",
			want:  "2026-03-14",
		},
		{
			name:    "timestamp rejected",
			input:   "2026-03-14T08:00:00Z",
			wantErr: true,
		},
		{
			name:    "empty rejected",
			input:   "",
			wantErr: true,
		},
		{
			name:    "impossible day rejected",
			input:   "2026-02-30",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSessionDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				if !apperr.IsValidation(err) {
					t.Errorf("expected Validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSessionDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	if _, err := ParseTimestamp("2026-03-14T08:05:00Z"); err != nil {
		t.Errorf("valid RFC3339 timestamp rejected: %v", err)
	}
	if _, err := ParseTimestamp("not-a-time"); !apperr.IsValidation(err) {
		t.Errorf("expected Validation error, got %v", err)
	}
}

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		name    string
		pin     string
		wantErr bool
	}{
		{name: "valid", pin: "0413"},
		{name: "too short", pin: "123", wantErr: true},
		{name: "too long", pin: "12345", wantErr: true},
		{name: "letters", pin: "12a4", wantErr: true},
		{name: "empty", pin: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePIN(tt.pin)
			if tt.wantErr && err == nil {
				t.Errorf("expected error for PIN %q", tt.pin)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error for PIN %q: %v", tt.pin, err)
			}
		})
	}
}
