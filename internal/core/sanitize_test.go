package core

import (
	"errors"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "clean", input: "Show.Name.S01E01.Pilot", want: "Show.Name.S01E01.Pilot"},
		{name: "invalid characters", input: `A<B>C:D"E`, want: "A B C D E"},
		{name: "runs collapse", input: "What/\\|If", want: "What If"},
		{name: "control characters", input: "Tab\there\x00\x7f", want: "Tab here"},
		{name: "trimmed", input: "  ?Title*  ", want: "Title"},
		{name: "unicode kept", input: "Élite: Día", want: "Élite Día"},
		{name: "empty", input: "", wantErr: ErrEmptyName},
		{name: "only invalid", input: "?*:", wantErr: ErrEmptyName},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeFilename(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("SanitizeFilename(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
