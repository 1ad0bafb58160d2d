package download

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Great Video", "My-Great-Video"},
		{"Predictions: 2024 Edition!", "Predictions-2024-Edition"},
		{"  spaced   out  ", "spaced-out"},
		{"emoji 🎙️ title", "emoji-title"},
		{"Çağrı's Föötball Tips", "ars-Ftball-Tips"},
		{"already-fine", "already-fine"},
		{"***", ""},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
