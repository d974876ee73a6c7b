package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"E.164 mobile", "+212612345678", "+212612345678"},
		{"national format", "0612345678", "+212612345678"},
		{"with spaces", "06 12 34 56 78", "+212612345678"},
		{"with dashes", "06-12-34-56-78", "+212612345678"},
		{"foreign number keeps its country", "+33612345678", "+33612345678"},
		{"leading and trailing spaces", "  +212612345678  ", "+212612345678"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
		{"letters", "invalid-phone", ""},
		{"too short", "+212", ""},
		{"too long", "+2126123456789012345", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	once := NormalizePhone("06 12 34 56 78")
	if twice := NormalizePhone(once); twice != once {
		t.Errorf("not idempotent: %q then %q", once, twice)
	}
}
