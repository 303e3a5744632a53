package lifecycle

import "testing"

func TestNormalizeActionTaken(t *testing.T) {
	withSentence := "Replaced fuse.\n\n" + StandardSentence

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", StandardSentence},
		{"whitespace only", "  \n\t", StandardSentence},
		{"plain text", "Replaced fuse.", withSentence},
		{"already closed", withSentence, withSentence},
		{"already closed with trailing newline", withSentence + "\n", withSentence},
		{"sentence alone", StandardSentence, StandardSentence},
		{"trailing spaces", "Replaced fuse.   ", withSentence},
		{"sentence mid-text", StandardSentence + " Then replaced fuse.", StandardSentence + " Then replaced fuse.\n\n" + StandardSentence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeActionTaken(tt.input); got != tt.want {
				t.Errorf("NormalizeActionTaken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeActionTaken_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"Replaced fuse.",
		"Replaced fuse.\n\n" + StandardSentence,
		"Line one\nLine two\n\n",
		StandardSentence,
		"tested all safety devices prior to returning equipment to service.",
	}
	for _, in := range inputs {
		once := NormalizeActionTaken(in)
		twice := NormalizeActionTaken(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
