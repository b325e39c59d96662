package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim spaces", input: "  I need a doctor  ", want: "I need a doctor"},
		{name: "multiple spaces between words", input: "chest    pain", want: "chest pain"},
		{name: "tabs and newlines", input: "chest\t\npain", want: "chest pain"},
		{name: "empty string", input: "", want: ""},
		{name: "only whitespace", input: "   \t\n  ", want: ""},
		{name: "preserve special characters", input: " Café & Spa™ ", want: "Café & Spa™"},
		{name: "hebrew characters", input: " כאב ראש ", want: "כאב ראש"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := TrimAndNormalize(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Book appointment", want: "Book appointment"},
		{name: "control characters dropped", input: "Book\x00 appoint\x07ment", want: "Book appointment"},
		{name: "newlines become spaces", input: "I have\na headache\r\n", want: "I have a headache"},
		{name: "case preserved", input: "  Fever/Cold ", want: "Fever/Cold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeMessage(tt.input); got != tt.want {
				t.Errorf("NormalizeMessage(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeForMatching(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase", input: "Chest Pain", want: "chest pain"},
		{name: "commas between symptoms", input: "chest pain, shortness of breath, sweating", want: "chest pain shortness of breath sweating"},
		{name: "trailing punctuation", input: "Help!!!", want: "help"},
		{name: "apostrophe kept", input: "I can't breathe", want: "i can't breathe"},
		{name: "curly apostrophe straightened", input: "I can’t breathe", want: "i can't breathe"},
		{name: "slash splits words", input: "Fever/Cold", want: "fever cold"},
		{name: "digits kept", input: "pain 8/10", want: "pain 8 10"},
		{name: "empty", input: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeForMatching(tt.input)
			if got != tt.want {
				t.Errorf("SanitizeForMatching(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := SanitizeForMatching(got); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("  I  have\tchest pain, ")
	want := []string{"I", "have", "chest", "pain,"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}

	if len(Tokenize("")) != 0 {
		t.Error("expected no tokens for empty input")
	}
}

func TestMatchTokens(t *testing.T) {
	got := MatchTokens("Chest pain, SWEATING!")
	want := []string{"chest", "pain", "sweating"}
	if len(got) != len(want) {
		t.Fatalf("MatchTokens = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClamp(t *testing.T) {
	if got := ClampFloat(12.5, 0, 10); got != 10 {
		t.Errorf("ClampFloat high = %g", got)
	}
	if got := ClampFloat(-1, 0, 10); got != 0 {
		t.Errorf("ClampFloat low = %g", got)
	}
	if got := ClampFloat(4.2, 0, 10); got != 4.2 {
		t.Errorf("ClampFloat in range = %g", got)
	}
	if got := ClampInt(11, 0, 10); got != 10 {
		t.Errorf("ClampInt high = %d", got)
	}
	if got := ClampInt(-3, 0, 10); got != 0 {
		t.Errorf("ClampInt low = %d", got)
	}
}
