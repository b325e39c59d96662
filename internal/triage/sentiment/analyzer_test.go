package sentiment

import (
	"math"
	"testing"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantPanic    bool
		minAnxiety   float64
		maxAnxiety   float64
		wantNegative bool
		wantPain     int
	}{
		{
			name:         "scared with exclamation",
			input:        "I am so scared and my chest hurts!",
			minAnxiety:   7.5,
			maxAnxiety:   8.0,
			wantNegative: true,
		},
		{
			name:       "positive message",
			input:      "I feel great, thanks",
			minAnxiety: 0,
			maxAnxiety: 0,
		},
		{
			name:         "negated positive word",
			input:        "I am not happy",
			minAnxiety:   4.0,
			maxAnxiety:   5.0,
			wantNegative: true,
		},
		{
			name:       "mixed message uses negative share",
			input:      "I'm happy but tired",
			minAnxiety: 3.3,
			maxAnxiety: 3.4,
		},
		{
			name:       "panic keyword",
			input:      "please help",
			wantPanic:  true,
			minAnxiety: 0,
			maxAnxiety: 0,
		},
		{
			name:         "panic from anxiety alone",
			input:        "terrified horrible agony worst",
			wantPanic:    true,
			minAnxiety:   9.0,
			maxAnxiety:   10,
			wantNegative: true,
		},
		{
			name:         "pain rating",
			input:        "my pain is 8/10",
			minAnxiety:   0,
			maxAnxiety:   10,
			wantNegative: true,
			wantPain:     8,
		},
		{
			name:       "empty",
			input:      "",
			minAnxiety: 0,
			maxAnxiety: 0,
		},
	}

	a := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.input)

			if got.IsPanic != tt.wantPanic {
				t.Errorf("IsPanic = %v, want %v", got.IsPanic, tt.wantPanic)
			}
			if got.AnxietyLevel < tt.minAnxiety || got.AnxietyLevel > tt.maxAnxiety {
				t.Errorf("AnxietyLevel = %g, want in [%g, %g]", got.AnxietyLevel, tt.minAnxiety, tt.maxAnxiety)
			}
			if tt.wantNegative && got.SentimentScore >= 0 {
				t.Errorf("expected negative sentiment, got %g", got.SentimentScore)
			}
			if got.PainLevel != tt.wantPain {
				t.Errorf("PainLevel = %d, want %d", got.PainLevel, tt.wantPain)
			}
		})
	}
}

func TestPolarity_Bounds(t *testing.T) {
	a := NewAnalyzer()
	inputs := []string{
		"great great great wonderful love excellent!!!!!!",
		"worst worst worst agony dying dead!!!!",
		"the clinic is on main street",
	}
	for _, in := range inputs {
		s := a.Polarity(in)
		if s.Compound < -1 || s.Compound > 1 {
			t.Errorf("%q: compound %g out of range", in, s.Compound)
		}
		if sum := s.Pos + s.Neg + s.Neu; math.Abs(sum-1) > 0.01 {
			t.Errorf("%q: proportions sum to %g", in, sum)
		}
	}
}

func TestPolarity_BoosterIncreasesIntensity(t *testing.T) {
	a := NewAnalyzer()
	plain := a.Polarity("I am scared")
	boosted := a.Polarity("I am very scared")
	if boosted.Compound >= plain.Compound {
		t.Errorf("booster should make sentiment more negative: plain %g boosted %g", plain.Compound, boosted.Compound)
	}
}

func TestExtractPainLevel(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{input: "my pain is 8/10", want: 8},
		{input: "Pain level 5 today", want: 5},
		{input: "it is about 7 out of 10", want: 7},
		{input: "PAIN 3 / 10", want: 3},
		{input: "pain 15/10", want: 0},
		{input: "no pain at all", want: 0},
		{input: "I have 2 kids", want: 0},
	}
	for _, tt := range tests {
		if got := ExtractPainLevel(tt.input); got != tt.want {
			t.Errorf("ExtractPainLevel(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestWithPanicKeywords(t *testing.T) {
	a := NewAnalyzer(WithPanicKeywords([]string{"Mayday"}))
	if !a.Analyze("mayday mayday").IsPanic {
		t.Error("expected custom keyword to trigger panic")
	}
	if a.Analyze("please help").IsPanic {
		t.Error("default keywords should be replaced")
	}
}
