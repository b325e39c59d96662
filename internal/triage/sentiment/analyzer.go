package sentiment

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"medcompanion/pkg/model"
	"medcompanion/pkg/sanitizer"
)

const (
	// PanicAnxiety is the anxiety level above which a message reads as panic.
	PanicAnxiety = 8.0

	negationScalar    = -0.74
	normalizeAlpha    = 15.0
	exclamationBoost  = 0.292
	maxExclamations   = 4
	negationLookBack  = 3
	anxietyNegFloor   = 0.1
	anxietyScale      = 10.0
	maxReportablePain = 10
)

var painPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pain.*?(\d+)\s*/\s*10`),
	regexp.MustCompile(`(?i)pain.*?level.*?(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*out of\s*10`),
}

// Scores are the raw polarity figures behind an assessment.
type Scores struct {
	Compound float64
	Pos      float64
	Neg      float64
	Neu      float64
}

// Analyzer is a lexicon based sentiment signal. It holds no mutable state.
type Analyzer struct {
	lexicon       map[string]float64
	panicKeywords []string
}

type Option func(*Analyzer)

func WithPanicKeywords(keywords []string) Option {
	return func(a *Analyzer) {
		a.panicKeywords = keywords
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		lexicon:       defaultLexicon,
		panicKeywords: defaultPanicKeywords,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.panicKeywords = sanitizer.NormalizeKeywords(a.panicKeywords)
	return a
}

func (a *Analyzer) Analyze(text string) model.SentimentAssessment {
	scores := a.Polarity(text)

	anxiety := 0.0
	if scores.Compound < 0 {
		anxiety = math.Abs(scores.Compound) * anxietyScale
	} else if scores.Neg > anxietyNegFloor {
		anxiety = scores.Neg * anxietyScale
	}
	anxiety = round(sanitizer.ClampFloat(anxiety, 0, anxietyScale), 2)

	return model.SentimentAssessment{
		SentimentScore: scores.Compound,
		AnxietyLevel:   anxiety,
		IsPanic:        a.isPanic(text, anxiety),
		PainLevel:      ExtractPainLevel(text),
	}
}

// Polarity scores text: each lexicon word is adjusted for a preceding
// booster and for negations in the three words before it.
func (a *Analyzer) Polarity(text string) Scores {
	tokens := sanitizer.MatchTokens(text)
	if len(tokens) == 0 {
		return Scores{Neu: 1}
	}

	valences := make([]float64, len(tokens))
	for i, tok := range tokens {
		v, ok := a.lexicon[tok]
		if !ok {
			continue
		}
		if i > 0 {
			if b, ok := boosters[tokens[i-1]]; ok {
				if v > 0 {
					v += b
				} else {
					v -= b
				}
			}
		}
		for j := max(0, i-negationLookBack); j < i; j++ {
			if negations[tokens[j]] {
				v *= negationScalar
				break
			}
		}
		valences[i] = v
	}

	sum := 0.0
	var posSum, negSum float64
	neuCount := 0
	for _, v := range valences {
		sum += v
		switch {
		case v > 0:
			posSum += v + 1
		case v < 0:
			negSum += v - 1
		default:
			neuCount++
		}
	}

	if sum != 0 {
		bangs := min(strings.Count(text, "!"), maxExclamations)
		emphasis := float64(bangs) * exclamationBoost
		if sum > 0 {
			sum += emphasis
		} else {
			sum -= emphasis
		}
	}

	total := posSum + math.Abs(negSum) + float64(neuCount)
	return Scores{
		Compound: round(sum/math.Sqrt(sum*sum+normalizeAlpha), 4),
		Pos:      round(posSum/total, 3),
		Neg:      round(math.Abs(negSum)/total, 3),
		Neu:      round(float64(neuCount)/total, 3),
	}
}

func (a *Analyzer) isPanic(text string, anxiety float64) bool {
	normalized := sanitizer.SanitizeForMatching(text)
	for _, kw := range a.panicKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return anxiety > PanicAnxiety
}

// ExtractPainLevel finds a self-reported 0-10 pain rating such as "8/10",
// "pain level 5" or "7 out of 10". It returns 0 when none is found.
func ExtractPainLevel(text string) int {
	for _, re := range painPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		level, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if level >= 0 && level <= maxReportablePain {
			return level
		}
	}
	return 0
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
