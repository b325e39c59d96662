package intent

import (
	"context"
	"math"
	"strings"

	"medcompanion/pkg/model"
	"medcompanion/pkg/sanitizer"
)

const (
	SourceKeyword = "keyword"
	SourceLLM     = "llm"

	// DefaultBookingThreshold is the confidence a book_appointment label needs
	// before it opens a booking session.
	DefaultBookingThreshold = 0.5
)

// Classifier labels a message with an intent and a confidence in [0,1].
type Classifier interface {
	Classify(ctx context.Context, text string) (model.IntentPrediction, error)
}

// IsBookingStart reports whether a prediction should open a booking session.
func IsBookingStart(p model.IntentPrediction, threshold float64) bool {
	return p.Intent == model.IntentBookAppointment && p.Confidence >= threshold
}

// KeywordClassifier scores each intent by the summed weight of its phrases
// found in the message. It never fails.
type KeywordClassifier struct {
	table []IntentKeywords
}

func NewKeywordClassifier(table []IntentKeywords) *KeywordClassifier {
	if table == nil {
		table = DefaultKeywordTable()
	}
	normalized := make([]IntentKeywords, 0, len(table))
	for _, row := range table {
		kws := make([]Keyword, 0, len(row.Keywords))
		for _, kw := range row.Keywords {
			if p := sanitizer.NormalizeKeyword(kw.Phrase); p != "" && kw.Weight > 0 {
				kws = append(kws, Keyword{Phrase: p, Weight: kw.Weight})
			}
		}
		normalized = append(normalized, IntentKeywords{Intent: row.Intent, Keywords: kws})
	}
	return &KeywordClassifier{table: normalized}
}

// Classify picks the best scoring intent. Confidence is
// best / (best + runner-up + 1), so a lone strong match beats a contested one.
// A message matching nothing is general_chat with confidence 0.
func (c *KeywordClassifier) Classify(_ context.Context, text string) (model.IntentPrediction, error) {
	padded := " " + sanitizer.SanitizeForMatching(text) + " "

	bestIntent := model.IntentGeneralChat
	var best, second float64
	for _, row := range c.table {
		score := 0.0
		for _, kw := range row.Keywords {
			if strings.Contains(padded, " "+kw.Phrase+" ") {
				score += kw.Weight
			}
		}
		switch {
		case score > best:
			second = best
			best = score
			bestIntent = row.Intent
		case score > second:
			second = score
		}
	}

	if best == 0 {
		return model.IntentPrediction{Intent: model.IntentGeneralChat, Confidence: 0, Source: SourceKeyword}, nil
	}

	confidence := math.Round(best/(best+second+1)*100) / 100
	return model.IntentPrediction{Intent: bestIntent, Confidence: confidence, Source: SourceKeyword}, nil
}
