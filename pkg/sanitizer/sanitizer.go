package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reNotWordOrApostrophe = regexp.MustCompile(`[^\p{L}\p{N}'\s]+`)
	reCurlyApostrophe     = regexp.MustCompile(`[\x{2018}\x{2019}]`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func straightenApostrophes(s string) string {
	return reCurlyApostrophe.ReplaceAllString(s, "'")
}

func stripPunctuation(s string) string {
	return reNotWordOrApostrophe.ReplaceAllString(s, " ")
}

// SanitizeForMatching returns the form keyword tables are matched against:
// "Chest pain, SWEATING!" becomes "chest pain sweating".
func SanitizeForMatching(input string) string {
	p := Pipeline{
		trimAndLower,
		straightenApostrophes,
		stripPunctuation,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// Tokenize splits a message on whitespace without altering the tokens.
func Tokenize(input string) []string {
	return strings.Fields(input)
}

// MatchTokens is Tokenize over the matching form.
func MatchTokens(input string) []string {
	return strings.Fields(SanitizeForMatching(input))
}
