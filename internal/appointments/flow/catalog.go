package flow

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"medcompanion/pkg/sanitizer"
)

var problemCatalog = []string{
	"General checkup",
	"Fever/Cold",
	"Headache/Migraine",
	"Stomach pain",
	"Chest pain",
	"Skin problems",
	"Joint/Muscle pain",
	"Allergies",
	"Diabetes check",
	"BP Check",
	"Women's health",
	"Mental health",
	"Injury",
	"Follow-up",
	"Other",
}

var timeSlots = []string{"Morning", "Afternoon", "Evening"}

// ProblemCatalog returns a copy of the offered problem categories, in match order.
func ProblemCatalog() []string {
	return append([]string(nil), problemCatalog...)
}

// TimeSlots returns a copy of the offered time slots.
func TimeSlots() []string {
	return append([]string(nil), timeSlots...)
}

// MatchProblem maps free text onto the catalog. An entry matches when the
// lower-cased input contains the whole entry, or when one of its "/"
// separated aliases appears as whole words; the first entry in catalog order
// wins. Unmatched input is kept as the patient wrote it, capitalized.
func MatchProblem(input string) string {
	lowered := strings.ToLower(input)
	words := " " + sanitizer.SanitizeForMatching(input) + " "
	for _, entry := range problemCatalog {
		if matchesEntry(lowered, words, entry) {
			return entry
		}
	}
	return capitalize(input)
}

// words is the matching form of the input padded with one space on each side.
func matchesEntry(lowered, words, entry string) bool {
	entry = strings.ToLower(entry)
	if strings.Contains(lowered, entry) {
		return true
	}
	if !strings.Contains(entry, "/") {
		return false
	}
	for _, alias := range strings.Split(entry, "/") {
		alias = sanitizer.SanitizeForMatching(alias)
		if alias != "" && strings.Contains(words, " "+alias+" ") {
			return true
		}
	}
	return false
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
