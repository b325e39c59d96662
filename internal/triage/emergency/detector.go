package emergency

import (
	"strings"

	"medcompanion/pkg/model"
	"medcompanion/pkg/sanitizer"
)

// Detector is a rule based emergency signal. It is safe for concurrent use.
type Detector struct {
	rules  []Rule
	scores []SymptomScore
}

type Option func(*Detector)

func WithRules(rules []Rule) Option {
	return func(d *Detector) {
		d.rules = rules
	}
}

func WithSymptomScores(scores []SymptomScore) Option {
	return func(d *Detector) {
		d.scores = scores
	}
}

func NewDetector(opts ...Option) *Detector {
	d := &Detector{
		rules:  DefaultRules(),
		scores: DefaultSymptomScores(),
	}
	for _, opt := range opts {
		opt(d)
	}

	rules := make([]Rule, len(d.rules))
	for i, r := range d.rules {
		r.Symptoms = sanitizer.NormalizeKeywords(r.Symptoms)
		rules[i] = r
	}
	scores := make([]SymptomScore, len(d.scores))
	for i, s := range d.scores {
		s.Symptom = sanitizer.NormalizeKeyword(s.Symptom)
		scores[i] = s
	}
	d.rules, d.scores = rules, scores
	return d
}

// Check assesses a tokenised message. A symptom matches when it is contained
// in a single token or in the message rejoined from its tokens, so multi-word
// symptoms such as "shortness of breath" are found across token boundaries.
func (d *Detector) Check(tokens []string) model.EmergencyAssessment {
	candidates := matchCandidates(tokens)

	var conditions []string
	maxSeverity := 0

	for _, rule := range d.rules {
		matched := 0
		for _, symptom := range rule.Symptoms {
			if containsSymptom(candidates, symptom) {
				matched++
			}
		}
		if matched >= rule.RequiredCount {
			conditions = appendUnique(conditions, rule.Condition)
			maxSeverity = max(maxSeverity, rule.Severity)
		}
	}

	for _, s := range d.scores {
		if !containsSymptom(candidates, s.Symptom) {
			continue
		}
		maxSeverity = max(maxSeverity, s.Score)
		if s.Score >= CriticalThreshold {
			conditions = appendUnique(conditions, criticalPrefix+s.Symptom)
		}
	}

	assessment := model.EmergencyAssessment{
		IsEmergency:        maxSeverity >= EmergencyThreshold || len(conditions) > 0,
		SeverityScore:      maxSeverity,
		ConditionsDetected: conditions,
		ActionRequired:     ActionNone,
	}
	if assessment.ConditionsDetected == nil {
		assessment.ConditionsDetected = []string{}
	}
	if assessment.IsEmergency {
		assessment.AlertMessage = AlertMessage
		assessment.ActionRequired = ActionRequired
	}
	return assessment
}

func matchCandidates(tokens []string) []string {
	candidates := make([]string, 0, len(tokens)+1)
	for _, tok := range tokens {
		if s := sanitizer.SanitizeForMatching(tok); s != "" {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) > 1 {
		candidates = append(candidates, strings.Join(candidates, " "))
	}
	return candidates
}

func containsSymptom(candidates []string, symptom string) bool {
	if symptom == "" {
		return false
	}
	for _, c := range candidates {
		if strings.Contains(c, symptom) {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
