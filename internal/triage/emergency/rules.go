package emergency

// Rule flags a condition when at least RequiredCount of its symptoms appear.
type Rule struct {
	Condition     string
	Symptoms      []string
	RequiredCount int
	Severity      int
}

// SymptomScore is the severity a single symptom carries on its own.
type SymptomScore struct {
	Symptom string
	Score   int
}

const (
	EmergencyThreshold = 8
	CriticalThreshold  = 9

	AlertMessage   = "⚠️ URGENT: Potential Emergency Detected. Please seek immediate medical attention."
	ActionRequired = "Call Emergency Services (911) or go to the nearest ER."
	ActionNone     = "None"

	criticalPrefix = "Critical Symptom: "
)

func DefaultRules() []Rule {
	return []Rule{
		{
			Condition:     "Possible Heart Attack",
			Symptoms:      []string{"chest pain", "shortness of breath", "sweating", "nausea", "arm pain"},
			RequiredCount: 2,
			Severity:      10,
		},
		{
			Condition:     "Possible Stroke",
			Symptoms:      []string{"severe headache", "vision changes", "confusion", "numbness", "slurred speech"},
			RequiredCount: 2,
			Severity:      10,
		},
		{
			Condition:     "Possible Meningitis",
			Symptoms:      []string{"high fever", "stiff neck", "sensitivity to light", "severe headache"},
			RequiredCount: 2,
			Severity:      9,
		},
		{
			Condition:     "Severe Allergic Reaction",
			Symptoms:      []string{"difficulty breathing", "wheezing", "swelling", "hives"},
			RequiredCount: 2,
			Severity:      9,
		},
		{
			Condition:     "Possible Appendicitis",
			Symptoms:      []string{"severe abdominal pain", "vomiting", "fever", "loss of appetite"},
			RequiredCount: 3,
			Severity:      8,
		},
	}
}

func DefaultSymptomScores() []SymptomScore {
	return []SymptomScore{
		{Symptom: "chest pain", Score: 8},
		{Symptom: "shortness of breath", Score: 7},
		{Symptom: "unconscious", Score: 10},
		{Symptom: "severe headache", Score: 6},
		{Symptom: "vision changes", Score: 6},
		{Symptom: "difficulty breathing", Score: 9},
		{Symptom: "bleeding", Score: 7},
		{Symptom: "high fever", Score: 5},
		{Symptom: "seizure", Score: 10},
	}
}
