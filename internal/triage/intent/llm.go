package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"medcompanion/pkg/llm"
	"medcompanion/pkg/logger"
	"medcompanion/pkg/model"
	"medcompanion/pkg/sanitizer"
)

var llmLabels = []string{
	model.IntentBookAppointment,
	model.IntentCancelAppointment,
	model.IntentRescheduleAppointment,
	model.IntentReportSymptoms,
	model.IntentMedicationInfo,
	model.IntentEmergencyAlert,
	model.IntentGeneralQuery,
	model.IntentGeneralChat,
}

var classifyPrompt = "You classify messages sent by patients to a clinic assistant. " +
	"Reply with JSON only, shaped as {\"intent\": \"<label>\", \"confidence\": <0..1>}. " +
	"Allowed labels: " + strings.Join(llmLabels, ", ") + "."

type llmVerdict struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// LLMClassifier asks a language model for the intent and falls back to
// another classifier whenever the model fails or answers off-format.
type LLMClassifier struct {
	client   llm.Client
	fallback Classifier
	log      *logger.Logger
}

func NewLLMClassifier(client llm.Client, fallback Classifier, log *logger.Logger) *LLMClassifier {
	if fallback == nil {
		fallback = NewKeywordClassifier(nil)
	}
	return &LLMClassifier{client: client, fallback: fallback, log: log}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (model.IntentPrediction, error) {
	if c.client == nil {
		return c.fallback.Classify(ctx, text)
	}

	reply, err := c.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: classifyPrompt},
		{Role: llm.RoleUser, Content: text},
	})
	if err != nil {
		c.log.Warn("intent model unavailable, using keyword fallback", "error", err)
		return c.fallback.Classify(ctx, text)
	}

	pred, err := parseVerdict(reply)
	if err != nil {
		c.log.Warn("intent model returned an unusable answer, using keyword fallback", "error", err)
		return c.fallback.Classify(ctx, text)
	}
	return pred, nil
}

func parseVerdict(reply string) (model.IntentPrediction, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return model.IntentPrediction{}, fmt.Errorf("no JSON object in %q", reply)
	}

	var v llmVerdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &v); err != nil {
		return model.IntentPrediction{}, fmt.Errorf("decode verdict: %w", err)
	}

	label := strings.ToLower(strings.TrimSpace(v.Intent))
	known := false
	for _, l := range llmLabels {
		if l == label {
			known = true
			break
		}
	}
	if !known {
		return model.IntentPrediction{}, fmt.Errorf("unknown intent label %q", v.Intent)
	}

	return model.IntentPrediction{
		Intent:     label,
		Confidence: sanitizer.ClampFloat(v.Confidence, 0, 1),
		Source:     SourceLLM,
	}, nil
}
