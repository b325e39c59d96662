package assistant

import (
	"context"
	"fmt"
	"strings"

	"medcompanion/pkg/llm"
	"medcompanion/pkg/logger"
	"medcompanion/pkg/model"
)

const (
	systemPrompt = "You are Medsy, an empathetic and professional medical assistant. " +
		"Your goal is to help patients feel calm and understood. " +
		"Keep responses concise (under 50 words) unless explaining a complex topic."
	reassurePrompt = " The user seems anxious. Be extra reassuring."

	// ReassureAnxiety is the anxiety level above which the model is asked to
	// be extra reassuring.
	ReassureAnxiety = 5.0

	DefaultContext = "No context yet"

	HeadacheReply = "I understand you have a headache. Have you been drinking enough water today? It might help to rest in a dark room."
	PanicReply    = "Please try to take slow, deep breaths. I am here with you. If this is an emergency, please call 911."
	echoReply     = "I hear you saying '%s'. Could you tell me more about that?"
	OfflineReply  = "I apologize, I'm having trouble connecting to my brain right now. How else can I help?"
)

// Responder writes the general conversation reply. Without a model client
// it answers from fixed templates.
type Responder struct {
	client llm.Client
	log    *logger.Logger
}

func NewResponder(client llm.Client, log *logger.Logger) *Responder {
	return &Responder{client: client, log: log}
}

func (r *Responder) Generate(ctx context.Context, text, convContext string, sentiment *model.SentimentAssessment) string {
	if r.client == nil {
		return TemplateReply(text, sentiment)
	}
	if convContext == "" {
		convContext = DefaultContext
	}

	reply, err := r.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: BuildSystemPrompt(sentiment)},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Context: %s\nUser: %s", convContext, text)},
	})
	if err != nil {
		r.log.Warn("reply generation failed, using template", "error", err)
		return TemplateReply(text, sentiment)
	}
	if reply == "" {
		return OfflineReply
	}
	return reply
}

func BuildSystemPrompt(sentiment *model.SentimentAssessment) string {
	if sentiment != nil && sentiment.AnxietyLevel > ReassureAnxiety {
		return systemPrompt + reassurePrompt
	}
	return systemPrompt
}

// TemplateReply is the deterministic reply used when no model is available.
func TemplateReply(text string, sentiment *model.SentimentAssessment) string {
	if strings.Contains(strings.ToLower(text), "headache") {
		return HeadacheReply
	}
	if sentiment != nil && sentiment.IsPanic {
		return PanicReply
	}
	return fmt.Sprintf(echoReply, text)
}
