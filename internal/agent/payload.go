package agent

import (
	"strings"

	"medibot-ai/internal/consultation"
)

// maxHistoryMessages is how much of the chat log is forwarded with each turn.
const maxHistoryMessages = 12

// Payload is the structured turn context serialized into the LLM user prompt.
// user_description and current_question deliberately carry the same text: the
// system instruction frames one as "what was said" and the other as "what
// must be answered now".
type Payload struct {
	Predictions     []consultation.Prediction `json:"predictions"`
	Priority        string                    `json:"priority"`
	UserDescription string                    `json:"user_description"`
	CurrentQuestion string                    `json:"current_question"`
	ChatHistory     []HistoryMessage          `json:"chat_history"`
	ContextSummary  string                    `json:"context_summary"`
	Patient         PatientInfo               `json:"patient"`
}

// HistoryMessage is a chat log entry with any attachment reduced to a flag.
// Raw image bytes must never cross into the LLM request.
type HistoryMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Type      string `json:"type,omitempty"`
	Timestamp string `json:"timestamp"`
	HasImage  bool   `json:"has_image,omitempty"`
}

type PatientInfo struct {
	Name        string `json:"name"`
	Age         string `json:"age"`
	SkinType    string `json:"skin_type"`
	ProblemType string `json:"problem_type"`
}

// BuildPayload assembles the turn payload from the classifier output, the
// current user text, and the consultation context.
func BuildPayload(predictions []consultation.Prediction, description string, c *consultation.Consultation) Payload {
	if predictions == nil {
		predictions = []consultation.Prediction{}
	}

	history := buildChatHistory(c, maxHistoryMessages)

	return Payload{
		Predictions:     predictions,
		Priority:        "Rank 1 = highest likelihood",
		UserDescription: description,
		CurrentQuestion: description,
		ChatHistory:     history,
		ContextSummary:  buildContextSummary(history),
		Patient: PatientInfo{
			Name:        c.PatientName,
			Age:         c.PatientAge,
			SkinType:    c.SkinType,
			ProblemType: c.ProblemType,
		},
	}
}

// buildChatHistory takes the last max messages and sanitizes them for the
// wire: attachments become a has_image flag.
func buildChatHistory(c *consultation.Consultation, max int) []HistoryMessage {
	msgs := c.Messages
	if len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}

	out := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, HistoryMessage{
			Role:      m.Role,
			Content:   m.Content,
			Type:      m.Type,
			Timestamp: m.Timestamp,
			HasImage:  len(m.ImageBytes) > 0,
		})
	}
	return out
}

// buildContextSummary stitches a one/two-line recap from the last 2 user
// turns and the last assistant turn. No extra LLM call.
func buildContextSummary(history []HistoryMessage) string {
	var userLines, aiLines []string
	for _, m := range history {
		switch m.Role {
		case consultation.RoleUser:
			userLines = append(userLines, m.Content)
		case consultation.RoleAssistant:
			aiLines = append(aiLines, m.Content)
		}
	}

	if len(userLines) > 2 {
		userLines = userLines[len(userLines)-2:]
	}
	if len(aiLines) > 1 {
		aiLines = aiLines[len(aiLines)-1:]
	}

	var parts []string
	if len(userLines) > 0 {
		parts = append(parts, "Recent user messages: "+strings.Join(userLines, " | "))
	}
	if len(aiLines) > 0 {
		parts = append(parts, "Last assistant message: "+strings.Join(aiLines, " | "))
	}
	return strings.Join(parts, " ")
}
