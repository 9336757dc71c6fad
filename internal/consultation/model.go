package consultation

import (
	"strings"
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// timestampLayout is the display format stored on every message. The rendered
// chat shows this string verbatim, so it is stored at append time rather than
// recomputed from CreatedAt.
const timestampLayout = "2006-01-02 15:04"

type Message struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`

	// ImageBytes carries the raw upload for user messages that had an
	// attachment. It never leaves the process in an LLM payload.
	ImageBytes []byte `json:"image_bytes,omitempty"`
}

// Prediction is one ranked candidate condition from the image classifier.
type Prediction struct {
	Rank            int      `json:"rank"`
	Confidence      float64  `json:"confidence"` // 0-100
	RawText         string   `json:"raw_text"`   // clinical prompt the score came from
	Disease         string   `json:"disease"`
	Severity        string   `json:"severity"`
	Characteristics []string `json:"characteristics"`
	Recommendation  string   `json:"recommendation"`
}

// Consultation represents one conversation thread with its own intake state
// and message history.
type Consultation struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Patient intake fields, empty until the corresponding step completes.
	PatientName string `json:"patient_name,omitempty"`
	PatientAge  string `json:"patient_age,omitempty"`
	SkinType    string `json:"skin_type,omitempty"`
	ProblemType string `json:"problem_type,omitempty"`

	OnboardingStep int       `json:"onboarding_step"`
	Messages       []Message `json:"messages"`
}

// AddMessage appends a message with a fresh timestamp and a derived type tag,
// refreshes UpdatedAt, and returns a pointer to the stored message. The log is
// append-only; earlier turns are never edited.
func (c *Consultation) AddMessage(role, content string) *Message {
	now := time.Now()
	c.Messages = append(c.Messages, Message{
		Role:      role,
		Content:   content,
		Type:      classify(role, content),
		Timestamp: now.Format(timestampLayout),
	})
	c.UpdatedAt = now
	return &c.Messages[len(c.Messages)-1]
}

// Snapshot returns a copy of the message log in insertion order.
func (c *Consultation) Snapshot() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	return out
}

func classify(role, content string) string {
	if role == RoleUser {
		return classifyUser(content)
	}
	return classifyAssistant(content)
}

// classifyUser tags a user message with a coarse, purely advisory category.
func classifyUser(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "remedy") || strings.Contains(t, "help") || strings.Contains(t, "what should"):
		return "user_followup"
	case strings.HasSuffix(t, "?"):
		return "user_question"
	case strings.Contains(t, "skin") || strings.Contains(t, "issue") || strings.Contains(t, "problem"):
		return "user_description"
	default:
		return "user_message"
	}
}

func classifyAssistant(text string) string {
	t := strings.ToLower(text)
	for _, w := range []string{"apply", "use", "avoid", "moistur", "cream"} {
		if strings.Contains(t, w) {
			return "ai_remedy"
		}
	}
	for _, w := range []string{"looks", "appears", "seems"} {
		if strings.Contains(t, w) {
			return "ai_observation"
		}
	}
	return "ai_response"
}
