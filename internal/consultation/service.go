package consultation

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"strings"
)

// SkinDetector scores an image against the condition catalog and returns
// ranked candidates, ordered by descending confidence.
// We define it here to decouple from the specific classifier implementation.
type SkinDetector interface {
	Predict(ctx context.Context, img image.Image, topK int) ([]Prediction, error)
}

// LLMClient produces the assistant reply for one chat turn from the ranked
// predictions, the user's description, and the consultation context.
type LLMClient interface {
	Explain(ctx context.Context, predictions []Prediction, description string, c *Consultation) (string, error)
}

// Service orchestrates one user turn: intake dialogue while onboarding is in
// progress, classifier + LLM round-trip afterwards.
type Service struct {
	detector SkinDetector
	llm      LLMClient
	logger   *slog.Logger
}

func NewService(detector SkinDetector, llm LLMClient, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		detector: detector,
		llm:      llm,
		logger:   logger,
	}
}

// TurnResult is what one processed user turn produced.
type TurnResult struct {
	Reply      *Message
	Onboarding bool // true while the intake dialogue is still running
}

// HandleTurn processes one user input against the active consultation of
// store. During onboarding it records the input and advances the state
// machine; afterwards it runs the classifier (when an image is attached) and
// the LLM, appends the sanitized reply, and persists.
//
// Collaborator failures never escape: a failed LLM call degrades to a fixed
// apology message and the turn still completes.
func (s *Service) HandleTurn(ctx context.Context, store *Store, text string, imageBytes []byte) (*TurnResult, error) {
	c := store.Active()
	if c == nil {
		return nil, ErrNoActiveConsultation
	}

	if c.OnboardingStep != StepDone {
		c.AddMessage(RoleUser, text)
		still, err := store.HandleOnboarding(ctx, c, text)
		if err != nil {
			return nil, err
		}
		return &TurnResult{Reply: lastMessage(c), Onboarding: still}, nil
	}

	msg := c.AddMessage(RoleUser, text)
	if len(imageBytes) > 0 {
		msg.ImageBytes = imageBytes
	}

	predictions, description := s.classifyImage(ctx, text, imageBytes)

	reply, err := s.llm.Explain(ctx, predictions, description, c)
	if err != nil {
		s.logger.Error("llm call failed", "consultation_id", c.ID, "error", err)
		reply = fmt.Sprintf("⚠️ Sorry, I couldn't generate a response right now.\nError: %s", err)
	}
	reply = SanitizeReply(reply)

	c.AddMessage(RoleAssistant, reply)
	if err := store.Save(ctx, c); err != nil {
		return nil, err
	}

	return &TurnResult{Reply: lastMessage(c)}, nil
}

// classifyImage decodes imageBytes and runs the classifier. A corrupt payload
// or a classifier failure degrades to the no-image path instead of aborting
// the turn.
func (s *Service) classifyImage(ctx context.Context, text string, imageBytes []byte) ([]Prediction, string) {
	if len(imageBytes) == 0 || s.detector == nil {
		return nil, text
	}

	description := strings.TrimSpace(text)
	if description == "" {
		description = "No description provided."
	}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		s.logger.Warn("image decode failed, continuing without classification", "error", err)
		return nil, description
	}

	predictions, err := s.detector.Predict(ctx, img, 3)
	if err != nil {
		s.logger.Warn("classifier call failed, continuing without predictions", "error", err)
		return nil, description
	}
	return predictions, description
}

// SanitizeReply strips every literal '*' so emphasis markers never leak into
// the rendered chat. Idempotent.
func SanitizeReply(text string) string {
	return strings.ReplaceAll(text, "*", "")
}

func lastMessage(c *Consultation) *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}
