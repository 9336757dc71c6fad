package agent

import (
	"context"
	"fmt"

	"medibot-ai/internal/consultation"
)

// MockClient is a canned LLM used in local mode and tests.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Explain(ctx context.Context, predictions []consultation.Prediction, description string, c *consultation.Consultation) (string, error) {
	if len(predictions) > 0 {
		return fmt.Sprintf(
			"Based on the image, this looks like %s. %s Feel free to ask more!",
			predictions[0].Disease, predictions[0].Recommendation), nil
	}
	return fmt.Sprintf(
		"Thanks for sharing, %s. Regarding %q: keep the area clean and moisturized, and upload a clear picture if you can. How can I help you next?",
		c.PatientName, description), nil
}
