package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"medibot-ai/internal/consultation"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultModel       = "meta-llama/llama-4-scout-17b-16e-instruct"

	// Answers are kept short on purpose.
	maxTokens = 500
)

// GroqClient implements consultation.LLMClient against the Groq
// chat-completions API (OpenAI-compatible).
type GroqClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewGroqClient(apiKey, baseURL, model string, logger *slog.Logger) *GroqClient {
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GroqClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Explain sends the serialized turn payload to Groq and returns the raw
// assistant text. Failures surface to the caller; the turn orchestrator is
// responsible for degrading them into the fallback reply.
func (g *GroqClient) Explain(ctx context.Context, predictions []consultation.Prediction, description string, c *consultation.Consultation) (string, error) {
	payload := BuildPayload(predictions, description, c)

	payloadJSON, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	g.logger.Info("llm request payload built",
		"consultation_id", c.ID,
		"predictions", len(predictions),
		"payload_bytes", len(payloadJSON))

	userPrompt := "Here is the structured analysis input:\n\n" +
		string(payloadJSON) +
		"\n\nPlease generate the answer following the instructions."

	reqBody := chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
		MaxTokens:   maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("groq request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("groq API error: %s - %s", resp.Status, string(body))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
