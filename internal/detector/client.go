// Package detector scores skin images against a fixed catalog of condition
// prompts. The embedding model (BiomedCLIP) runs in a local sidecar service;
// this package owns the catalog, the softmax calibration, and the top-k
// ranking.
package detector

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"net/http"
	"sort"
	"time"

	"medibot-ai/internal/consultation"
)

// Local embedding service URL (BiomedCLIP sidecar)
const defaultServiceURL = "http://detector:8000"

// temperature scales the cosine similarities before softmax, matching the
// calibration the reference catalog was tuned with.
const temperature = 0.07

type Client struct {
	serviceURL string
	httpClient *http.Client
}

func NewClient(serviceURL string) *Client {
	if serviceURL == "" {
		serviceURL = defaultServiceURL
	}
	return &Client{
		serviceURL: serviceURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type scoreRequest struct {
	ImageBase64 string   `json:"image_base64"`
	Prompts     []string `json:"prompts"`
}

type scoreResponse struct {
	Similarities []float64 `json:"similarities"`
}

// Predict scores img against the catalog and returns the topK candidates,
// ordered by descending confidence. Deterministic for a fixed image and
// catalog. topK is clamped to the catalog size.
func (c *Client) Predict(ctx context.Context, img image.Image, topK int) ([]consultation.Prediction, error) {
	if topK <= 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	sims, err := c.score(ctx, buf.Bytes())
	if err != nil {
		return nil, err
	}
	if len(sims) != len(catalog) {
		return nil, fmt.Errorf("embedding service returned %d scores for %d prompts", len(sims), len(catalog))
	}

	return rank(sims, topK), nil
}

func (c *Client) score(ctx context.Context, imageBytes []byte) ([]float64, error) {
	reqBody := scoreRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(imageBytes),
		Prompts:     prompts(),
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.serviceURL+"/score", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding service error: %s - %s", resp.Status, string(body))
	}

	var result scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Similarities, nil
}

// rank converts raw similarities into calibrated confidences and picks the
// top k catalog entries.
func rank(similarities []float64, topK int) []consultation.Prediction {
	probs := softmax(similarities, temperature)

	idx := make([]int, len(probs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return probs[idx[a]] > probs[idx[b]]
	})

	k := topK
	if k > len(catalog) {
		k = len(catalog)
	}

	out := make([]consultation.Prediction, 0, k)
	for r := 0; r < k; r++ {
		i := idx[r]
		entry := catalog[i]
		out = append(out, consultation.Prediction{
			Rank:            r + 1,
			Confidence:      probs[i] * 100.0,
			RawText:         entry.prompt,
			Disease:         entry.name,
			Severity:        entry.severity,
			Characteristics: entry.characteristics,
			Recommendation:  entry.recommendation,
		})
	}
	return out
}

func softmax(scores []float64, temp float64) []float64 {
	scaled := make([]float64, len(scores))
	maxScore := math.Inf(-1)
	for i, s := range scores {
		scaled[i] = s / temp
		if scaled[i] > maxScore {
			maxScore = scaled[i]
		}
	}

	var sum float64
	out := make([]float64, len(scaled))
	for i, s := range scaled {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
