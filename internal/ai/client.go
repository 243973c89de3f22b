// internal/ai/client.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Fallback texts returned to the user when the model server misbehaves.
// The chat path never surfaces raw upstream errors.
const (
	FallbackUpstreamError  = "I'm currently experiencing technical difficulties. Please try again in a moment."
	FallbackTransportError = "I apologize, but I'm currently unable to process your request. Please try again later."
	FallbackEmptyResponse  = "I apologize, but I couldn't generate a response at this time."
)

// Client bridges to an Ollama server over HTTP.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// EnsureModelAvailable checks the server's model listing and pulls the
// configured model if it is absent. Failures are logged as warnings only —
// callers must never block on model provisioning.
func (c *Client) EnsureModelAvailable(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		log.Printf("⚠️ [AI] Could not ensure model availability: %v", err)
		return
	}
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("⚠️ [AI] Could not ensure model availability: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("⚠️ [AI] Model listing returned status %d", resp.StatusCode)
		return
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		log.Printf("⚠️ [AI] Could not decode model listing: %v", err)
		return
	}

	for _, m := range tags.Models {
		if m.Name == c.model {
			return
		}
	}

	log.Printf("📥 [AI] Model %q not found, pulling...", c.model)
	body, _ := json.Marshal(map[string]string{"name": c.model})
	pullReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/pull", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ [AI] Could not build pull request: %v", err)
		return
	}
	pullReq.Header.Set("Content-Type", "application/json")

	// Pulling a model can take minutes; don't hold the generate timeout.
	pullClient := &http.Client{Timeout: 10 * time.Minute}
	pullResp, err := pullClient.Do(pullReq)
	if err != nil {
		log.Printf("⚠️ [AI] Failed to pull model %q: %v", c.model, err)
		return
	}
	defer pullResp.Body.Close()
	if pullResp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(pullResp.Body)
		log.Printf("⚠️ [AI] Failed to pull model %q: status %d, body: %s", c.model, pullResp.StatusCode, string(b))
	}
}

// Generate sends the assembled prompt to Ollama and returns the generated
// text. Network errors, timeouts and non-200 statuses are absorbed into a
// fixed user-safe fallback string — the request path must not crash because
// the model server is down.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.7,
			TopP:        0.9,
			NumPredict:  1000,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("❌ [AI] Failed to marshal generate request: %v", err)
		return FallbackTransportError
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		log.Printf("❌ [AI] Failed to build generate request: %v", err)
		return FallbackTransportError
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("❌ [AI] Generate call failed: %v", err)
		return FallbackTransportError
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		log.Printf("❌ [AI] Ollama API error: %d - %s", resp.StatusCode, string(b))
		return FallbackUpstreamError
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("❌ [AI] Could not decode generate response: %v", err)
		return FallbackEmptyResponse
	}
	if result.Response == "" {
		return FallbackEmptyResponse
	}
	return result.Response
}

// ListModels returns the raw model listing for the passthrough endpoint.
func (c *Client) ListModels(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// TestConnection is a boolean liveness probe against the listing endpoint.
func (c *Client) TestConnection(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
