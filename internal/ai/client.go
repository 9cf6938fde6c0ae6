// Package ai calls an external text-generation service to review the
// room's current code. The rest of the server treats the response as an
// opaque chat message; nothing here may let a failure escape the boundary.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/UTKARSHJHA-2005/CODIFY/internal/app"
)

const promptTemplate = "Analyze the following JavaScript code:\n%s"

type Client struct {
	httpc *http.Client
	log   *slog.Logger

	url   string
	key   string
	model string
}

func New(cfg app.Config, log *slog.Logger) *Client {
	return &Client{
		httpc: &http.Client{Timeout: 30 * time.Second},
		log:   log,
		url:   cfg.AIAPIURL,
		key:   cfg.AIAPIKey,
		model: cfg.AIModel,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.key != "" }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Result string `json:"result"`
}

// Analyze sends the code to the generation endpoint and returns the
// service's free-form text.
func (c *Client) Analyze(ctx context.Context, code string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: fmt.Sprintf(promptTemplate, code),
	})
	if err != nil {
		return "", err
	}

	endpoint := c.url + "/" + c.model + ":generateText"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("ai.request.failed", "status", resp.StatusCode)
		return "", fmt.Errorf("ai: request failed with status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("ai: invalid response: %w", err)
	}
	if out.Result == "" {
		return "", errors.New("ai: empty result")
	}
	return out.Result, nil
}
