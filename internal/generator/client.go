// Package generator talks to the external form-generation service.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/promptform/promptform/internal/form"
)

// ErrNotConfigured is returned when no generator URL is set.
var ErrNotConfigured = errors.New("form generator not configured")

const maxBody = 4 << 20

type Client struct {
	url  string
	http *http.Client
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{url: strings.TrimSpace(url), http: &http.Client{Timeout: timeout}}
}

// Request asks for a new form, or a refactor of Current when it is set.
type Request struct {
	Prompt  string           `json:"prompt"`
	Current *form.Definition `json:"current,omitempty"`
}

// Generate posts the request and returns the validated definition.
func (c *Client) Generate(ctx context.Context, req Request) (form.Definition, error) {
	if c == nil || c.url == "" {
		return form.Definition{}, ErrNotConfigured
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return form.Definition{}, errors.New("prompt is required")
	}
	body, err := json.Marshal(req)
	if err != nil {
		return form.Definition{}, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return form.Definition{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return form.Definition{}, fmt.Errorf("generator request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return form.Definition{}, fmt.Errorf("read generator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return form.Definition{}, fmt.Errorf("generator HTTP error: %d", resp.StatusCode)
	}
	return form.ParseDefinition(unwrap(raw))
}

// unwrap accepts a bare definition, {"form": ...}, or a JSON string holding
// either, optionally inside a markdown code fence.
func unwrap(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			raw = []byte(strings.TrimSpace(s))
		}
	}
	raw = stripFence(raw)

	var env struct {
		Form json.RawMessage `json:"form"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Form) > 0 && env.Form[0] == '{' {
		return env.Form
	}
	return raw
}

func stripFence(raw []byte) []byte {
	s := string(raw)
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
