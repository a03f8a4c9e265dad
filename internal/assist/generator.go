// Package assist drafts tasks, replies and summaries from inbound
// messages. A text generation service is used when one is configured;
// every operation falls back to a deterministic template otherwise, so
// callers always get a usable result.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/existflow/bizflow/internal/config"
	"github.com/existflow/bizflow/internal/credential"
)

const (
	defaultModel     = "claude-3-5-sonnet-20241022"
	defaultMaxTokens = 1024
	defaultTimeout   = 30 * time.Second
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"

	// APIKeyEnv overrides the keyring entry.
	APIKeyEnv = "BIZFLOW_AI_API_KEY"
)

// Origin tells whether a draft came from the generator or a template.
type Origin string

const (
	OriginAI       Origin = "ai"
	OriginTemplate Origin = "template"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationError reports that the generator failed or timed out.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return "generation failed: " + e.Reason
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsGenerationError reports whether err is a *GenerationError
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// ClaudeGenerator calls the Anthropic Messages API.
type ClaudeGenerator struct {
	apiKey    string
	model     string
	maxTokens int
	timeout   time.Duration
	endpoint  string
	client    *http.Client
}

// NewClaudeGenerator builds a generator from the ai config section. An
// empty apiKey yields a generator whose calls always fail, which makes the
// callers use their templates.
func NewClaudeGenerator(apiKey string, cfg config.AIConfig) *ClaudeGenerator {
	g := &ClaudeGenerator{
		apiKey:    apiKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		endpoint:  cfg.Endpoint,
		client:    &http.Client{},
	}
	if g.model == "" {
		g.model = defaultModel
	}
	if g.maxTokens <= 0 {
		g.maxTokens = defaultMaxTokens
	}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	if g.endpoint == "" {
		g.endpoint = defaultEndpoint
	}
	return g
}

// APIKey looks the key up in the environment, then the keyring. It
// returns "" when neither has one.
func APIKey() string {
	if k := strings.TrimSpace(os.Getenv(APIKeyEnv)); k != "" {
		return k
	}
	k, err := credential.Get(credential.AIKey)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(k)
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends prompt as a single user message and returns the text of
// the reply.
func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", &GenerationError{Reason: "no API key configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(apiRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		Messages:  []apiMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", &GenerationError{Reason: "marshaling request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &GenerationError{Reason: "creating request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", &GenerationError{Reason: "calling API", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GenerationError{Reason: "reading response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", &GenerationError{Reason: fmt.Sprintf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)}
		}
		return "", &GenerationError{Reason: fmt.Sprintf("API error (%d)", resp.StatusCode)}
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", &GenerationError{Reason: "decoding response", Err: err}
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", &GenerationError{Reason: "empty response"}
	}
	return sb.String(), nil
}

// generate runs gen and converts every failure into a *GenerationError. A
// nil generator counts as unavailable.
func generate(ctx context.Context, gen Generator, prompt string) (string, error) {
	if gen == nil {
		return "", &GenerationError{Reason: "no generator"}
	}
	text, err := gen.Generate(ctx, prompt)
	if err != nil {
		if IsGenerationError(err) {
			return "", err
		}
		return "", &GenerationError{Reason: "generator", Err: err}
	}
	return text, nil
}
