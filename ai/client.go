package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-persona-advisors/backend/pkg/logger"
	"ai-persona-advisors/backend/pkg/retry"
	"ai-persona-advisors/backend/shared/observability"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"

	finishReasonSafety = "SAFETY"
)

// Completer is the single-call surface of the completion client. The
// responder and synthesizer depend on this interface so tests can substitute
// a stub for the real endpoint.
type Completer interface {
	Complete(ctx context.Context, messages []PromptMessage, systemPrompt string) (string, error)
}

// ClientConfig configures the completion client.
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	Policy  retry.Policy

	Temperature     float64
	MaxOutputTokens int
	TopP            float64
	TopK            int
}

// DefaultClientConfig returns the generation parameters used in production.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Model:           defaultModel,
		BaseURL:         defaultBaseURL,
		Timeout:         60 * time.Second,
		Policy:          retry.DefaultPolicy(),
		Temperature:     0.9,
		MaxOutputTokens: 2048,
		TopP:            0.95,
		TopK:            40,
	}
}

// Client issues generateContent requests to the Gemini API with bounded
// retry and backoff. It keeps no state between calls.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a completion client. A missing API key is not an error
// here; Complete fails fast with ErrNotConfigured instead, so the rest of
// the application can still start without a credential.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Policy.MaxAttempts == 0 {
		cfg.Policy = retry.DefaultPolicy()
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log,
	}
}

// Complete sends one flattened transcript to the endpoint and returns the
// first candidate's text. Transient failures (transport errors, non-2xx,
// empty candidate list, safety block) are retried per the policy; when the
// budget is exhausted a *TerminalError carrying the attempt count and last
// cause is returned.
func (c *Client) Complete(ctx context.Context, messages []PromptMessage, systemPrompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	text, attempts, err := retry.Do(ctx, c.cfg.Policy, func() (string, error) {
		observability.GenerationAttempts.Inc()
		text, err := c.generate(ctx, messages, systemPrompt)
		if err != nil {
			c.log.Warn("generation attempt failed", "error", err.Error())
		}
		return text, err
	})
	if err != nil {
		observability.GenerationFailures.Inc()
		return "", &TerminalError{Attempts: attempts, Err: err}
	}

	return text, nil
}

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func defaultSafetySettings() []safetySetting {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}

	settings := make([]safetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, safetySetting{
			Category:  category,
			Threshold: "BLOCK_MEDIUM_AND_ABOVE",
		})
	}
	return settings
}

// generate performs a single request attempt.
func (c *Client) generate(ctx context.Context, messages []PromptMessage, systemPrompt string) (string, error) {
	requestBody := geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: flattenTranscript(systemPrompt, messages)}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:     c.cfg.Temperature,
			MaxOutputTokens: c.cfg.MaxOutputTokens,
			TopP:            c.cfg.TopP,
			TopK:            c.cfg.TopK,
		},
		SafetySettings: defaultSafetySettings(),
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %v", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, c.cfg.Model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error making API request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status code %d: %s", resp.StatusCode, string(body))
	}

	var genResp geminiResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}

	if len(genResp.Candidates) == 0 {
		return "", ErrEmptyCandidates
	}
	if genResp.Candidates[0].FinishReason == finishReasonSafety {
		return "", ErrSafetyBlocked
	}
	if len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCandidates
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// flattenTranscript joins the system prompt and turns into the single text
// blob the endpoint receives.
func flattenTranscript(systemPrompt string, messages []PromptMessage) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nConversation:\n")

	for _, msg := range messages {
		switch msg.Role {
		case RoleUser:
			b.WriteString("\nUser: ")
			b.WriteString(msg.Content)
		case RoleAssistant:
			b.WriteString("\nAssistant: ")
			b.WriteString(msg.Content)
		}
	}
	return b.String()
}
