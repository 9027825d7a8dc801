package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-persona-advisors/backend/pkg/logger"
	"ai-persona-advisors/backend/pkg/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := DefaultClientConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	cfg.Policy = retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Factor: 2}
	return NewClient(cfg, logger.New(logger.DefaultConfig()))
}

func candidateResponse(text, finishReason string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": finishReason,
			},
		},
	}
}

func TestCompleteWithoutAPIKeyFailsFast(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	cfg := DefaultClientConfig()
	cfg.BaseURL = server.URL
	client := NewClient(cfg, logger.New(logger.DefaultConfig()))

	_, err := client.Complete(context.Background(), []PromptMessage{{Role: RoleUser, Content: "hi"}}, "system")

	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, calls, "no request should be made without a key")
}

func TestCompleteReturnsCandidateText(t *testing.T) {
	var gotBody geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(candidateResponse("hello there", "STOP"))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Complete(context.Background(),
		[]PromptMessage{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hey"},
			{Role: RoleUser, Content: "how are you?"},
		},
		"You are Ada.")

	require.NoError(t, err)
	assert.Equal(t, "hello there", text)

	// The transcript is flattened into a single user part.
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 1)
	flattened := gotBody.Contents[0].Parts[0].Text
	assert.Contains(t, flattened, "You are Ada.")
	assert.Contains(t, flattened, "Conversation:")
	assert.Contains(t, flattened, "\nUser: hi")
	assert.Contains(t, flattened, "\nAssistant: hey")
	assert.Contains(t, flattened, "\nUser: how are you?")

	assert.InDelta(t, 0.9, gotBody.GenerationConfig.Temperature, 0.001)
	assert.Equal(t, 2048, gotBody.GenerationConfig.MaxOutputTokens)
	assert.Len(t, gotBody.SafetySettings, 4)
}

func TestCompleteRetriesTransientFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(candidateResponse("recovered", "STOP"))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Complete(context.Background(), []PromptMessage{{Role: RoleUser, Content: "hi"}}, "system")

	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, 3, calls)
}

func TestCompleteExhaustedRetriesReturnTerminalError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Complete(context.Background(), []PromptMessage{{Role: RoleUser, Content: "hi"}}, "system")

	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, 3, terminal.Attempts)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "failed to get response after 3 attempts")
}

func TestCompleteEmptyCandidatesIsRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.Complete(context.Background(), []PromptMessage{{Role: RoleUser, Content: "hi"}}, "system")

	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.ErrorIs(t, err, ErrEmptyCandidates)
	assert.Equal(t, 3, calls)
}

func TestCompleteSafetyBlockIsRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(candidateResponse("", "SAFETY"))
			return
		}
		json.NewEncoder(w).Encode(candidateResponse("rephrased", "STOP"))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	text, err := client.Complete(context.Background(), []PromptMessage{{Role: RoleUser, Content: "hi"}}, "system")

	require.NoError(t, err)
	assert.Equal(t, "rephrased", text)
	assert.Equal(t, 2, calls)
}
