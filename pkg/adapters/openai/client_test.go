package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/ports"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestCompleteSimple(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		writeJSON(t, w, chatResponse{
			Model: "gpt-4o-mini",
			Choices: []choice{{
				Message:      chatMessage{Role: "assistant", Content: "  Hi there.  "},
				FinishReason: "stop",
			}},
		})
	})

	out, err := c.Complete(context.Background(), ports.CompletionRequest{
		Turns: []domain.Turn{
			{Role: domain.RoleSystem, Content: "be brief"},
			{Role: domain.RoleUser, Content: "hello"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi there.", out.Text, "reply should be trimmed")
	assert.Equal(t, "stop", out.StopReason)
	assert.Equal(t, 0, out.ToolRounds)

	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, domain.DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be brief", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Empty(t, got.Tools)
}

func TestCompleteOptionsOverrideDefaults(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, chatResponse{
			Choices: []choice{{Message: chatMessage{Role: "assistant", Content: "ok"}}},
		})
	})

	temp := 0.2
	_, err := c.Complete(context.Background(), ports.CompletionRequest{
		Turns: []domain.Turn{{Role: domain.RoleUser, Content: "hi"}},
		Options: ports.CompletionOptions{
			Model:       "gpt-4.1",
			MaxTokens:   64,
			Temperature: &temp,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1", got.Model)
	assert.Equal(t, 64, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.Equal(t, 0.2, *got.Temperature)
}

func TestCompleteToolLoop(t *testing.T) {
	var requests []chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		if len(requests) == 1 {
			writeJSON(t, w, chatResponse{
				Choices: []choice{{
					Message: chatMessage{
						Role: "assistant",
						ToolCalls: []wireToolCall{{
							ID:       "call_1",
							Type:     "function",
							Function: functionCall{Name: "get_weather", Arguments: `{"city":"Lisbon"}`},
						}},
					},
					FinishReason: "tool_calls",
				}},
			})
			return
		}
		writeJSON(t, w, chatResponse{
			Choices: []choice{{
				Message:      chatMessage{Role: "assistant", Content: "Sunny, 24C."},
				FinishReason: "stop",
			}},
		})
	})

	var invoked []domain.ToolCall
	out, err := c.Complete(context.Background(), ports.CompletionRequest{
		Turns: []domain.Turn{{Role: domain.RoleUser, Content: "weather in lisbon?"}},
		Tools: []domain.Tool{{Name: "get_weather", InputSchema: map[string]any{"type": "object"}}},
		Invoke: func(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
			invoked = append(invoked, call)
			return domain.ToolResult{ID: call.ID, Content: "24C and sunny"}, nil
		},
	})
	require.NoError(t, err)

	require.Len(t, invoked, 1)
	assert.Equal(t, "get_weather", invoked[0].Name)
	assert.Equal(t, map[string]any{"city": "Lisbon"}, invoked[0].Args)

	assert.Equal(t, "[Calling tool get_weather with args map[city:Lisbon]]\n\nSunny, 24C.", out.Text)
	assert.Equal(t, 1, out.ToolRounds)

	require.Len(t, requests, 2)
	require.Len(t, requests[0].Tools, 1)
	assert.Equal(t, "function", requests[0].Tools[0].Type)
	assert.Equal(t, "get_weather", requests[0].Tools[0].Function.Name)

	second := requests[1]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "assistant", second.Messages[1].Role)
	require.Len(t, second.Messages[1].ToolCalls, 1)
	assert.Equal(t, "tool", second.Messages[2].Role)
	assert.Equal(t, "call_1", second.Messages[2].ToolCallID)
	assert.Equal(t, "get_weather", second.Messages[2].Name)
	assert.Equal(t, "24C and sunny", second.Messages[2].Content)
}

func TestCompleteDeniedToolFeedsErrorText(t *testing.T) {
	var requests []chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		if len(requests) == 1 {
			writeJSON(t, w, chatResponse{
				Choices: []choice{{
					Message: chatMessage{
						Role: "assistant",
						ToolCalls: []wireToolCall{{
							ID:       "call_9",
							Type:     "function",
							Function: functionCall{Name: "delete_file", Arguments: `{"path":"/tmp/x"}`},
						}},
					},
				}},
			})
			return
		}
		writeJSON(t, w, chatResponse{
			Choices: []choice{{Message: chatMessage{Role: "assistant", Content: "Understood."}}},
		})
	})

	_, err := c.Complete(context.Background(), ports.CompletionRequest{
		Turns: []domain.Turn{{Role: domain.RoleUser, Content: "clean up"}},
		Tools: []domain.Tool{{Name: "delete_file"}},
		Invoke: func(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
			return domain.ToolResult{
				ID:       call.ID,
				IsError:  true,
				IsDenied: true,
				Error:    "User denied execution by policy",
			}, nil
		},
	})
	require.NoError(t, err)

	require.Len(t, requests, 2)
	assert.Equal(t, "User denied execution by policy", requests[1].Messages[2].Content)
}

func TestCompleteErrorSingleAttempt(t *testing.T) {
	hits := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	})

	_, err := c.Complete(context.Background(), ports.CompletionRequest{
		Turns: []domain.Turn{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Equal(t, 1, hits, "a failed request must not be retried")
}

func TestCompleteNoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, chatResponse{})
	})

	_, err := c.Complete(context.Background(), ports.CompletionRequest{
		Turns: []domain.Turn{{Role: domain.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestCompleteToolRoundsExceeded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, chatResponse{
			Choices: []choice{{
				Message: chatMessage{
					Role: "assistant",
					ToolCalls: []wireToolCall{{
						ID:       "call_loop",
						Type:     "function",
						Function: functionCall{Name: "spin", Arguments: `{}`},
					}},
				},
			}},
		})
	})

	_, err := c.Complete(context.Background(), ports.CompletionRequest{
		Turns: []domain.Turn{{Role: domain.RoleUser, Content: "go"}},
		Tools: []domain.Tool{{Name: "spin"}},
		Invoke: func(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error) {
			return domain.ToolResult{ID: call.ID, Content: "again"}, nil
		},
	})
	require.ErrorIs(t, err, domain.ErrToolRoundsExceeded)
}

func TestNewClientMissingKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	_, err := NewClient(Config{})
	require.ErrorIs(t, err, domain.ErrMissingAPIKey)
}

func TestNewClientEnvFallbackAndDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "env-key")

	c, err := NewClient(Config{})
	require.NoError(t, err)

	assert.Equal(t, "env-key", c.cfg.APIKey)
	assert.Equal(t, DefaultBaseURL, c.cfg.BaseURL)
	assert.Equal(t, DefaultModel, c.cfg.Model)
	assert.Equal(t, domain.DefaultMaxTokens, c.cfg.MaxTokens)
	assert.Equal(t, "openai", c.Name())
}
