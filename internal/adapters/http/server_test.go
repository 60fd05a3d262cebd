package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/session"
)

// fakeChat echoes input and keeps its own transcript, standing in for a
// parley.Session.
type fakeChat struct {
	turns   []domain.Turn
	sendErr error
}

func (f *fakeChat) Send(ctx context.Context, input string) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	reply := "echo: " + input
	f.turns = append(f.turns,
		domain.Turn{Role: domain.RoleUser, Content: input},
		domain.Turn{Role: domain.RoleAssistant, Content: reply},
	)
	return reply, nil
}

func (f *fakeChat) Transcript() []domain.Turn { return f.turns }
func (f *fakeChat) Close() error              { return nil }

func newTestHandler(t *testing.T, factory session.Factory) http.Handler {
	t.Helper()
	if factory == nil {
		factory = func(ctx context.Context, sessionID string) (session.Chat, error) {
			return &fakeChat{}, nil
		}
	}
	return NewHandler(session.NewManager(factory))
}

func postChat(t *testing.T, handler http.Handler, body ChatRequest) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)
	return rec
}

func TestEmbeddedSpecIsValid(t *testing.T) {
	require.NoError(t, validateSpec())
}

func TestWidgetPage(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	for _, id := range []string{`id="messages"`, `id="user-input"`, `id="send-button"`} {
		assert.Contains(t, body, id)
	}
	// The widget must render the exact uniform failure line.
	assert.Contains(t, body, domain.GenericErrorReply)
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatCreatesSessionAndReplies(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := postChat(t, handler, ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "echo: hello", resp.Reply)

	// Same session id continues the same conversation.
	rec = postChat(t, handler, ChatRequest{SessionID: resp.SessionID, Message: "again"})
	require.Equal(t, http.StatusOK, rec.Code)

	var second ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, resp.SessionID, second.SessionID)
}

func TestChatRejectsBlankMessage(t *testing.T) {
	handler := newTestHandler(t, nil)

	for _, message := range []string{"", "   ", "\n\t"} {
		rec := postChat(t, handler, ChatRequest{Message: message})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "message %q", message)
	}
}

func TestChatRejectsInvalidBody(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatDispatchFailure(t *testing.T) {
	handler := newTestHandler(t, func(ctx context.Context, sessionID string) (session.Chat, error) {
		return &fakeChat{sendErr: errors.New("provider down")}, nil
	})

	rec := postChat(t, handler, ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// The user sees the generic line, never the cause.
	assert.Equal(t, domain.GenericErrorReply, resp.Error)
	assert.NotContains(t, rec.Body.String(), "provider down")
}

func TestTranscript(t *testing.T) {
	handler := newTestHandler(t, nil)

	chat := postChat(t, handler, ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, chat.Code)
	var created ChatResponse
	require.NoError(t, json.Unmarshal(chat.Body.Bytes(), &created))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transcript?session_id="+created.SessionID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TranscriptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, domain.RoleUser, resp.Turns[0].Role)
	assert.Equal(t, "hello", resp.Turns[0].Content)
	assert.Equal(t, domain.RoleAssistant, resp.Turns[1].Role)
}

func TestTranscriptMissingParam(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transcript", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTranscriptUnknownSession(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transcript?session_id=ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenAPIServed(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Parley Relay API")
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/chat", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
