package runner

import (
	"context"
	"strings"
	"testing"

	"github.com/hinaba/parley/pkg/domain"
)

// MockIOHandler for testing middleware inputs/outputs
type MockIOHandler struct {
	Turns         []domain.Turn
	SystemLines   []string
	InputBehavior func() (string, error)
}

func (m *MockIOHandler) Output(ctx context.Context, turn domain.Turn) error {
	m.Turns = append(m.Turns, turn)
	return nil
}

func (m *MockIOHandler) Input(ctx context.Context) (string, error) {
	if m.InputBehavior != nil {
		return m.InputBehavior()
	}
	return "", nil
}

func (m *MockIOHandler) Signal(ctx context.Context, name string, args map[string]any) error {
	return nil
}

func (m *MockIOHandler) SystemOutput(ctx context.Context, msg string) error {
	m.SystemLines = append(m.SystemLines, msg)
	return nil
}

func TestConfirmationMiddleware_Allow(t *testing.T) {
	mock := &MockIOHandler{
		InputBehavior: func() (string, error) { return "y\n", nil },
	}

	interceptor := ConfirmationMiddleware(mock)
	call := domain.ToolCall{ID: "1", Name: "delete_db"}

	allowed, _, err := interceptor(context.Background(), call)
	if err != nil {
		t.Fatalf("Middleware error: %v", err)
	}

	if !allowed {
		t.Error("Expected tool to be allowed with 'y'")
	}

	// Verify prompt was sent
	foundPrompt := false
	for _, line := range mock.SystemLines {
		if strings.Contains(line, "Allow execution?") {
			foundPrompt = true
		}
	}
	if !foundPrompt {
		t.Error("Expected prompt message in output")
	}
}

func TestConfirmationMiddleware_Deny(t *testing.T) {
	mock := &MockIOHandler{
		InputBehavior: func() (string, error) { return "n\n", nil },
	}

	interceptor := ConfirmationMiddleware(mock)
	call := domain.ToolCall{ID: "1", Name: "delete_db"}

	allowed, res, err := interceptor(context.Background(), call)
	if err != nil {
		t.Fatalf("Middleware error: %v", err)
	}

	if allowed {
		t.Error("Expected tool to be denied with 'n'")
	}

	if !res.IsError || res.Error != "User denied execution by policy" {
		t.Errorf("Expected denial error, got: %v", res)
	}
}

func TestMultiInterceptor(t *testing.T) {
	// Chain: AutoApprove -> DenyAll -> AutoApprove
	// Should fail at DenyAll

	denyAll := func(ctx context.Context, call domain.ToolCall) (bool, domain.ToolResult, error) {
		return false, domain.ToolResult{Error: "Denied"}, nil
	}

	chain := MultiInterceptor(AutoApproveMiddleware(), denyAll, AutoApproveMiddleware())

	allowed, res, _ := chain(context.Background(), domain.ToolCall{})
	if allowed {
		t.Error("MultiInterceptor should stop at first denial")
	}
	if res.Error != "Denied" {
		t.Error("Expected denial result")
	}
}

func TestResolveInterceptor(t *testing.T) {
	mock := &MockIOHandler{
		InputBehavior: func() (string, error) { return "no", nil },
	}

	// Headless resolves to auto-approve regardless of handler
	allowed, _, err := ResolveInterceptor(mock, true)(context.Background(), domain.ToolCall{Name: "rm"})
	if err != nil || !allowed {
		t.Errorf("Headless should auto-approve, got allowed=%v err=%v", allowed, err)
	}

	// Interactive resolves to confirmation, which the mock denies
	allowed, res, err := ResolveInterceptor(mock, false)(context.Background(), domain.ToolCall{Name: "rm"})
	if err != nil {
		t.Fatalf("Interceptor error: %v", err)
	}
	if allowed || !res.IsError {
		t.Errorf("Interactive denial expected, got allowed=%v res=%v", allowed, res)
	}
}
