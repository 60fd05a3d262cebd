package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hinaba/parley/pkg/domain"
)

// ErrInterrupted is returned by Run when an OS signal ends the loop.
// Callers usually treat it as a clean exit.
var ErrInterrupted = errors.New("interrupted")

// Runner drives the query/reply loop of a chat session using provided IO.
// It uses an IOHandler strategy to abstract the interaction mode (Text vs JSON).
type Runner struct {
	// Handler is the strategy for IO. If nil, it falls back to legacy fields.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Deprecated: Use Handler instead. These are kept for backward compatibility.
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	quitWords []string
}

// ContentRenderer is a function that transforms reply content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// New creates a Runner with default Stdin/Stdout.
func New(opts ...Option) *Runner {
	r := &Runner{
		Input:    os.Stdin,
		Output:   os.Stdout,
		Headless: false,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the chat loop until the input ends, the user quits, or a
// signal interrupts it. An interrupt during a dispatch abandons that exchange
// and returns to the prompt; an interrupt at the prompt ends the loop with
// ErrInterrupted.
func (r *Runner) Run(ctx context.Context, chatter Chatter) error {
	if chatter == nil {
		return errors.New("chatter must not be nil")
	}

	handler := r.resolveHandler()

	signals := NewSignalManager(ctx)
	defer signals.Stop()

	for {
		currentCtx := signals.Context()

		input, err := handler.Input(currentCtx)
		if err != nil {
			signals.CheckRace()

			if currentCtx.Err() != nil {
				r.Logger.Debug("runner input: context cancelled", "err", currentCtx.Err())
				return ErrInterrupted
			}
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		if input == "" {
			continue
		}
		if r.isQuitWord(input) {
			_ = handler.SystemOutput(currentCtx, "Bye!")
			return nil
		}

		_ = handler.Signal(currentCtx, "thinking", nil)

		reply, err := chatter.Send(currentCtx, input)
		if err != nil {
			if currentCtx.Err() != nil {
				// Ctrl+C during a dispatch abandons the exchange, not the session.
				r.Logger.Debug("runner dispatch: cancelled", "err", currentCtx.Err())
				signals.Reset()
				_ = handler.SystemOutput(signals.Context(), "Request cancelled.")
				continue
			}
			// The session already logged the cause; the user gets one uniform line.
			if outErr := handler.Output(currentCtx, domain.Turn{Role: domain.RoleAssistant, Content: domain.GenericErrorReply}); outErr != nil {
				return fmt.Errorf("output error: %w", outErr)
			}
			continue
		}

		if err := handler.Output(currentCtx, domain.Turn{Role: domain.RoleAssistant, Content: reply}); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}
}

// resolveHandler ensures a valid IOHandler is set.
func (r *Runner) resolveHandler() IOHandler {
	if r.Handler != nil {
		return r.Handler
	}
	th := NewTextHandler(r.Input, r.Output)
	th.Renderer = r.Renderer
	if !r.Headless && r.Output != nil {
		fmt.Fprintln(r.Output, "--- parley chat ---")
		fmt.Fprintln(r.Output, "Type your queries or 'quit' to exit.")
	}
	// Memoize to prevent creating new pumps on subsequent Run() calls
	r.Handler = th
	return th
}

func (r *Runner) isQuitWord(input string) bool {
	words := r.quitWords
	if len(words) == 0 {
		words = []string{"quit", "exit", "q"}
	}
	lowered := strings.ToLower(input)
	for _, w := range words {
		if lowered == w {
			return true
		}
	}
	return false
}
