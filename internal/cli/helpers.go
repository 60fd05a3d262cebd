// Package cli carries the logic behind the parley commands: session
// construction from config and flags, the interactive loop, the one-shot
// dispatch, tool listing, and the HTTP server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"github.com/hinaba/parley/internal/logging"
	"github.com/hinaba/parley/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from the Stdout chat surface).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// createDebugHooks logs every lifecycle event at debug level.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDispatchStart: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.Debug("Dispatch Start", "provider", e.Provider, "turns", e.Turns)
		},
		OnDispatchEnd: func(ctx context.Context, e *domain.DispatchEvent) {
			logger.Debug("Dispatch End", "provider", e.Provider, "model", e.Model, "duration", e.Duration, "err", e.Err)
		},
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			logger.Debug("Tool Call", "tool_name", e.ToolName)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			logger.Debug("Tool Return", "tool_name", e.ToolName, "is_error", e.IsError)
		},
	}
}

// combineHooks fans each lifecycle event out to every hook set.
func combineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, hooks := range sets {
		hooks := hooks
		if hooks.OnDispatchStart != nil {
			prev := out.OnDispatchStart
			out.OnDispatchStart = func(ctx context.Context, e *domain.DispatchEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hooks.OnDispatchStart(ctx, e)
			}
		}
		if hooks.OnDispatchEnd != nil {
			prev := out.OnDispatchEnd
			out.OnDispatchEnd = func(ctx context.Context, e *domain.DispatchEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hooks.OnDispatchEnd(ctx, e)
			}
		}
		if hooks.OnToolCall != nil {
			prev := out.OnToolCall
			out.OnToolCall = func(ctx context.Context, e *domain.ToolEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hooks.OnToolCall(ctx, e)
			}
		}
		if hooks.OnToolReturn != nil {
			prev := out.OnToolReturn
			out.OnToolReturn = func(ctx context.Context, e *domain.ToolEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				hooks.OnToolReturn(ctx, e)
			}
		}
	}
	return out
}

// isInterrupted reports whether err is cancellation noise rather than a
// real failure.
func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		err.Error() == "interrupted" ||
		err.Error() == "input error: interrupted" ||
		errors.Is(err, io.EOF) ||
		(errors.Unwrap(err) != nil && isInterrupted(errors.Unwrap(err)))
}

// handleExecutionError maps interruptions to a clean exit.
func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

// isTTY reports whether f is an interactive terminal.
func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
