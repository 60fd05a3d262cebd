package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/hinaba/parley"
	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/runner"
)

// RunAsk performs a single dispatch and prints the reply to stdout. Tool
// calls are auto-approved; there is nobody at a prompt to confirm them.
func RunAsk(opts Options, query string) error {
	logger := createLogger(opts.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	clean, err := runner.SanitizeInput(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid query: %v\n", err)
		return err
	}

	session, err := buildSession(sigCtx, opts, logger,
		parley.WithToolInterceptor(runner.AutoApproveMiddleware()),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer session.Close()

	reply, err := session.Send(sigCtx, clean)
	if err != nil {
		if isInterrupted(err) {
			return nil
		}
		// Cause is already in the structured log; the user gets one line.
		fmt.Fprintln(os.Stderr, domain.GenericErrorReply)
		return err
	}

	fmt.Println(reply)
	return nil
}
