package cli

import (
	"context"
	"os"

	"github.com/hinaba/parley"
	"github.com/hinaba/parley/internal/presentation/tui"
	"github.com/hinaba/parley/pkg/runner"
)

// RunChat starts the interactive chat loop.
func RunChat(opts Options) error {
	logger := createLogger(opts.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	interactive := isTTY(os.Stdout)
	if interactive {
		tui.PrintBanner(parley.Version)
	}

	handlerOpts := []runner.TextHandlerOption{}
	if interactive {
		handlerOpts = append(handlerOpts, runner.WithTextHandlerRenderer(tui.NewRenderer()))
	}
	handler := runner.NewTextHandler(os.Stdin, os.Stdout, handlerOpts...)

	interceptor := runner.ResolveInterceptor(handler, opts.Yes)

	session, err := buildSession(sigCtx, opts, logger, parley.WithToolInterceptor(interceptor))
	if err != nil {
		return err
	}
	defer session.Close()

	if opts.Server != "" {
		printSystemMessage("Connected to server '%s'.", opts.Server)
	}
	printSystemMessage("Chatting with %s. Type 'quit' to exit.", session.Provider())

	r := runner.New(
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
	)

	err = r.Run(sigCtx, session)
	return handleExecutionError(err)
}
