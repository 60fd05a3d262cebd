/*
Package runner implements the interactive chat loop and I/O orchestration for Parley sessions.

It acts as the bridge between the session (transcript plus provider) and the outside
world. The runner reads user queries through pluggable handlers, dispatches them, and
presents replies, while managing OS signals and tool execution policy.

# Key Components

  - Runner: The main orchestrator that drives the query/reply loop.
  - IOHandler: Decouples how queries are read and replies presented (Text, JSON, etc.).
  - TextHandler: A standard implementation for interactive CLI usage.
  - ConfirmationMiddleware: A tool interceptor that asks the user before execution.

# Usage

	handler := runner.NewTextHandler(os.Stdin, os.Stdout)

	session, err := parley.New("anthropic",
		parley.WithToolInterceptor(runner.ResolveInterceptor(handler, false)),
	)
	if err != nil {
		log.Fatal(err)
	}

	r := runner.New(runner.WithInputHandler(handler))
	if err := r.Run(ctx, session); err != nil {
		log.Fatal(err)
	}
*/
package runner
