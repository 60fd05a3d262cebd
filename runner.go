package parley

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hinaba/parley/pkg/domain"
	"github.com/hinaba/parley/pkg/runner"
)

// Runner handles a line-oriented chat loop over the provided IO.
// This allows for easy testing and integration with different frontends
// (CLI, TUI, etc). For richer terminals use pkg/runner directly.
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the content before
// outputting it. This allows for TUI rendering (markdown to ANSI) without
// coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner. Set Input/Output before calling Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the chat loop until the user quits or input ends.
func (r *Runner) Run(ctx context.Context, session *Session) error {
	reader := r.Input
	if reader == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	lineReader := bufio.NewReader(reader)

	writer := r.Output
	if writer == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}

	if !r.Headless {
		fmt.Fprintln(writer, "--- parley chat ---")
		fmt.Fprintln(writer, "Type your queries or 'quit' to exit.")
	}

	for {
		fmt.Fprint(writer, "\nQuery: ")
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Graceful exit on EOF
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		input := strings.TrimSpace(text)
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Fprintln(writer, "Bye!")
			return nil
		}

		clean, err := runner.SanitizeInput(input)
		if err != nil {
			fmt.Fprintf(writer, "Input rejected: %v\n", err)
			continue
		}

		reply, err := session.Send(ctx, clean)
		if err != nil {
			// The relay already logged the cause; the user gets one
			// uniform line.
			fmt.Fprintln(writer, domain.GenericErrorReply)
			continue
		}

		output := reply
		if r.Renderer != nil {
			if rendered, rerr := r.Renderer(reply); rerr == nil {
				output = rendered
			}
		}
		fmt.Fprintln(writer, "\n"+strings.TrimSpace(output))
	}
}
