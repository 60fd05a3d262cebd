package parley_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hinaba/parley"
	"github.com/hinaba/parley/pkg/ports"
)

// echoCompleter is a deterministic stand-in for a real provider.
type echoCompleter struct{}

func (echoCompleter) Name() string { return "echo" }

func (echoCompleter) Complete(ctx context.Context, req ports.CompletionRequest) (*ports.Completion, error) {
	last := req.Turns[len(req.Turns)-1]
	return &ports.Completion{Text: "You said: " + last.Content, Model: "echo-1"}, nil
}

// ExampleNew demonstrates a session against a custom completion provider.
// Real programs pass "anthropic" or "openai" instead and omit WithCompleter.
func ExampleNew() {
	session, err := parley.New("", parley.WithCompleter(echoCompleter{}))
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()

	reply, err := session.Send(context.Background(), "Say hello.")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(reply)
	// Output: You said: Say hello.
}

// ExampleSession_Transcript shows how the transcript grows. The system turn
// is inserted lazily on the first Send.
func ExampleSession_Transcript() {
	session, err := parley.New("",
		parley.WithCompleter(echoCompleter{}),
		parley.WithSystemPrompt("Be brief."),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer session.Close()

	if _, err := session.Send(context.Background(), "hi"); err != nil {
		log.Fatal(err)
	}

	for _, turn := range session.Transcript() {
		fmt.Printf("%s: %s\n", turn.Role, turn.Content)
	}
	// Output:
	// system: Be brief.
	// user: hi
	// assistant: You said: hi
}
