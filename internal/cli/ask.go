package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coursegraph/coursegraph/internal/llm"
	"github.com/coursegraph/coursegraph/internal/models"
)

var askInteractive bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed course materials",
	Long: `Ask a question and get an LLM-synthesized answer grounded in the
indexed course content. Sources are listed below the answer.

With --interactive, starts a chat loop that keeps conversation history,
so follow-up questions can refer to earlier answers.

Examples:
  coursegraph ask "What is covered in lesson 5 of the MCP course?"
  coursegraph ask -i`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askInteractive, "interactive", "i", false, "interactive chat with conversation history")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	system, err := getSystem(ctx)
	if err != nil {
		return err
	}

	if askInteractive {
		return runChatLoop(ctx, system)
	}

	if len(args) == 0 {
		return fmt.Errorf("provide a question or use --interactive")
	}

	answer, sources, err := system.Query(ctx, args[0], system.CreateSession())
	if err != nil {
		if errors.Is(err, llm.ErrFatalAPI) {
			exitWithError("%v", err)
		}
		return err
	}

	printAnswer(answer, sources)
	return nil
}

func runChatLoop(ctx context.Context, system querier) error {
	sessionID := system.CreateSession()
	fmt.Println("Ask about the indexed courses. Type 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		answer, sources, err := system.Query(ctx, question, sessionID)
		if err != nil {
			if errors.Is(err, llm.ErrFatalAPI) {
				exitWithError("%v", err)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		printAnswer(answer, sources)
	}
	return scanner.Err()
}

// querier is the part of the rag system the chat loop needs.
type querier interface {
	CreateSession() string
	Query(ctx context.Context, query, sessionID string) (string, []models.Source, error)
}

func printAnswer(answer string, sources []models.Source) {
	fmt.Println(answer)
	if len(sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, src := range sources {
		if src.Link != "" {
			fmt.Printf("  - %s (%s)\n", src.Text, src.Link)
		} else {
			fmt.Printf("  - %s\n", src.Text)
		}
	}
}
