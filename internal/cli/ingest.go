package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coursegraph/coursegraph/internal/ingest"
	"golang.org/x/term"
)

var (
	ingestClear bool
	ingestPlain bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Index course documents from a file or folder",
	Long: `Index course documents into the vector store.

A single file is ingested directly. A folder is scanned for .txt and .md
course documents; courses whose titles are already indexed are skipped.

Examples:
  coursegraph ingest ./docs
  coursegraph ingest ./docs --clear
  coursegraph ingest ./docs/mcp_course.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "clear existing data before ingesting")
	ingestCmd.Flags().BoolVar(&ingestPlain, "plain", false, "plain text output without the progress UI")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()

	system, err := getSystem(ctx)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		course, chunks, err := system.AddCourseDocument(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("Indexed course %q: %d lessons, %d chunks\n",
			course.Title, len(course.Lessons), chunks)
		return nil
	}

	run := func(ctx context.Context, progress ingest.ProgressFunc) (int, int, error) {
		return system.AddCourseFolder(ctx, path, ingestClear, progress)
	}

	if ingestPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		courses, chunks, err := run(ctx, func(p ingest.Progress) {
			fmt.Printf("[%d/%d] %s\n", p.Done, p.Total, p.Path)
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %d courses (%d chunks)\n", courses, chunks)
		return nil
	}

	courses, chunks, err := RunIngestProgress(ctx, run)
	if err != nil {
		return err
	}
	fmt.Printf("Added %d courses (%d chunks)\n", courses, chunks)
	return nil
}
