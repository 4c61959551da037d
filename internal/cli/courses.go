package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List indexed courses",
	Args:  cobra.NoArgs,
	RunE:  runCourses,
}

func runCourses(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	system, err := getSystem(ctx)
	if err != nil {
		return err
	}

	analytics, err := system.GetAnalytics(ctx)
	if err != nil {
		return err
	}

	if analytics.TotalCourses == 0 {
		fmt.Println("No courses indexed yet. Run 'coursegraph ingest <folder>' first.")
		return nil
	}

	fmt.Printf("%d courses indexed:\n", analytics.TotalCourses)
	for _, title := range analytics.CourseTitles {
		fmt.Printf("  - %s\n", title)
	}
	return nil
}
