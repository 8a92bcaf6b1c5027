package cli

import (
	"fmt"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/alexanderramin/orbit/internal/content"
	"github.com/spf13/cobra"
)

func newLessonCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lesson",
		Short: "Report lesson results",
	}
	cmd.AddCommand(newLessonCompleteCmd(app))
	return cmd
}

func newLessonCompleteCmd(app *App) *cobra.Command {
	var accuracy float64
	var misconceptions []string
	var title string

	cmd := &cobra.Command{
		Use:   "complete <lesson ref>",
		Short: "Record a finished lesson and recompute the learning path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.session(ctx)
			if err != nil {
				return err
			}

			res := content.LessonResult{
				LessonRef:      args[0],
				Title:          title,
				Misconceptions: misconceptions,
			}
			if cmd.Flags().Changed("accuracy") {
				if accuracy < 0 || accuracy > 100 {
					return fmt.Errorf("accuracy must be between 0 and 100, got %v", accuracy)
				}
				res.Accuracy = &accuracy
			}

			f, err := s.CompleteLesson(ctx, res)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", formatter.StyleGreen.Render("✔ Lesson recorded:"), args[0])
			if f.NextTitle != "" {
				fmt.Fprintf(out, "  %s %s %s\n", formatter.Dim("Next up:"), formatter.Bold(f.NextTitle), formatter.Dim("("+f.NextReason+")"))
			}
			fmt.Fprintln(out, formatter.Dim("  Run `orbit dashboard` to see what to do next."))
			return nil
		},
	}

	cmd.Flags().Float64Var(&accuracy, "accuracy", 0, "Lesson accuracy, 0-100")
	cmd.Flags().StringSliceVar(&misconceptions, "misconception", nil, "Misconception tag (repeatable)")
	cmd.Flags().StringVar(&title, "title", "", "Lesson title when the catalog does not know it")
	return cmd
}
