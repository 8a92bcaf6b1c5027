package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/spf13/cobra"
)

func newDashboardCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show plan, streak, progress, nudges, and celebrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.session(ctx)
			if err != nil {
				return err
			}
			view, err := s.Render(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			}

			fmt.Fprint(out, formatter.FormatDashboard(view))
			if !app.interactive() {
				return nil
			}
			return runDashboardPrompts(ctx, app, s, view, out)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dashboard as JSON")
	return cmd
}

// runDashboardPrompts walks the celebration queue and offers the nudge
// actions. Only used on a terminal.
func runDashboardPrompts(ctx context.Context, app *App, s *service.StudentSession, view *service.DashboardView, out io.Writer) error {
	for range view.Celebrations {
		ack := true
		if err := confirmForm("Dismiss this celebration?", &ack).Run(); err != nil {
			return err
		}
		if !ack {
			break
		}
		if _, ok := s.DismissCelebration(ctx); !ok {
			break
		}
		next, err := s.Celebrations(ctx)
		if err != nil {
			return err
		}
		if len(next) == 0 {
			break
		}
		fmt.Fprintln(out, formatter.FormatCelebration(next[0], len(next)-1))
	}

	if view.Nudge == nil {
		return nil
	}
	choice := nudgeLater
	if err := nudgeActionForm(*view.Nudge, &choice).Run(); err != nil {
		return err
	}

	switch choice {
	case nudgeDismiss:
		s.DismissNudge(ctx, view.Nudge.ID)
		fmt.Fprintln(out, formatter.Dim("Nudge dismissed."))
	case nudgeAct:
		target, err := s.ActOnNudge(ctx, view.Nudge.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", formatter.Dim("→ Open"), target)

		next, err := s.Render(ctx)
		if err != nil {
			return err
		}
		if next.Tutor == nil {
			return nil
		}
		start := true
		if err := confirmForm("Start practicing with the tutor now?", &start).Run(); err != nil {
			return err
		}
		if start {
			return runChat(ctx, app, s, next.Tutor.SessionID, next.Tutor.Prompt, lessonRefOf(next.Tutor))
		}
	}
	return nil
}

func lessonRefOf(h *service.TutorHandoff) string {
	if h == nil || h.Lesson == nil {
		return ""
	}
	return h.Lesson.Ref
}
