package cli

import (
	"fmt"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newCelebrateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "celebrate",
		Short: "Show pending celebrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			queue, err := s.Celebrations(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(queue) == 0 {
				fmt.Fprintln(out, formatter.Dim("Nothing to celebrate yet. Keep going!"))
				return nil
			}
			fmt.Fprintln(out, formatter.FormatCelebration(queue[0], len(queue)-1))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dismiss",
		Short: "Dismiss the current celebration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.session(ctx)
			if err != nil {
				return err
			}
			if _, err := s.Celebrations(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			m, ok := s.DismissCelebration(ctx)
			if !ok {
				fmt.Fprintln(out, formatter.Dim("No celebration to dismiss."))
				return nil
			}
			fmt.Fprintf(out, "%s %s\n", formatter.Dim("Dismissed:"), m.Title)
			return nil
		},
	})
	return cmd
}

func newNudgeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nudge",
		Short: "Manage post-lesson nudges",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "dismiss <nudge id>",
		Short: "Never show this nudge again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.session(ctx)
			if err != nil {
				return err
			}
			s.DismissNudge(ctx, args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.Dim("Dismissed nudge"), args[0])
			return nil
		},
	})
	return cmd
}
