package cli

import (
	"fmt"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show pacing preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProfile(s.Profile()))
			return nil
		},
	}
	cmd.AddCommand(newProfileEditCmd(app))
	return cmd
}

func newProfileEditCmd(app *App) *cobra.Command {
	intensity := newChoiceFlag("intensity", "light", "steady", "intense")
	intent := newChoiceFlag("intent", "catch_up", "keep_pace", "get_ahead", "explore")
	var lessonOnly bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change weekly intensity, intent, and lesson-only mode",
		Long: "Opens a form on a terminal. With --intensity, --intent, or --lesson-only\n" +
			"the values are applied directly.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.session(ctx)
			if err != nil {
				return err
			}

			p := s.Profile()
			in := newProfileInput(p)
			flags := cmd.Flags()
			byFlags := flags.Changed("intensity") || flags.Changed("intent") || flags.Changed("lesson-only")
			switch {
			case byFlags:
				if flags.Changed("intensity") {
					in.intensity = intensity.String()
				}
				if flags.Changed("intent") {
					in.intent = intent.String()
				}
				if flags.Changed("lesson-only") {
					in.lessonOnly = lessonOnly
				}
			case app.interactive():
				if err := profileForm(in).Run(); err != nil {
					return err
				}
			default:
				return fmt.Errorf("no changes: pass --intensity, --intent, or --lesson-only")
			}

			if err := in.apply(&p); err != nil {
				return err
			}
			if err := s.UpdateProfile(ctx, p); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProfile(s.Profile()))
			return nil
		},
	}

	cmd.Flags().Var(intensity, "intensity", "light, steady, or intense")
	cmd.Flags().Var(intent, "intent", "catch_up, keep_pace, get_ahead, or explore")
	cmd.Flags().BoolVar(&lessonOnly, "lesson-only", false, "Keep the tutor on the current lesson")
	return cmd
}

func newStudyModeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "study-mode [on|off]",
		Short:     "Show or toggle focused study mode",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.session(ctx)
			if err != nil {
				return err
			}

			expiresAt, active := s.StudyMode(ctx)
			if len(args) == 1 {
				expiresAt, active = s.SetStudyMode(ctx, args[0] == "on")
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStudyMode(expiresAt, active, app.now()))
			return nil
		},
	}
}
