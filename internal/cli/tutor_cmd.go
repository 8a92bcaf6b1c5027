package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/spf13/cobra"
)

func newTutorCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tutor",
		Short: "Talk to the study tutor",
	}
	cmd.AddCommand(newTutorAskCmd(app), newTutorChatCmd(app), newTutorExplainerCmd(app))
	return cmd
}

func newTutorAskCmd(app *App) *cobra.Command {
	var scaffold string
	var lessonRef string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the tutor one question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			mode := domain.ParseScaffold(scaffold)
			if scaffold != "" && mode == domain.ScaffoldNone {
				return fmt.Errorf("unknown scaffold %q (hint, break_down, another_way)", scaffold)
			}

			s, err := app.session(ctx)
			if err != nil {
				return err
			}

			stop := func() {}
			if app.interactive() {
				stop = formatter.StartSpinner(cmd.ErrOrStderr(), s.Persona().Name+" is thinking...")
			}
			res, err := s.Ask(ctx, service.AskRequest{
				Text:      strings.Join(args, " "),
				Scaffold:  mode,
				LessonRef: lessonRef,
			})
			stop()
			if err != nil {
				return err
			}
			if res.SessionID != "" {
				defer func() { _ = s.CloseTutor(res.SessionID) }()
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatReply(s.Persona().Name, res.Reply))
			return nil
		},
	}

	cmd.Flags().StringVar(&scaffold, "scaffold", "", "Help style: hint, break_down, another_way")
	cmd.Flags().StringVar(&lessonRef, "lesson", "", "Lesson to ground the answer in")
	return cmd
}

func newTutorChatCmd(app *App) *cobra.Command {
	var lessonRef string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive tutor conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("tutor chat needs a terminal; use `orbit tutor ask` instead")
			}
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), app, s, "", "", lessonRef)
		},
	}

	cmd.Flags().StringVar(&lessonRef, "lesson", "", "Lesson to ground the conversation in")
	return cmd
}

func newTutorExplainerCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "hide-explainer",
		Short: "Stop showing the full safety explainer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.session(cmd.Context())
			if err != nil {
				return err
			}
			s.DismissExplainer(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Only short safety reminders will be shown from now on."))
			return nil
		},
	}
}
