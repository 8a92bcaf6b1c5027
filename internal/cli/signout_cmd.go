package cli

import (
	"fmt"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSignOutCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "sign-out",
		Short: "Delete every locally stored record for the student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := app.student()
			if !yes {
				if !app.interactive() {
					return fmt.Errorf("sign-out deletes local progress for %q; pass --yes to confirm", id)
				}
				confirmed := false
				if err := confirmForm(fmt.Sprintf("Delete all local progress for %s?", id), &confirmed).Run(); err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
					return nil
				}
			}

			if _, err := app.session(cmd.Context()); err != nil {
				return err
			}
			if err := app.Engine.SignOut(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔ Signed out"), id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation")
	return cmd
}
