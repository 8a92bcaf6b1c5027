package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/plan"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show today's micro-plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showPlan(cmd, app)
		},
	}

	cmd.AddCommand(
		newPlanStatusCmd(app, "done", domain.TaskDone, "Mark a task done (again to undo)"),
		newPlanStatusCmd(app, "skip", domain.TaskSkipped, "Skip a task (again to undo)"),
		newPlanStatusCmd(app, "reset", domain.TaskPending, "Put a task back to pending"),
	)
	return cmd
}

func showPlan(cmd *cobra.Command, app *App) error {
	s, err := app.session(cmd.Context())
	if err != nil {
		return err
	}
	day, tasks, err := s.Plan(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlan(day, tasks, countDone(tasks)))
	return nil
}

func newPlanStatusCmd(app *App, use string, status domain.TaskStatus, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task id or number>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.session(ctx)
			if err != nil {
				return err
			}
			task, err := resolveTask(ctx, s, args[0])
			if err != nil {
				return err
			}
			result, err := s.ToggleTask(ctx, task.ID, status)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n",
				formatter.TaskStatusIcon(result), task.Label, formatter.Dim("("+string(result)+")"))
			return showPlan(cmd, app)
		},
	}
}

// resolveTask accepts either a task id or its 1-based position in the plan.
func resolveTask(ctx context.Context, s *service.StudentSession, ref string) (service.TaskView, error) {
	_, tasks, err := s.Plan(ctx)
	if err != nil {
		return service.TaskView{}, err
	}
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
	}
	if n, convErr := strconv.Atoi(ref); convErr == nil && n >= 1 && n <= len(tasks) {
		return tasks[n-1], nil
	}
	return service.TaskView{}, fmt.Errorf("%w: %s", plan.ErrUnknownTask, ref)
}

func countDone(tasks []service.TaskView) int {
	n := 0
	for _, t := range tasks {
		if t.Status == domain.TaskDone {
			n++
		}
	}
	return n
}
