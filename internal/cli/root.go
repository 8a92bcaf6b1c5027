package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/orbit/internal/service"
	"github.com/spf13/cobra"
)

// App holds what CLI commands need. StudentID is bound to the persistent
// --student flag.
type App struct {
	Engine         *service.Engine
	DefaultStudent string
	Addr           string
	Logger         *slog.Logger
	Now            func() time.Time

	// IsInteractive reports whether stdin is a terminal. Nil means never.
	IsInteractive func() bool

	StudentID string
}

// NewRootCmd creates the top-level "orbit" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "orbit",
		Short:         "Daily micro-plan, streaks, and a guarded study tutor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&app.StudentID, "student", "s", "", "Student id (defaults to ORBIT_STUDENT)")

	root.AddCommand(
		newPlanCmd(app),
		newLessonCmd(app),
		newDashboardCmd(app),
		newCelebrateCmd(app),
		newNudgeCmd(app),
		newTutorCmd(app),
		newProfileCmd(app),
		newStudyModeCmd(app),
		newServeCmd(app),
		newSignOutCmd(app),
	)

	return root
}

func (a *App) student() string {
	if id := strings.TrimSpace(a.StudentID); id != "" {
		return id
	}
	return a.DefaultStudent
}

// session opens the student's session for the current command.
func (a *App) session(ctx context.Context) (*service.StudentSession, error) {
	id := a.student()
	if id == "" {
		return nil, fmt.Errorf("%w: pass --student or set ORBIT_STUDENT", service.ErrStudentIDRequired)
	}
	return a.Engine.Open(ctx, id)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}
