package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alexanderramin/orbit/internal/contract"
	"github.com/alexanderramin/orbit/internal/db"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/repository"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/alexanderramin/orbit/internal/store"
	"github.com/alexanderramin/orbit/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	dash *contract.Dashboard
}

func (s stubSource) Fetch(_ context.Context, studentID string) (*contract.Dashboard, error) {
	d := *s.dash
	d.StudentID = studentID
	return &d, nil
}

func cliDashboard() *contract.Dashboard {
	d := contract.EmptyDashboard("")
	d.Plan = []contract.PlanItem{
		{ID: "frac-warmup", Title: "Fractions warm-up", Minutes: 8, Kind: domain.TaskReview, Subject: "math", LessonRef: "L-1"},
		{ID: "read-ch3", Title: "Read chapter 3", Minutes: 12, Kind: domain.TaskNew, Subject: "reading"},
	}
	d.Lessons = []contract.LessonMeta{{Ref: "L-1", Title: "Equivalent fractions", Subject: "math", Concept: "equivalence"}}
	d.Stats = contract.Stats{Level: 1}
	return d
}

// testApp wires a full App on an in-memory database with no LLM.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	clock := testutil.NewClock(testutil.Day(2026, time.April, 6))

	engine := service.NewEngine(service.Deps{
		Store:    store.NewSQLiteStore(database, nil),
		Tx:       db.NewSQLiteTxRunner(database),
		Content:  stubSource{dash: cliDashboard()},
		Profiles: repository.NewSQLiteStudentProfileRepo(database),
		Now:      clock.Now,
	})
	t.Cleanup(engine.Close)

	return &App{
		Engine:         engine,
		DefaultStudent: "stu-cli",
		Addr:           ":0",
		Now:            clock.Now,
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestPlanCmd_ShowsTasks(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "plan")
	require.NoError(t, err)
	assert.Contains(t, out, "Today's plan")
	assert.Contains(t, out, "2026-04-06")
	assert.Contains(t, out, "Fractions warm-up")
	assert.Contains(t, out, "Read chapter 3")
}

func TestPlanDoneCmd_TogglesByPosition(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "plan", "done", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Read chapter 3")
	assert.Contains(t, out, "(done)")

	out, err = executeCmd(t, app, "plan", "done", "read-ch3")
	require.NoError(t, err)
	assert.Contains(t, out, "(pending)", "second done toggles back")
}

func TestPlanDoneCmd_UnknownTask(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "plan", "done", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in today's plan")
}

func TestLessonThenDashboard_ShowsNudgeOnce(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "lesson", "complete", "L-1", "--accuracy", "60", "--misconception", "frac.equiv")
	require.NoError(t, err)
	assert.Contains(t, out, "Lesson recorded")

	out, err = executeCmd(t, app, "dashboard", "--json")
	require.NoError(t, err)

	var view service.DashboardView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.NotNil(t, view.Nudge)
	assert.Equal(t, domain.NudgeTryAgain, view.Nudge.Type)
	require.NotNil(t, view.Flash)
	assert.Equal(t, 1, view.Done, "the lesson's task is marked done")

	out, err = executeCmd(t, app, "nudge", "dismiss", view.Nudge.ID)
	require.NoError(t, err)
	assert.Contains(t, out, view.Nudge.ID)

	out, err = executeCmd(t, app, "dashboard", "--json")
	require.NoError(t, err)
	var again service.DashboardView
	require.NoError(t, json.Unmarshal([]byte(out), &again))
	assert.Nil(t, again.Nudge)
	assert.Nil(t, again.Flash, "the flash was consumed by the first render")
}

func TestDashboardCmd_StreakAfterFullPlan(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "plan", "done", "1")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "plan", "done", "2")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "1 day streak")
}

func TestTutorAskCmd_GuardrailBlocks(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "tutor", "ask", "email me at x@y.com")
	require.NoError(t, err)
	assert.Contains(t, out, "personal details")
	assert.Contains(t, out, "WHY CAN'T I SEND THAT?")

	out, err = executeCmd(t, app, "tutor", "ask", "my number is 555-123-4567")
	require.NoError(t, err)
	assert.Contains(t, out, "personal details")
	assert.NotContains(t, out, "WHY CAN'T I SEND THAT?", "explainer is throttled")
}

func TestTutorAskCmd_FallbackWithoutLLM(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "tutor", "ask", "how do fractions work?")
	require.NoError(t, err)
	assert.Contains(t, out, "denominators")
	assert.Contains(t, out, "offline reply")
}

func TestTutorAskCmd_RejectsUnknownScaffold(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "tutor", "ask", "--scaffold", "magic", "help")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scaffold")
}

func TestTutorChatCmd_NeedsTerminal(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "tutor", "chat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a terminal")
}

func TestProfileEditCmd_ByFlags(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "profile", "edit", "--intensity", "light", "--intent", "catch_up", "--lesson-only")
	require.NoError(t, err)
	assert.Contains(t, out, "Light")
	assert.Contains(t, out, "Catch up")

	out, err = executeCmd(t, app, "profile")
	require.NoError(t, err)
	assert.Contains(t, out, "Light")
}

func TestProfileEditCmd_RejectsBadIntensity(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "profile", "edit", "--intensity", "extreme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "light, steady, intense")
}

func TestProfileEditCmd_NoChangesNonInteractive(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "profile", "edit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no changes")
}

func TestStudyModeCmd(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "study-mode")
	require.NoError(t, err)
	assert.Contains(t, out, "off")

	out, err = executeCmd(t, app, "study-mode", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Study mode on")

	_, err = executeCmd(t, app, "study-mode", "maybe")
	require.Error(t, err)
}

func TestCelebrateCmd_EmptyQueue(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "celebrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to celebrate")

	out, err = executeCmd(t, app, "celebrate", "dismiss")
	require.NoError(t, err)
	assert.Contains(t, out, "No celebration")
}

func TestSignOutCmd_RequiresConfirmation(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "sign-out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")

	_, err = executeCmd(t, app, "plan", "done", "1")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "sign-out", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = executeCmd(t, app, "dashboard", "--json")
	require.NoError(t, err)
	var view service.DashboardView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, 0, view.Done, "progress was wiped")
	assert.Len(t, view.Tasks, 2, "a fresh plan is seeded")
}

func TestStudentFlag_OverridesDefault(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "--student", "other", "plan", "done", "1")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "dashboard", "--json")
	require.NoError(t, err)
	var view service.DashboardView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "stu-cli", view.StudentID)
	assert.Equal(t, 0, view.Done)
}
