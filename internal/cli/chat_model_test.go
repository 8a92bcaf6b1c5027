package cli

import (
	"context"
	"testing"

	"github.com/alexanderramin/orbit/internal/teatest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatDriver(t *testing.T, prefill, lessonRef string) (*teatest.Driver, *chatModel) {
	t.Helper()
	app := testApp(t)
	ctx := context.Background()
	s, err := app.session(ctx)
	require.NoError(t, err)

	m := newChatModel(ctx, s, "", prefill, lessonRef)
	d := teatest.New(t, m, teatest.WithSize(100, 30))
	return d, m
}

func TestChatModel_SendShowsFallbackReply(t *testing.T) {
	d, m := newChatDriver(t, "", "")

	d.Submit("how do I add fractions?")

	view := d.View()
	assert.Contains(t, view, "You: how do I add fractions?")
	assert.Contains(t, view, "denominators")
	assert.False(t, m.waiting)
	assert.NotEmpty(t, m.sessionID, "the first reply pins the conversation")
}

func TestChatModel_ReusesConversation(t *testing.T) {
	d, m := newChatDriver(t, "", "")

	d.Submit("hello")
	first := m.sessionID
	d.Submit("I'm stuck on fractions")
	assert.Equal(t, first, m.sessionID)

	tutorSession, ok := m.session.Tutor(first)
	require.True(t, ok)
	assert.Len(t, tutorSession.Transcript(), 4)
}

func TestChatModel_GuardrailExplainerThenDismiss(t *testing.T) {
	d, m := newChatDriver(t, "", "")

	d.Submit("call me at 555-123-4567")
	view := d.View()
	assert.Contains(t, view, "personal details")
	assert.True(t, m.explainerShown)
	assert.Contains(t, view, "hide safety tips")

	d.Key(tea.KeyCtrlX)
	assert.False(t, m.explainerShown)
	assert.Contains(t, d.View(), "Only short reminders")
}

func TestChatModel_ScaffoldKeyOnEmptyInput(t *testing.T) {
	d, _ := newChatDriver(t, "", "L-1")

	d.Key(tea.KeyCtrlT)
	assert.Contains(t, d.View(), "You: Can I have a hint?")
}

func TestChatModel_PrefillAndLessonBanner(t *testing.T) {
	d, m := newChatDriver(t, "Can you help me practice equivalence?", "L-1")

	assert.Contains(t, d.View(), "Lesson L-1.")
	assert.Equal(t, "Can you help me practice equivalence?", m.input.Value())

	d.Key(tea.KeyEnter)
	assert.Contains(t, d.View(), "You: Can you help me practice equivalence?")
	assert.Empty(t, m.input.Value())
}

func TestChatModel_EscQuits(t *testing.T) {
	d, _ := newChatDriver(t, "", "")

	d.Key(tea.KeyEsc)
	assert.True(t, d.Quitting)
	assert.Empty(t, d.View())
}
