package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/orbit/internal/cli/formatter"
	"github.com/alexanderramin/orbit/internal/domain"
	"github.com/alexanderramin/orbit/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type chatKeyMap struct {
	Send             key.Binding
	Hint             key.Binding
	BreakDown        key.Binding
	AnotherWay       key.Binding
	DismissExplainer key.Binding
	Quit             key.Binding
}

func newChatKeyMap() chatKeyMap {
	return chatKeyMap{
		Send:             key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Hint:             key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "hint")),
		BreakDown:        key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "break it down")),
		AnotherWay:       key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "another way")),
		DismissExplainer: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "hide safety tips")),
		Quit:             key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.Hint, k.BreakDown, k.AnotherWay, k.Quit}
}

// Default texts for scaffold keys pressed on an empty input.
var scaffoldDefaults = map[domain.Scaffold]string{
	domain.ScaffoldHint:       "Can I have a hint?",
	domain.ScaffoldBreakDown:  "Can you break it down into steps?",
	domain.ScaffoldAnotherWay: "Can you explain it another way?",
}

type chatReplyMsg struct {
	res service.AskResult
	err error
}

// chatModel is the interactive tutor conversation.
type chatModel struct {
	ctx       context.Context
	session   *service.StudentSession
	persona   string
	sessionID string
	lessonRef string

	input   textinput.Model
	spinner spinner.Model
	keys    chatKeyMap

	lines          []string
	waiting        bool
	explainerShown bool
	quitting       bool
}

func newChatModel(ctx context.Context, s *service.StudentSession, sessionID, prefill, lessonRef string) *chatModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 1000
	ti.Placeholder = "Ask about your lesson"
	if prefill != "" {
		ti.SetValue(prefill)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = formatter.StylePurple

	persona := s.Persona().Name
	welcome := fmt.Sprintf("Chatting with %s.", domain.CoalesceStr(persona, "your tutor"))
	if lessonRef != "" {
		welcome += " Lesson " + lessonRef + "."
	}

	return &chatModel{
		ctx:       ctx,
		session:   s,
		persona:   persona,
		sessionID: sessionID,
		lessonRef: lessonRef,
		input:     ti,
		spinner:   sp,
		keys:      newChatKeyMap(),
		lines:     []string{formatter.Dim(welcome)},
	}
}

func (m *chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case chatReplyMsg:
		m.waiting = false
		if msg.res.SessionID != "" {
			m.sessionID = msg.res.SessionID
		}
		if msg.err != nil {
			m.lines = append(m.lines, formatter.StyleRed.Render("Error: "+msg.err.Error()))
			return m, nil
		}
		m.lines = append(m.lines, formatter.FormatReply(m.persona, msg.res.Reply))
		if msg.res.Reply.Explainer != "" {
			m.explainerShown = true
		}
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.waiting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Send):
		return m.send(domain.ScaffoldNone)
	case key.Matches(msg, m.keys.Hint):
		return m.send(domain.ScaffoldHint)
	case key.Matches(msg, m.keys.BreakDown):
		return m.send(domain.ScaffoldBreakDown)
	case key.Matches(msg, m.keys.AnotherWay):
		return m.send(domain.ScaffoldAnotherWay)
	case key.Matches(msg, m.keys.DismissExplainer) && m.explainerShown:
		m.session.DismissExplainer(m.ctx)
		m.explainerShown = false
		m.lines = append(m.lines, formatter.Dim("Got it. Only short reminders from now on."))
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *chatModel) send(scaffold domain.Scaffold) (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		text = scaffoldDefaults[scaffold]
	}
	if text == "" {
		return m, nil
	}
	m.input.Reset()
	m.lines = append(m.lines, formatter.FormatUserTurn(text))
	m.waiting = true

	req := service.AskRequest{
		SessionID: m.sessionID,
		Text:      text,
		Scaffold:  scaffold,
		LessonRef: m.lessonRef,
	}
	ask := func() tea.Msg {
		res, err := m.session.Ask(m.ctx, req)
		return chatReplyMsg{res: res, err: err}
	}
	return m, tea.Batch(ask, m.spinner.Tick)
}

func (m *chatModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.waiting {
		b.WriteString(m.spinner.View() + " " + formatter.Dim(domain.CoalesceStr(m.persona, "Tutor")+" is typing...") + "\n")
	}
	b.WriteString(formatter.StylePurple.Render("you") + formatter.Dim("> ") + m.input.View() + "\n")
	b.WriteString(m.helpLine())
	return b.String()
}

func (m *chatModel) helpLine() string {
	bindings := m.keys.ShortHelp()
	if m.explainerShown {
		bindings = append(bindings, m.keys.DismissExplainer)
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return formatter.Dim(strings.Join(parts, " · "))
}

// runChat runs the chat TUI until the student quits.
func runChat(ctx context.Context, app *App, s *service.StudentSession, sessionID, prefill, lessonRef string) error {
	m := newChatModel(ctx, s, sessionID, prefill, lessonRef)
	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running tutor chat: %w", err)
	}
	if sessionID := m.sessionID; sessionID != "" {
		if err := s.CloseTutor(sessionID); err != nil {
			app.logger().DebugContext(ctx, "tutor_close_failed", "session_id", sessionID, "error", err)
		}
	}
	return nil
}
