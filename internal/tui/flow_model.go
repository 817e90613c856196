package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/sequestra/internal/carbon"
	"github.com/rshade/sequestra/internal/flow"
	"github.com/rshade/sequestra/internal/session"
)

// FlowState represents the current state of the question-flow TUI.
type FlowState int

const (
	// FlowStateAsking indicates a question is on screen.
	FlowStateAsking FlowState = iota
	// FlowStateResult indicates the estimate is on screen.
	FlowStateResult
	// FlowStateQuitting indicates the application is exiting.
	FlowStateQuitting
)

// Default dimensions and input limits.
const (
	flowDefaultWidth  = 80
	flowDefaultHeight = 24
	answerCharLimit   = 64
	answerInputWidth  = 30
)

// FlowModel is the Bubble Tea model that walks a session through its catalog.
//
// All session calls happen on the Update goroutine; the session itself is not
// safe for concurrent use.
type FlowModel struct {
	ctx  context.Context
	sess *session.Session
	opts ViewOptions

	input textinput.Model
	state FlowState

	// notice is a host-level message such as a failed reset.
	notice string

	width  int
	height int
}

// NewFlowModel creates a FlowModel over sess.
func NewFlowModel(ctx context.Context, sess *session.Session, opts ViewOptions) *FlowModel {
	ti := textinput.New()
	ti.CharLimit = answerCharLimit
	ti.Width = answerInputWidth
	ti.Focus()

	m := &FlowModel{
		ctx:    ctx,
		sess:   sess,
		opts:   opts,
		input:  ti,
		state:  FlowStateAsking,
		width:  flowDefaultWidth,
		height: flowDefaultHeight,
	}
	m.syncInput()
	return m
}

// State returns the current view state.
func (m *FlowModel) State() FlowState {
	return m.state
}

// Init initializes the model.
func (m *FlowModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model state.
func (m *FlowModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKeyMsg processes keyboard input.
//
//nolint:exhaustive // Only handling relevant key types for flow navigation.
func (m *FlowModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.state = FlowStateQuitting
		return m, tea.Quit

	case tea.KeyCtrlR:
		m.reset()
		return m, nil

	case tea.KeyEsc, tea.KeyCtrlB:
		m.back()
		return m, nil
	}

	if m.state == FlowStateResult {
		if msg.Type == tea.KeyRunes && string(msg.Runes) == "q" {
			m.state = FlowStateQuitting
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		m.submit()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit answers the current question. Accepting the terminal question
// triggers the calculation.
func (m *FlowModel) submit() {
	m.notice = ""
	q := m.sess.Current()
	if !m.sess.Submit(m.ctx, m.input.Value()) {
		return
	}
	if !m.sess.Flow().Catalog().Terminal(q.ID) {
		m.syncInput()
		return
	}
	if _, err := m.sess.Calculate(m.ctx); err != nil {
		m.syncInput()
		return
	}
	m.state = FlowStateResult
	m.input.Blur()
}

func (m *FlowModel) back() {
	m.notice = ""
	m.sess.Back()
	m.state = FlowStateAsking
	m.input.Focus()
	m.syncInput()
}

func (m *FlowModel) reset() {
	if err := m.sess.Reset(m.ctx); err != nil {
		m.notice = fmt.Sprintf("Could not reset, the answer store is unavailable: %v", err)
		return
	}
	m.notice = ""
	m.state = FlowStateAsking
	m.input.Focus()
	m.syncInput()
}

// syncInput loads the stored answer of the current question into the input.
func (m *FlowModel) syncInput() {
	m.input.SetValue(m.sess.CurrentAnswer())
	m.input.CursorEnd()
	q := m.sess.Current()
	m.input.Placeholder = ""
	if q.Unit != "" {
		m.input.Placeholder = q.Unit
	}
}

// Result returns the estimate on screen, or nil.
func (m *FlowModel) Result() *carbon.Result {
	return m.sess.Result()
}

// View renders the current view.
func (m *FlowModel) View() string {
	switch m.state {
	case FlowStateQuitting:
		return ""

	case FlowStateResult:
		var sb strings.Builder
		sb.WriteString(RenderResult(m.sess.Result(), m.opts, m.width))
		sb.WriteString("\n")
		m.renderNotices(&sb)
		sb.WriteString(RenderFlowHelp(true))
		return sb.String()

	case FlowStateAsking:
	}

	return m.renderQuestionView()
}

func (m *FlowModel) renderQuestionView() string {
	var sb strings.Builder

	cat := m.sess.Flow().Catalog()
	q := m.sess.Current()
	step := len(m.sess.State().Path)

	title := cat.Title
	if title == "" {
		title = cat.Name
	}
	sb.WriteString(RenderFlowHeader(title, step, cat.Len()))
	sb.WriteString("\n\n")

	sb.WriteString(RenderQuestion(q))
	sb.WriteString("\n")

	if q.Kind != flow.KindInformation {
		sb.WriteString(LabelStyle.Render("> "))
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
	} else {
		sb.WriteString(SubtleStyle.Render("Press Enter to continue"))
		sb.WriteString("\n")
	}

	if msg := m.sess.LastError(); msg != "" {
		sb.WriteString("\n")
		sb.WriteString(ErrorStyle.Render(IconCross + " " + msg))
		sb.WriteString("\n")
	}
	m.renderNotices(&sb)

	sb.WriteString("\n")
	sb.WriteString(RenderFlowHelp(false))
	return sb.String()
}

func (m *FlowModel) renderNotices(sb *strings.Builder) {
	if m.notice != "" {
		sb.WriteString(ErrorStyle.Render(m.notice))
		sb.WriteString("\n")
	}
	if m.sess.MemoryOnly() {
		sb.WriteString(WarningStyle.Render(session.MemoryOnlyNotice))
		sb.WriteString("\n")
	}
}

// RenderQuestion renders a question prompt with its options or info body.
func RenderQuestion(q flow.Question) string {
	var sb strings.Builder

	sb.WriteString(ValueStyle.Render(q.Prompt))
	if q.Unit != "" {
		sb.WriteString(SubtleStyle.Render(" (" + q.Unit + ")"))
	}
	sb.WriteString("\n")

	switch q.Kind {
	case flow.KindSelect:
		for i, o := range q.Options {
			sb.WriteString(LabelStyle.Render(fmt.Sprintf("  %d. ", i+1)))
			sb.WriteString(o)
			sb.WriteString("\n")
		}
	case flow.KindInformation:
		if q.Info != "" {
			sb.WriteString(InfoStyle.Render(IconInfo + " " + q.Info))
			sb.WriteString("\n")
		}
	case flow.KindNumber:
		if q.Fraction {
			sb.WriteString(SubtleStyle.Render("  a fraction between 0 and 1"))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
