package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pagetalk/pagetalk/internal/chat"
)

// AskFunc answers one question; the chat view stays agnostic of how.
type AskFunc func(ctx context.Context, question string) (*chat.Answer, error)

// exchange is one question/answer pair in the transcript.
type exchange struct {
	question   string
	answer     string
	restricted bool
	err        error
}

// answerMsg delivers an async answer back into the update loop.
type answerMsg struct {
	question string
	answer   *chat.Answer
	err      error
}

// chatModel is the bubbletea model for the interactive chat view.
type chatModel struct {
	docID   string
	ask     AskFunc
	ctx     context.Context
	input   textinput.Model
	spin    spinner.Model
	history []exchange
	waiting bool
	width   int
}

func newChatModel(ctx context.Context, docID string, ask AskFunc) *chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about the document..."
	ti.Focus()
	ti.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorAccent))

	return &chatModel{
		docID: docID,
		ask:   ask,
		ctx:   ctx,
		input: ti,
		spin:  sp,
	}
}

// NewChatProgram builds the interactive chat program for one document.
func NewChatProgram(ctx context.Context, docID string, ask AskFunc) *tea.Program {
	return tea.NewProgram(newChatModel(ctx, docID, ask))
}

func (m *chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			return m, tea.Batch(m.spin.Tick, m.askCmd(question))
		}

	case answerMsg:
		m.waiting = false
		ex := exchange{question: msg.question, err: msg.err}
		if msg.answer != nil {
			ex.answer = msg.answer.Text
			ex.restricted = msg.answer.Restricted
		}
		m.history = append(m.history, ex)
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// askCmd runs the ask call off the update loop.
func (m *chatModel) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		ans, err := m.ask(m.ctx, question)
		return answerMsg{question: question, answer: ans, err: err}
	}
}

func (m *chatModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("pagetalk — %s", m.docID)))
	b.WriteString("\n\n")

	for _, ex := range m.history {
		b.WriteString(userStyle.Render("you: "))
		b.WriteString(ex.question)
		b.WriteString("\n")
		switch {
		case ex.err != nil:
			b.WriteString(errorStyle.Render(ex.err.Error()))
		case ex.restricted:
			b.WriteString(restrictedStyle.Render(ex.answer))
		default:
			b.WriteString(answerStyle.Render(ex.answer))
		}
		b.WriteString("\n\n")
	}

	if m.waiting {
		b.WriteString(m.spin.View())
		b.WriteString(" thinking...\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter to ask · esc to quit"))
	b.WriteString("\n")

	return b.String()
}
