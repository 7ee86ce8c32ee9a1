// Package tui is the interactive terminal interface: a query prompt above a
// scrollable result list with matched terms highlighted.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wesm/askvault/internal/logging"
	"github.com/wesm/askvault/internal/nlp"
	"github.com/wesm/askvault/internal/query"
	"github.com/wesm/askvault/internal/render"
)

// EngineSource yields the current engine; see query.Holder.
type EngineSource interface {
	Engine() *query.Engine
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// chrome is the number of lines used by the title, prompt, status and
// help rows.
const chrome = 5

// Model is the bubbletea model.
type Model struct {
	src    EngineSource
	logger *slog.Logger

	input    textinput.Model
	results  viewport.Model
	outcome  *query.Outcome
	width    int
	height   int
	quitting bool
}

// New returns a model asking queries of src.
func New(src EngineSource, logger *slog.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "emails from john.doe last week"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	return Model{
		src:     src,
		logger:  logging.Default(logger).With("component", "tui"),
		input:   ti,
		results: viewport.New(80, 20),
		width:   80,
		height:  20 + chrome,
	}
}

// Run starts the interface and blocks until the user quits or ctx ends.
func Run(ctx context.Context, src EngineSource, logger *slog.Logger) error {
	p := tea.NewProgram(New(src, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		m.results.Width = msg.Width
		m.results.Height = max(msg.Height-chrome, 1)
		m.results.SetContent(m.renderResults())
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.ask(m.input.Value())
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.results, cmd = m.results.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) ask(text string) {
	if strings.TrimSpace(text) == "" {
		m.outcome = nil
		m.results.SetContent("")
		return
	}
	m.outcome = m.src.Engine().Ask(text)
	m.logger.Debug("query", "text", text, "results", m.outcome.Count())
	m.results.SetContent(m.renderResults())
	m.results.GotoTop()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("askvault"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(render.Truncate(m.status(), m.width)))
	b.WriteString("\n")
	b.WriteString(m.results.View())
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("enter: ask  ↑/↓ pgup/pgdn: scroll  esc: quit"))
	return b.String()
}

func (m Model) status() string {
	o := m.outcome
	if o == nil {
		return "Type a question and press enter."
	}
	if o.Count() == 0 {
		return "No matching results found."
	}
	s := fmt.Sprintf("%d result(s) · %s · %s", o.Count(), o.Kind, o.Path)
	if !o.Dates.IsNone() {
		s += " · " + o.Dates.String()
	}
	return s
}

func (m Model) renderResults() string {
	o := m.outcome
	if o == nil {
		return ""
	}
	if o.CompileError != "" && o.Count() == 0 {
		return errorStyle.Render(o.CompileError)
	}
	terms := highlightTerms(o)
	lines := make([]string, 0, o.Count())
	for _, r := range o.Records {
		lines = append(lines, render.TruncateStyled(render.Highlight(render.Summary(r), terms), m.width))
	}
	return strings.Join(lines, "\n")
}

// highlightTerms collects what the outcome matched on: role filter values,
// entity labels and search terms. Boolean operators are not highlighted.
func highlightTerms(o *query.Outcome) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, s)
	}
	for _, p := range o.Filters {
		add(p)
	}
	for _, c := range nlp.Categories {
		for _, l := range o.Entities[c] {
			add(l)
		}
	}
	for _, t := range o.Terms {
		add(t)
	}
	return out
}
