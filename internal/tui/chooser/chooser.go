// Package chooser is the terminal screen that asks the user which remote
// series a set of files belongs to.
package chooser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Digital-Shane/scrappy/internal/provider"
	"github.com/Digital-Shane/scrappy/internal/similarity"
	"github.com/Digital-Shane/scrappy/internal/tui/theme"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Rows outside the list: header, filter line, status bar.
const chromeHeight = 3

// Model lists the candidates of one search. Typing filters the list by name or
// ID, enter picks the highlighted row and esc declines every candidate.
type Model struct {
	query      string
	candidates []provider.Candidate
	visible    []int
	cursor     int

	filter textinput.Model
	list   viewport.Model
	theme  theme.Theme

	width  int
	height int

	chosen *provider.Candidate
	done   bool
}

// Option configures a Model during construction.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) {
		m.theme = th
	}
}

// New returns a model offering candidates for query.
func New(query string, candidates []provider.Candidate, opts ...Option) *Model {
	m := &Model{
		query:      query,
		candidates: candidates,
		width:      80,
		height:     24,
	}
	for _, opt := range append([]Option{WithTheme(theme.Default())}, opts...) {
		opt(m)
	}

	m.filter = textinput.New()
	m.filter.Prompt = "Filter: "
	m.filter.PromptStyle = m.theme.MutedStyle()
	m.filter.TextStyle = lipgloss.NewStyle().Foreground(m.theme.Colors().Primary)
	m.filter.Focus()

	m.list = viewport.New(m.width, m.listHeight())
	m.applyFilter()
	return m
}

// Choice returns the picked candidate, false when the user declined.
func (m *Model) Choice() (provider.Candidate, bool) {
	if m.chosen == nil {
		return provider.Candidate{}, false
	}
	return *m.chosen, true
}

// Done reports whether the user has answered.
func (m *Model) Done() bool {
	return m.done
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.Width = m.width
		m.list.Height = m.listHeight()
		m.render()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			if len(m.visible) > 0 {
				c := m.candidates[m.visible[m.cursor]]
				m.chosen = &c
			}
			m.done = true
			return m, tea.Quit
		case tea.KeyUp:
			m.move(-1)
			return m, nil
		case tea.KeyDown:
			m.move(1)
			return m, nil
		case tea.KeyPgUp:
			m.move(-m.list.Height)
			return m, nil
		case tea.KeyPgDown:
			m.move(m.list.Height)
			return m, nil
		case tea.KeyHome:
			m.move(-len(m.visible))
			return m, nil
		case tea.KeyEnd:
			m.move(len(m.visible))
			return m, nil
		}

		before := m.filter.Value()
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.applyFilter()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	header := m.theme.HeaderStyle().
		Width(m.width).
		Render(fmt.Sprintf("%s Which show is %q?", m.theme.Icon("tv"), m.query))

	status := fmt.Sprintf("%s move  enter select  esc none  %d of %d",
		m.theme.Icon("arrows"), len(m.visible), len(m.candidates))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.filter.View(),
		m.list.View(),
		m.theme.StatusBarStyle().Width(m.width).Render(status),
	)
}

func (m *Model) listHeight() int {
	if h := m.height - chromeHeight; h > 1 {
		return h
	}
	return 1
}

func (m *Model) move(delta int) {
	if len(m.visible) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	m.render()
}

// applyFilter keeps candidates whose name contains the filter text, ignoring
// case, or whose ID starts with it.
func (m *Model) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for i, c := range m.candidates {
		if needle == "" ||
			strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.HasPrefix(strconv.Itoa(c.ID), needle) {
			m.visible = append(m.visible, i)
		}
	}
	m.cursor = 0
	m.render()
}

func (m *Model) render() {
	if len(m.visible) == 0 {
		m.list.SetContent(m.theme.MutedStyle().Render("no candidate matches the filter"))
		m.list.GotoTop()
		return
	}

	rows := make([]string, len(m.visible))
	for i, idx := range m.visible {
		rows[i] = m.row(m.candidates[idx], i == m.cursor)
	}
	m.list.SetContent(strings.Join(rows, "\n"))

	if m.cursor < m.list.YOffset {
		m.list.SetYOffset(m.cursor)
	} else if m.cursor >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(m.cursor - m.list.Height + 1)
	}
}

func (m *Model) row(c provider.Candidate, selected bool) string {
	details := fmt.Sprintf(" %4s %-3s %s %4.1f %3.0f%%  #%d",
		c.Year,
		c.Language,
		m.theme.Icon("star"),
		c.Rating,
		similarity.Similarity(m.query, c.Name)*100,
		c.ID)

	nameWidth := m.width - runewidth.StringWidth(details) - 3
	if nameWidth < 10 {
		nameWidth = 10
	}
	name := runewidth.FillRight(runewidth.Truncate(c.Name, nameWidth, "…"), nameWidth)

	if selected {
		return m.theme.SelectedStyle().Render(m.theme.Icon("cursor") + " " + name + details)
	}
	return "  " + name + m.theme.MutedStyle().Render(details)
}

// Chooser asks through a terminal program. It satisfies selector.Decision.
type Chooser struct {
	in   io.Reader
	out  io.Writer
	opts []Option
}

// NewChooser returns a Chooser reading keys from in and drawing to out. Nil
// streams select the process terminal in the alternate screen.
func NewChooser(in io.Reader, out io.Writer, opts ...Option) *Chooser {
	return &Chooser{in: in, out: out, opts: opts}
}

// Choose runs the chooser until the user answers or ctx is done.
func (c *Chooser) Choose(ctx context.Context, query string, candidates []provider.Candidate) (provider.Candidate, bool, error) {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if c.in != nil {
		programOpts = append(programOpts, tea.WithInput(c.in))
	}
	if c.out != nil {
		programOpts = append(programOpts, tea.WithOutput(c.out))
	} else {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(New(query, candidates, c.opts...), programOpts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, tea.ErrProgramKilled) {
			return provider.Candidate{}, false, ctxErr
		}
		return provider.Candidate{}, false, fmt.Errorf("chooser: %w", err)
	}

	m, ok := final.(*Model)
	if !ok {
		return provider.Candidate{}, false, fmt.Errorf("chooser: unexpected model %T", final)
	}
	chosen, ok := m.Choice()
	return chosen, ok, nil
}
