package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/memview/layout"
	"github.com/wippyai/memview/view"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	addrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type browserState int

const (
	stateBrowse browserState = iota
	stateEdit
)

// browser shows the rows of one member at a time. Following a pointer
// pushes the pointee; esc pops back.
type browser struct {
	err      error
	session  *session
	status   string
	stack    []view.Member
	rows     []row
	input    textinput.Model
	selected int
	state    browserState
}

func newBrowser(s *session) *browser {
	b := &browser{session: s, stack: []view.Member{s.object.Root()}}
	b.refresh()
	return b
}

func (b *browser) current() view.Member { return b.stack[len(b.stack)-1] }

// refresh re-reads the memory under the current member.
func (b *browser) refresh() {
	b.rows = collect(b.current())
	if b.selected >= len(b.rows) {
		b.selected = len(b.rows) - 1
	}
	if b.selected < 0 {
		b.selected = 0
	}
}

func (b *browser) Init() tea.Cmd { return nil }

func (b *browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}
	if b.state == stateEdit {
		return b.updateEdit(key)
	}

	switch key.String() {
	case "ctrl+c", "q":
		return b, tea.Quit

	case "up", "k":
		if b.selected > 0 {
			b.selected--
		}

	case "down", "j":
		if b.selected < len(b.rows)-1 {
			b.selected++
		}

	case "r":
		b.status, b.err = "", nil
		b.refresh()

	case "enter":
		m := b.rows[b.selected].member
		switch m.Type().Kind {
		case layout.KindPointer:
			pointee, err := m.Deref()
			if err != nil {
				b.err = err
				return b, nil
			}
			b.stack = append(b.stack, pointee)
			b.selected = 0
			b.err = nil
			b.refresh()
		case layout.KindScalar:
			b.startEdit(m)
		}

	case "e":
		m := b.rows[b.selected].member
		if m.Type().Kind == layout.KindScalar || m.Type().Kind == layout.KindPointer {
			b.startEdit(m)
		}

	case "esc", "backspace":
		if len(b.stack) > 1 {
			b.stack = b.stack[:len(b.stack)-1]
			b.selected = 0
			b.err = nil
			b.refresh()
		}
	}
	return b, nil
}

func (b *browser) startEdit(m view.Member) {
	ti := textinput.New()
	ti.Prompt = m.Path() + " = "
	ti.Placeholder = m.Type().String()
	ti.SetValue(b.rows[b.selected].value)
	ti.Width = 40
	ti.Focus()
	b.input = ti
	b.state = stateEdit
}

func (b *browser) updateEdit(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c":
		return b, tea.Quit
	case "esc":
		b.state = stateBrowse
		return b, nil
	case "enter":
		m := b.rows[b.selected].member
		b.state = stateBrowse
		v, err := parseValue(m.Type(), strings.TrimSpace(b.input.Value()))
		if err == nil {
			err = m.Set(v)
		}
		b.err = err
		if err == nil {
			b.status = "wrote " + m.Path()
		}
		b.refresh()
		return b, nil
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(key)
	return b, cmd
}

func (b *browser) View() string {
	var s strings.Builder

	cur := b.current()
	s.WriteString(titleStyle.Render("memview"))
	s.WriteString(" ")
	s.WriteString(cur.Path())
	s.WriteString(" ")
	s.WriteString(addrStyle.Render(cur.Address().String()))
	s.WriteString("\n\n")

	for i, r := range b.rows {
		indent := strings.Repeat("  ", r.depth)
		line := fmt.Sprintf("%s%s %s %s %s",
			indent,
			nameStyle.Render(r.member.Name()),
			typeStyle.Render(r.member.Type().String()),
			addrStyle.Render(r.member.Address().String()),
			r.text())
		if r.err != nil {
			line = indent + r.member.Name() + " " + errorStyle.Render(r.text())
		}
		if i == b.selected {
			line = selectedStyle.Render("> " + indent + r.member.Name() + " " + r.text())
		} else {
			line = "  " + line
		}
		s.WriteString(line)
		s.WriteString("\n")
	}
	s.WriteString("\n")

	switch {
	case b.state == stateEdit:
		s.WriteString(b.input.View())
		s.WriteString("\n\n")
		s.WriteString(helpStyle.Render("enter write • esc cancel"))
		return s.String()
	case b.err != nil:
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", b.err)))
		s.WriteString("\n\n")
	case b.status != "":
		s.WriteString(b.status)
		s.WriteString("\n\n")
	}
	s.WriteString(helpStyle.Render("↑/↓ select • enter follow/edit • e edit • r refresh • esc back • q quit"))
	return s.String()
}

func runInteractive(cfg Config, log *zap.Logger) (err error) {
	s, err := openSession(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.target.Close()) }()
	for _, expr := range cfg.Set {
		if err := assign(s.object.Root(), expr); err != nil {
			return err
		}
	}
	p := tea.NewProgram(newBrowser(s), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
