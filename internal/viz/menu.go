package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Entry is one selectable problem in the menu.
type Entry struct {
	Name        string
	Description string
	Build       BuildFunc
	Options     LiveOptions
}

const (
	screenMenu = iota
	screenLive
)

type menu struct {
	entries []Entry
	cursor  int
	screen  int
	live    Model
	err     error
	theme   Theme
}

// NewMenu returns a picker that opens the live viewer for the chosen entry.
func NewMenu(entries []Entry) tea.Model {
	return menu{entries: entries, theme: Themes[0]}
}

func (m menu) Init() tea.Cmd { return nil }

func (m menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.screen == screenLive {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.screen = screenMenu
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.entries) == 0 {
			return m, nil
		}
		e := m.entries[m.cursor]
		live, err := NewModel(e.Name, e.Build, e.Options)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.live = live
		m.screen = screenLive
		return m, live.Init()
	}
	return m, nil
}

func (m menu) View() string {
	if m.screen == screenLive {
		return m.live.View()
	}

	title := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true)
	selected := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(m.theme.Muted)

	var b strings.Builder
	b.WriteString(title.Render("NBODY") + "  " + dim.Render("choose a problem") + "\n\n")
	for i, e := range m.entries {
		name := fmt.Sprintf("  %-16s", e.Name)
		if i == m.cursor {
			name = selected.Render(fmt.Sprintf("> %-16s", e.Name))
		}
		b.WriteString(name + " " + dim.Render(e.Description) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Bad).Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n" + dim.Render("up/down select  enter open  esc back  q quit"))
	return b.String()
}

// RunMenu opens the picker full screen.
func RunMenu(entries []Entry) error {
	_, err := tea.NewProgram(NewMenu(entries), tea.WithAltScreen()).Run()
	return err
}
