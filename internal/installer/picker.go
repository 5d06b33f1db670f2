package installer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrPickCancelled is returned when the user leaves the picker without
// choosing a directory.
var ErrPickCancelled = errors.New("installation cancelled")

var (
	pickerTitleStyle  = lipgloss.NewStyle().Bold(true)
	pickerCursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true)
	pickerHelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type pathPickerModel struct {
	entries   []string
	cursor    int
	chosen    string
	cancelled bool
}

func newPathPickerModel(entries []string) pathPickerModel {
	return pathPickerModel{entries: entries}
}

func (m pathPickerModel) Init() tea.Cmd {
	return nil
}

func (m pathPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch s := key.String(); s {
	case "q", "esc", "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = m.entries[m.cursor]
		return m, tea.Quit
	default:
		// Digits jump straight to an entry, as in a numbered menu.
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(m.entries) {
			m.cursor = n - 1
		}
	}
	return m, nil
}

func (m pathPickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Here are the possible locations to install dmenv"))
	b.WriteString("\n\n")
	for i, entry := range m.entries {
		line := fmt.Sprintf("%2d %s", i+1, entry)
		if i == m.cursor {
			b.WriteString(pickerCursorStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(pickerHelpStyle.Render("up/down: move | enter: select | q: cancel"))
	b.WriteString("\n")
	return b.String()
}

// PickPathEntry lets the user choose one of entries in a terminal UI.
func PickPathEntry(entries []string, in io.Reader, out io.Writer) (string, error) {
	if len(entries) == 0 {
		return "", errors.New("no writable directory in PATH, use --dest")
	}
	final, err := tea.NewProgram(newPathPickerModel(entries), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", fmt.Errorf("running picker: %w", err)
	}
	m := final.(pathPickerModel)
	if m.cancelled || m.chosen == "" {
		return "", ErrPickCancelled
	}
	return m.chosen, nil
}
