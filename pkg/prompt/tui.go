package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/recall/pkg/matching"
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	selectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	confidenceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

// TUIChooser presents the candidates as an interactive picker:
// arrows or number keys to select, enter to confirm, 'm' to type a
// manual override, esc to cancel.
type TUIChooser struct{}

// Choose runs the picker and blocks until the user decides.
func (c *TUIChooser) Choose(term string, candidates []matching.Candidate) (Choice, error) {
	if len(candidates) == 0 {
		return Choice{Cancelled: true}, nil
	}

	model := newPickerModel(term, candidates)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return Choice{}, fmt.Errorf("prompt: picker failed: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok {
		return Choice{Cancelled: true}, nil
	}
	return m.choice, nil
}

type pickerModel struct {
	term       string
	candidates []matching.Candidate
	selected   int
	manualMode bool
	input      textinput.Model
	choice     Choice
	done       bool
}

func newPickerModel(term string, candidates []matching.Candidate) pickerModel {
	input := textinput.New()
	input.Placeholder = "document name..."
	return pickerModel{
		term:       term,
		candidates: candidates,
		input:      input,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.manualMode {
		switch keyMsg.String() {
		case "esc":
			m.manualMode = false
			m.input.Blur()
			return m, nil
		case "enter":
			name := strings.TrimSpace(m.input.Value())
			if name == "" {
				m.choice = Choice{Cancelled: true}
			} else {
				m.choice = Choice{Path: name, Manual: true}
			}
			m.done = true
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key := keyMsg.String(); key {
	case "esc", "q", "ctrl+c":
		m.choice = Choice{Cancelled: true}
		m.done = true
		return m, tea.Quit

	case "enter":
		m.choice = Choice{Path: m.candidates[m.selected].Path}
		m.done = true
		return m, tea.Quit

	case "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "ctrl+n":
		if m.selected < len(m.candidates)-1 {
			m.selected++
		}

	case "m":
		m.manualMode = true
		m.input.Focus()
		return m, textinput.Blink

	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.candidates) {
			m.choice = Choice{Path: m.candidates[n-1].Path}
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("'%s' not found. Did you mean:", m.term)))
	b.WriteString("\n\n")

	for i, candidate := range m.candidates {
		line := fmt.Sprintf("%d. %s %s",
			i+1,
			candidate.Path,
			confidenceStyle.Render(fmt.Sprintf("%.0f%%", candidate.Confidence*100)),
		)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("     " + candidate.Reason))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.manualMode {
		b.WriteString("manual override: " + m.input.View() + "\n")
		b.WriteString(dimStyle.Render("enter to confirm · esc to go back"))
	} else {
		b.WriteString(dimStyle.Render("↑/↓ or 1-" + strconv.Itoa(len(m.candidates)) + " to select · enter to confirm · m for manual · esc to cancel"))
	}
	return b.String()
}
