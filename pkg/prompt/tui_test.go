package prompt

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyPress(m pickerModel, key string) pickerModel {
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated.(pickerModel)
}

func TestPickerSelectsWithEnter(t *testing.T) {
	m := newPickerModel("stanup", testCandidates)
	m = keyPress(m, "down")
	m = keyPress(m, "enter")

	assert.True(t, m.done)
	assert.Equal(t, "Standup Archive.md", m.choice.Path)
}

func TestPickerNumberKeyShortcut(t *testing.T) {
	m := newPickerModel("stanup", testCandidates)
	m = keyPress(m, "2")

	assert.True(t, m.done)
	assert.Equal(t, "Standup Archive.md", m.choice.Path)
}

func TestPickerEscCancels(t *testing.T) {
	m := newPickerModel("stanup", testCandidates)
	m = keyPress(m, "esc")

	assert.True(t, m.done)
	assert.True(t, m.choice.Cancelled)
}

func TestPickerSelectionStaysInBounds(t *testing.T) {
	m := newPickerModel("stanup", testCandidates)
	m = keyPress(m, "up") // already at the top
	assert.Equal(t, 0, m.selected)

	m = keyPress(m, "down")
	m = keyPress(m, "down")
	m = keyPress(m, "down") // already at the bottom
	assert.Equal(t, 1, m.selected)
}

func TestPickerManualOverride(t *testing.T) {
	m := newPickerModel("stanup", testCandidates)
	m = keyPress(m, "m")
	require.True(t, m.manualMode)

	for _, r := range "Thesis" {
		m = keyPress(m, string(r))
	}
	m = keyPress(m, "enter")

	assert.True(t, m.done)
	assert.True(t, m.choice.Manual)
	assert.Equal(t, "Thesis", m.choice.Path)
}

func TestPickerViewListsCandidates(t *testing.T) {
	m := newPickerModel("stanup", testCandidates)
	view := m.View()

	assert.Contains(t, view, "Daily Standup.md")
	assert.Contains(t, view, "Standup Archive.md")
	assert.Contains(t, view, "stanup")
}
