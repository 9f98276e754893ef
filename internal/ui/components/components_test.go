package components

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chosen string

func choose(label string) func() tea.Cmd {
	return func() tea.Cmd { return func() tea.Msg { return chosen(label) } }
}

func TestMenuSkipsDisabledItems(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "A", Disabled: true, Action: choose("A")},
		{Label: "B", Action: choose("B")},
		{Label: "C", Disabled: true, Action: choose("C")},
		{Label: "D", Action: choose("D")},
	})
	assert.Equal(t, 1, m.Selected)

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected)
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 3, m.Selected, "stays on the last enabled item")
	m, _ = m.Update(tea.KeyPressMsg{Code: 'k', Text: "k"})
	assert.Equal(t, 1, m.Selected)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, chosen("B"), cmd())
}

func TestMenuViewAndHints(t *testing.T) {
	m := NewMenu([]MenuItem{{Label: "PLAY"}, {Label: "QUIT"}})
	assert.Contains(t, m.View(20, false), "▸ PLAY")
	assert.Contains(t, m.View(20, true), "▸ PLAY")

	hints := m.Hints()
	require.Len(t, hints, 3)
	assert.Equal(t, "Enter", hints[2].Key)
}

func TestMeterWidth(t *testing.T) {
	for _, frac := range []float64{-1, 0, 0.33, 1, 2} {
		v := Meter{Label: "done", Fraction: frac, Width: 40, ShowPercent: true}.View()
		assert.Equal(t, 40, lipgloss.Width(v), "fraction %v", frac)
	}
	assert.Contains(t, ScoreMeter("Accuracy", 85, 40).View(), "85%")
}

func TestPanelWidth(t *testing.T) {
	assert.Equal(t, 20, PanelWidth(10))
	assert.Equal(t, 54, PanelWidth(60))
	assert.Equal(t, 60, PanelWidth(200))
}
