package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/conceptlink/internal/ui/layout"
	"github.com/abhisek/conceptlink/internal/ui/theme"
)

type MenuItem struct {
	Label    string
	Action   func() tea.Cmd
	Disabled bool
}

// MenuKeys are the bindings a Menu responds to.
type MenuKeys struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
}

var DefaultMenuKeys = MenuKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "Up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "Down")),
	Choose: key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("Enter", "Select")),
}

// Menu is a vertical list of buttons. Disabled items are drawn but
// skipped by the cursor.
type Menu struct {
	Items    []MenuItem
	Selected int
	Keys     MenuKeys
}

// NewMenu places the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1, Keys: DefaultMenuKeys}
	m.move(+1)
	if m.Selected < 0 {
		m.Selected = 0
	}
	return m
}

// move steps the cursor in direction dir to the next enabled item, staying
// put when there is none.
func (m *Menu) move(dir int) {
	for i := m.Selected + dir; i >= 0 && i < len(m.Items); i += dir {
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(kmsg, m.Keys.Up):
		m.move(-1)
	case key.Matches(kmsg, m.Keys.Down):
		m.move(+1)
	case key.Matches(kmsg, m.Keys.Choose):
		if m.Selected < 0 || m.Selected >= len(m.Items) {
			return m, nil
		}
		if it := m.Items[m.Selected]; !it.Disabled && it.Action != nil {
			return m, it.Action()
		}
	}
	return m, nil
}

// View draws every item as a Button buttonWidth wide. With compact set the
// items are single text lines instead, for terminals too short for boxes.
func (m Menu) View(buttonWidth int, compact bool) string {
	lines := make([]string, len(m.Items))
	for i, it := range m.Items {
		state := FocusIf(i == m.Selected)
		if it.Disabled {
			state = ButtonDisabled
		}
		if !compact {
			lines[i] = Button(it.Label, state, buttonWidth)
			continue
		}
		switch state {
		case ButtonFocused:
			lines[i] = theme.Picked.Render(" ▸ " + it.Label + " ")
		case ButtonDisabled:
			lines[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Render("   " + it.Label)
		default:
			lines[i] = theme.Unselected.Render("   " + it.Label)
		}
	}
	return strings.Join(lines, "\n")
}

// Hints are the footer hints for the menu's bindings.
func (m Menu) Hints() []layout.KeyHint {
	bindings := []key.Binding{m.Keys.Up, m.Keys.Down, m.Keys.Choose}
	hints := make([]layout.KeyHint, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		hints[i] = layout.KeyHint{Key: h.Key, Description: h.Desc}
	}
	return hints
}
