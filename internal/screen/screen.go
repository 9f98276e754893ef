package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/conceptlink/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// HeaderStatsProvider is an optional interface for screens that show live
// game numbers in the header.
type HeaderStatsProvider interface {
	HeaderStats() *layout.HeaderStats
}

// BackInterceptor is an optional interface for screens that handle Esc
// themselves instead of letting the app pop them.
type BackInterceptor interface {
	InterceptsBack() bool
}

// Resumer is an optional interface for screens that refresh when they
// become active again after the screens above them are popped.
type Resumer interface {
	Resume() tea.Cmd
}
