// Package router keeps the stack of open screens. Screens navigate by
// returning one of the Cmds below; the app feeds the resulting messages
// to Router.Update.
package router

import (
	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/screen"
)

type (
	PushScreenMsg    struct{ Screen screen.Screen }
	ReplaceScreenMsg struct{ Screen screen.Screen }
	PopScreenMsg     struct{}
	PopToRootMsg     struct{}
)

// Open pushes s above the current screen.
func Open(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return PushScreenMsg{Screen: s} }
}

// Swap replaces the current screen with s, so Back skips the old one.
func Swap(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return ReplaceScreenMsg{Screen: s} }
}

// Back closes the current screen. It is itself a tea.Cmd.
func Back() tea.Msg { return PopScreenMsg{} }

// Home closes every screen above the first. It is itself a tea.Cmd.
func Home() tea.Msg { return PopToRootMsg{} }

// Router is a non-empty stack of screens; the last one is active. A screen
// revealed by a pop is resumed if it implements screen.Resumer.
type Router struct {
	stack  []screen.Screen
	logger *zap.Logger
}

func New(root screen.Screen, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{stack: []screen.Screen{root}, logger: logger.Named("router")}
}

func (r *Router) Push(s screen.Screen) tea.Cmd {
	r.stack = append(r.stack, s)
	r.logged("push")
	return s.Init()
}

func (r *Router) Replace(s screen.Screen) tea.Cmd {
	r.stack[len(r.stack)-1] = s
	r.logged("replace")
	return s.Init()
}

// Pop is a no-op on the root screen.
func (r *Router) Pop() tea.Cmd {
	return r.truncate(len(r.stack)-1, "pop")
}

func (r *Router) PopToRoot() tea.Cmd {
	return r.truncate(1, "pop to root")
}

func (r *Router) truncate(depth int, op string) tea.Cmd {
	if depth < 1 || depth >= len(r.stack) {
		return nil
	}
	clear(r.stack[depth:])
	r.stack = r.stack[:depth]
	r.logged(op)
	if res, ok := r.Active().(screen.Resumer); ok {
		return res.Resume()
	}
	return nil
}

func (r *Router) logged(op string) {
	r.logger.Debug("navigate",
		zap.String("op", op),
		zap.String("screen", r.Active().Title()),
		zap.Int("depth", len(r.stack)))
}

func (r *Router) Active() screen.Screen { return r.stack[len(r.stack)-1] }
func (r *Router) Depth() int            { return len(r.stack) }

// Update applies navigation messages and passes everything else to the
// active screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushScreenMsg:
		return r.Push(msg.Screen)
	case ReplaceScreenMsg:
		return r.Replace(msg.Screen)
	case PopScreenMsg:
		return r.Pop()
	case PopToRootMsg:
		return r.PopToRoot()
	}
	top := len(r.stack) - 1
	next, cmd := r.stack[top].Update(msg)
	r.stack[top] = next
	return cmd
}

func (r *Router) View(width, height int) string {
	return r.Active().View(width, height)
}
