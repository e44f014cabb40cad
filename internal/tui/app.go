package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Screen is one page of the UI. Update returns true to pop itself off the stack.
type Screen interface {
	Title() string
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd, bool)
	View(width, height int) string
}

// closer is implemented by screens that hold resources until they leave the stack.
type closer interface {
	Close()
}

// Route builds the screen for a navigation target.
type Route func(params any) (Screen, error)

// Route names.
const (
	RoutePreview = "Preview"
	RouteHistory = "History"
)

// ScreenStack is the navigation history; the top screen receives key input.
type ScreenStack struct {
	items []Screen
}

func (s *ScreenStack) Push(screen Screen) {
	if screen == nil {
		return
	}
	s.items = append(s.items, screen)
}

func (s *ScreenStack) Pop() Screen {
	if len(s.items) == 0 {
		return nil
	}
	last := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return last
}

func (s ScreenStack) Top() Screen {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[len(s.items)-1]
}

func (s ScreenStack) Len() int {
	return len(s.items)
}

// App hosts the screen stack and routes messages: keys go to the top screen, everything
// else reaches every screen so background screens keep their subscriptions alive.
type App struct {
	screens ScreenStack
	routes  map[string]Route
	width   int
	height  int
	err     error
}

// New returns an App showing root.
func New(root Screen, routes map[string]Route) *App {
	a := &App{routes: routes}
	a.screens.Push(root)
	return a
}

// Err is the error that stopped the program, if any.
func (a *App) Err() error { return a.err }

func (a *App) Init() tea.Cmd {
	if top := a.screens.Top(); top != nil {
		return top.Init()
	}
	return nil
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		return a, a.broadcast(msg)
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			a.closeAll()
			return a, tea.Quit
		}
		return a, a.updateTop(msg)
	case NavigateMsg:
		route, ok := a.routes[m.Route]
		if !ok {
			return a, fatal(fmt.Errorf("navigate: unknown route %q", m.Route))
		}
		screen, err := route(m.Params)
		if err != nil {
			return a, fatal(fmt.Errorf("navigate %s: %w", m.Route, err))
		}
		return a, a.push(screen)
	case pushScreenMsg:
		return a, a.push(m.screen)
	case popScreenMsg:
		a.pop()
		return a, nil
	case quitMsg:
		a.closeAll()
		return a, tea.Quit
	case fatalMsg:
		a.err = m.err
		a.closeAll()
		return a, tea.Quit
	}
	return a, a.broadcast(msg)
}

func (a *App) View() string {
	top := a.screens.Top()
	if top == nil {
		return ""
	}
	return top.View(a.width, a.height)
}

func (a *App) push(screen Screen) tea.Cmd {
	a.screens.Push(screen)
	cmds := []tea.Cmd{screen.Init()}
	if a.width > 0 || a.height > 0 {
		next, cmd, _ := screen.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		a.screens.items[len(a.screens.items)-1] = next
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *App) pop() {
	if a.screens.Len() <= 1 {
		return
	}
	if c, ok := a.screens.Pop().(closer); ok {
		c.Close()
	}
}

func (a *App) updateTop(msg tea.Msg) tea.Cmd {
	n := a.screens.Len()
	if n == 0 {
		return nil
	}
	next, cmd, done := a.screens.items[n-1].Update(msg)
	a.screens.items[n-1] = next
	if done {
		a.pop()
	}
	return cmd
}

func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	kept := a.screens.items[:0]
	for i, s := range a.screens.items {
		next, cmd, done := s.Update(msg)
		cmds = append(cmds, cmd)
		if done && i > 0 {
			if c, ok := next.(closer); ok {
				c.Close()
			}
			continue
		}
		kept = append(kept, next)
	}
	a.screens.items = kept
	return tea.Batch(cmds...)
}

func (a *App) closeAll() {
	for a.screens.Len() > 0 {
		if c, ok := a.screens.Pop().(closer); ok {
			c.Close()
		}
	}
}
