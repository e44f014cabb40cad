package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/agentwallet/internal/database/repository"
	"github.com/jask/agentwallet/internal/picker"
	"github.com/jask/agentwallet/internal/service"
	"github.com/jask/agentwallet/internal/store"
)

// NavigateMsg asks the App to push the screen registered for Route.
type NavigateMsg struct {
	Route  string
	Params any
}

type pushScreenMsg struct {
	screen Screen
}

type popScreenMsg struct{}

type quitMsg struct{}

type fatalMsg struct {
	err error
}

type storeChangedMsg struct{}

type rejectResultMsg struct {
	result service.RejectResult
	err    error
}

type pickResultMsg struct {
	doc picker.Document
	err error
}

type toastExpiredMsg struct {
	id int
}

type historyLoadedMsg struct {
	events []repository.ReviewEvent
	err    error
}

// Navigate pushes the screen registered for route.
func Navigate(route string, params any) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: route, Params: params} }
}

func pushScreen(s Screen) tea.Cmd {
	return func() tea.Msg { return pushScreenMsg{screen: s} }
}

func quit() tea.Msg { return quitMsg{} }

func fatal(err error) tea.Cmd {
	return func() tea.Msg { return fatalMsg{err: err} }
}

// waitForStore blocks until the store changes. A cancelled subscription yields no message.
func waitForStore(sub *store.Subscription) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-sub.Updates(); !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}
