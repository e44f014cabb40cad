package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/agentwallet/internal/database/repository"
	"github.com/jask/agentwallet/internal/picker"
)

type stubScreen struct {
	title  string
	msgs   []tea.Msg
	closed bool
}

func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) Init() tea.Cmd        { return nil }
func (s *stubScreen) Close()               { s.closed = true }
func (s *stubScreen) View(int, int) string { return s.title }

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	s.msgs = append(s.msgs, msg)
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return s, nil, true
	}
	return s, nil, false
}

func TestStackPushPop(t *testing.T) {
	var st ScreenStack
	require.Nil(t, st.Top())
	require.Nil(t, st.Pop())

	a, b := &stubScreen{title: "a"}, &stubScreen{title: "b"}
	st.Push(a)
	st.Push(nil)
	st.Push(b)
	require.Equal(t, 2, st.Len())
	require.Equal(t, b, st.Top())
	require.Equal(t, b, st.Pop())
	require.Equal(t, a, st.Top())
}

func TestAppNavigateAndBack(t *testing.T) {
	root := &stubScreen{title: "root"}
	pushed := &stubScreen{title: "preview"}
	app := New(root, map[string]Route{
		RoutePreview: func(any) (Screen, error) { return pushed, nil },
	})
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	app.Update(NavigateMsg{Route: RoutePreview})
	require.Equal(t, "preview", app.View())
	require.Contains(t, pushed.msgs, tea.Msg(tea.WindowSizeMsg{Width: 100, Height: 30}))

	app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	require.Len(t, root.msgs, 1, "keys only reach the top screen")

	app.Update(toastExpiredMsg{id: 1})
	require.Contains(t, root.msgs, tea.Msg(toastExpiredMsg{id: 1}))
	require.Contains(t, pushed.msgs, tea.Msg(toastExpiredMsg{id: 1}))

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, pushed.closed)
	require.Equal(t, "root", app.View())

	// The root screen never pops.
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, "root", app.View())
	require.False(t, root.closed)
}

func TestAppUnknownRouteIsFatal(t *testing.T) {
	app := New(&stubScreen{title: "root"}, nil)
	_, cmd := app.Update(NavigateMsg{Route: "Nowhere"})
	require.NotNil(t, cmd)

	_, cmd = app.Update(cmd())
	require.Error(t, app.Err())
	require.ErrorContains(t, app.Err(), "Nowhere")
	require.NotNil(t, cmd)
}

func TestAppFatalAndQuitCloseScreens(t *testing.T) {
	root := &stubScreen{title: "root"}
	app := New(root, nil)
	boom := errors.New("boom")

	_, cmd := app.Update(fatalMsg{err: boom})
	require.ErrorIs(t, app.Err(), boom)
	require.True(t, root.closed)
	require.IsType(t, tea.QuitMsg{}, cmd())

	root2 := &stubScreen{title: "root"}
	app = New(root2, nil)
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.True(t, root2.closed)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.NoError(t, app.Err())
}

func TestPickerScreenCancel(t *testing.T) {
	s := NewPickerScreen(t.TempDir(), attachOptions)
	_, cmd, done := s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, done)
	msg, ok := cmd().(pickResultMsg)
	require.True(t, ok)
	require.True(t, picker.IsCancel(msg.err))
}

func TestPreviewRoute(t *testing.T) {
	route := PreviewRoute(Options{CurrencySymbol: "FRw"})
	_, err := route("bad")
	require.Error(t, err)

	p := samplePayments()[0]
	screen, err := route(PreviewParams{
		File:            picker.Document{Name: "receipt.png", Type: "image/png", Size: 2048, URI: "file:///tmp/receipt.png"},
		SelectedPayment: &p,
	})
	require.NoError(t, err)
	view := screen.View(100, 20)
	require.Contains(t, view, "receipt.png")
	require.Contains(t, view, "2.0 KiB")
	require.Contains(t, view, "FRw 12,500")

	_, _, done := screen.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.True(t, done)
}

type fakeHistory struct {
	events []repository.ReviewEvent
}

func (h fakeHistory) Recent(context.Context, int) ([]repository.ReviewEvent, error) {
	return h.events, nil
}

func TestHistoryScreenLoads(t *testing.T) {
	reason := "duplicate request"
	h := fakeHistory{events: []repository.ReviewEvent{{
		ID: "e1", PaymentID: 42, Action: repository.ActionReject, Reason: &reason,
		Outcome: repository.OutcomeSuccess, CreatedAt: time.Date(2026, 10, 2, 9, 37, 0, 0, time.UTC),
	}}}
	s := NewHistoryScreen(context.Background(), h, Options{Location: time.UTC})

	cmd := s.Init()
	require.Contains(t, s.View(120, 0), "Loading history")
	s.Update(cmd())

	view := s.View(120, 0)
	require.Contains(t, view, "#42")
	require.Contains(t, view, "duplicate request")
	require.Contains(t, view, "02 Oct 09:37")

	empty := NewHistoryScreen(context.Background(), nil, Options{})
	require.Nil(t, empty.Init())
	require.Contains(t, empty.View(80, 0), "not available")

	_, _, done := s.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	require.True(t, done)
}

func TestFormatAmountFallsBackToCurrency(t *testing.T) {
	p := samplePayments()[1]
	require.Equal(t, "3,000 RWF", formatAmount(p, ""))
	p.Currency = ""
	require.Equal(t, "3,000", formatAmount(p, ""))
}
