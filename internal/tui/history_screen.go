package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/agentwallet/internal/database/repository"
)

const historyLimit = 100

// History reads the review journal.
type History interface {
	Recent(ctx context.Context, limit int) ([]repository.ReviewEvent, error)
}

// HistoryScreen lists recent review actions from the local journal.
type HistoryScreen struct {
	ctx     context.Context
	history History
	opts    Options

	events  []repository.ReviewEvent
	err     error
	loading bool
	offset  int
}

func NewHistoryScreen(ctx context.Context, h History, opts Options) *HistoryScreen {
	return &HistoryScreen{ctx: ctx, history: h, opts: opts.withDefaults()}
}

// HistoryRoute builds History screens. h may be nil when the journal is unavailable.
func HistoryRoute(ctx context.Context, h History, opts Options) Route {
	return func(any) (Screen, error) {
		return NewHistoryScreen(ctx, h, opts), nil
	}
}

func (s *HistoryScreen) Title() string { return "Review History" }

func (s *HistoryScreen) Init() tea.Cmd {
	return s.load()
}

func (s *HistoryScreen) load() tea.Cmd {
	if s.history == nil {
		return nil
	}
	s.loading = true
	ctx, h := s.ctx, s.history
	return func() tea.Msg {
		events, err := h.Recent(ctx, historyLimit)
		return historyLoadedMsg{events: events, err: err}
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	switch m := msg.(type) {
	case historyLoadedMsg:
		s.loading = false
		s.events, s.err = m.events, m.err
		s.offset = 0
	case tea.KeyMsg:
		switch {
		case key.Matches(m, backKeys), m.String() == "h":
			return s, nil, true
		case m.String() == "r":
			return s, s.load(), false
		case m.String() == "up", m.String() == "k":
			if s.offset > 0 {
				s.offset--
			}
		case m.String() == "down", m.String() == "j":
			if s.offset < len(s.events)-1 {
				s.offset++
			}
		}
	}
	return s, nil, false
}

func (s *HistoryScreen) View(width, height int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title()))
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(strings.Repeat("─", min(width, 60))))
	b.WriteString("\n")

	switch {
	case s.history == nil:
		b.WriteString(mutedStyle.Render("The review journal is not available."))
	case s.loading:
		b.WriteString(mutedStyle.Render("Loading history..."))
	case s.err != nil:
		b.WriteString(toastErrStyle.Render("Could not read history: " + s.err.Error()))
	case len(s.events) == 0:
		b.WriteString(mutedStyle.Render("No review actions recorded yet."))
	default:
		limit := len(s.events)
		if height > 0 {
			limit = max(height-5, 3)
		}
		end := min(s.offset+limit, len(s.events))
		lines := make([]string, 0, end-s.offset)
		for _, e := range s.events[s.offset:end] {
			lines = append(lines, ansi.Truncate(s.renderEvent(e), width, "…"))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("↑/↓ scroll  r reload  esc back"))
	return b.String()
}

func (s *HistoryScreen) renderEvent(e repository.ReviewEvent) string {
	when := e.CreatedAt.In(s.opts.Location).Format(s.opts.DateFormat)
	outcome := amountStyle.Render(e.Outcome)
	if e.Outcome == repository.OutcomeFailure {
		outcome = toastErrStyle.UnsetPadding().UnsetBackground().Render(e.Outcome)
	}
	line := fmt.Sprintf("%s  %-6s  #%-6d %s", mutedStyle.Render(when), e.Action, e.PaymentID, outcome)
	switch {
	case e.Reason != nil:
		line += "  " + *e.Reason
	case e.Document != nil:
		line += "  " + *e.Document
	}
	if e.Message != nil && *e.Message != "" {
		line += mutedStyle.Render("  (" + *e.Message + ")")
	}
	return line
}
