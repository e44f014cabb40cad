package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/agentwallet/internal/backend"
	"github.com/jask/agentwallet/internal/picker"
)

// PreviewParams is what the review screen hands to Preview after a successful pick.
type PreviewParams struct {
	File            picker.Document
	SelectedPayment *backend.Payment
}

// PreviewScreen shows the picked document next to the payment it belongs to.
type PreviewScreen struct {
	params PreviewParams
	opts   Options
}

func NewPreviewScreen(params PreviewParams, opts Options) *PreviewScreen {
	return &PreviewScreen{params: params, opts: opts.withDefaults()}
}

// PreviewRoute builds Preview screens from PreviewParams.
func PreviewRoute(opts Options) Route {
	return func(params any) (Screen, error) {
		p, ok := params.(PreviewParams)
		if !ok {
			return nil, fmt.Errorf("preview: unexpected params %T", params)
		}
		return NewPreviewScreen(p, opts), nil
	}
}

func (s *PreviewScreen) Title() string { return "Preview" }

func (s *PreviewScreen) Init() tea.Cmd { return nil }

func (s *PreviewScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, backKeys) {
		return s, nil, true
	}
	return s, nil, false
}

func (s *PreviewScreen) View(width, height int) string {
	f := s.params.File
	var b strings.Builder
	b.WriteString(titleStyle.Render(s.Title()))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("File:   "), f.Name)
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Type:   "), f.Type)
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Size:   "), humanSize(f.Size))
	fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("Source: "), f.URI)
	b.WriteString("\n")
	if p := s.params.SelectedPayment; p != nil {
		fmt.Fprintf(&b, "%s #%d  %s  %s\n", mutedStyle.Render("Payment:"), p.ID,
			amountStyle.Render(formatAmount(*p, s.opts.CurrencySymbol)), p.AgentNames)
	} else {
		b.WriteString(mutedStyle.Render("No payment selected"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("esc back"))
	return b.String()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
