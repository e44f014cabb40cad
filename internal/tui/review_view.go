package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/agentwallet/internal/backend"
)

func (s *ReviewScreen) View(width, height int) string {
	if width <= 0 {
		width = 80
	}
	if s.showLoader {
		return lipgloss.Place(width, max(height, 3), lipgloss.Center, lipgloss.Center,
			s.spinner.View()+" "+msgSubmitting)
	}

	var b strings.Builder
	header := titleStyle.Render(s.Title())
	if s.refreshing {
		header += "  " + s.spinner.View() + mutedStyle.Render(" refreshing")
	}
	b.WriteString(header)
	b.WriteString("\n")
	if s.filtering || s.filter.Value() != "" {
		b.WriteString(s.filter.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.renderList(width, height))

	if s.showReject {
		b.WriteString("\n\n")
		b.WriteString(s.renderRejectDialog(width))
	}
	if s.showAlert {
		b.WriteString("\n\n")
		b.WriteString(s.renderAlert(width))
	}
	if s.toast.text != "" {
		style := toastStyle
		if s.toast.isErr {
			style = toastErrStyle
		}
		b.WriteString("\n\n")
		b.WriteString(style.Render(s.toast.text))
	}
	b.WriteString("\n\n")
	if s.showReject {
		b.WriteString(s.help.View(s.dialogKeys))
	} else {
		b.WriteString(s.help.View(s.keys))
	}
	return b.String()
}

func (s *ReviewScreen) renderList(width, height int) string {
	if s.list.IsLoading && !s.refreshing {
		return s.spinner.View() + " " + msgLoading
	}
	rows := s.visibleRows()
	if len(rows) == 0 {
		if len(s.list.Payments) > 0 {
			return mutedStyle.Render(msgNoMatch)
		}
		return mutedStyle.Render(msgEmpty)
	}

	limit := len(rows)
	if height > 0 {
		limit = max(height-10, 5)
	}
	start := 0
	if s.cursor >= limit {
		start = s.cursor - limit + 1
	}
	end := min(start+limit, len(rows))

	lines := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		lines = append(lines, s.renderRow(rows[i], i == s.cursor, width))
	}
	if len(rows) > end-start {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(rows))))
	}
	return strings.Join(lines, "\n")
}

func (s *ReviewScreen) renderRow(p backend.Payment, isCursor bool, width int) string {
	prefix := "  "
	if isCursor {
		prefix = "> "
	}
	mark := "  "
	if s.selected != nil && s.selected.ID == p.ID {
		mark = selectedStyle.Render("● ")
	}

	parts := []string{
		amountStyle.Render(formatAmount(p, s.opts.CurrencySymbol)),
		p.AgentNames,
	}
	if client := s.clientName(p); client != "" {
		parts = append(parts, "→ "+client)
	}
	if market := s.marketName(p); market != "" {
		parts = append(parts, mutedStyle.Render("@"+market))
	}
	if !p.CreatedAt.IsZero() {
		parts = append(parts, mutedStyle.Render(p.CreatedAt.In(s.opts.Location).Format(s.opts.DateFormat)))
	}
	if p.HasProof() {
		parts = append(parts, proofStyle.Render("proof"))
	}

	line := prefix + mark + strings.Join(parts, "  ")
	line = ansi.Truncate(line, width, "…")
	if isCursor {
		return cursorStyle.Render(line)
	}
	return rowStyle.Render(line)
}

func (s *ReviewScreen) renderRejectDialog(width int) string {
	var target string
	if s.selected != nil {
		target = fmt.Sprintf("Reject %s from %s?",
			formatAmount(*s.selected, s.opts.CurrencySymbol), s.selected.AgentNames)
	} else {
		target = mutedStyle.Render("No payment selected")
	}
	content := modalTitleStyle.Render("Confirmation") + "\n" + target + "\n\n" + s.reason.View()
	return modalStyle.Width(min(max(width-4, 20), 64)).Render(content)
}

func (s *ReviewScreen) renderAlert(width int) string {
	content := alertTitleStyle.Render("Something Went Wrong") + "\n" +
		s.alertText + "\n\n" +
		keyStyle.Render("[enter]") + " Try Again  " + keyStyle.Render("[esc]") + " Close"
	return alertStyle.Width(min(max(width-4, 20), 64)).Render(content)
}

// formatAmount groups thousands and adds the currency, or symbol when one is configured.
func formatAmount(p backend.Payment, symbol string) string {
	amt := groupThousands(p.Amount.String())
	if symbol != "" {
		return symbol + " " + amt
	}
	if p.Currency != "" {
		return amt + " " + p.Currency
	}
	return amt
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := sign + b.String()
	if hasFrac {
		out += "." + frac
	}
	return out
}
