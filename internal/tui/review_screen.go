package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jask/agentwallet/internal/backend"
	"github.com/jask/agentwallet/internal/picker"
	"github.com/jask/agentwallet/internal/service"
	"github.com/jask/agentwallet/internal/store"
)

// Store is the part of the shared store the review screen reads and drives.
type Store interface {
	Snapshot() store.State
	Dispatch(a store.Action)
	Subscribe() *store.Subscription
}

// Reviewer submits rejections.
type Reviewer interface {
	Reject(ctx context.Context, selected *backend.Payment, reason string) (service.RejectResult, error)
}

// AttachmentRecorder journals picked documents.
type AttachmentRecorder interface {
	RecordPicked(ctx context.Context, payment *backend.Payment, doc picker.Document) error
}

// Options controls presentation.
type Options struct {
	DateFormat     string
	CurrencySymbol string
	Location       *time.Location
	PickerDir      string
	ToastDuration  time.Duration
	// RememberDir persists the folder of the last picked document. Optional.
	RememberDir func(dir string) error
}

func (o Options) withDefaults() Options {
	if o.DateFormat == "" {
		o.DateFormat = "02 Jan 15:04"
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.ToastDuration <= 0 {
		o.ToastDuration = 3 * time.Second
	}
	return o
}

const (
	msgChoosePayment = "Choose payment please"
	msgEnterReason   = "Please enter rejection reason"
	msgEmpty         = "No requests currently found."
	msgNoMatch       = "No requests match the filter."
	msgLoading       = "Loading payment requests..."
	msgSubmitting    = "Submitting rejection..."
)

var attachOptions = picker.Options{Types: []picker.Type{picker.Images}}

type toast struct {
	id    int
	text  string
	isErr bool
}

// ReviewScreen lists pending payment requests and lets the operator reject them or
// attach proof of payment.
type ReviewScreen struct {
	ctx         context.Context
	store       Store
	reviewer    Reviewer
	attachments AttachmentRecorder
	opts        Options
	openPicker  func() tea.Cmd

	sub        *store.Subscription
	keys       reviewKeyMap
	dialogKeys dialogKeyMap
	help       help.Model
	spinner    spinner.Model
	reason     textarea.Model
	filter     textinput.Model

	list    store.PaymentList
	markets map[string]string
	clients map[string]string

	cursor           int
	selected         *backend.Payment
	seenErrorVersion uint64
	alertText        string

	refreshing bool
	filtering  bool
	showAlert  bool
	showReject bool
	showLoader bool
	ticking    bool

	toast    toast
	toastSeq int
	width    int
	height   int
}

// NewReviewScreen builds the review screen. attachments may be nil.
func NewReviewScreen(ctx context.Context, st Store, reviewer Reviewer, attachments AttachmentRecorder, opts Options) *ReviewScreen {
	opts = opts.withDefaults()

	ta := textarea.New()
	ta.Placeholder = "Enter rejection reason"
	ta.ShowLineNumbers = false
	ta.CharLimit = 500
	ta.SetWidth(56)
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("ctrl+j"))

	fi := textinput.New()
	fi.Prompt = "/ "
	fi.Placeholder = "agent, client or market"

	s := &ReviewScreen{
		ctx:         ctx,
		store:       st,
		reviewer:    reviewer,
		attachments: attachments,
		opts:        opts,
		keys:        newReviewKeyMap(),
		dialogKeys:  newDialogKeyMap(),
		help:        help.New(),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		reason:      ta,
		filter:      fi,
		markets:     map[string]string{},
		clients:     map[string]string{},
	}
	s.openPicker = func() tea.Cmd {
		return pushScreen(NewPickerScreen(s.opts.PickerDir, attachOptions))
	}
	return s
}

func (s *ReviewScreen) Title() string { return "Payment Requests" }

// Init subscribes to the store and starts the first payment load. Reference lists are
// loaded by a hard reload.
func (s *ReviewScreen) Init() tea.Cmd {
	if s.sub == nil {
		s.sub = s.store.Subscribe()
	}
	s.store.Dispatch(store.FetchPayments{})
	s.syncFromStore()
	return tea.Batch(waitForStore(s.sub), s.startSpinner())
}

// Close releases the store subscription.
func (s *ReviewScreen) Close() {
	if s.sub != nil {
		s.sub.Cancel()
	}
}

func (s *ReviewScreen) Update(msg tea.Msg) (Screen, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		s.help.Width = msg.Width
		if msg.Width > 20 {
			s.reason.SetWidth(min(msg.Width-12, 56))
		}
		return s, nil, false
	case storeChangedMsg:
		s.syncFromStore()
		return s, tea.Batch(waitForStore(s.sub), s.startSpinner()), false
	case spinner.TickMsg:
		if !s.busy() {
			s.ticking = false
			return s, nil, false
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd, false
	case rejectResultMsg:
		return s, s.finishReject(msg), false
	case pickResultMsg:
		return s, s.finishPick(msg), false
	case toastExpiredMsg:
		if msg.id == s.toast.id {
			s.toast = toast{}
		}
		return s, nil, false
	case tea.KeyMsg:
		return s, s.handleKey(msg), false
	}
	return s, nil, false
}

func (s *ReviewScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case s.showLoader:
		return nil
	case s.showAlert:
		switch {
		case key.Matches(msg, s.dialogKeys.Submit):
			s.showAlert = false
			s.hardReload()
			return s.startSpinner()
		case key.Matches(msg, s.dialogKeys.Cancel):
			s.showAlert = false
		}
		return nil
	case s.showReject:
		return s.updateRejectDialog(msg)
	case s.filtering:
		return s.updateFilter(msg)
	}

	rows := s.visibleRows()
	switch {
	case key.Matches(msg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, s.keys.Down):
		if s.cursor < len(rows)-1 {
			s.cursor++
		}
	case key.Matches(msg, s.keys.Select):
		if p, ok := s.current(); ok {
			s.selectPayment(p)
		}
	case key.Matches(msg, s.keys.Refresh):
		s.refreshing = true
		s.hardReload()
		return s.startSpinner()
	case key.Matches(msg, s.keys.Reject):
		if p, ok := s.current(); ok {
			s.selectPayment(p)
		}
		s.reason.Reset()
		s.showReject = true
		return s.reason.Focus()
	case key.Matches(msg, s.keys.Attach):
		if p, ok := s.current(); ok {
			s.selectPayment(p)
		}
		return s.openPicker()
	case key.Matches(msg, s.keys.Filter):
		s.filtering = true
		return s.filter.Focus()
	case key.Matches(msg, s.keys.History):
		return Navigate(RouteHistory, nil)
	case key.Matches(msg, s.keys.Quit):
		return quit
	}
	return nil
}

func (s *ReviewScreen) updateRejectDialog(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.dialogKeys.Submit):
		return s.submitReject()
	case key.Matches(msg, s.dialogKeys.Cancel):
		s.showReject = false
		s.reason.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.reason, cmd = s.reason.Update(msg)
	return cmd
}

func (s *ReviewScreen) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.filtering = false
		s.filter.Reset()
		s.filter.Blur()
		s.clampCursor()
		return nil
	case "enter":
		s.filtering = false
		s.filter.Blur()
		return nil
	}
	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	s.cursor = 0
	return cmd
}

// submitReject checks the selection and reason, then hands the rejection to the
// reviewer behind the blocking loader. Validation failures only raise a toast.
func (s *ReviewScreen) submitReject() tea.Cmd {
	reason := s.reason.Value()
	if err := service.ValidateRejection(s.selected, reason); err != nil {
		if errors.Is(err, service.ErrNoPaymentSelected) {
			return s.showToast(msgChoosePayment, true)
		}
		return s.showToast(msgEnterReason, true)
	}

	s.showAlert = false
	s.showReject = false
	s.reason.Blur()
	s.showLoader = true

	p := *s.selected
	ctx, reviewer := s.ctx, s.reviewer
	reject := func() tea.Msg {
		res, err := reviewer.Reject(ctx, &p, reason)
		return rejectResultMsg{result: res, err: err}
	}
	return tea.Batch(reject, s.startSpinner())
}

func (s *ReviewScreen) finishReject(msg rejectResultMsg) tea.Cmd {
	s.showLoader = false
	if msg.err != nil {
		return s.handleError(msg.err)
	}
	s.selected = nil
	s.reason.Reset()
	s.store.Dispatch(store.FetchPayments{})
	text := msg.result.Message
	if text == "" {
		text = "Payment rejected"
	}
	return tea.Batch(s.showToast(text, false), s.startSpinner())
}

func (s *ReviewScreen) finishPick(msg pickResultMsg) tea.Cmd {
	if msg.err != nil {
		if picker.IsCancel(msg.err) {
			return nil
		}
		return fatal(fmt.Errorf("pick document: %w", msg.err))
	}

	var sel *backend.Payment
	if s.selected != nil {
		p := *s.selected
		sel = &p
	}
	doc := msg.doc
	cmds := []tea.Cmd{Navigate(RoutePreview, PreviewParams{File: doc, SelectedPayment: sel})}
	if s.attachments != nil {
		ctx, rec := s.ctx, s.attachments
		cmds = append(cmds, func() tea.Msg {
			if err := rec.RecordPicked(ctx, sel, doc); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("document", doc.Name).Msg("journal attachment")
			}
			return nil
		})
	}
	if dir := docDir(doc); dir != "" {
		s.opts.PickerDir = dir
		if remember := s.opts.RememberDir; remember != nil {
			logger := zerolog.Ctx(s.ctx)
			cmds = append(cmds, func() tea.Msg {
				if err := remember(dir); err != nil {
					logger.Warn().Err(err).Msg("remember picker dir")
				}
				return nil
			})
		}
	}
	return tea.Batch(cmds...)
}

func docDir(doc picker.Document) string {
	path, ok := strings.CutPrefix(doc.URI, "file://")
	if !ok || path == "" {
		return ""
	}
	return filepath.Dir(filepath.FromSlash(path))
}

func (s *ReviewScreen) handleError(err error) tea.Cmd {
	zerolog.Ctx(s.ctx).Error().Err(err).Msg("review action failed")
	return s.showToast(backend.UserMessage(err), true)
}

// hardReload refetches everything, bypassing the reference cache.
func (s *ReviewScreen) hardReload() {
	s.store.Dispatch(store.SetHardReloading{Value: true})
	s.store.Dispatch(store.FetchClients{})
	s.store.Dispatch(store.FetchMarkets{})
	s.store.Dispatch(store.FetchPayments{})
}

func (s *ReviewScreen) syncFromStore() {
	st := s.store.Snapshot()
	s.list = st.PaymentList

	s.markets = make(map[string]string, len(st.Markets.Items))
	for _, m := range st.Markets.Items {
		s.markets[m.ID] = m.Name
	}
	s.clients = make(map[string]string, len(st.Clients.Items))
	for _, c := range st.Clients.Items {
		s.clients[c.ID] = c.Names
	}

	// The alert opens once per failed fetch, not on every notification.
	if s.list.ErrorVersion != s.seenErrorVersion {
		s.seenErrorVersion = s.list.ErrorVersion
		if strings.TrimSpace(s.list.LastError) != "" {
			s.alertText = s.list.LastError
			s.showAlert = true
		}
	}
	if !s.list.IsLoading && s.refreshing {
		s.refreshing = false
	}
	s.clampCursor()
}

func (s *ReviewScreen) showToast(text string, isErr bool) tea.Cmd {
	s.toastSeq++
	id := s.toastSeq
	s.toast = toast{id: id, text: text, isErr: isErr}
	return tea.Tick(s.opts.ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

func (s *ReviewScreen) busy() bool {
	return s.list.IsLoading || s.refreshing || s.showLoader
}

func (s *ReviewScreen) startSpinner() tea.Cmd {
	if s.ticking || !s.busy() {
		return nil
	}
	s.ticking = true
	return s.spinner.Tick
}

func (s *ReviewScreen) selectPayment(p backend.Payment) {
	s.selected = &p
}

func (s *ReviewScreen) current() (backend.Payment, bool) {
	rows := s.visibleRows()
	if s.cursor < 0 || s.cursor >= len(rows) {
		return backend.Payment{}, false
	}
	return rows[s.cursor], true
}

func (s *ReviewScreen) clampCursor() {
	n := len(s.visibleRows())
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *ReviewScreen) visibleRows() []backend.Payment {
	q := strings.TrimSpace(s.filter.Value())
	if q == "" {
		return s.list.Payments
	}
	out := make([]backend.Payment, 0, len(s.list.Payments))
	for _, p := range s.list.Payments {
		if matchPayment(p, s.clientName(p), s.marketName(p), q) {
			out = append(out, p)
		}
	}
	return out
}

func (s *ReviewScreen) marketName(p backend.Payment) string {
	if name, ok := s.markets[p.MarketID]; ok {
		return name
	}
	return p.MarketID
}

func (s *ReviewScreen) clientName(p backend.Payment) string {
	if p.ClientNames != "" {
		return p.ClientNames
	}
	return s.clients[p.ClientID]
}
