package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jask/agentwallet/internal/backend"
	"github.com/jask/agentwallet/internal/metrics"
)

// Fetcher loads the lists the store holds.
type Fetcher interface {
	ListPayments(ctx context.Context) ([]backend.Payment, error)
	ListClients(ctx context.Context) ([]backend.ClientRef, error)
	ListMarkets(ctx context.Context) ([]backend.Market, error)
}

// Options tunes request timeouts and reference caching.
type Options struct {
	// Timeout bounds every fetch. Zero means 15s.
	Timeout time.Duration
	// ReferenceTTL is how long clients and markets are served from cache. Zero disables the cache.
	ReferenceTTL time.Duration
}

const (
	cacheKeyClients = "clients"
	cacheKeyMarkets = "markets"
)

// Store holds the shared state. Fetches run in their own goroutines; only the response
// of the most recently issued fetch of each list is applied.
type Store struct {
	ctx     context.Context
	cancel  context.CancelFunc
	fetcher Fetcher
	timeout time.Duration
	refs    *cache.Cache

	mu          sync.Mutex
	state       State
	paymentsSeq uint64
	clientsSeq  uint64
	marketsSeq  uint64
	subs        map[*Subscription]struct{}
	closed      bool
	wg          sync.WaitGroup
}

// New returns a Store whose fetches live as long as ctx (or until Close).
func New(ctx context.Context, f Fetcher, opts Options) *Store {
	ctx, cancel := context.WithCancel(ctx)
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	s := &Store{
		ctx:     ctx,
		cancel:  cancel,
		fetcher: f,
		timeout: opts.Timeout,
		subs:    map[*Subscription]struct{}{},
	}
	if opts.ReferenceTTL > 0 {
		s.refs = cache.New(opts.ReferenceTTL, 2*opts.ReferenceTTL)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies a. Fetch actions return immediately; their results arrive later
// through subscriptions.
func (s *Store) Dispatch(a Action) {
	zerolog.Ctx(s.ctx).Debug().Str("action", a.actionName()).Msg("dispatch")
	switch act := a.(type) {
	case SetHardReloading:
		s.mu.Lock()
		s.state.PaymentList.HardReloading = act.Value
		s.notifyLocked()
		s.mu.Unlock()
	case FetchPayments:
		s.fetchPayments()
	case FetchClients:
		fetchReference(s, cacheKeyClients, &s.clientsSeq,
			func(st *State) *ReferenceList[backend.ClientRef] { return &st.Clients },
			s.fetcher.ListClients)
	case FetchMarkets:
		fetchReference(s, cacheKeyMarkets, &s.marketsSeq,
			func(st *State) *ReferenceList[backend.Market] { return &st.Markets },
			s.fetcher.ListMarkets)
	}
}

func (s *Store) fetchPayments() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.paymentsSeq++
	seq := s.paymentsSeq
	s.state.PaymentList.IsLoading = true
	s.state.PaymentList.LoadingError = ""
	s.notifyLocked()
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		payments, err := s.fetcher.ListPayments(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		logger := zerolog.Ctx(s.ctx)
		if s.closed || errors.Is(s.ctx.Err(), context.Canceled) {
			return
		}
		if seq != s.paymentsSeq {
			metrics.StaleResponses.WithLabelValues("payments").Inc()
			logger.Debug().Uint64("seq", seq).Uint64("latest", s.paymentsSeq).Msg("dropping stale payment list response")
			return
		}
		pl := &s.state.PaymentList
		pl.IsLoading = false
		pl.HardReloading = false
		if err != nil {
			logger.Error().Err(err).Msg("load payment list")
			pl.LoadingError = backend.UserMessage(err)
			pl.LastError = pl.LoadingError
			pl.ErrorVersion++
		} else {
			pl.Payments = payments
		}
		s.notifyLocked()
	}()
}

func fetchReference[T any](s *Store, key string, seqp *uint64, slice func(*State) *ReferenceList[T], load func(context.Context) ([]T, error)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	l := slice(&s.state)
	if !s.state.PaymentList.HardReloading && s.refs != nil {
		if cached, ok := s.refs.Get(key); ok {
			*seqp++
			l.Items = cached.([]T)
			l.IsLoading = false
			l.Err = ""
			s.notifyLocked()
			s.mu.Unlock()
			return
		}
	}
	*seqp++
	seq := *seqp
	l.IsLoading = true
	s.notifyLocked()
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()
		items, err := load(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		logger := zerolog.Ctx(s.ctx)
		if s.closed || errors.Is(s.ctx.Err(), context.Canceled) {
			return
		}
		if seq != *seqp {
			metrics.StaleResponses.WithLabelValues(key).Inc()
			logger.Debug().Str("list", key).Msg("dropping stale reference response")
			return
		}
		l := slice(&s.state)
		l.IsLoading = false
		if err != nil {
			logger.Warn().Err(err).Str("list", key).Msg("load reference list")
			l.Err = backend.UserMessage(err)
		} else {
			l.Items = items
			l.Err = ""
			if s.refs != nil {
				s.refs.SetDefault(key, items)
			}
		}
		s.notifyLocked()
	}()
}

// Wait blocks until every fetch issued so far has finished.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight fetches, waits for them and ends every subscription.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	subs := make([]*Subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()
	for _, sub := range subs {
		sub.Cancel()
	}
}

func (s *Store) notifyLocked() {
	for sub := range s.subs {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}
