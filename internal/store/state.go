package store

import "github.com/jask/agentwallet/internal/backend"

// State is the snapshot screens read.
type State struct {
	PaymentList PaymentList
	Clients     ReferenceList[backend.ClientRef]
	Markets     ReferenceList[backend.Market]
}

// PaymentList is the payment list slice.
type PaymentList struct {
	Payments      []backend.Payment
	IsLoading     bool
	HardReloading bool
	LoadingError  string
	// ErrorVersion increases every time a fetch fails, so observers can tell two
	// identical messages apart. LastError is the message of that failure and
	// survives the next fetch clearing LoadingError.
	ErrorVersion uint64
	LastError    string
}

// ReferenceList is a slice of auxiliary reference data.
type ReferenceList[T any] struct {
	Items     []T
	IsLoading bool
	Err       string
}

func (s State) clone() State {
	out := s
	out.PaymentList.Payments = append([]backend.Payment(nil), s.PaymentList.Payments...)
	out.Clients.Items = append([]backend.ClientRef(nil), s.Clients.Items...)
	out.Markets.Items = append([]backend.Market(nil), s.Markets.Items...)
	return out
}

// Action is a command dispatched to the store.
type Action interface {
	actionName() string
}

// FetchPayments reloads the payment list.
type FetchPayments struct{}

// FetchClients reloads the client reference list.
type FetchClients struct{}

// FetchMarkets reloads the market reference list.
type FetchMarkets struct{}

// SetHardReloading marks the next fetches as a hard reload: reference lists skip the cache.
type SetHardReloading struct{ Value bool }

func (FetchPayments) actionName() string    { return "fetch_payments" }
func (FetchClients) actionName() string     { return "fetch_clients" }
func (FetchMarkets) actionName() string     { return "fetch_markets" }
func (SetHardReloading) actionName() string { return "set_hard_reloading" }
