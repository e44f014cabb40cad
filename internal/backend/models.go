package backend

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a payment request submitted by an agent and awaiting review.
type Payment struct {
	ID           int64           `json:"id"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency,omitempty"`
	AgentID      string          `json:"agent_id"`
	AgentNames   string          `json:"agent_names"`
	ClientID     string          `json:"client_id,omitempty"`
	ClientNames  string          `json:"client_names,omitempty"`
	MarketID     string          `json:"market_id,omitempty"`
	Status       string          `json:"status"`
	PaymentProof *string         `json:"payment_proof,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`

	// raw keeps the payload exactly as the backend sent it so a rejection echoes fields
	// this client does not model.
	raw json.RawMessage
}

// UnmarshalJSON decodes a payment and keeps a copy of the payload as received.
func (p *Payment) UnmarshalJSON(b []byte) error {
	type plain Payment
	var out plain
	if err := json.Unmarshal(b, &out); err != nil {
		return err
	}
	*p = Payment(out)
	p.raw = append(json.RawMessage(nil), b...)
	return nil
}

// HasProof reports whether a proof-of-payment document is already attached.
func (p Payment) HasProof() bool {
	return p.PaymentProof != nil && *p.PaymentProof != ""
}

// ClientRef is a client record used to label payments.
type ClientRef struct {
	ID    string `json:"id"`
	Names string `json:"names"`
	Phone string `json:"phone,omitempty"`
}

// Market is auxiliary reference data shown next to payments.
type Market struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RejectRequest is a payment snapshot plus the operator's reason.
// It encodes as the payment's fields with "reason" added alongside them.
type RejectRequest struct {
	Payment Payment
	Reason  string
}

// MarshalJSON flattens the payment fields and the reason into one object. A decoded payment
// is echoed exactly as received; only a payment built in code is encoded from its fields.
func (r RejectRequest) MarshalJSON() ([]byte, error) {
	src := r.Payment.raw
	if len(src) == 0 {
		type plain Payment
		b, err := json.Marshal(plain(r.Payment))
		if err != nil {
			return nil, err
		}
		src = b
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(src, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}

	reason, err := json.Marshal(r.Reason)
	if err != nil {
		return nil, err
	}
	fields["reason"] = reason
	return json.Marshal(fields)
}

// MessageResponse is the `{msg}` body the backend returns on success and on most errors.
type MessageResponse struct {
	Msg string `json:"msg"`
}
