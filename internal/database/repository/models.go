package repository

import "time"

// Review actions.
const (
	ActionReject = "reject"
	ActionAttach = "attach"
)

// Review outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ReviewEvent is one journal row: something the operator did to a payment request.
type ReviewEvent struct {
	ID        string
	PaymentID int64
	Action    string
	Reason    *string
	Outcome   string
	Message   *string
	Document  *string
	CreatedAt time.Time
}
