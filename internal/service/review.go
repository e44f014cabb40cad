package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jask/agentwallet/internal/backend"
	"github.com/jask/agentwallet/internal/database/repository"
	"github.com/jask/agentwallet/internal/metrics"
)

var (
	// ErrNoPaymentSelected aborts a rejection that has no payment to act on.
	ErrNoPaymentSelected = errors.New("choose payment please")
	// ErrEmptyReason aborts a rejection whose reason is blank.
	ErrEmptyReason = errors.New("please enter rejection reason")
)

// Rejecter sends rejections to the backend.
type Rejecter interface {
	RejectPayment(ctx context.Context, r backend.RejectRequest) (string, error)
}

// Journal records what the operator did.
type Journal interface {
	Insert(ctx context.Context, e repository.ReviewEvent) error
}

// RejectResult is what a successful rejection reports back.
type RejectResult struct {
	PaymentID int64
	Message   string
}

// ReviewService validates and submits rejections.
type ReviewService struct {
	Backend Rejecter
	Journal Journal
}

// ValidateRejection checks that a payment is selected and the
// trimmed reason is not empty.
func ValidateRejection(selected *backend.Payment, reason string) error {
	if selected == nil {
		return ErrNoPaymentSelected
	}
	if strings.TrimSpace(reason) == "" {
		return ErrEmptyReason
	}
	return nil
}

// Reject validates, then posts the payment snapshot and reason. Validation failures
// return before any network call. The reason is sent as typed.
func (s *ReviewService) Reject(ctx context.Context, selected *backend.Payment, reason string) (RejectResult, error) {
	if err := ValidateRejection(selected, reason); err != nil {
		return RejectResult{}, err
	}
	p := *selected
	logger := zerolog.Ctx(ctx).With().Int64("payment_id", p.ID).Logger()

	msg, err := s.Backend.RejectPayment(ctx, backend.RejectRequest{Payment: p, Reason: reason})
	if err != nil {
		metrics.Rejections.WithLabelValues(repository.OutcomeFailure).Inc()
		logger.Error().Err(err).Msg("reject payment")
		s.record(ctx, p.ID, reason, repository.OutcomeFailure, backend.UserMessage(err))
		return RejectResult{}, err
	}

	metrics.Rejections.WithLabelValues(repository.OutcomeSuccess).Inc()
	logger.Info().Str("msg", msg).Msg("payment rejected")
	s.record(ctx, p.ID, reason, repository.OutcomeSuccess, msg)
	return RejectResult{PaymentID: p.ID, Message: msg}, nil
}

// record writes a journal row. The journal is best effort: a failing write never
// changes the outcome reported to the operator.
func (s *ReviewService) record(ctx context.Context, paymentID int64, reason, outcome, msg string) {
	if s.Journal == nil {
		return
	}
	e := repository.ReviewEvent{
		ID:        uuid.NewString(),
		PaymentID: paymentID,
		Action:    repository.ActionReject,
		Reason:    &reason,
		Outcome:   outcome,
	}
	if msg != "" {
		e.Message = &msg
	}
	if err := s.Journal.Insert(context.WithoutCancel(ctx), e); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("payment_id", paymentID).Msg("journal reject")
	}
}
