package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jask/agentwallet/internal/backend"
	"github.com/jask/agentwallet/internal/database/repository"
	"github.com/jask/agentwallet/internal/picker"
)

// AttachmentService journals documents picked for a payment before they go to Preview.
type AttachmentService struct {
	Journal Journal
}

// RecordPicked notes that doc was chosen for payment. A nil payment (nothing selected)
// is not journaled.
func (s *AttachmentService) RecordPicked(ctx context.Context, payment *backend.Payment, doc picker.Document) error {
	if s == nil || s.Journal == nil || payment == nil {
		return nil
	}
	name := doc.Name
	e := repository.ReviewEvent{
		ID:        uuid.NewString(),
		PaymentID: payment.ID,
		Action:    repository.ActionAttach,
		Outcome:   repository.OutcomeSuccess,
		Document:  &name,
	}
	if err := s.Journal.Insert(ctx, e); err != nil {
		return fmt.Errorf("journal attachment for payment %d: %w", payment.ID, err)
	}
	zerolog.Ctx(ctx).Debug().Int64("payment_id", payment.ID).Str("document", name).Msg("attachment journaled")
	return nil
}
