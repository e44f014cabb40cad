package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/agentwallet/internal/backend"
	"github.com/jask/agentwallet/internal/database"
	"github.com/jask/agentwallet/internal/database/repository"
	"github.com/jask/agentwallet/internal/picker"
	"github.com/jask/agentwallet/internal/testdata"
)

type countingRejecter struct {
	calls int
	last  backend.RejectRequest
	msg   string
	err   error
}

func (c *countingRejecter) RejectPayment(ctx context.Context, r backend.RejectRequest) (string, error) {
	c.calls++
	c.last = r
	return c.msg, c.err
}

type failingJournal struct{}

func (failingJournal) Insert(context.Context, repository.ReviewEvent) error {
	return errors.New("disk full")
}

func newJournal(t *testing.T) *repository.ReviewEventRepo {
	t.Helper()
	db, err := database.OpenAndMigrate(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewReviewEventRepo(db)
}

func TestRejectWithoutSelectionMakesNoCall(t *testing.T) {
	r := &countingRejecter{}
	svc := &ReviewService{Backend: r}

	_, err := svc.Reject(context.Background(), nil, "duplicate")
	require.ErrorIs(t, err, ErrNoPaymentSelected)
	require.Zero(t, r.calls)
}

func TestRejectBlankReasonMakesNoCall(t *testing.T) {
	r := &countingRejecter{}
	svc := &ReviewService{Backend: r}

	for _, reason := range []string{"", "   ", "\n\t "} {
		_, err := svc.Reject(context.Background(), &backend.Payment{ID: 1}, reason)
		require.ErrorIs(t, err, ErrEmptyReason)
	}
	require.Zero(t, r.calls)
}

func TestRejectSuccessJournals(t *testing.T) {
	ctx := context.Background()
	fx := testdata.Generate(2, 11)
	be := testdata.NewBackend(fx, "tok")
	srv := httptest.NewServer(be.Handler())
	t.Cleanup(srv.Close)
	client, err := backend.New(srv.URL, "tok", time.Second)
	require.NoError(t, err)
	journal := newJournal(t)
	svc := &ReviewService{Backend: client, Journal: journal}

	payments, err := client.ListPayments(ctx)
	require.NoError(t, err)
	res, err := svc.Reject(ctx, &payments[1], "amount does not match receipt")
	require.NoError(t, err)
	require.Equal(t, payments[1].ID, res.PaymentID)
	require.Equal(t, "Payment rejected successfully", res.Message)
	require.Len(t, be.Pending(), 1)

	events, err := journal.ForPayment(ctx, payments[1].ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, repository.ActionReject, events[0].Action)
	require.Equal(t, repository.OutcomeSuccess, events[0].Outcome)
	require.Equal(t, "amount does not match receipt", *events[0].Reason)
}

func TestRejectFailureJournalsUserMessage(t *testing.T) {
	ctx := context.Background()
	fx := testdata.Generate(1, 12)
	be := testdata.NewBackend(fx, "")
	be.FailNext("/agentswallet/reject/", http.StatusBadRequest, "Payment is already approved")
	srv := httptest.NewServer(be.Handler())
	t.Cleanup(srv.Close)
	client, err := backend.New(srv.URL, "", time.Second)
	require.NoError(t, err)
	journal := newJournal(t)
	svc := &ReviewService{Backend: client, Journal: journal}

	p := fx.Payments[0]
	_, err = svc.Reject(ctx, &p, "late")
	require.Error(t, err)
	require.Equal(t, "Payment is already approved", backend.UserMessage(err))

	events, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, repository.OutcomeFailure, events[0].Outcome)
	require.Equal(t, "Payment is already approved", *events[0].Message)
	require.Len(t, be.Pending(), 1)
}

func TestRejectJournalFailureDoesNotFailRejection(t *testing.T) {
	r := &countingRejecter{msg: "done"}
	svc := &ReviewService{Backend: r, Journal: failingJournal{}}

	res, err := svc.Reject(context.Background(), &backend.Payment{ID: 5}, " keep spacing ")
	require.NoError(t, err)
	require.Equal(t, "done", res.Message)
	require.Equal(t, " keep spacing ", r.last.Reason)
	require.Equal(t, int64(5), r.last.Payment.ID)
}

func TestRecordPicked(t *testing.T) {
	ctx := context.Background()
	journal := newJournal(t)
	svc := &AttachmentService{Journal: journal}

	doc := picker.Document{Name: "receipt.jpg", Type: "image/jpeg"}
	require.NoError(t, svc.RecordPicked(ctx, &backend.Payment{ID: 3}, doc))
	require.NoError(t, svc.RecordPicked(ctx, nil, doc))

	events, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, repository.ActionAttach, events[0].Action)
	require.Equal(t, "receipt.jpg", *events[0].Document)

	var nilSvc *AttachmentService
	require.NoError(t, nilSvc.RecordPicked(ctx, &backend.Payment{ID: 3}, doc))
	require.ErrorContains(t, (&AttachmentService{Journal: failingJournal{}}).RecordPicked(ctx, &backend.Payment{ID: 3}, doc), "disk full")
}
