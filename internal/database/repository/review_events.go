package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jask/agentwallet/internal/database"
)

// ReviewEventRepo handles the review journal.
type ReviewEventRepo struct {
	db *sql.DB
}

func NewReviewEventRepo(db *sql.DB) *ReviewEventRepo { return &ReviewEventRepo{db: db} }

// Insert stores e. A zero CreatedAt is replaced with the current time.
func (r *ReviewEventRepo) Insert(ctx context.Context, e ReviewEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = database.Now()
	}
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO review_events(id, payment_id, action, reason, outcome, message, document, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.PaymentID, e.Action, e.Reason, e.Outcome, e.Message, e.Document, e.CreatedAt.UTC())
	return err
}

// Recent returns the newest events first.
func (r *ReviewEventRepo) Recent(ctx context.Context, limit int) ([]ReviewEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, payment_id, action, reason, outcome, message, document, created_at
	FROM review_events ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// ForPayment returns the events recorded for one payment, oldest first.
func (r *ReviewEventRepo) ForPayment(ctx context.Context, paymentID int64) ([]ReviewEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, payment_id, action, reason, outcome, message, document, created_at
	FROM review_events WHERE payment_id = ? ORDER BY created_at ASC, rowid ASC`, paymentID)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// DeleteBefore removes events created before cutoff and reports how many went.
func (r *ReviewEventRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM review_events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanEvents(rows *sql.Rows) ([]ReviewEvent, error) {
	defer rows.Close()
	var out []ReviewEvent
	for rows.Next() {
		var e ReviewEvent
		if err := rows.Scan(&e.ID, &e.PaymentID, &e.Action, &e.Reason, &e.Outcome, &e.Message, &e.Document, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
