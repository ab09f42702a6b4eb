package repository

import (
	"context"

	"github.com/streamtip/donation-service/internal/domain/model"
)

// DonationRepository is the single source of truth for donation rows.
//
// The status mutators are conditional single-statement updates: a row
// that already reached completed is never regressed, and the guard lives
// in the statement itself so concurrent webhook deliveries cannot race a
// read-then-write window.
type DonationRepository interface {
	Create(ctx context.Context, donation *model.Donation) error
	GetByID(ctx context.Context, id int64) (*model.Donation, error)
	GetByInvoiceID(ctx context.Context, invoiceID string) (*model.Donation, error)
	ListByStreamer(ctx context.Context, streamerID int64, limit, offset int) ([]model.Donation, error)

	// AttachInvoice stores the gateway invoice fields and moves the row
	// to processing in one statement.
	AttachInvoice(ctx context.Context, id int64, invoiceURL, invoiceKey, invoiceID string) error

	// SetStatus updates status by primary id (redirect-callback path).
	// Terminal rows are never overwritten with a non-terminal status and
	// completed is never overwritten at all.
	SetStatus(ctx context.Context, id int64, status model.DonationStatus) error

	// TransitionByInvoiceID applies a terminal status keyed on invoice_id
	// unless the row is already completed. Returns rows affected.
	TransitionByInvoiceID(ctx context.Context, invoiceID string, target model.DonationStatus) (int64, error)

	// CompleteByID marks a donation completed and stamps processed_at
	// unless it is already completed. Returns rows affected.
	CompleteByID(ctx context.Context, id int64) (int64, error)
}
