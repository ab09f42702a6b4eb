package repository

import "context"

// ProcessedWebhookRepository is the webhook dedup ledger.
type ProcessedWebhookRepository interface {
	// Seen reports whether the idempotency key was recorded before.
	Seen(ctx context.Context, idempotencyKey string) (bool, error)

	// Record inserts the key. A duplicate insert is not an error; it
	// means a concurrent delivery won the race.
	Record(ctx context.Context, idempotencyKey string) error
}
