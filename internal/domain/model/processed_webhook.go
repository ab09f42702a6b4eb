package model

import "time"

// ProcessedWebhook is the dedup ledger for gateway callbacks. A row per
// idempotency key; a second delivery of the same key is acknowledged
// without reprocessing.
type ProcessedWebhook struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	IdempotencyKey string    `gorm:"size:128;uniqueIndex;not null" json:"idempotency_key"`
	ProcessedAt    time.Time `gorm:"default:now()" json:"processed_at"`
	CreatedAt      time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (ProcessedWebhook) TableName() string {
	return "processed_webhooks"
}
