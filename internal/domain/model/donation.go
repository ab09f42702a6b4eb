package model

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// DonationStatus represents the lifecycle state of a donation
type DonationStatus string

const (
	// DonationStatusPending means the row exists but no gateway invoice yet
	DonationStatusPending DonationStatus = "pending"
	// DonationStatusProcessing means an invoice was created and the payer
	// has not finished on the gateway's hosted page
	DonationStatusProcessing DonationStatus = "processing"
	DonationStatusCompleted  DonationStatus = "completed"
	DonationStatusFailed     DonationStatus = "failed"
)

// Terminal reports whether no further transition is permitted from s.
func (s DonationStatus) Terminal() bool {
	return s == DonationStatusCompleted || s == DonationStatusFailed
}

// Scan implements sql.Scanner interface
func (s *DonationStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = DonationStatus(v)
	case []byte:
		*s = DonationStatus(v)
	default:
		*s = DonationStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s DonationStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// Donation represents one tipping transaction
type Donation struct {
	ID               int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StreamerID       int64           `gorm:"not null;index" json:"streamer_id"`
	StreamerUsername string          `gorm:"size:100" json:"streamer_username"`
	StreamerName     string          `gorm:"size:150" json:"streamer_name"`
	DonorName        string          `gorm:"size:150;not null" json:"donor_name"`
	Message          string          `gorm:"size:500" json:"message"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod    string          `gorm:"size:100" json:"payment_method"`
	PaymentMethodID  int             `json:"payment_method_id"`
	RequiresRedirect bool            `gorm:"default:false" json:"requires_redirect"`
	WalletNumber     *string         `gorm:"size:20" json:"wallet_number,omitempty"`
	InvoiceURL       *string         `gorm:"size:500" json:"invoice_url,omitempty"`
	InvoiceKey       *string         `gorm:"size:100" json:"invoice_key,omitempty"`
	InvoiceID        *string         `gorm:"size:100;uniqueIndex" json:"invoice_id,omitempty"`
	Status           DonationStatus  `gorm:"size:20;default:'pending';index" json:"status"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`
	CreatedAt        time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Donation) TableName() string {
	return "donations"
}
