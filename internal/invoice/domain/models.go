// Package domain contains persistence models for invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states. The only legal
// transitions are PENDING to PAID and PENDING to FAILED; a FAILED invoice
// may later move to PAID when dunning recovers the charge.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
	InvoiceStatusFailed  InvoiceStatus = "FAILED"
)

// DueGracePeriod is how long a customer has to settle a new invoice.
const DueGracePeriod = 7 * 24 * time.Hour

// Invoice represents one charge raised against a subscription.
type Invoice struct {
	ID             snowflake.ID      `gorm:"primaryKey" json:"id"`
	CustomerID     snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	SubscriptionID snowflake.ID      `gorm:"not null;index" json:"subscription_id"`
	AmountCents    int64             `gorm:"not null;default:0" json:"amount_cents"`
	Status         InvoiceStatus     `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	IssuedAt       time.Time         `gorm:"not null" json:"issued_at"`
	DueAt          time.Time         `gorm:"not null" json:"due_at"`
	PaidAt         *time.Time        `gorm:"" json:"paid_at,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
