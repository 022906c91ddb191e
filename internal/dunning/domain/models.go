// Package domain contains the dunning case model: one row per failing
// charge, persisted so retries survive process restarts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CaseStatus is the dunning state machine. A case is created RETRYING on
// the first charge failure; SUSPENDED and RESOLVED are terminal.
type CaseStatus string

const (
	CaseStatusRetrying  CaseStatus = "RETRYING"
	CaseStatusSuspended CaseStatus = "SUSPENDED"
	CaseStatusResolved  CaseStatus = "RESOLVED"
)

// DunningCase tracks collection on a failed recurring charge.
type DunningCase struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	CustomerID      snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	PaymentMethodID snowflake.ID  `gorm:"not null" json:"payment_method_id"`
	SubscriptionID  *snowflake.ID `gorm:"index" json:"subscription_id,omitempty"`
	InvoiceID       *snowflake.ID `gorm:"index" json:"invoice_id,omitempty"`
	AmountCents     int64         `gorm:"not null" json:"amount_cents"`
	AttemptCount    int           `gorm:"not null;default:1" json:"attempt_count"`
	NextRetryAt     time.Time     `gorm:"not null;index" json:"next_retry_at"`
	Status          CaseStatus    `gorm:"type:text;not null;default:'RETRYING';index" json:"status"`
	CreatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (DunningCase) TableName() string { return "dunning_cases" }
