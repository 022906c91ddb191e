// Package domain contains the notification event model. The billing core
// only decides what to send and when; delivery belongs to the email provider.
package domain

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// NotificationKind classifies the four billing events that reach customers.
type NotificationKind string

const (
	KindInvoiceNew           NotificationKind = "invoice_new"
	KindPaymentFailed        NotificationKind = "payment_failed"
	KindSubscriptionCanceled NotificationKind = "subscription_canceled"
	KindAccountSuspended     NotificationKind = "account_suspended"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "PENDING"
	NotificationStatusSent    NotificationStatus = "SENT"
)

// Notification is a queued outbound message. Rows act as an outbox so
// delivery survives process restarts.
type Notification struct {
	ID             snowflake.ID       `gorm:"primaryKey" json:"id"`
	RecipientEmail string             `gorm:"type:text;not null" json:"recipient_email"`
	Subject        string             `gorm:"type:text;not null" json:"subject"`
	Body           string             `gorm:"type:text;not null" json:"body"`
	Kind           NotificationKind   `gorm:"type:text;not null;index" json:"kind"`
	Status         NotificationStatus `gorm:"type:text;not null;default:'PENDING';index" json:"status"`
	CreatedAt      time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	SentAt         *time.Time         `gorm:"" json:"sent_at,omitempty"`
}

// TableName sets the database table name.
func (Notification) TableName() string { return "notifications" }

// FormatAmountCents renders an int64 cent amount as a dollar string.
func FormatAmountCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
