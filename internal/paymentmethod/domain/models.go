// Package domain contains persistence models for stored payment instruments.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentMethod stores a tokenized card reference. Only the last four
// digits of the card number are retained.
type PaymentMethod struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Last4      string       `gorm:"type:text;not null" json:"last4"`
	Token      string       `gorm:"type:text;not null" json:"-"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (PaymentMethod) TableName() string { return "payment_methods" }
