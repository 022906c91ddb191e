// Package domain contains persistence models for subscriptions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SubscriptionStatus represents lifecycle states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusCanceled SubscriptionStatus = "CANCELED"
)

// BillingInterval is how often the plan price recurs.
type BillingInterval string

const (
	IntervalMonthly BillingInterval = "monthly"
	IntervalYearly  BillingInterval = "yearly"
)

// Subscription captures a customer's billing agreement. EndAt is set
// exactly when the subscription is canceled and never precedes StartAt.
type Subscription struct {
	ID         snowflake.ID       `gorm:"primaryKey" json:"id"`
	CustomerID snowflake.ID       `gorm:"not null;index" json:"customer_id"`
	PlanName   string             `gorm:"type:text;not null" json:"plan_name"`
	PriceCents int64              `gorm:"not null" json:"price_cents"`
	Interval   BillingInterval    `gorm:"type:text;not null" json:"billing_interval"`
	Status     SubscriptionStatus `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	StartAt    time.Time          `gorm:"not null" json:"start_at"`
	EndAt      *time.Time         `gorm:"" json:"end_at,omitempty"`
	Metadata   datatypes.JSONMap  `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
