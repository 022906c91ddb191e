// Package domain contains persistence models for customers.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type CustomerRole string

const (
	RoleUser  CustomerRole = "user"
	RoleAdmin CustomerRole = "admin"
)

// Customer owns subscriptions, invoices and payment methods.
type Customer struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	Name      string            `gorm:"type:text" json:"name"`
	Email     string            `gorm:"not null;uniqueIndex" json:"email"`
	Role      CustomerRole      `gorm:"type:text;not null;default:'user'" json:"role"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
