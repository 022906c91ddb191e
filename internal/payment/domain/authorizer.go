// Package domain defines the payment authorization contract. A declined
// charge is business data carried in the Outcome, not an error.
package domain

import (
	"context"
	"errors"
)

type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
)

// Outcome is the authorizer's decision for one charge attempt.
type Outcome struct {
	Status        OutcomeStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	ReasonCode    string        `json:"error,omitempty"`
}

func (o Outcome) Approved() bool { return o.Status == OutcomeSuccess }

// Authorizer decides success or failure for a charge against a stored
// payment instrument token. Implementations must not mutate invoice or
// dunning state; callers do.
type Authorizer interface {
	Charge(ctx context.Context, token string, amountCents int64) (Outcome, error)
}

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidToken  = errors.New("invalid_token")
)
