package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Policy is the retry budget for a failing charge. MaxRetries counts
// scheduled retries after the initial failure; once they are spent the
// case suspends.
type Policy struct {
	MaxRetries int
	RetryDelay time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 1,
		RetryDelay: 48 * time.Hour,
	}
}

func (p Policy) WithDefaults() Policy {
	defaults := DefaultPolicy()
	if p.MaxRetries <= 0 {
		p.MaxRetries = defaults.MaxRetries
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = defaults.RetryDelay
	}
	return p
}

type OpenCaseRequest struct {
	CustomerID      snowflake.ID
	PaymentMethodID snowflake.ID
	SubscriptionID  *snowflake.ID
	InvoiceID       *snowflake.ID
	AmountCents     int64
}

type ListCaseRequest struct {
	Status    string
	PageSize  int32
	PageToken string
}

type ListCaseResponse struct {
	Cases []DunningCase `json:"cases"`
}

type Service interface {
	// OpenCase records the first failure of a charge: a RETRYING case with
	// attempt count 1 and a retry scheduled one delay from now, plus a
	// payment-failed notification for the customer.
	OpenCase(context.Context, OpenCaseRequest) (DunningCase, error)
	// RunDueRetries re-attempts every RETRYING case whose retry time has
	// passed and returns how many cases were processed.
	RunDueRetries(ctx context.Context, limit int) (int, error)
	List(context.Context, ListCaseRequest) (ListCaseResponse, error)
}

var (
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrNotFound      = errors.New("not_found")
)
