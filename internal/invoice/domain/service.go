package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/pkg/db/pagination"
)

type IssueInvoiceRequest struct {
	CustomerID     snowflake.ID
	RecipientEmail string
	SubscriptionID snowflake.ID
	PlanName       string
	AmountCents    int64
	IssuedAt       time.Time
}

type ListInvoiceRequest struct {
	CustomerID     string
	SubscriptionID string
	Status         string
	PageToken      string
	PageSize       int32
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	// Issue creates a pending invoice due seven days after issuance and
	// queues the new-invoice notification.
	Issue(context.Context, IssueInvoiceRequest) (Invoice, error)
	// MarkPaid and MarkFailed move a PENDING invoice to its terminal state.
	// Both return ErrInvalidTransition when the invoice already settled.
	MarkPaid(ctx context.Context, id snowflake.ID, paidAt time.Time) error
	MarkFailed(ctx context.Context, id snowflake.ID) error
	// MarkRecovered settles a FAILED invoice whose charge succeeded on a
	// dunning retry.
	MarkRecovered(ctx context.Context, id snowflake.ID, paidAt time.Time) error
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
}

var (
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTransition = errors.New("invalid_transition")
)
