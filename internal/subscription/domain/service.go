package domain

import (
	"context"
	"errors"

	invoicedomain "github.com/smallbiznis/recurrent/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/recurrent/internal/payment/domain"
	"github.com/smallbiznis/recurrent/pkg/db/pagination"
)

type CreateSubscriptionRequest struct {
	CustomerID      string  `json:"customer_id"`
	PlanName        string  `json:"plan_name"`
	Price           float64 `json:"price"`
	BillingInterval string  `json:"billing_interval"`
}

// CreateSubscriptionResponse reports the subscription together with the
// initial invoice and the charge outcome. The subscription is created even
// when the first charge fails; collection then proceeds through dunning.
type CreateSubscriptionResponse struct {
	Subscription  Subscription           `json:"subscription"`
	Invoice       invoicedomain.Invoice  `json:"invoice"`
	ChargeOutcome *paymentdomain.Outcome `json:"charge_outcome,omitempty"`
	DunningCaseID string                 `json:"dunning_case_id,omitempty"`
}

type CancelSubscriptionRequest struct {
	ID string
}

type CancelSubscriptionResponse struct {
	Subscription        Subscription `json:"subscription"`
	ProratedRefundCents int64        `json:"prorated_refund_cents"`
}

type ListSubscriptionRequest struct {
	CustomerID string
	Status     string
	PageToken  string
	PageSize   int32
}

type ListSubscriptionResponse struct {
	pagination.PageInfo
	Subscriptions []Subscription `json:"subscriptions"`
}

type Service interface {
	Create(context.Context, CreateSubscriptionRequest) (CreateSubscriptionResponse, error)
	Cancel(context.Context, CancelSubscriptionRequest) (CancelSubscriptionResponse, error)
	GetByID(ctx context.Context, id string) (Subscription, error)
	List(context.Context, ListSubscriptionRequest) (ListSubscriptionResponse, error)
}

var (
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrInvalidPlanName = errors.New("invalid_plan_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidInterval = errors.New("invalid_interval")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("subscription_not_found")
	ErrNotActive       = errors.New("subscription_not_active")
)
