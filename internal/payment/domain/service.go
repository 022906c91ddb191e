package domain

import (
	"context"
	"errors"
)

type RecordChargeRequest struct {
	CustomerID      string `json:"customer_id"`
	PaymentMethodID string `json:"payment_method_id"`
	AmountCents     int64  `json:"amount_cents"`
}

type RecordChargeResponse struct {
	Outcome       Outcome `json:"outcome"`
	DunningCaseID string  `json:"dunning_case_id,omitempty"`
}

// Service records the outcome of a one-off charge against a stored payment
// method, opening a dunning case when the authorizer declines.
type Service interface {
	RecordCharge(context.Context, RecordChargeRequest) (RecordChargeResponse, error)
}

var (
	ErrInvalidCustomer      = errors.New("invalid_customer")
	ErrInvalidPaymentMethod = errors.New("invalid_payment_method")
)
