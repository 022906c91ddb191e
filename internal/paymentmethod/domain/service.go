package domain

import (
	"context"
	"errors"
)

type CreatePaymentMethodRequest struct {
	CustomerID string `json:"customer_id"`
	CardNumber string `json:"card_number"`
}

type Service interface {
	Create(context.Context, CreatePaymentMethodRequest) (PaymentMethod, error)
	GetByID(ctx context.Context, id string) (PaymentMethod, error)
}

var (
	ErrInvalidCustomer   = errors.New("invalid_customer")
	ErrInvalidCardNumber = errors.New("invalid_card_number")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
)
