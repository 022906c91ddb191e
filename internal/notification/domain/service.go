package domain

import (
	"context"
	"errors"
)

type EnqueueRequest struct {
	RecipientEmail string
	Subject        string
	Body           string
	Kind           NotificationKind
}

type Service interface {
	// Enqueue persists a notification event for later delivery.
	Enqueue(ctx context.Context, req EnqueueRequest) (Notification, error)
	// DispatchPending delivers up to limit queued notifications through the
	// configured transport and marks them sent.
	DispatchPending(ctx context.Context, limit int) (int, error)
}

var (
	ErrInvalidRecipient = errors.New("invalid_recipient")
	ErrInvalidKind      = errors.New("invalid_kind")
)
