package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/internal/clock"
	"github.com/smallbiznis/recurrent/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/recurrent/internal/observability/metrics"
	"github.com/smallbiznis/recurrent/internal/providers/email"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Provider email.Provider
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	provider email.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("notification.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		provider: p.Provider,
	}
}

func (s *Service) Enqueue(ctx context.Context, req domain.EnqueueRequest) (domain.Notification, error) {
	recipient := strings.TrimSpace(req.RecipientEmail)
	if recipient == "" || !strings.Contains(recipient, "@") {
		return domain.Notification{}, domain.ErrInvalidRecipient
	}

	switch req.Kind {
	case domain.KindInvoiceNew, domain.KindPaymentFailed,
		domain.KindSubscriptionCanceled, domain.KindAccountSuspended:
	default:
		return domain.Notification{}, domain.ErrInvalidKind
	}

	notification := domain.Notification{
		ID:             s.genID.Generate(),
		RecipientEmail: recipient,
		Subject:        req.Subject,
		Body:           req.Body,
		Kind:           req.Kind,
		Status:         domain.NotificationStatusPending,
		CreatedAt:      s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &notification); err != nil {
		return domain.Notification{}, err
	}

	s.log.Debug("notification queued",
		zap.String("kind", string(notification.Kind)),
		zap.String("recipient", notification.RecipientEmail),
	)
	return notification, nil
}

func (s *Service) DispatchPending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}

	pending, err := s.repo.FindPending(ctx, s.db, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, notification := range pending {
		if err := s.provider.Send(ctx, []string{notification.RecipientEmail}, notification.Subject, notification.Body); err != nil {
			// Leave the row pending; the next dispatch run retries it.
			s.log.Warn("notification delivery failed",
				zap.String("id", notification.ID.String()),
				zap.String("kind", string(notification.Kind)),
				zap.Error(err),
			)
			continue
		}
		if err := s.repo.MarkSent(ctx, s.db, notification.ID, s.clock.Now()); err != nil {
			return sent, err
		}
		obsmetrics.Billing().IncNotificationSent(string(notification.Kind))
		sent++
	}

	return sent, nil
}
