package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/internal/clock"
	customerdomain "github.com/smallbiznis/recurrent/internal/customer/domain"
	"github.com/smallbiznis/recurrent/internal/dunning/domain"
	invoicedomain "github.com/smallbiznis/recurrent/internal/invoice/domain"
	notificationdomain "github.com/smallbiznis/recurrent/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/recurrent/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/recurrent/internal/payment/domain"
	paymentmethoddomain "github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB                *gorm.DB
	Log               *zap.Logger
	GenID             *snowflake.Node
	Clock             clock.Clock
	Policy            domain.Policy
	Repo              domain.Repository
	Authorizer        paymentdomain.Authorizer
	CustomerRepo      customerdomain.Repository
	PaymentMethodRepo paymentmethoddomain.Repository
	InvoiceSvc        invoicedomain.Service
	NotificationSvc   notificationdomain.Service
}

type Service struct {
	db                *gorm.DB
	log               *zap.Logger
	genID             *snowflake.Node
	clock             clock.Clock
	policy            domain.Policy
	repo              domain.Repository
	authorizer        paymentdomain.Authorizer
	customerRepo      customerdomain.Repository
	paymentMethodRepo paymentmethoddomain.Repository
	invoiceSvc        invoicedomain.Service
	notificationSvc   notificationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:                p.DB,
		log:               p.Log.Named("dunning.service"),
		genID:             p.GenID,
		clock:             p.Clock,
		policy:            p.Policy.WithDefaults(),
		repo:              p.Repo,
		authorizer:        p.Authorizer,
		customerRepo:      p.CustomerRepo,
		paymentMethodRepo: p.PaymentMethodRepo,
		invoiceSvc:        p.InvoiceSvc,
		notificationSvc:   p.NotificationSvc,
	}
}

func (s *Service) OpenCase(ctx context.Context, req domain.OpenCaseRequest) (domain.DunningCase, error) {
	if req.AmountCents <= 0 {
		return domain.DunningCase{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	dunningCase := domain.DunningCase{
		ID:              s.genID.Generate(),
		CustomerID:      req.CustomerID,
		PaymentMethodID: req.PaymentMethodID,
		SubscriptionID:  req.SubscriptionID,
		InvoiceID:       req.InvoiceID,
		AmountCents:     req.AmountCents,
		AttemptCount:    1,
		NextRetryAt:     now.Add(s.policy.RetryDelay),
		Status:          domain.CaseStatusRetrying,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &dunningCase); err != nil {
		return domain.DunningCase{}, err
	}
	obsmetrics.Billing().IncDunningTransition(string(domain.CaseStatusRetrying))

	s.notifyPaymentFailed(ctx, &dunningCase)

	s.log.Info("dunning case opened",
		zap.String("case_id", dunningCase.ID.String()),
		zap.String("customer_id", dunningCase.CustomerID.String()),
		zap.Int64("amount_cents", dunningCase.AmountCents),
		zap.Time("next_retry_at", dunningCase.NextRetryAt),
	)
	return dunningCase, nil
}

func (s *Service) RunDueRetries(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 50
	}

	due, err := s.repo.FindDue(ctx, s.db, s.clock.Now(), limit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, dunningCase := range due {
		if err := s.retryCase(ctx, dunningCase); err != nil {
			s.log.Warn("dunning retry failed",
				zap.String("case_id", dunningCase.ID.String()),
				zap.Error(err),
			)
			continue
		}
		processed++
	}
	return processed, nil
}

func (s *Service) retryCase(ctx context.Context, dunningCase *domain.DunningCase) error {
	method, err := s.paymentMethodRepo.FindByID(ctx, s.db, dunningCase.PaymentMethodID)
	if err != nil {
		return err
	}
	if method == nil {
		return paymentmethoddomain.ErrNotFound
	}

	outcome, err := s.authorizer.Charge(ctx, method.Token, dunningCase.AmountCents)
	if err != nil {
		return err
	}
	obsmetrics.Billing().IncChargeAttempt(string(outcome.Status))

	now := s.clock.Now()
	dunningCase.UpdatedAt = now

	if outcome.Approved() {
		return s.resolve(ctx, dunningCase, now)
	}

	dunningCase.AttemptCount++
	if dunningCase.AttemptCount > s.policy.MaxRetries {
		return s.suspend(ctx, dunningCase)
	}

	dunningCase.NextRetryAt = now.Add(s.policy.RetryDelay)
	if err := s.repo.Update(ctx, s.db, dunningCase); err != nil {
		return err
	}
	s.notifyPaymentFailed(ctx, dunningCase)
	return nil
}

func (s *Service) resolve(ctx context.Context, dunningCase *domain.DunningCase, paidAt time.Time) error {
	if dunningCase.InvoiceID != nil {
		if err := s.invoiceSvc.MarkRecovered(ctx, *dunningCase.InvoiceID, paidAt); err != nil {
			return err
		}
	}

	dunningCase.Status = domain.CaseStatusResolved
	if err := s.repo.Update(ctx, s.db, dunningCase); err != nil {
		return err
	}
	obsmetrics.Billing().IncDunningTransition(string(domain.CaseStatusResolved))

	s.log.Info("dunning case resolved",
		zap.String("case_id", dunningCase.ID.String()),
		zap.Int("attempts", dunningCase.AttemptCount),
	)
	return nil
}

func (s *Service) suspend(ctx context.Context, dunningCase *domain.DunningCase) error {
	dunningCase.Status = domain.CaseStatusSuspended
	if err := s.repo.Update(ctx, s.db, dunningCase); err != nil {
		return err
	}
	obsmetrics.Billing().IncDunningTransition(string(domain.CaseStatusSuspended))

	if email, ok := s.recipient(ctx, dunningCase.CustomerID); ok {
		_, err := s.notificationSvc.Enqueue(ctx, notificationdomain.EnqueueRequest{
			RecipientEmail: email,
			Subject:        "Account Suspended",
			Body: fmt.Sprintf("We could not collect %s after %d attempts. Your account has been suspended; please update your payment method to restore service.",
				notificationdomain.FormatAmountCents(dunningCase.AmountCents),
				dunningCase.AttemptCount,
			),
			Kind: notificationdomain.KindAccountSuspended,
		})
		if err != nil {
			s.log.Warn("queue suspension notification", zap.Error(err))
		}
	}

	s.log.Warn("dunning case exhausted, account flagged for suspension",
		zap.String("case_id", dunningCase.ID.String()),
		zap.String("customer_id", dunningCase.CustomerID.String()),
		zap.Int("attempts", dunningCase.AttemptCount),
	)
	return nil
}

func (s *Service) notifyPaymentFailed(ctx context.Context, dunningCase *domain.DunningCase) {
	email, ok := s.recipient(ctx, dunningCase.CustomerID)
	if !ok {
		return
	}
	_, err := s.notificationSvc.Enqueue(ctx, notificationdomain.EnqueueRequest{
		RecipientEmail: email,
		Subject:        "Payment Failed",
		Body: fmt.Sprintf("Payment of %s failed. We'll retry on %s. Please update your payment method.",
			notificationdomain.FormatAmountCents(dunningCase.AmountCents),
			dunningCase.NextRetryAt.Format(time.RFC3339),
		),
		Kind: notificationdomain.KindPaymentFailed,
	})
	if err != nil {
		s.log.Warn("queue dunning notification", zap.Error(err))
	}
}

func (s *Service) recipient(ctx context.Context, customerID snowflake.ID) (string, bool) {
	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil || customer == nil {
		s.log.Warn("resolve dunning recipient",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return "", false
	}
	return customer.Email, true
}

func (s *Service) List(ctx context.Context, req domain.ListCaseRequest) (domain.ListCaseResponse, error) {
	status := domain.CaseStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	limit := int(req.PageSize)
	if limit <= 0 {
		limit = 50
	}

	items, err := s.repo.List(ctx, s.db, status, limit)
	if err != nil {
		return domain.ListCaseResponse{}, err
	}

	cases := make([]domain.DunningCase, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		cases = append(cases, *item)
	}
	return domain.ListCaseResponse{Cases: cases}, nil
}
