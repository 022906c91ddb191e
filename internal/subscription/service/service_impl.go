package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/internal/clock"
	customerdomain "github.com/smallbiznis/recurrent/internal/customer/domain"
	dunningdomain "github.com/smallbiznis/recurrent/internal/dunning/domain"
	invoicedomain "github.com/smallbiznis/recurrent/internal/invoice/domain"
	notificationdomain "github.com/smallbiznis/recurrent/internal/notification/domain"
	obsmetrics "github.com/smallbiznis/recurrent/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/recurrent/internal/payment/domain"
	paymentmethoddomain "github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
	"github.com/smallbiznis/recurrent/internal/proration"
	"github.com/smallbiznis/recurrent/internal/subscription/domain"
	"github.com/smallbiznis/recurrent/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB                *gorm.DB
	Log               *zap.Logger
	GenID             *snowflake.Node
	Clock             clock.Clock
	Repo              domain.Repository
	CustomerRepo      customerdomain.Repository
	PaymentMethodRepo paymentmethoddomain.Repository
	Authorizer        paymentdomain.Authorizer
	InvoiceSvc        invoicedomain.Service
	DunningSvc        dunningdomain.Service
	NotificationSvc   notificationdomain.Service
}

type Service struct {
	db                *gorm.DB
	log               *zap.Logger
	genID             *snowflake.Node
	clock             clock.Clock
	repo              domain.Repository
	customerRepo      customerdomain.Repository
	paymentMethodRepo paymentmethoddomain.Repository
	authorizer        paymentdomain.Authorizer
	invoiceSvc        invoicedomain.Service
	dunningSvc        dunningdomain.Service
	notificationSvc   notificationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:                p.DB,
		log:               p.Log.Named("subscription.service"),
		genID:             p.GenID,
		clock:             p.Clock,
		repo:              p.Repo,
		customerRepo:      p.CustomerRepo,
		paymentMethodRepo: p.PaymentMethodRepo,
		authorizer:        p.Authorizer,
		invoiceSvc:        p.InvoiceSvc,
		dunningSvc:        p.DunningSvc,
		notificationSvc:   p.NotificationSvc,
	}
}

// Create activates a subscription, issues its first invoice and attempts
// the initial charge. A declined charge does not undo the subscription:
// the invoice is marked failed and a dunning case takes over collection.
func (s *Service) Create(ctx context.Context, req domain.CreateSubscriptionRequest) (domain.CreateSubscriptionResponse, error) {
	if req.PlanName == "" {
		return domain.CreateSubscriptionResponse{}, domain.ErrInvalidPlanName
	}
	if req.Price < 0 {
		return domain.CreateSubscriptionResponse{}, domain.ErrInvalidPrice
	}

	interval := domain.BillingInterval(req.BillingInterval)
	if interval == "" {
		interval = domain.IntervalMonthly
	}
	if interval != domain.IntervalMonthly && interval != domain.IntervalYearly {
		return domain.CreateSubscriptionResponse{}, domain.ErrInvalidInterval
	}

	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return domain.CreateSubscriptionResponse{}, domain.ErrInvalidCustomer
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.CreateSubscriptionResponse{}, err
	}
	if customer == nil {
		return domain.CreateSubscriptionResponse{}, customerdomain.ErrNotFound
	}

	now := s.clock.Now()
	priceCents := toCents(req.Price)

	subscription := domain.Subscription{
		ID:         s.genID.Generate(),
		CustomerID: customer.ID,
		PlanName:   req.PlanName,
		PriceCents: priceCents,
		Interval:   interval,
		Status:     domain.SubscriptionStatusActive,
		StartAt:    now,
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, &subscription); err != nil {
		return domain.CreateSubscriptionResponse{}, err
	}

	invoice, err := s.invoiceSvc.Issue(ctx, invoicedomain.IssueInvoiceRequest{
		CustomerID:     customer.ID,
		RecipientEmail: customer.Email,
		SubscriptionID: subscription.ID,
		PlanName:       subscription.PlanName,
		AmountCents:    priceCents,
		IssuedAt:       now,
	})
	if err != nil {
		return domain.CreateSubscriptionResponse{}, err
	}

	resp := domain.CreateSubscriptionResponse{
		Subscription: subscription,
		Invoice:      invoice,
	}

	if priceCents == 0 {
		if err := s.invoiceSvc.MarkPaid(ctx, invoice.ID, now); err != nil {
			return domain.CreateSubscriptionResponse{}, err
		}
		invoice.Status = invoicedomain.InvoiceStatusPaid
		invoice.PaidAt = &now
		resp.Invoice = invoice
		return resp, nil
	}

	method, err := s.paymentMethodRepo.FindLatestByCustomerID(ctx, s.db, customer.ID)
	if err != nil {
		return domain.CreateSubscriptionResponse{}, err
	}
	if method == nil {
		s.log.Warn("no payment method on file, invoice left pending",
			zap.String("customer_id", customer.ID.String()),
			zap.String("invoice_id", invoice.ID.String()),
		)
		return resp, nil
	}

	outcome, err := s.authorizer.Charge(ctx, method.Token, priceCents)
	if err != nil {
		return domain.CreateSubscriptionResponse{}, err
	}
	obsmetrics.Billing().IncChargeAttempt(string(outcome.Status))
	resp.ChargeOutcome = &outcome

	if outcome.Approved() {
		if err := s.invoiceSvc.MarkPaid(ctx, invoice.ID, now); err != nil {
			return domain.CreateSubscriptionResponse{}, err
		}
		invoice.Status = invoicedomain.InvoiceStatusPaid
		invoice.PaidAt = &now
		resp.Invoice = invoice

		s.log.Info("subscription activated",
			zap.String("subscription_id", subscription.ID.String()),
			zap.String("transaction_id", outcome.TransactionID),
		)
		return resp, nil
	}

	if err := s.invoiceSvc.MarkFailed(ctx, invoice.ID); err != nil {
		return domain.CreateSubscriptionResponse{}, err
	}
	invoice.Status = invoicedomain.InvoiceStatusFailed
	resp.Invoice = invoice

	dunningCase, err := s.dunningSvc.OpenCase(ctx, dunningdomain.OpenCaseRequest{
		CustomerID:      customer.ID,
		PaymentMethodID: method.ID,
		SubscriptionID:  &subscription.ID,
		InvoiceID:       &invoice.ID,
		AmountCents:     priceCents,
	})
	if err != nil {
		return domain.CreateSubscriptionResponse{}, err
	}
	resp.DunningCaseID = dunningCase.ID.String()

	s.log.Info("initial charge declined, dunning opened",
		zap.String("subscription_id", subscription.ID.String()),
		zap.String("case_id", dunningCase.ID.String()),
		zap.String("reason", outcome.ReasonCode),
	)
	return resp, nil
}

// Cancel moves an ACTIVE subscription to CANCELED, stamps the end time and
// reports the prorated refund for the unused part of the current period.
// Canceling twice returns ErrNotActive.
func (s *Service) Cancel(ctx context.Context, req domain.CancelSubscriptionRequest) (domain.CancelSubscriptionResponse, error) {
	id, err := snowflake.ParseString(req.ID)
	if err != nil {
		return domain.CancelSubscriptionResponse{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	affected, err := s.repo.CancelActive(ctx, s.db, id, now)
	if err != nil {
		return domain.CancelSubscriptionResponse{}, err
	}
	if affected == 0 {
		existing, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return domain.CancelSubscriptionResponse{}, err
		}
		if existing == nil {
			return domain.CancelSubscriptionResponse{}, domain.ErrNotFound
		}
		return domain.CancelSubscriptionResponse{}, domain.ErrNotActive
	}

	subscription, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.CancelSubscriptionResponse{}, err
	}

	refundCents := proration.Compute(subscription.PriceCents, subscription.StartAt, now)
	if refundCents > 0 {
		customer, err := s.customerRepo.FindByID(ctx, s.db, subscription.CustomerID)
		if err != nil {
			return domain.CancelSubscriptionResponse{}, err
		}
		if customer != nil {
			if _, err := s.notificationSvc.Enqueue(ctx, notificationdomain.EnqueueRequest{
				RecipientEmail: customer.Email,
				Subject:        "Subscription canceled",
				Body: fmt.Sprintf("Your subscription has been canceled. Prorated refund: %s",
					notificationdomain.FormatAmountCents(refundCents)),
				Kind: notificationdomain.KindSubscriptionCanceled,
			}); err != nil {
				s.log.Warn("failed to enqueue cancellation notice",
					zap.String("subscription_id", subscription.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	s.log.Info("subscription canceled",
		zap.String("subscription_id", subscription.ID.String()),
		zap.Int64("refund_cents", refundCents),
	)

	return domain.CancelSubscriptionResponse{
		Subscription:        *subscription,
		ProratedRefundCents: refundCents,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Subscription, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Subscription{}, domain.ErrInvalidID
	}

	subscription, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Subscription{}, err
	}
	if subscription == nil {
		return domain.Subscription{}, domain.ErrNotFound
	}
	return *subscription, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSubscriptionRequest) (domain.ListSubscriptionResponse, error) {
	filter := domain.ListSubscriptionFilter{
		Status: domain.SubscriptionStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	}
	if v := strings.TrimSpace(req.CustomerID); v != "" {
		customerID, err := snowflake.ParseString(v)
		if err != nil {
			return domain.ListSubscriptionResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = &customerID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListSubscriptionResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(sub *domain.Subscription) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: sub.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	subscriptions := make([]domain.Subscription, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		subscriptions = append(subscriptions, *item)
	}

	resp := domain.ListSubscriptionResponse{Subscriptions: subscriptions}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func toCents(price float64) int64 {
	return int64(math.Floor(price*100 + 0.5))
}
