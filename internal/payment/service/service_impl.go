package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/recurrent/internal/customer/domain"
	dunningdomain "github.com/smallbiznis/recurrent/internal/dunning/domain"
	obsmetrics "github.com/smallbiznis/recurrent/internal/observability/metrics"
	"github.com/smallbiznis/recurrent/internal/payment/domain"
	paymentmethoddomain "github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB                *gorm.DB
	Log               *zap.Logger
	Authorizer        domain.Authorizer
	CustomerRepo      customerdomain.Repository
	PaymentMethodRepo paymentmethoddomain.Repository
	DunningSvc        dunningdomain.Service
}

type Service struct {
	db                *gorm.DB
	log               *zap.Logger
	authorizer        domain.Authorizer
	customerRepo      customerdomain.Repository
	paymentMethodRepo paymentmethoddomain.Repository
	dunningSvc        dunningdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:                p.DB,
		log:               p.Log.Named("payment.service"),
		authorizer:        p.Authorizer,
		customerRepo:      p.CustomerRepo,
		paymentMethodRepo: p.PaymentMethodRepo,
		dunningSvc:        p.DunningSvc,
	}
}

// RecordCharge runs one authorization attempt against a stored payment
// method. A declined charge is a successful call: the outcome is returned
// as data and a dunning case is opened for collection.
func (s *Service) RecordCharge(ctx context.Context, req domain.RecordChargeRequest) (domain.RecordChargeResponse, error) {
	if req.AmountCents <= 0 {
		return domain.RecordChargeResponse{}, domain.ErrInvalidAmount
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil {
		return domain.RecordChargeResponse{}, domain.ErrInvalidCustomer
	}
	methodID, err := snowflake.ParseString(strings.TrimSpace(req.PaymentMethodID))
	if err != nil {
		return domain.RecordChargeResponse{}, domain.ErrInvalidPaymentMethod
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.RecordChargeResponse{}, err
	}
	if customer == nil {
		return domain.RecordChargeResponse{}, customerdomain.ErrNotFound
	}

	method, err := s.paymentMethodRepo.FindByID(ctx, s.db, methodID)
	if err != nil {
		return domain.RecordChargeResponse{}, err
	}
	if method == nil {
		return domain.RecordChargeResponse{}, paymentmethoddomain.ErrNotFound
	}

	outcome, err := s.authorizer.Charge(ctx, method.Token, req.AmountCents)
	if err != nil {
		return domain.RecordChargeResponse{}, err
	}
	obsmetrics.Billing().IncChargeAttempt(string(outcome.Status))

	resp := domain.RecordChargeResponse{Outcome: outcome}
	if outcome.Approved() {
		return resp, nil
	}

	dunningCase, err := s.dunningSvc.OpenCase(ctx, dunningdomain.OpenCaseRequest{
		CustomerID:      customerID,
		PaymentMethodID: methodID,
		AmountCents:     req.AmountCents,
	})
	if err != nil {
		return domain.RecordChargeResponse{}, err
	}
	resp.DunningCaseID = dunningCase.ID.String()
	return resp, nil
}
