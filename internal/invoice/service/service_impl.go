package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/internal/clock"
	"github.com/smallbiznis/recurrent/internal/invoice/domain"
	notificationdomain "github.com/smallbiznis/recurrent/internal/notification/domain"
	"github.com/smallbiznis/recurrent/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Repo            domain.Repository
	NotificationSvc notificationdomain.Service
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	repo            domain.Repository
	notificationSvc notificationdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("invoice.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		repo:            p.Repo,
		notificationSvc: p.NotificationSvc,
	}
}

func (s *Service) Issue(ctx context.Context, req domain.IssueInvoiceRequest) (domain.Invoice, error) {
	if req.AmountCents < 0 {
		return domain.Invoice{}, domain.ErrInvalidAmount
	}

	issuedAt := req.IssuedAt.UTC()
	invoice := domain.Invoice{
		ID:             s.genID.Generate(),
		CustomerID:     req.CustomerID,
		SubscriptionID: req.SubscriptionID,
		AmountCents:    req.AmountCents,
		Status:         domain.InvoiceStatusPending,
		IssuedAt:       issuedAt,
		DueAt:          issuedAt.Add(domain.DueGracePeriod),
		Metadata:       datatypes.JSONMap{},
		CreatedAt:      issuedAt,
		UpdatedAt:      issuedAt,
	}

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		return domain.Invoice{}, err
	}

	if _, err := s.notificationSvc.Enqueue(ctx, notificationdomain.EnqueueRequest{
		RecipientEmail: req.RecipientEmail,
		Subject:        fmt.Sprintf("Invoice #%s", invoice.ID),
		Body: fmt.Sprintf("New invoice for %s. Amount: %s, Due: %s",
			req.PlanName,
			notificationdomain.FormatAmountCents(invoice.AmountCents),
			invoice.DueAt.Format(time.RFC3339),
		),
		Kind: notificationdomain.KindInvoiceNew,
	}); err != nil {
		// The invoice exists either way; a missing notification is not
		// worth failing the billing operation over.
		s.log.Warn("queue invoice notification",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err),
		)
	}

	return invoice, nil
}

func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID, paidAt time.Time) error {
	return s.transition(ctx, id, []domain.InvoiceStatus{domain.InvoiceStatusPending}, domain.InvoiceStatusPaid, &paidAt)
}

func (s *Service) MarkFailed(ctx context.Context, id snowflake.ID) error {
	return s.transition(ctx, id, []domain.InvoiceStatus{domain.InvoiceStatusPending}, domain.InvoiceStatusFailed, nil)
}

func (s *Service) MarkRecovered(ctx context.Context, id snowflake.ID, paidAt time.Time) error {
	return s.transition(ctx, id, []domain.InvoiceStatus{domain.InvoiceStatusFailed}, domain.InvoiceStatusPaid, &paidAt)
}

func (s *Service) transition(ctx context.Context, id snowflake.ID, expected []domain.InvoiceStatus, target domain.InvoiceStatus, paidAt *time.Time) error {
	affected, err := s.repo.UpdateStatus(ctx, s.db, id, expected, target, paidAt, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		existing, err := s.repo.FindByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidTransition
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Invoice{}, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice == nil {
		return domain.Invoice{}, domain.ErrNotFound
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	filter := domain.ListInvoiceFilter{
		Status: domain.InvoiceStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	}
	if v := strings.TrimSpace(req.CustomerID); v != "" {
		id, err := snowflake.ParseString(v)
		if err != nil {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidID
		}
		filter.CustomerID = &id
	}
	if v := strings.TrimSpace(req.SubscriptionID); v != "" {
		id, err := snowflake.ParseString(v)
		if err != nil {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidID
		}
		filter.SubscriptionID = &id
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
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: invoice.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
