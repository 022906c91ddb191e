package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/recurrent/internal/clock"
	customerdomain "github.com/smallbiznis/recurrent/internal/customer/domain"
	"github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("paymentmethod.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePaymentMethodRequest) (domain.PaymentMethod, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil {
		return domain.PaymentMethod{}, domain.ErrInvalidCustomer
	}

	card := strings.TrimSpace(req.CardNumber)
	if len(card) < 4 {
		return domain.PaymentMethod{}, domain.ErrInvalidCardNumber
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	if customer == nil {
		return domain.PaymentMethod{}, customerdomain.ErrNotFound
	}

	method := domain.PaymentMethod{
		ID:         s.genID.Generate(),
		CustomerID: customerID,
		Last4:      card[len(card)-4:],
		Token:      uuid.NewString(),
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &method); err != nil {
		return domain.PaymentMethod{}, err
	}

	return method, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.PaymentMethod, error) {
	methodID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.PaymentMethod{}, domain.ErrInvalidID
	}

	method, err := s.repo.FindByID(ctx, s.db, methodID)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	if method == nil {
		return domain.PaymentMethod{}, domain.ErrNotFound
	}

	return *method, nil
}
