package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/recurrent/internal/config"
	customerdomain "github.com/smallbiznis/recurrent/internal/customer/domain"
	dunningdomain "github.com/smallbiznis/recurrent/internal/dunning/domain"
	invoicedomain "github.com/smallbiznis/recurrent/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/recurrent/internal/payment/domain"
	paymentmethoddomain "github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
	subscriptiondomain "github.com/smallbiznis/recurrent/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine           *gin.Engine
	cfg              config.Config
	db               *gorm.DB
	customerSvc      customerdomain.Service
	paymentMethodSvc paymentmethoddomain.Service
	subscriptionSvc  subscriptiondomain.Service
	invoiceSvc       invoicedomain.Service
	paymentSvc       paymentdomain.Service
	dunningSvc       dunningdomain.Service
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	DB               *gorm.DB
	CustomerSvc      customerdomain.Service
	PaymentMethodSvc paymentmethoddomain.Service
	SubscriptionSvc  subscriptiondomain.Service
	InvoiceSvc       invoicedomain.Service
	PaymentSvc       paymentdomain.Service
	DunningSvc       dunningdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		db:               p.DB,
		customerSvc:      p.CustomerSvc,
		paymentMethodSvc: p.PaymentMethodSvc,
		subscriptionSvc:  p.SubscriptionSvc,
		invoiceSvc:       p.InvoiceSvc,
		paymentSvc:       p.PaymentSvc,
		dunningSvc:       p.DunningSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	customers := api.Group("/customers")
	{
		customers.POST("", s.CreateCustomer)
		customers.GET("", s.ListCustomers)
		customers.GET("/:id", s.GetCustomerByID)
	}

	paymentMethods := api.Group("/payment_methods")
	{
		paymentMethods.POST("", s.CreatePaymentMethod)
		paymentMethods.GET("/:id", s.GetPaymentMethodByID)
	}

	subscriptions := api.Group("/subscriptions")
	{
		subscriptions.POST("", s.CreateSubscription)
		subscriptions.GET("", s.ListSubscriptions)
		subscriptions.GET("/:id", s.GetSubscriptionByID)
		subscriptions.POST("/:id/cancel", s.CancelSubscription)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", s.ListInvoices)
		invoices.GET("/:id", s.GetInvoiceByID)
	}

	api.POST("/payments", s.RecordPayment)
	api.GET("/dunning_cases", s.ListDunningCases)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
