// Package migration keeps the schema in sync with the persistence models
// at startup.
package migration

import (
	customerdomain "github.com/smallbiznis/recurrent/internal/customer/domain"
	dunningdomain "github.com/smallbiznis/recurrent/internal/dunning/domain"
	invoicedomain "github.com/smallbiznis/recurrent/internal/invoice/domain"
	notificationdomain "github.com/smallbiznis/recurrent/internal/notification/domain"
	paymentmethoddomain "github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
	subscriptiondomain "github.com/smallbiznis/recurrent/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migration",
	fx.Invoke(AutoMigrate),
)

func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	models := []any{
		&customerdomain.Customer{},
		&paymentmethoddomain.PaymentMethod{},
		&subscriptiondomain.Subscription{},
		&invoicedomain.Invoice{},
		&dunningdomain.DunningCase{},
		&notificationdomain.Notification{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}
	log.Named("migration").Info("schema migrated", zap.Int("models", len(models)))
	return nil
}
