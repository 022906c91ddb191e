package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/recurrent/internal/clock"
	"github.com/smallbiznis/recurrent/internal/config"
	"github.com/smallbiznis/recurrent/internal/customer"
	"github.com/smallbiznis/recurrent/internal/dunning"
	"github.com/smallbiznis/recurrent/internal/invoice"
	"github.com/smallbiznis/recurrent/internal/logger"
	"github.com/smallbiznis/recurrent/internal/migration"
	"github.com/smallbiznis/recurrent/internal/notification"
	"github.com/smallbiznis/recurrent/internal/payment"
	"github.com/smallbiznis/recurrent/internal/paymentmethod"
	"github.com/smallbiznis/recurrent/internal/providers/email"
	"github.com/smallbiznis/recurrent/internal/scheduler"
	"github.com/smallbiznis/recurrent/internal/server"
	"github.com/smallbiznis/recurrent/internal/subscription"
	"github.com/smallbiznis/recurrent/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		email.Module,
		notification.Module,
		customer.Module,
		paymentmethod.Module,
		payment.Module,
		invoice.Module,
		dunning.Module,
		subscription.Module,

		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
