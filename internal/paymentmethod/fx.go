package paymentmethod

import (
	"github.com/smallbiznis/recurrent/internal/paymentmethod/repository"
	"github.com/smallbiznis/recurrent/internal/paymentmethod/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentmethod.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
