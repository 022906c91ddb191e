package payment

import (
	"github.com/smallbiznis/recurrent/internal/payment/gateway"
	"github.com/smallbiznis/recurrent/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	gateway.Module,
	fx.Provide(service.New),
)
