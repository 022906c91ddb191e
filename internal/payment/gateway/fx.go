package gateway

import (
	"math/rand"
	"time"

	"github.com/smallbiznis/recurrent/internal/config"
	"github.com/smallbiznis/recurrent/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment.gateway",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) domain.Authorizer {
	if cfg.Gateway.Mode == config.GatewayModeHTTP && cfg.Gateway.Endpoint != "" {
		return NewHTTPGateway(cfg.Gateway.Endpoint, cfg.Gateway.Timeout)
	}
	log.Warn("using mock payment gateway; charges are simulated")
	return NewMockGateway(rand.NewSource(time.Now().UnixNano()), defaultSuccessRate)
}
