package dunning

import (
	"github.com/smallbiznis/recurrent/internal/config"
	"github.com/smallbiznis/recurrent/internal/dunning/domain"
	"github.com/smallbiznis/recurrent/internal/dunning/repository"
	"github.com/smallbiznis/recurrent/internal/dunning/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dunning.service",
	fx.Provide(PolicyFromConfig),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

func PolicyFromConfig(cfg config.Config) domain.Policy {
	return domain.Policy{
		MaxRetries: cfg.Dunning.MaxRetries,
		RetryDelay: cfg.Dunning.RetryDelay,
	}.WithDefaults()
}
