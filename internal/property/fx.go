package property

import (
	"github.com/zamstay/zamstay/internal/property/repository"
	"github.com/zamstay/zamstay/internal/property/service"
	"go.uber.org/fx"
)

var Module = fx.Module("property.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
