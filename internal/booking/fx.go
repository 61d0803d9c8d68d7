package booking

import (
	"github.com/zamstay/zamstay/internal/booking/repository"
	"github.com/zamstay/zamstay/internal/booking/service"
	"go.uber.org/fx"
)

var Module = fx.Module("booking.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
