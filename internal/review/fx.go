package review

import (
	"github.com/zamstay/zamstay/internal/review/repository"
	"github.com/zamstay/zamstay/internal/review/service"
	"go.uber.org/fx"
)

var Module = fx.Module("review.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
