package migration

import (
	"github.com/zamstay/zamstay/internal/config"
	"github.com/zamstay/zamstay/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}

		if cfg.IsDevelopment() {
			return seed.EnsureDemoListings(conn)
		}
		return nil
	}),
)
