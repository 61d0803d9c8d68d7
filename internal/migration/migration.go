package migration

import (
	"errors"

	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	propertydomain "github.com/zamstay/zamstay/internal/property/domain"
	reviewdomain "github.com/zamstay/zamstay/internal/review/domain"
	"gorm.io/gorm"
)

// This migration package ensures ZamStay is fully usable out of the box
// for local and self-hosted environments. All core tables are created
// automatically on startup, across every supported SQL dialect.
func RunMigrations(db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	return db.AutoMigrate(
		&propertydomain.Property{},
		&bookingdomain.Booking{},
		&reviewdomain.Review{},
	)
}
