package scheduler

import (
	"context"
	"errors"
	"time"

	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	"github.com/zamstay/zamstay/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler_invalid_config")

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Clock      clock.Clock
	BookingSvc bookingdomain.Service
	Bookings   bookingdomain.Repository
	Config     Config `optional:"true"`
}

// Scheduler moves confirmed bookings to completed once their checkout
// date has passed, so earnings reflect finished stays without manual
// intervention.
type Scheduler struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	bookingSvc bookingdomain.Service
	bookings   bookingdomain.Repository
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.BookingSvc == nil || p.Bookings == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:         p.DB,
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		bookingSvc: p.BookingSvc,
		bookings:   p.Bookings,
	}, nil
}

func ProvideConfig() Config {
	return DefaultConfig()
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Error("scheduler pass failed", zap.Error(err))
			}
		}
	}
}

// RunOnce completes one batch of overdue stays. Bookings that fail to
// transition are logged and skipped; the next pass retries them.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	due, err := s.bookings.ListDueForCompletion(ctx, s.db, s.clock.Now(), s.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, booking := range due {
		_, err := s.bookingSvc.UpdateStatus(ctx, booking.ID.String(), string(bookingdomain.StatusCompleted))
		if err != nil {
			// A guest cancellation can race the completion pass.
			if errors.Is(err, bookingdomain.ErrInvalidTransition) {
				continue
			}
			s.log.Warn("complete overdue booking failed",
				zap.String("booking_id", booking.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("booking completed by scheduler",
			zap.String("booking_id", booking.ID.String()),
		)
	}
	return nil
}
