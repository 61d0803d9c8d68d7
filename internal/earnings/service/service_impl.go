package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	"github.com/zamstay/zamstay/internal/clock"
	"github.com/zamstay/zamstay/internal/config"
	"github.com/zamstay/zamstay/internal/earnings/domain"
	"github.com/zamstay/zamstay/internal/observability/metrics"
	"github.com/zamstay/zamstay/pkg/money"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Cfg      config.Config
	Metrics  *metrics.Metrics
	Bookings bookingdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	cfg      config.Config
	metrics  *metrics.Metrics
	bookings bookingdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("earnings.service"),
		clock:    p.Clock,
		cfg:      p.Cfg,
		metrics:  p.Metrics,
		bookings: p.Bookings,
	}
}

// window resolves a period to a half-open [from, to) interval in UTC.
// Nil bounds mean the interval is open on that side.
func (s *Service) window(period domain.Period) (*time.Time, *time.Time) {
	now := s.clock.Now().UTC()
	switch period {
	case domain.PeriodThisMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 1, 0)
		return &from, &to
	case domain.PeriodLastMonth:
		to := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		from := to.AddDate(0, -1, 0)
		return &from, &to
	case domain.PeriodThisYear:
		from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		return &from, &to
	}
	return nil, nil
}

func (s *Service) Summarize(ctx context.Context, ownerID string, periodName string) (*domain.Summary, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(ownerID))
	if err != nil {
		return nil, bookingdomain.ErrNotFound
	}

	period, err := domain.ParsePeriod(strings.TrimSpace(periodName))
	if err != nil {
		return nil, err
	}

	from, to := s.window(period)

	revenueStatuses := []bookingdomain.BookingStatus{
		bookingdomain.StatusConfirmed,
		bookingdomain.StatusCompleted,
	}
	bookings, err := s.bookings.ListForEarnings(ctx, s.db, id, revenueStatuses, from, to)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		OwnerID: id.String(),
		Period:  period,
		From:    from,
		To:      to,
		Gross:   money.Zero(s.cfg.DefaultCurrency),
		Fees:    money.Zero(s.cfg.DefaultCurrency),
		Net:     money.Zero(s.cfg.DefaultCurrency),
	}

	if len(bookings) > 0 {
		gross := money.Money{}
		fees := money.Money{}
		for _, booking := range bookings {
			if gross, err = gross.Add(booking.Subtotal); err != nil {
				return nil, err
			}
			if fees, err = fees.Add(booking.ServiceFee); err != nil {
				return nil, err
			}
			if booking.Status == bookingdomain.StatusCompleted {
				summary.CompletedBookings++
			}
		}
		net, err := gross.Sub(fees)
		if err != nil {
			return nil, err
		}
		summary.Gross = gross
		summary.Fees = fees
		summary.Net = net
		summary.TotalBookings = len(bookings)
	}

	s.metrics.RecordEarningsQuery(ctx, string(period))
	s.log.Debug("earnings summarized",
		zap.String("owner_id", summary.OwnerID),
		zap.String("period", string(period)),
		zap.Int("bookings", summary.TotalBookings),
	)
	return summary, nil
}
