package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/zamstay/zamstay/internal/booking/domain"
	"github.com/zamstay/zamstay/internal/clock"
	"github.com/zamstay/zamstay/internal/config"
	"github.com/zamstay/zamstay/internal/observability/metrics"
	propertydomain "github.com/zamstay/zamstay/internal/property/domain"
	"github.com/zamstay/zamstay/pkg/db"
	"github.com/zamstay/zamstay/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Pricing    *config.PricingHolder
	Metrics    *metrics.Metrics
	Repo       domain.Repository
	Properties propertydomain.Service
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	pricing    *config.PricingHolder
	metrics    *metrics.Metrics
	repo       domain.Repository
	properties propertydomain.Service

	// locks serializes writes per property so two concurrent bookings
	// cannot both pass the availability check for the same dates.
	mu    sync.Mutex
	locks map[snowflake.ID]*sync.Mutex
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("booking.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		pricing:    p.Pricing,
		metrics:    p.Metrics,
		repo:       p.Repo,
		properties: p.Properties,
		locks:      make(map[snowflake.ID]*sync.Mutex),
	}
}

func (s *Service) propertyLock(id snowflake.ID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}

// normalizeStay truncates both bounds to UTC midnight and computes the
// night count of the half-open interval [checkIn, checkOut).
func normalizeStay(checkIn, checkOut time.Time) (time.Time, time.Time, int, error) {
	in := truncateToDay(checkIn)
	out := truncateToDay(checkOut)
	if !out.After(in) {
		return time.Time{}, time.Time{}, 0, domain.ErrInvalidRange
	}
	nights := int(out.Sub(in).Hours() / 24)
	return in, out, nights, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) quote(property *propertydomain.Property, nights int) (*domain.Quote, error) {
	subtotal, err := property.PricePerNight.MulInt(int64(nights))
	if err != nil {
		return nil, err
	}
	fee := subtotal.Percent(s.pricing.Get().ServiceFeePercent)
	total, err := subtotal.Add(fee)
	if err != nil {
		return nil, err
	}
	return &domain.Quote{
		Nights:     nights,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      total,
	}, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateBookingRequest) (*domain.Booking, error) {
	guestID, err := snowflake.ParseString(strings.TrimSpace(req.GuestID))
	if err != nil || guestID == 0 {
		return nil, domain.ErrInvalidGuestCount
	}

	checkIn, checkOut, nights, err := normalizeStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	pricing := s.pricing.Get()
	if nights < pricing.MinNights || nights > pricing.MaxNights {
		return nil, domain.ErrInvalidRange
	}

	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsActive {
		return nil, propertydomain.ErrInactive
	}
	if req.GuestCount < 1 || req.GuestCount > property.MaxGuests {
		return nil, domain.ErrInvalidGuestCount
	}

	quote, err := s.quote(property, nights)
	if err != nil {
		return nil, err
	}
	if req.ExpectedTotal != nil && !req.ExpectedTotal.Equal(quote.Total) {
		return nil, domain.ErrAmountMismatch
	}

	lock := s.propertyLock(property.ID)
	lock.Lock()
	defer lock.Unlock()

	blocking, err := s.repo.ListBlocking(ctx, s.db, property.ID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		s.metrics.RecordAvailabilityCheck(ctx, true)
		return nil, domain.ErrPropertyUnavailable
	}
	s.metrics.RecordAvailabilityCheck(ctx, false)

	now := s.clock.Now()
	booking := &domain.Booking{
		ID:         s.genID.Generate(),
		Reference:  ulid.Make().String(),
		PropertyID: property.ID,
		OwnerID:    property.OwnerID,
		GuestID:    guestID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Nights:     nights,
		GuestCount: req.GuestCount,
		Status:     domain.StatusPending,
		Subtotal:   quote.Subtotal,
		ServiceFee: quote.ServiceFee,
		Total:      quote.Total,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Insert(ctx, s.db, booking); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateID
		}
		return nil, err
	}

	s.metrics.RecordBookingCreated(ctx, booking.Total.Currency)
	s.log.Info("booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("property_id", property.ID.String()),
		zap.Int("nights", nights),
		zap.String("total", booking.Total.String()),
	)
	return booking, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	bookingID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	booking, err := s.repo.FindByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := s.repo.FindByReference(ctx, s.db, strings.ToUpper(strings.TrimSpace(reference)))
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	return booking, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string, req domain.ListBookingRequest) (domain.ListBookingResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(ownerID))
	if err != nil {
		return domain.ListBookingResponse{}, domain.ErrNotFound
	}
	return s.list(ctx, req, func(filter domain.ListBookingFilter, page pagination.Pagination) ([]*domain.Booking, error) {
		return s.repo.ListByOwner(ctx, s.db, id, filter, page)
	})
}

func (s *Service) ListByProperty(ctx context.Context, propertyID string, req domain.ListBookingRequest) (domain.ListBookingResponse, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(propertyID))
	if err != nil {
		return domain.ListBookingResponse{}, domain.ErrNotFound
	}
	return s.list(ctx, req, func(filter domain.ListBookingFilter, page pagination.Pagination) ([]*domain.Booking, error) {
		return s.repo.ListByProperty(ctx, s.db, id, filter, page)
	})
}

func (s *Service) list(ctx context.Context, req domain.ListBookingRequest, fetch func(domain.ListBookingFilter, pagination.Pagination) ([]*domain.Booking, error)) (domain.ListBookingResponse, error) {
	var filter domain.ListBookingFilter
	if status := domain.BookingStatus(strings.TrimSpace(req.Status)); status != "" {
		if !domain.ValidStatus(status) {
			return domain.ListBookingResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	bookings, err := fetch(filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListBookingResponse{}, err
	}

	pageInfo, bookings := pagination.BuildCursorPageInfo(bookings, pageSize, func(booking *domain.Booking) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        booking.ID.String(),
			CreatedAt: booking.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	return domain.ListBookingResponse{
		PageInfo: *pageInfo,
		Bookings: bookings,
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*domain.Booking, error) {
	target := domain.BookingStatus(strings.TrimSpace(status))
	if !domain.ValidStatus(target) {
		return nil, domain.ErrInvalidStatus
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The transition check and the write happen under the property lock
	// so a concurrent transition on the same booking cannot interleave.
	lock := s.propertyLock(booking.PropertyID)
	lock.Lock()
	defer lock.Unlock()

	booking, err = s.repo.FindByID(ctx, s.db, booking.ID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, domain.ErrNotFound
	}
	if !domain.CanTransition(booking.Status, target) {
		return nil, domain.ErrInvalidTransition
	}

	rows, err := s.repo.UpdateStatus(ctx, s.db, booking.ID, booking.Status, target)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrInvalidTransition
	}

	s.metrics.RecordStatusTransition(ctx, string(booking.Status), string(target))
	s.log.Info("booking status changed",
		zap.String("booking_id", booking.ID.String()),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(target)),
	)

	booking.Status = target
	booking.UpdatedAt = s.clock.Now()
	return booking, nil
}

func (s *Service) CheckAvailability(ctx context.Context, req domain.AvailabilityRequest) (*domain.AvailabilityResult, error) {
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	checkIn, checkOut, _, err := normalizeStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	blocking, err := s.repo.ListBlocking(ctx, s.db, property.ID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordAvailabilityCheck(ctx, len(blocking) > 0)

	result := &domain.AvailabilityResult{Available: len(blocking) == 0}
	for _, booking := range blocking {
		result.ConflictIDs = append(result.ConflictIDs, booking.ID.String())
	}
	return result, nil
}

func (s *Service) PriceQuote(ctx context.Context, req domain.QuoteRequest) (*domain.Quote, error) {
	property, err := s.properties.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	_, _, nights, err := normalizeStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	pricing := s.pricing.Get()
	if nights < pricing.MinNights || nights > pricing.MaxNights {
		return nil, domain.ErrInvalidRange
	}

	return s.quote(property, nights)
}
