package service

import (
	"context"
	"math"
	"strings"

	"github.com/bwmarrin/snowflake"
	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	"github.com/zamstay/zamstay/internal/clock"
	propertydomain "github.com/zamstay/zamstay/internal/property/domain"
	"github.com/zamstay/zamstay/internal/review/domain"
	"github.com/zamstay/zamstay/pkg/db"
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
	Repo       domain.Repository
	Bookings   bookingdomain.Service
	Properties propertydomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	bookings   bookingdomain.Service
	properties propertydomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("review.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		bookings:   p.Bookings,
		properties: p.Properties,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateReviewRequest) (*domain.Review, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, domain.ErrInvalidScore
	}

	booking, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != bookingdomain.StatusCompleted {
		return nil, domain.ErrBookingNotCompleted
	}

	existing, err := s.repo.FindByBooking(ctx, s.db, booking.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyReviewed
	}

	review := &domain.Review{
		ID:         s.genID.Generate(),
		PropertyID: booking.PropertyID,
		BookingID:  booking.ID,
		GuestID:    booking.GuestID,
		Score:      req.Score,
		Comment:    strings.TrimSpace(req.Comment),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, review); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrAlreadyReviewed
		}
		return nil, err
	}

	if err := s.refreshPropertyRating(ctx, booking.PropertyID); err != nil {
		// The review is already stored; the denormalized rating catches
		// up on the next write.
		s.log.Warn("refresh property rating failed",
			zap.String("property_id", booking.PropertyID.String()),
			zap.Error(err),
		)
	}

	s.log.Info("review created",
		zap.String("review_id", review.ID.String()),
		zap.String("booking_id", booking.ID.String()),
		zap.Int("score", req.Score),
	)
	return review, nil
}

func (s *Service) refreshPropertyRating(ctx context.Context, propertyID snowflake.ID) error {
	count, avg, err := s.repo.Stats(ctx, s.db, propertyID)
	if err != nil {
		return err
	}
	rounded := math.Round(avg*10) / 10
	_, err = s.properties.UpdateRating(ctx, s.db, propertyID, rounded, int(count))
	return err
}

func (s *Service) ListByProperty(ctx context.Context, propertyID string) ([]*domain.Review, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(propertyID))
	if err != nil {
		return nil, propertydomain.ErrNotFound
	}
	return s.repo.ListByProperty(ctx, s.db, id)
}
