package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Review is a guest's rating of a completed stay. One review per
// booking.
type Review struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id,string"`
	PropertyID snowflake.ID `gorm:"index:ix_reviews_property" json:"property_id,string"`
	BookingID  snowflake.ID `gorm:"uniqueIndex:ux_reviews_booking" json:"booking_id,string"`
	GuestID    snowflake.ID `json:"guest_id,string"`
	Score      int          `json:"score"`
	Comment    string       `gorm:"type:text" json:"comment"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

type CreateReviewRequest struct {
	BookingID string
	Score     int
	Comment   string
}

var (
	ErrNotFound            = errors.New("review_not_found")
	ErrInvalidScore        = errors.New("invalid_score")
	ErrAlreadyReviewed     = errors.New("already_reviewed")
	ErrBookingNotCompleted = errors.New("booking_not_completed")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, review *Review) error
	FindByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*Review, error)
	ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*Review, error)

	// Stats returns the review count and mean score for a property.
	Stats(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) (int64, float64, error)
}

type Service interface {
	Create(ctx context.Context, req CreateReviewRequest) (*Review, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*Review, error)
}
