package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/zamstay/zamstay/internal/review/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, review *domain.Review) error {
	return db.WithContext(ctx).Create(review).Error
}

func (r *repo) FindByBooking(ctx context.Context, db *gorm.DB, bookingID snowflake.ID) (*domain.Review, error) {
	var review domain.Review
	err := db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *repo) ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*domain.Review, error) {
	var reviews []*domain.Review
	err := db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC, id DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *repo) Stats(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) (int64, float64, error) {
	var row struct {
		Count int64
		Avg   float64
	}
	err := db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(score), 0) AS avg").
		Where("property_id = ?", propertyID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.Avg, nil
}
