package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zamstay/zamstay/internal/booking/domain"
	"github.com/zamstay/zamstay/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, booking *domain.Booking) error {
	return db.WithContext(ctx).Create(booking).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repo) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Booking, error) {
	var booking domain.Booking
	err := db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repo) ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter domain.ListBookingFilter, page pagination.Pagination) ([]*domain.Booking, error) {
	query := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("owner_id = ?", ownerID)
	return r.list(query, filter, page)
}

func (r *repo) ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, filter domain.ListBookingFilter, page pagination.Pagination) ([]*domain.Booking, error) {
	query := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("property_id = ?", propertyID)
	return r.list(query, filter, page)
}

func (r *repo) list(query *gorm.DB, filter domain.ListBookingFilter, page pagination.Pagination) ([]*domain.Booking, error) {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		query = query.Where("(created_at, id) < (?, ?)", createdAt, id)
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 20
	}

	var bookings []*domain.Booking
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) ListBlocking(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, checkIn, checkOut time.Time) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	err := db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status IN ?", []domain.BookingStatus{
			domain.StatusPending,
			domain.StatusConfirmed,
			domain.StatusCompleted,
		}).
		Where("check_in < ? AND ? < check_out", checkOut, checkIn).
		Order("check_in ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) ListForEarnings(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, statuses []domain.BookingStatus, from, to *time.Time) ([]*domain.Booking, error) {
	query := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("status IN ?", statuses)
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at < ?", *to)
	}

	var bookings []*domain.Booking
	err := query.Order("created_at ASC").Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) ListDueForCompletion(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	err := db.WithContext(ctx).
		Where("status = ?", domain.StatusConfirmed).
		Where("check_out <= ?", before).
		Order("check_out ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to domain.BookingStatus) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}
