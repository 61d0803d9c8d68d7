package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zamstay/zamstay/internal/property/domain"
	"github.com/zamstay/zamstay/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Create(property).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&property).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&property).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &property, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListPropertyFilter, page pagination.Pagination) ([]*domain.Property, error) {
	stmt := db.WithContext(ctx).Model(&domain.Property{})
	if filter.City != "" {
		stmt = stmt.Where("city = ?", filter.City)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.MinNightly > 0 {
		stmt = stmt.Where("price_amount >= ?", filter.MinNightly)
	}
	if filter.MaxNightly > 0 {
		stmt = stmt.Where("price_amount <= ?", filter.MaxNightly)
	}
	if filter.Guests > 0 {
		stmt = stmt.Where("max_guests >= ?", filter.Guests)
	}
	if filter.VerifiedOnly {
		stmt = stmt.Where("is_verified = ?", true)
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = 20
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
		stmt = stmt.Where("(created_at, id) < (?, ?)", createdAt, cursor.ID)
	}

	var properties []*domain.Property
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit + 1).
		Find(&properties).Error
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (r *repo) SetVerified(ctx context.Context, db *gorm.DB, id snowflake.ID, verified bool) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Property{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_verified": verified, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Property{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": active, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}

func (r *repo) UpdateRating(ctx context.Context, db *gorm.DB, id snowflake.ID, rating float64, reviews int) (int64, error) {
	result := db.WithContext(ctx).
		Model(&domain.Property{}).
		Where("id = ?", id).
		Updates(map[string]any{"rating": rating, "reviews_count": reviews, "updated_at": time.Now().UTC()})
	return result.RowsAffected, result.Error
}
