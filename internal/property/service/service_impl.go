package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/zamstay/zamstay/internal/property/domain"
	"github.com/zamstay/zamstay/pkg/db"
	"github.com/zamstay/zamstay/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("property.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePropertyRequest) (*domain.Property, error) {
	ownerID, err := snowflake.ParseString(strings.TrimSpace(req.OwnerID))
	if err != nil || ownerID == 0 {
		return nil, domain.ErrInvalidOwner
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if !domain.ValidType(req.Type) {
		return nil, domain.ErrInvalidType
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		return nil, domain.ErrInvalidCity
	}
	if req.MaxGuests < 1 {
		return nil, domain.ErrInvalidCapacity
	}
	if req.PricePerNight.Amount <= 0 || strings.TrimSpace(req.PricePerNight.Currency) == "" {
		return nil, domain.ErrInvalidPrice
	}

	now := time.Now().UTC()
	property := &domain.Property{
		ID:            s.genID.Generate(),
		OwnerID:       ownerID,
		Title:         title,
		Slug:          slug.Make(title),
		Description:   strings.TrimSpace(req.Description),
		Type:          req.Type,
		City:          city,
		Area:          strings.TrimSpace(req.Area),
		Address:       strings.TrimSpace(req.Address),
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		MaxGuests:     req.MaxGuests,
		PricePerNight: req.PricePerNight,
		Amenities:     datatypes.NewJSONSlice(req.Amenities),
		Photos:        datatypes.NewJSONSlice(req.Photos),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.repo.Insert(ctx, s.db, property)
	if db.IsDuplicateKeyErr(err) {
		// Slug collision with another listing of the same title.
		property.Slug = fmt.Sprintf("%s-%s", property.Slug, property.ID)
		err = s.repo.Insert(ctx, s.db, property)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("property created",
		zap.String("property_id", property.ID.String()),
		zap.String("owner_id", ownerID.String()),
		zap.String("city", property.City),
	)
	return property, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	property, err := s.repo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrNotFound
	}
	return property, nil
}

func (s *Service) GetBySlug(ctx context.Context, slugValue string) (*domain.Property, error) {
	property, err := s.repo.FindBySlug(ctx, s.db, strings.TrimSpace(slugValue))
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrNotFound
	}
	return property, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPropertyRequest) (domain.ListPropertyResponse, error) {
	filter := domain.ListPropertyFilter{
		City:         strings.TrimSpace(req.City),
		MinNightly:   req.MinNightly,
		MaxNightly:   req.MaxNightly,
		Guests:       req.Guests,
		VerifiedOnly: req.VerifiedOnly,
	}
	if t := domain.PropertyType(strings.TrimSpace(req.Type)); t != "" {
		if !domain.ValidType(t) {
			return domain.ListPropertyResponse{}, domain.ErrInvalidType
		}
		filter.Type = t
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListPropertyResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, pageSize, func(property *domain.Property) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        property.ID.String(),
			CreatedAt: property.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})

	return domain.ListPropertyResponse{
		PageInfo:   *pageInfo,
		Properties: items,
	}, nil
}

func (s *Service) SetVerified(ctx context.Context, id string, verified bool) (*domain.Property, error) {
	return s.setFlag(ctx, id, func(propertyID snowflake.ID) (int64, error) {
		return s.repo.SetVerified(ctx, s.db, propertyID, verified)
	})
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*domain.Property, error) {
	return s.setFlag(ctx, id, func(propertyID snowflake.ID) (int64, error) {
		return s.repo.SetActive(ctx, s.db, propertyID, active)
	})
}

func (s *Service) setFlag(ctx context.Context, id string, update func(snowflake.ID) (int64, error)) (*domain.Property, error) {
	propertyID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrNotFound
	}
	rows, err := update(propertyID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	property, err := s.repo.FindByID(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrNotFound
	}
	return property, nil
}
