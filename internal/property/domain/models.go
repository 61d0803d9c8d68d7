package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zamstay/zamstay/pkg/db/pagination"
	"github.com/zamstay/zamstay/pkg/money"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PropertyType classifies a listing.
type PropertyType string

const (
	TypeApartment  PropertyType = "apartment"
	TypeHouse      PropertyType = "house"
	TypeLodge      PropertyType = "lodge"
	TypeGuesthouse PropertyType = "guesthouse"
)

// ValidType reports whether t is a known property type.
func ValidType(t PropertyType) bool {
	switch t {
	case TypeApartment, TypeHouse, TypeLodge, TypeGuesthouse:
		return true
	default:
		return false
	}
}

// Property is a bookable listing owned by a partner. Verification and
// activation are moderation flags: unverified listings still accept
// bookings, inactive ones do not.
type Property struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID snowflake.ID `gorm:"not null;index" json:"owner_id"`

	Title       string       `gorm:"type:text;not null" json:"title"`
	Slug        string       `gorm:"type:text;not null;uniqueIndex:ux_properties_slug" json:"slug"`
	Description string       `gorm:"type:text" json:"description"`
	Type        PropertyType `gorm:"type:text;not null" json:"type"`

	City    string `gorm:"type:text;not null;index" json:"city"`
	Area    string `gorm:"type:text" json:"area,omitempty"`
	Address string `gorm:"type:text" json:"address,omitempty"`

	Bedrooms  int `gorm:"not null" json:"bedrooms"`
	Bathrooms int `gorm:"not null" json:"bathrooms"`
	MaxGuests int `gorm:"not null" json:"max_guests"`

	PricePerNight money.Money `gorm:"embedded;embeddedPrefix:price_" json:"price_per_night"`

	Amenities datatypes.JSONSlice[string] `gorm:"type:json" json:"amenities"`
	Photos    datatypes.JSONSlice[string] `gorm:"type:json" json:"photos"`

	Rating       float64 `gorm:"not null;default:0" json:"rating"`
	ReviewsCount int     `gorm:"not null;default:0" json:"reviews_count"`

	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`
	IsActive   bool `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

type CreatePropertyRequest struct {
	OwnerID       string
	Title         string
	Description   string
	Type          PropertyType
	City          string
	Area          string
	Address       string
	Bedrooms      int
	Bathrooms     int
	MaxGuests     int
	PricePerNight money.Money
	Amenities     []string
	Photos        []string
}

type ListPropertyRequest struct {
	PageToken    string
	PageSize     int
	City         string
	Type         string
	MinNightly   int64
	MaxNightly   int64
	Guests       int
	VerifiedOnly bool
}

type ListPropertyFilter struct {
	City         string
	Type         PropertyType
	MinNightly   int64
	MaxNightly   int64
	Guests       int
	VerifiedOnly bool
}

type ListPropertyResponse struct {
	pagination.PageInfo
	Properties []*Property `json:"properties"`
}

var (
	ErrNotFound        = errors.New("property_not_found")
	ErrInvalidOwner    = errors.New("invalid_owner")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidType     = errors.New("invalid_property_type")
	ErrInvalidCity     = errors.New("invalid_city")
	ErrInvalidCapacity = errors.New("invalid_capacity")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInactive        = errors.New("property_inactive")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, property *Property) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Property, error)
	List(ctx context.Context, db *gorm.DB, filter ListPropertyFilter, page pagination.Pagination) ([]*Property, error)
	SetVerified(ctx context.Context, db *gorm.DB, id snowflake.ID, verified bool) (int64, error)
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool) (int64, error)
	UpdateRating(ctx context.Context, db *gorm.DB, id snowflake.ID, rating float64, reviews int) (int64, error)
}

type Service interface {
	Create(ctx context.Context, req CreatePropertyRequest) (*Property, error)
	GetByID(ctx context.Context, id string) (*Property, error)
	GetBySlug(ctx context.Context, slug string) (*Property, error)
	List(ctx context.Context, req ListPropertyRequest) (ListPropertyResponse, error)
	SetVerified(ctx context.Context, id string, verified bool) (*Property, error)
	SetActive(ctx context.Context, id string, active bool) (*Property, error)
}
