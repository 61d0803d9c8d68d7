package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/zamstay/zamstay/pkg/db/pagination"
	"github.com/zamstay/zamstay/pkg/money"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var allowedTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to
// another. Completed and cancelled are terminal.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func ValidStatus(s BookingStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking is a stay reserved against a property. CheckIn and CheckOut are
// stored as UTC midnights and form a half-open interval: the checkout day
// is free for the next guest to check in.
type Booking struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id,string"`
	Reference  string        `gorm:"type:text;uniqueIndex:ux_bookings_reference" json:"reference"`
	PropertyID snowflake.ID  `gorm:"index:ix_bookings_property" json:"property_id,string"`
	OwnerID    snowflake.ID  `gorm:"index:ix_bookings_owner" json:"owner_id,string"`
	GuestID    snowflake.ID  `json:"guest_id,string"`
	CheckIn    time.Time     `json:"check_in"`
	CheckOut   time.Time     `json:"check_out"`
	Nights     int           `json:"nights"`
	GuestCount int           `json:"guest_count"`
	Status     BookingStatus `gorm:"type:text;index:ix_bookings_status" json:"status"`
	Subtotal   money.Money   `gorm:"embedded;embeddedPrefix:subtotal_" json:"subtotal"`
	ServiceFee money.Money   `gorm:"embedded;embeddedPrefix:service_fee_" json:"service_fee"`
	Total      money.Money   `gorm:"embedded;embeddedPrefix:total_" json:"total"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// Quote is the price breakdown for a prospective stay.
type Quote struct {
	Nights     int         `json:"nights"`
	Subtotal   money.Money `json:"subtotal"`
	ServiceFee money.Money `json:"service_fee"`
	Total      money.Money `json:"total"`
}

type CreateBookingRequest struct {
	PropertyID string
	GuestID    string
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int

	// ExpectedTotal, when set, must match the server-side quote exactly.
	// A stale client quote is rejected rather than silently repriced.
	ExpectedTotal *money.Money
}

type QuoteRequest struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

type AvailabilityRequest struct {
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

type AvailabilityResult struct {
	Available   bool     `json:"available"`
	ConflictIDs []string `json:"conflict_ids,omitempty"`
}

type ListBookingFilter struct {
	Status BookingStatus
}

type ListBookingRequest struct {
	PageToken string
	PageSize  int
	Status    string
}

type ListBookingResponse struct {
	pagination.PageInfo
	Bookings []*Booking `json:"bookings"`
}

var (
	ErrNotFound            = errors.New("booking_not_found")
	ErrDuplicateID         = errors.New("duplicate_booking")
	ErrInvalidRange        = errors.New("invalid_date_range")
	ErrInvalidGuestCount   = errors.New("invalid_guest_count")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrPropertyUnavailable = errors.New("property_unavailable")
	ErrAmountMismatch      = errors.New("amount_mismatch")
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, booking *Booking) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Booking, error)
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Booking, error)
	ListByOwner(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, filter ListBookingFilter, page pagination.Pagination) ([]*Booking, error)
	ListByProperty(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, filter ListBookingFilter, page pagination.Pagination) ([]*Booking, error)

	// ListBlocking returns bookings on the property whose stay overlaps
	// the half-open interval [checkIn, checkOut). Cancelled bookings
	// never block.
	ListBlocking(ctx context.Context, db *gorm.DB, propertyID snowflake.ID, checkIn, checkOut time.Time) ([]*Booking, error)

	// ListForEarnings returns the owner's bookings in the given status
	// set created inside [from, to). A nil bound leaves that side open.
	ListForEarnings(ctx context.Context, db *gorm.DB, ownerID snowflake.ID, statuses []BookingStatus, from, to *time.Time) ([]*Booking, error)

	// ListDueForCompletion returns confirmed bookings whose checkout has
	// passed, oldest first, up to limit.
	ListDueForCompletion(ctx context.Context, db *gorm.DB, before time.Time, limit int) ([]*Booking, error)

	// UpdateStatus moves the booking to the target status only if it is
	// still in the expected one, and reports rows affected.
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to BookingStatus) (int64, error)
}

type Service interface {
	Create(ctx context.Context, req CreateBookingRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	GetByReference(ctx context.Context, reference string) (*Booking, error)
	ListByOwner(ctx context.Context, ownerID string, req ListBookingRequest) (ListBookingResponse, error)
	ListByProperty(ctx context.Context, propertyID string, req ListBookingRequest) (ListBookingResponse, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Booking, error)
	CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error)
	PriceQuote(ctx context.Context, req QuoteRequest) (*Quote, error)
}
