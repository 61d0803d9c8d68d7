package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bookingdomain "github.com/zamstay/zamstay/internal/booking/domain"
	bookingrepository "github.com/zamstay/zamstay/internal/booking/repository"
	bookingservice "github.com/zamstay/zamstay/internal/booking/service"
	"github.com/zamstay/zamstay/internal/clock"
	"github.com/zamstay/zamstay/internal/config"
	propertydomain "github.com/zamstay/zamstay/internal/property/domain"
	propertyrepository "github.com/zamstay/zamstay/internal/property/repository"
	propertyservice "github.com/zamstay/zamstay/internal/property/service"
	"github.com/zamstay/zamstay/pkg/money"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestRunOnce_CompletesOverdueStays(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&propertydomain.Property{}, &bookingdomain.Booking{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	logger := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC))
	bookingRepo := bookingrepository.Provide()

	properties := propertyservice.New(propertyservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  propertyrepository.Provide(),
	})
	bookings := bookingservice.New(bookingservice.Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Clock:      fake,
		Pricing:    config.NewStaticPricingHolder(config.DefaultPricingConfig()),
		Repo:       bookingRepo,
		Properties: properties,
	})

	sched, err := New(Params{
		DB:         db,
		Log:        logger,
		Clock:      fake,
		BookingSvc: bookings,
		Bookings:   bookingRepo,
	})
	require.NoError(t, err)

	property, err := properties.Create(context.Background(), propertydomain.CreatePropertyRequest{
		OwnerID:       node.Generate().String(),
		Title:         "Scheduler Test Flat",
		Type:          propertydomain.TypeApartment,
		City:          "Lusaka",
		MaxGuests:     2,
		PricePerNight: money.Money{Currency: "ZMW", Amount: 500},
	})
	require.NoError(t, err)

	book := func(checkIn time.Time, status bookingdomain.BookingStatus) *bookingdomain.Booking {
		booking, err := bookings.Create(context.Background(), bookingdomain.CreateBookingRequest{
			PropertyID: property.ID.String(),
			GuestID:    node.Generate().String(),
			CheckIn:    checkIn,
			CheckOut:   checkIn.AddDate(0, 0, 2),
			GuestCount: 1,
		})
		require.NoError(t, err)
		if status != bookingdomain.StatusPending {
			_, err = bookings.UpdateStatus(context.Background(), booking.ID.String(), string(status))
			require.NoError(t, err)
		}
		return booking
	}

	overdue := book(time.Date(2026, time.June, 10, 0, 0, 0, 0, time.UTC), bookingdomain.StatusConfirmed)
	stillPending := book(time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC), bookingdomain.StatusPending)
	upcoming := book(time.Date(2026, time.July, 20, 0, 0, 0, 0, time.UTC), bookingdomain.StatusConfirmed)

	require.NoError(t, sched.RunOnce(context.Background()))

	check := func(id string, want bookingdomain.BookingStatus) {
		booking, err := bookings.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, booking.Status)
	}
	check(overdue.ID.String(), bookingdomain.StatusCompleted)
	check(stillPending.ID.String(), bookingdomain.StatusPending)
	check(upcoming.ID.String(), bookingdomain.StatusConfirmed)
}
