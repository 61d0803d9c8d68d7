package service

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
	"github.com/zamstay/zamstay/internal/review/domain"
	"github.com/zamstay/zamstay/internal/review/repository"
	"github.com/zamstay/zamstay/pkg/money"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	node       *snowflake.Node
	properties propertydomain.Service
	bookings   bookingdomain.Service
	reviews    domain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&propertydomain.Property{}, &bookingdomain.Booking{}, &domain.Review{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	logger := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	propertyRepo := propertyrepository.Provide()

	properties := propertyservice.New(propertyservice.Params{
		DB:    db,
		Log:   logger,
		GenID: node,
		Repo:  propertyRepo,
	})
	bookings := bookingservice.New(bookingservice.Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Clock:      fake,
		Pricing:    config.NewStaticPricingHolder(config.DefaultPricingConfig()),
		Repo:       bookingrepository.Provide(),
		Properties: properties,
	})
	reviews := New(Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Clock:      fake,
		Repo:       repository.Provide(),
		Bookings:   bookings,
		Properties: propertyRepo,
	})

	return &testEnv{db: db, node: node, properties: properties, bookings: bookings, reviews: reviews}
}

func (e *testEnv) completedBooking(t *testing.T, property *propertydomain.Property, checkIn time.Time) *bookingdomain.Booking {
	t.Helper()
	booking, err := e.bookings.Create(context.Background(), bookingdomain.CreateBookingRequest{
		PropertyID: property.ID.String(),
		GuestID:    e.node.Generate().String(),
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDate(0, 0, 2),
		GuestCount: 2,
	})
	require.NoError(t, err)
	_, err = e.bookings.UpdateStatus(context.Background(), booking.ID.String(), string(bookingdomain.StatusConfirmed))
	require.NoError(t, err)
	booking, err = e.bookings.UpdateStatus(context.Background(), booking.ID.String(), string(bookingdomain.StatusCompleted))
	require.NoError(t, err)
	return booking
}

func (e *testEnv) seedProperty(t *testing.T) *propertydomain.Property {
	t.Helper()
	property, err := e.properties.Create(context.Background(), propertydomain.CreatePropertyRequest{
		OwnerID:       e.node.Generate().String(),
		Title:         "Reviewed Lodge " + e.node.Generate().String(),
		Type:          propertydomain.TypeLodge,
		City:          "Livingstone",
		MaxGuests:     4,
		PricePerNight: money.Money{Currency: "ZMW", Amount: 980},
	})
	require.NoError(t, err)
	return property
}

func TestCreateReview_UpdatesPropertyRating(t *testing.T) {
	env := newTestEnv(t)
	property := env.seedProperty(t)

	first := env.completedBooking(t, property, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	second := env.completedBooking(t, property, time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))

	_, err := env.reviews.Create(context.Background(), domain.CreateReviewRequest{
		BookingID: first.ID.String(),
		Score:     5,
		Comment:   "Wonderful stay by the river.",
	})
	require.NoError(t, err)

	_, err = env.reviews.Create(context.Background(), domain.CreateReviewRequest{
		BookingID: second.ID.String(),
		Score:     3,
	})
	require.NoError(t, err)

	refreshed, err := env.properties.GetByID(context.Background(), property.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 4.0, refreshed.Rating)
	assert.Equal(t, 2, refreshed.ReviewsCount)

	listed, err := env.reviews.ListByProperty(context.Background(), property.ID.String())
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestCreateReview_RequiresCompletedStay(t *testing.T) {
	env := newTestEnv(t)
	property := env.seedProperty(t)

	booking, err := env.bookings.Create(context.Background(), bookingdomain.CreateBookingRequest{
		PropertyID: property.ID.String(),
		GuestID:    env.node.Generate().String(),
		CheckIn:    time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, time.May, 3, 0, 0, 0, 0, time.UTC),
		GuestCount: 2,
	})
	require.NoError(t, err)

	_, err = env.reviews.Create(context.Background(), domain.CreateReviewRequest{
		BookingID: booking.ID.String(),
		Score:     4,
	})
	assert.ErrorIs(t, err, domain.ErrBookingNotCompleted)
}

func TestCreateReview_OnePerBooking(t *testing.T) {
	env := newTestEnv(t)
	property := env.seedProperty(t)
	booking := env.completedBooking(t, property, time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC))

	_, err := env.reviews.Create(context.Background(), domain.CreateReviewRequest{
		BookingID: booking.ID.String(),
		Score:     4,
	})
	require.NoError(t, err)

	_, err = env.reviews.Create(context.Background(), domain.CreateReviewRequest{
		BookingID: booking.ID.String(),
		Score:     2,
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
}

func TestCreateReview_ScoreBounds(t *testing.T) {
	env := newTestEnv(t)

	for _, score := range []int{0, 6, -1} {
		_, err := env.reviews.Create(context.Background(), domain.CreateReviewRequest{
			BookingID: env.node.Generate().String(),
			Score:     score,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidScore)
	}
}
