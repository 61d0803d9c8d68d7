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
	"github.com/zamstay/zamstay/internal/clock"
	"github.com/zamstay/zamstay/internal/config"
	"github.com/zamstay/zamstay/internal/earnings/domain"
	"github.com/zamstay/zamstay/pkg/money"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   domain.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&bookingdomain.Booking{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		Clock:    fake,
		Cfg:      config.Config{DefaultCurrency: "ZMW"},
		Bookings: bookingrepository.Provide(),
	})

	return &testEnv{db: db, node: node, clock: fake, svc: svc}
}

func (e *testEnv) seedBooking(t *testing.T, ownerID snowflake.ID, status bookingdomain.BookingStatus, currency string, subtotal int64, createdAt time.Time) {
	t.Helper()
	fee := money.Money{Currency: currency, Amount: subtotal}.Percent(12)
	total, err := money.Money{Currency: currency, Amount: subtotal}.Add(fee)
	require.NoError(t, err)

	booking := &bookingdomain.Booking{
		ID:         e.node.Generate(),
		Reference:  e.node.Generate().String(),
		PropertyID: e.node.Generate(),
		OwnerID:    ownerID,
		GuestID:    e.node.Generate(),
		CheckIn:    createdAt,
		CheckOut:   createdAt.AddDate(0, 0, 3),
		Nights:     3,
		GuestCount: 2,
		Status:     status,
		Subtotal:   money.Money{Currency: currency, Amount: subtotal},
		ServiceFee: fee,
		Total:      total,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	require.NoError(t, e.db.Create(booking).Error)
}

func TestSummarize_ConfirmedAndCompletedCountAsRevenue(t *testing.T) {
	env := newTestEnv(t)
	owner := env.node.Generate()
	now := env.clock.Now()

	env.seedBooking(t, owner, bookingdomain.StatusConfirmed, "ZMW", 4350, now.AddDate(0, 0, -2))
	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "ZMW", 4350, now.AddDate(0, 0, -4))
	env.seedBooking(t, owner, bookingdomain.StatusPending, "ZMW", 9999, now.AddDate(0, 0, -1))
	env.seedBooking(t, owner, bookingdomain.StatusCancelled, "ZMW", 9999, now.AddDate(0, 0, -1))

	summary, err := env.svc.Summarize(context.Background(), owner.String(), string(domain.PeriodAllTime))
	require.NoError(t, err)

	assert.Equal(t, money.Money{Currency: "ZMW", Amount: 8700}, summary.Gross)
	assert.Equal(t, money.Money{Currency: "ZMW", Amount: 1044}, summary.Fees)
	assert.Equal(t, money.Money{Currency: "ZMW", Amount: 7656}, summary.Net)
	assert.Equal(t, 2, summary.TotalBookings)
	assert.Equal(t, 1, summary.CompletedBookings)
	assert.Nil(t, summary.From)
	assert.Nil(t, summary.To)
}

func TestSummarize_PeriodWindows(t *testing.T) {
	env := newTestEnv(t)
	owner := env.node.Generate()

	// Clock is pinned to 2026-03-15.
	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "ZMW", 1000, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))
	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "ZMW", 2000, time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC))
	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "ZMW", 4000, time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC))

	cases := []struct {
		period domain.Period
		gross  int64
		count  int
	}{
		{domain.PeriodThisMonth, 1000, 1},
		{domain.PeriodLastMonth, 2000, 1},
		{domain.PeriodThisYear, 3000, 2},
		{domain.PeriodAllTime, 7000, 3},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			summary, err := env.svc.Summarize(context.Background(), owner.String(), string(tc.period))
			require.NoError(t, err)
			assert.Equal(t, tc.gross, summary.Gross.Amount)
			assert.Equal(t, tc.count, summary.TotalBookings)
		})
	}
}

func TestSummarize_MonthBoundariesAreHalfOpen(t *testing.T) {
	env := newTestEnv(t)
	owner := env.node.Generate()

	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "ZMW", 100, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "ZMW", 200, time.Date(2026, time.February, 28, 23, 59, 59, 0, time.UTC))

	thisMonth, err := env.svc.Summarize(context.Background(), owner.String(), string(domain.PeriodThisMonth))
	require.NoError(t, err)
	assert.Equal(t, int64(100), thisMonth.Gross.Amount)

	lastMonth, err := env.svc.Summarize(context.Background(), owner.String(), string(domain.PeriodLastMonth))
	require.NoError(t, err)
	assert.Equal(t, int64(200), lastMonth.Gross.Amount)
}

func TestSummarize_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.node.Generate()
	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "ZMW", 4350, env.clock.Now())

	first, err := env.svc.Summarize(context.Background(), owner.String(), string(domain.PeriodAllTime))
	require.NoError(t, err)
	second, err := env.svc.Summarize(context.Background(), owner.String(), string(domain.PeriodAllTime))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSummarize_MixedCurrencyFails(t *testing.T) {
	env := newTestEnv(t)
	owner := env.node.Generate()
	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "ZMW", 1000, env.clock.Now())
	env.seedBooking(t, owner, bookingdomain.StatusCompleted, "USD", 1000, env.clock.Now())

	_, err := env.svc.Summarize(context.Background(), owner.String(), string(domain.PeriodAllTime))
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestSummarize_NoBookingsReturnsZeroDefaultCurrency(t *testing.T) {
	env := newTestEnv(t)
	owner := env.node.Generate()

	summary, err := env.svc.Summarize(context.Background(), owner.String(), string(domain.PeriodAllTime))
	require.NoError(t, err)
	assert.Equal(t, money.Zero("ZMW"), summary.Gross)
	assert.Equal(t, money.Zero("ZMW"), summary.Net)
	assert.Zero(t, summary.TotalBookings)
}

func TestSummarize_PeriodParsing(t *testing.T) {
	env := newTestEnv(t)
	owner := env.node.Generate()

	_, err := env.svc.Summarize(context.Background(), owner.String(), "fortnight")
	assert.ErrorIs(t, err, domain.ErrUnknownPeriod)

	// An empty period defaults to all time.
	summary, err := env.svc.Summarize(context.Background(), owner.String(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodAllTime, summary.Period)
}
