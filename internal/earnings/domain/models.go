package domain

import (
	"context"
	"errors"
	"time"

	"github.com/zamstay/zamstay/pkg/money"
)

// Period names a reporting window relative to the current time.
type Period string

const (
	PeriodThisMonth Period = "this_month"
	PeriodLastMonth Period = "last_month"
	PeriodThisYear  Period = "this_year"
	PeriodAllTime   Period = "all_time"
)

var ErrUnknownPeriod = errors.New("unknown_period")

// ParsePeriod resolves a client-supplied period name. An empty value
// defaults to all time.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodAllTime, nil
	case PeriodThisMonth, PeriodLastMonth, PeriodThisYear, PeriodAllTime:
		return Period(s), nil
	}
	return "", ErrUnknownPeriod
}

// Summary aggregates an owner's revenue over a period. Gross is the sum
// of booking subtotals, Fees the platform's cut, and Net what the owner
// keeps. Only confirmed and completed bookings count as revenue.
type Summary struct {
	OwnerID           string       `json:"owner_id"`
	Period            Period       `json:"period"`
	From              *time.Time   `json:"from,omitempty"`
	To                *time.Time   `json:"to,omitempty"`
	Gross             money.Money  `json:"gross"`
	Fees              money.Money  `json:"fees"`
	Net               money.Money  `json:"net"`
	TotalBookings     int          `json:"total_bookings"`
	CompletedBookings int          `json:"completed_bookings"`
}

type Service interface {
	Summarize(ctx context.Context, ownerID string, period string) (*Summary, error)
}
