// Package money provides a currency-tagged amount type used across the
// booking ledger. Amounts are whole currency units stored as int64;
// arithmetic is only defined between values of the same currency.
package money

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrCurrencyMismatch is returned when arithmetic combines two
	// amounts with different currency codes.
	ErrCurrencyMismatch = errors.New("currency_mismatch")
	// ErrNegativeResult is returned when a subtraction would underflow.
	// Earnings math never produces negative values silently.
	ErrNegativeResult = errors.New("negative_result")
	// ErrNegativeAmount is returned when constructing an amount below zero.
	ErrNegativeAmount = errors.New("negative_amount")
)

// Money is an immutable currency-tagged amount. The zero value has an
// empty currency and amount 0 and only combines with explicitly tagged
// values through Add on an empty receiver.
type Money struct {
	Currency string `gorm:"type:text" json:"currency"`
	Amount   int64  `json:"amount"`
}

// New constructs a Money value, rejecting negative amounts.
func New(currency string, amount int64) (Money, error) {
	if amount < 0 {
		return Money{}, fmt.Errorf("%w: %s %d", ErrNegativeAmount, currency, amount)
	}
	return Money{Currency: currency, Amount: amount}, nil
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: currency, Amount: 0}
}

// IsZero reports whether the amount is zero, regardless of currency.
func (m Money) IsZero() bool { return m.Amount == 0 }

// Equal reports whether both currency and amount match.
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount == other.Amount
}

// Add returns m + other. The currencies must match; an empty-currency
// zero value adopts the other side's currency so running sums can start
// from Money{}.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency == "" && m.Amount == 0 {
		return other, nil
	}
	if other.Currency == "" && other.Amount == 0 {
		return m, nil
	}
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	return Money{Currency: m.Currency, Amount: m.Amount + other.Amount}, nil
}

// Sub returns m - other, failing on mismatched currencies or a negative
// result.
func (m Money) Sub(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.Currency, other.Currency)
	}
	if m.Amount < other.Amount {
		return Money{}, fmt.Errorf("%w: %d - %d", ErrNegativeResult, m.Amount, other.Amount)
	}
	return Money{Currency: m.Currency, Amount: m.Amount - other.Amount}, nil
}

// MulInt returns m scaled by a non-negative integer factor, e.g. a
// nightly rate times a number of nights.
func (m Money) MulInt(factor int64) (Money, error) {
	if factor < 0 {
		return Money{}, fmt.Errorf("%w: factor %d", ErrNegativeAmount, factor)
	}
	return Money{Currency: m.Currency, Amount: m.Amount * factor}, nil
}

// Percent returns the given percentage share of m, rounded half-up.
// Half-up matches the ordinary rounding used throughout the pricing data
// (12% of 4350 is 522).
func (m Money) Percent(percent float64) Money {
	share := float64(m.Amount) * percent / 100
	return Money{Currency: m.Currency, Amount: int64(math.Floor(share + 0.5))}
}

// String renders the amount for logs and error messages.
func (m Money) String() string {
	return fmt.Sprintf("%s %d", m.Currency, m.Amount)
}
