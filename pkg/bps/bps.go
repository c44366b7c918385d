// Package bps holds the basis-point arithmetic used for interest, fees,
// penalties and lender shares. All results truncate toward zero.
package bps

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Denominator is 100% expressed in basis points.
const Denominator = 10_000

// DaysPerYear is the day-count basis used for interest and late penalties.
const DaysPerYear = 365

var ErrOverflow = errors.New("bps: result does not fit in uint64")

var maxUint64 = decimal.NewFromUint64(^uint64(0))

// MulDiv returns floor(product(factors) / den). Intermediate products are
// computed exactly, so principal*rate*days never wraps around.
func MulDiv(den uint64, factors ...uint64) (uint64, error) {
	if den == 0 {
		return 0, errors.New("bps: division by zero")
	}
	acc := decimal.NewFromInt(1)
	for _, f := range factors {
		acc = acc.Mul(decimal.NewFromUint64(f))
	}
	q, _ := acc.QuoRem(decimal.NewFromUint64(den), 0)
	if q.GreaterThan(maxUint64) {
		return 0, ErrOverflow
	}
	return q.BigInt().Uint64(), nil
}

// Interest is floor(principal * rateBps * termDays / (365 * 10000)).
func Interest(principal, rateBps, termDays uint64) (uint64, error) {
	return MulDiv(DaysPerYear*Denominator, principal, rateBps, termDays)
}

// Fee is floor(amount * rateBps / 10000).
func Fee(amount, rateBps uint64) (uint64, error) {
	return MulDiv(Denominator, amount, rateBps)
}

// LatePenalty is floor(base * rateBps * daysLate / (365 * 10000)).
func LatePenalty(base, rateBps, daysLate uint64) (uint64, error) {
	return MulDiv(DaysPerYear*Denominator, base, rateBps, daysLate)
}

// Share is floor(pool * part / whole).
func Share(pool, part, whole uint64) (uint64, error) {
	return MulDiv(whole, pool, part)
}
