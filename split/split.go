// Package split divides a receipt total between people.
package split

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// Places is the number of decimal places shares are rounded to.
	Places = 2
	// MaxPeople caps the number of shares in one split.
	MaxPeople = 100
)

var (
	ErrNoPeople      = errors.New("split needs at least one person")
	ErrTooManyPeople = fmt.Errorf("split allows at most %d people", MaxPeople)
	ErrNegativeTotal = errors.New("total must not be negative")
)

// Even splits total into people shares of equal size. Shares are truncated to
// cents and the leftover cents go one each to the first shares, so the shares
// always add up to total rounded to cents.
func Even(total decimal.Decimal, people int) ([]decimal.Decimal, error) {
	if people < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoPeople, people)
	}
	if people > MaxPeople {
		return nil, fmt.Errorf("%w: got %d", ErrTooManyPeople, people)
	}
	if total.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeTotal, total)
	}
	cents := total.Round(Places).Shift(Places).IntPart()
	n := int64(people)
	base, rem := cents/n, cents%n

	shares := make([]decimal.Decimal, people)
	for i := range shares {
		c := base
		if int64(i) < rem {
			c++
		}
		shares[i] = decimal.New(c, -Places)
	}
	return shares, nil
}

// Sum adds shares.
func Sum(shares []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s)
	}
	return total
}
