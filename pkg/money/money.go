// Package money pins the store currency and converts amounts to the minor
// units a gateway expects.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Currency is an ISO 4217 code together with its number of minor digits.
type Currency struct {
	Code     string
	Exponent int32
}

// Parse accepts an ISO 4217 code in any case.
func Parse(code string) (Currency, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return Currency{}, fmt.Errorf("unknown currency %q: %w", code, err)
	}

	scale, _ := currency.Standard.Rounding(unit)

	return Currency{Code: unit.String(), Exponent: int32(scale)}, nil
}

// MustParse panics on an unknown code.
func MustParse(code string) Currency {
	c, err := Parse(code)
	if err != nil {
		panic(err)
	}

	return c
}

// Same reports whether code names this currency, ignoring case.
func (c Currency) Same(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), c.Code)
}

// Round drops digits finer than the currency's minor unit.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.Exponent)
}

// ToMinor rounds amount half away from zero to the smallest unit.
func (c Currency) ToMinor(amount decimal.Decimal) int64 {
	return amount.Shift(c.Exponent).Round(0).IntPart()
}

func (c Currency) FromMinor(amount int64) decimal.Decimal {
	return decimal.New(amount, -c.Exponent)
}

// Format renders amount with exactly the currency's minor digits.
func (c Currency) Format(amount decimal.Decimal) string {
	return amount.StringFixed(c.Exponent)
}

func (c Currency) String() string {
	return c.Code
}
