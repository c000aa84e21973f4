package domain

import "github.com/shopspring/decimal"

// zeroDecimalCurrencies lists currencies without a minor unit (ISO 4217 exponent 0)
var zeroDecimalCurrencies = map[string]struct{}{
	"JPY": {},
	"KRW": {},
	"VND": {},
	"CLP": {},
	"ISK": {},
}

// MinorUnitExponent returns the number of minor-unit digits for a currency
func MinorUnitExponent(currency string) int32 {
	if _, ok := zeroDecimalCurrencies[currency]; ok {
		return 0
	}
	return 2
}

// RoundMoney rounds an amount half-up to the currency's minor unit
func RoundMoney(amount decimal.Decimal, currency string) decimal.Decimal {
	// decimal.Round is half away from zero, which is half-up for the
	// non-negative amounts handled by this engine
	return amount.Round(MinorUnitExponent(currency))
}

// FloorMoney truncates an amount down to the currency's minor unit
func FloorMoney(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.RoundFloor(MinorUnitExponent(currency))
}
