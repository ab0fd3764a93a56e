package currency

import (
	"github.com/shopspring/decimal"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

// PivotCurrency is the reference every rate is quoted against.
const PivotCurrency = models.CurrencyUSD

const (
	balancePlaces  = 2
	ratePrecision  = 12
	exactPrecision = 16
)

// Rates maps a currency to its units per 1 USD.
type Rates map[models.Currency]decimal.Decimal

// DefaultRates returns the built-in pivot table.
func DefaultRates() Rates {
	return Rates{
		models.CurrencyINR: decimal.NewFromInt(83),
		models.CurrencyUSD: decimal.NewFromInt(1),
		models.CurrencyNGN: decimal.NewFromInt(1500),
		models.CurrencyEUR: decimal.RequireFromString("0.92"),
		models.CurrencyGBP: decimal.RequireFromString("0.79"),
	}
}
