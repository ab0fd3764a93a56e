package currency

import (
	"github.com/shopspring/decimal"

	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

// DisplayPrice is a coarsely rounded amount for showing prices. It is a
// separate type so it cannot be passed where a balance amount is expected.
type DisplayPrice struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency models.Currency `json:"currency"`
}

// displayStep is the rounding granularity per currency.
var displayStep = map[models.Currency]int64{
	models.CurrencyINR: 10,
	models.CurrencyNGN: 100,
	models.CurrencyUSD: 5,
	models.CurrencyEUR: 5,
	models.CurrencyGBP: 5,
}

// RoundForDisplay rounds amount half-up to the display step of cur.
func RoundForDisplay(amount decimal.Decimal, cur models.Currency) DisplayPrice {
	step, ok := displayStep[cur]
	if !ok {
		return DisplayPrice{Amount: amount.Round(balancePlaces), Currency: cur}
	}
	s := decimal.NewFromInt(step)
	return DisplayPrice{
		Amount:   amount.Div(s).Round(0).Mul(s),
		Currency: cur,
	}
}
