package currency

import (
	"fmt"

	"github.com/shopspring/decimal"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

// Converter converts amounts between supported currencies through the pivot
// table. It holds no mutable state and is safe for concurrent use.
type Converter struct {
	rates Rates
}

// Conversion is the result of converting a balance amount.
type Conversion struct {
	From   models.Currency `json:"from"`
	To     models.Currency `json:"to"`
	Source decimal.Decimal `json:"source"`
	// Amount is Exact rounded half-up to two places. It is what balances store.
	Amount decimal.Decimal `json:"amount"`
	Exact  decimal.Decimal `json:"exact"`
	Rate   decimal.Decimal `json:"rate"`
}

// NewConverter builds a Converter from the default pivot table with the given
// overrides applied. Override values are units of currency per 1 USD.
func NewConverter(overrides map[string]string) (*Converter, error) {
	rates := DefaultRates()
	for code, raw := range overrides {
		cur := models.NormalizeCurrency(code)
		if !cur.Supported() {
			return nil, fmt.Errorf("rate override for unsupported currency %q", code)
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("rate override for %s: %w", cur, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate override for %s must be positive", cur)
		}
		rates[cur] = rate
	}
	if !rates[PivotCurrency].Equal(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("pivot currency %s must have rate 1", PivotCurrency)
	}
	return &Converter{rates: rates}, nil
}

// MustNewConverter is NewConverter for the default table. It panics on error.
func MustNewConverter() *Converter {
	c, err := NewConverter(nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Rates returns a copy of the pivot table.
func (c *Converter) Rates() Rates {
	out := make(Rates, len(c.rates))
	for k, v := range c.rates {
		out[k] = v
	}
	return out
}

// Rate is the number of units of to per one unit of from.
func (c *Converter) Rate(from, to models.Currency) (decimal.Decimal, error) {
	fromRate, err := c.pivot(from)
	if err != nil {
		return decimal.Zero, err
	}
	toRate, err := c.pivot(to)
	if err != nil {
		return decimal.Zero, err
	}
	return toRate.DivRound(fromRate, ratePrecision), nil
}

// Convert converts amount from one currency to another. Exact keeps full
// precision, computed from the pivot rates directly rather than from the
// rounded cross rate.
func (c *Converter) Convert(amount decimal.Decimal, from, to models.Currency) (Conversion, error) {
	rate, err := c.Rate(from, to)
	if err != nil {
		return Conversion{}, err
	}
	exact := amount.Mul(c.rates[to]).DivRound(c.rates[from], exactPrecision)
	return Conversion{
		From:   from,
		To:     to,
		Source: amount,
		Amount: exact.Round(balancePlaces),
		Exact:  exact,
		Rate:   rate,
	}, nil
}

// DisplayPrice converts amount and rounds it with the coarse display policy.
// Display prices are for showing suggested amounts and never enter a balance.
func (c *Converter) DisplayPrice(amount decimal.Decimal, from, to models.Currency) (DisplayPrice, error) {
	conv, err := c.Convert(amount, from, to)
	if err != nil {
		return DisplayPrice{}, err
	}
	return RoundForDisplay(conv.Exact, to), nil
}

func (c *Converter) pivot(cur models.Currency) (decimal.Decimal, error) {
	rate, ok := c.rates[cur]
	if !ok {
		return decimal.Zero, domainerrors.Invalid("currency", "unsupported currency %q", string(cur))
	}
	return rate, nil
}
