/*
Package currency converts amounts between the currencies a wallet can hold.

Every rate is quoted as units of currency per 1 USD, and cross rates are
derived through that pivot:

	conv, err := converter.Convert(decimal.NewFromInt(830), models.CurrencyINR, models.CurrencyUSD)
	// conv.Amount == 10.00, conv.Rate == 0.012048192771

Two rounding policies exist, each with its own type:

  - Conversion.Amount is rounded half-up to 2 places and is the only value
    ever written to a balance.
  - DisplayPrice is rounded to the nearest 10 (INR), 100 (NGN) or 5
    (USD, EUR, GBP) and is only used to show suggested prices.

Conversion.Exact keeps full precision. Converting an Exact value back to the
source currency reproduces the original amount to within 0.01.
*/
package currency
