package models

import "strings"

// Currency is an ISO 4217 code supported by the wallet.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyNGN Currency = "NGN"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// SupportedCurrencies lists every currency a wallet may hold.
var SupportedCurrencies = []Currency{CurrencyINR, CurrencyUSD, CurrencyNGN, CurrencyEUR, CurrencyGBP}

func (c Currency) Supported() bool {
	for _, s := range SupportedCurrencies {
		if c == s {
			return true
		}
	}
	return false
}

// NormalizeCurrency upper-cases and trims user input.
func NormalizeCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}
