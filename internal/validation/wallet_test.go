package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		wantErr bool
	}{
		{name: "positive", amount: "500"},
		{name: "two decimals", amount: "10.25"},
		{name: "zero", amount: "0", wantErr: true},
		{name: "negative", amount: "-500", wantErr: true},
		{name: "sub cent", amount: "1.001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tt.amount))
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateExternalRef(t *testing.T) {
	tests := []struct {
		name    string
		channel string
		ref     string
		wantErr bool
	}{
		{name: "upi 12 digits", channel: models.ChannelUPI, ref: "412345678901"},
		{name: "upi too short", channel: models.ChannelUPI, ref: "41234567890", wantErr: true},
		{name: "upi letters", channel: models.ChannelUPI, ref: "UTR345678901", wantErr: true},
		{name: "bank alnum", channel: models.ChannelBankTransfer, ref: "NEFT-2024-0001"},
		{name: "bank too short", channel: models.ChannelBankTransfer, ref: "AB1", wantErr: true},
		{name: "bank bad chars", channel: models.ChannelBankTransfer, ref: "ref#12345", wantErr: true},
		{name: "payment link", channel: models.ChannelPaymentLink, ref: "8f3a9c1d"},
		{name: "empty", channel: models.ChannelUPI, ref: "  ", wantErr: true},
		{name: "unknown channel", channel: "crypto", ref: "123456", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateExternalRef(tt.channel, tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAdminWalletConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       models.AdminWalletConfig
		wantField string
	}{
		{
			name: "valid upi",
			cfg:  models.AdminWalletConfig{Currency: models.CurrencyINR, Channel: models.ChannelUPI, UPIID: "netwin@okaxis"},
		},
		{
			name:      "upi without id",
			cfg:       models.AdminWalletConfig{Currency: models.CurrencyINR, Channel: models.ChannelUPI},
			wantField: "upi_id",
		},
		{
			name: "valid bank",
			cfg: models.AdminWalletConfig{
				Currency: models.CurrencyNGN, Channel: models.ChannelBankTransfer,
				BankName: "GTBank", AccountName: "Netwin Ltd", AccountNumber: "0123456789",
			},
		},
		{
			name: "bank bad ifsc",
			cfg: models.AdminWalletConfig{
				Currency: models.CurrencyINR, Channel: models.ChannelBankTransfer,
				BankName: "HDFC", AccountName: "Netwin", AccountNumber: "50100012345", IFSC: "hdfc123",
			},
			wantField: "ifsc",
		},
		{
			name:      "payment link not https",
			cfg:       models.AdminWalletConfig{Currency: models.CurrencyUSD, Channel: models.ChannelPaymentLink, PaymentLink: "http://pay.example.com"},
			wantField: "payment_link",
		},
		{
			name:      "unsupported currency",
			cfg:       models.AdminWalletConfig{Currency: "JPY", Channel: models.ChannelUPI, UPIID: "a@b"},
			wantField: "currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAdminWalletConfig(&tt.cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			de, ok := domainerrors.As(err)
			if assert.True(t, ok) {
				assert.Equal(t, tt.wantField, de.Field)
			}
		})
	}
}

func TestStruct_Payout(t *testing.T) {
	v := NewValidate()

	assert.NoError(t, Struct(v, &models.Payout{Method: "upi", UPIID: "player.one@ybl"}))
	assert.NoError(t, Struct(v, &models.Payout{
		Method: "bank", AccountName: "Player One", AccountNumber: "123456789012",
		BankName: "SBI", IFSC: "SBIN0001234",
	}))

	err := Struct(v, &models.Payout{Method: "upi"})
	de, ok := domainerrors.As(err)
	if assert.True(t, ok) {
		assert.Equal(t, "upi_id", de.Field)
	}

	err = Struct(v, &models.Payout{Method: "bank", AccountName: "x", AccountNumber: "12ab", BankName: "y"})
	de, ok = domainerrors.As(err)
	if assert.True(t, ok) {
		assert.Equal(t, "account_number", de.Field)
	}

	assert.Error(t, Struct(v, &models.Payout{Method: "paypal"}))
}

func TestValidateRejectionReason(t *testing.T) {
	assert.NoError(t, ValidateRejectionReason("payment not received"))
	assert.ErrorIs(t, ValidateRejectionReason("   "), domainerrors.ErrValidation)
}
