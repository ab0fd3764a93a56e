package validation

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
	"github.com/Aaditya88888/netwin-user-sub001/internal/models"
)

var (
	upiRefRegex  = regexp.MustCompile(`^[0-9]{12}$`)
	bankRefRegex = regexp.MustCompile(`^[A-Za-z0-9-]{6,64}$`)
	urlRegex     = regexp.MustCompile(`^https://[^\s]+$`)
	accountRegex = regexp.MustCompile(`^[0-9]{6,18}$`)
)

// ValidateAmount rejects zero, negative and sub-cent amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domainerrors.Invalid("amount", "must be greater than zero")
	}
	if !amount.Equal(amount.Round(2)) {
		return domainerrors.Invalid("amount", "must have at most two decimal places")
	}
	return nil
}

// ValidateCurrency rejects currencies a wallet cannot hold.
func ValidateCurrency(c models.Currency) error {
	if !c.Supported() {
		return domainerrors.Invalid("currency", "unsupported currency %q", string(c))
	}
	return nil
}

// ValidateExternalRef checks a deposit proof reference against the format of
// the channel the user paid through. UPI transaction references are 12 digits.
func ValidateExternalRef(channel, ref string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return domainerrors.Invalid("external_ref", "must not be empty")
	}
	switch channel {
	case models.ChannelUPI:
		if !upiRefRegex.MatchString(ref) {
			return domainerrors.Invalid("external_ref", "UPI reference must be exactly %d digits", UPIRefLength)
		}
	case models.ChannelBankTransfer, models.ChannelPaymentLink:
		if !bankRefRegex.MatchString(ref) {
			return domainerrors.Invalid("external_ref", "must be %d-%d letters, digits or dashes", MinBankRefLength, MaxBankRefLength)
		}
	default:
		return domainerrors.Invalid("channel", "unknown payment channel %q", channel)
	}
	return nil
}

// ValidateAdminWalletConfig checks that the fields the chosen channel needs
// are present.
func ValidateAdminWalletConfig(cfg *models.AdminWalletConfig) error {
	v := New()
	v.Check(cfg.Currency.Supported(), "currency", "unsupported currency")
	v.Check(!cfg.MinDeposit.IsNegative(), "min_deposit", "must not be negative")
	v.MaxLength("instructions", cfg.Instructions, MaxInstructionLen)

	switch cfg.Channel {
	case models.ChannelUPI:
		v.Check(upiIDRegex.MatchString(cfg.UPIID), "upi_id", "must be a valid UPI id")
	case models.ChannelPaymentLink:
		v.Check(urlRegex.MatchString(cfg.PaymentLink), "payment_link", "must be an https URL")
	case models.ChannelBankTransfer:
		v.Required("bank_name", cfg.BankName)
		v.Required("account_name", cfg.AccountName)
		v.Check(accountRegex.MatchString(cfg.AccountNumber), "account_number", "must be 6-18 digits")
		if cfg.IFSC != "" {
			v.Check(ifscRegex.MatchString(cfg.IFSC), "ifsc", "must be a valid IFSC code")
		}
	default:
		v.AddError("channel", "must be one of upi, bank_transfer, payment_link")
	}
	return v.Err()
}

// ValidateRejectionReason requires a non-empty reason of bounded length.
func ValidateRejectionReason(reason string) error {
	v := New()
	v.Required("reason", reason)
	v.MaxLength("reason", reason, MaxRejectReason)
	return v.Err()
}
