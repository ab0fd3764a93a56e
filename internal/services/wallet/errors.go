package wallet

import (
	domainerrors "github.com/Aaditya88888/netwin-user-sub001/internal/errors"
)

// Service errors
var (
	ErrSameCurrency = domainerrors.Invalid("currency", "wallet already uses this currency")
)
