package errors

import "net/http"

var (
	ErrValidation = &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: "invalid input",
		Status:  http.StatusBadRequest,
	}
	ErrAlreadyProcessed = &DomainError{
		Code:    "ALREADY_PROCESSED",
		Message: "request has already been processed",
		Status:  http.StatusConflict,
	}
	ErrInsufficientFunds = &DomainError{
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient wallet balance",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrRequestNotFound = &DomainError{
		Code:    "REQUEST_NOT_FOUND",
		Message: "payment request not found",
		Status:  http.StatusNotFound,
	}
	ErrWalletNotFound = &DomainError{
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
		Status:  http.StatusNotFound,
	}
	ErrConfigNotFound = &DomainError{
		Code:    "CONFIG_NOT_FOUND",
		Message: "wallet config not found",
		Status:  http.StatusNotFound,
	}
	// ErrPartialWrite is logged when a request and its ledger entry disagree.
	// The reconciliation sweep repairs it.
	ErrPartialWrite = &DomainError{
		Code:    "PARTIAL_WRITE_FAILURE",
		Message: "ledger entry out of step with request",
	}
	ErrExternalRefCollision = &DomainError{
		Code:    "EXTERNAL_REF_COLLISION",
		Message: "external reference already used by another request",
	}
	// ErrConcurrentUpdate signals a lost compare-and-swap.
	ErrConcurrentUpdate = &DomainError{
		Code:    "CONCURRENT_UPDATE",
		Message: "record was modified concurrently",
		Status:  http.StatusConflict,
	}
)
