package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := Invalid("amount", "must be greater than zero")

	assert.True(t, Is(err, ErrValidation))
	assert.False(t, Is(err, ErrAlreadyProcessed))
	assert.Equal(t, "amount: must be greater than zero", err.Error())

	wrapped := fmt.Errorf("submit deposit: %w", err)
	assert.True(t, Is(wrapped, ErrValidation))

	de, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus())
}

func TestDomainError_WithMessageKeepsSentinel(t *testing.T) {
	err := ErrAlreadyProcessed.WithMessage("request %s is %s", "r1", "APPROVED")

	assert.True(t, Is(err, ErrAlreadyProcessed))
	assert.Equal(t, "request r1 is APPROVED", err.Error())
	assert.Equal(t, "request has already been processed", ErrAlreadyProcessed.Message)
}

func TestDomainError_DefaultStatus(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, ErrPartialWrite.HTTPStatus())
	assert.Equal(t, http.StatusUnprocessableEntity, ErrInsufficientFunds.HTTPStatus())
}
