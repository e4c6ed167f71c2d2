package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidatePIN(t *testing.T) {
	for _, pin := range []string{"1234", "00000", "987654"} {
		assert.NoError(t, ValidatePIN(pin), pin)
	}
	for _, pin := range []string{"", "123", "1234567", "12a4", "１２３４", " 1234"} {
		assert.ErrorIs(t, ValidatePIN(pin), ErrInvalidPIN, pin)
	}
}

func TestStorageKey(t *testing.T) {
	id := uuid.MustParse("7b4cbb8e-4a3b-4a57-9a38-1f4cf1c4a001")
	assert.Equal(t, "pin:7b4cbb8e-4a3b-4a57-9a38-1f4cf1c4a001", StorageKey(id))
}
