package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"plain", "alice", false},
		{"allowed symbols", "a.b@c+d-e_f", false},
		{"digits", "user2026", false},
		{"space", "bad name", true},
		{"comma", "bad,name", true},
		{"cyrillic", "пользователь", true},
		{"empty", "", true},
		{"reserved me", "me", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSlug(t *testing.T) {
	assert.NoError(t, ValidateSlug("breakfast"))
	assert.NoError(t, ValidateSlug("low_carb-2"))
	assert.ErrorIs(t, ValidateSlug("bad slug"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateSlug("завтрак"), ErrInvalidInput)
	assert.ErrorIs(t, ValidateSlug(""), ErrInvalidInput)
}

func TestValidateBounds(t *testing.T) {
	assert.ErrorIs(t, ValidateCookingTime(0), ErrInvalidInput)
	assert.NoError(t, ValidateCookingTime(MinCookingTime))

	assert.ErrorIs(t, ValidateIngredientAmount(0), ErrInvalidInput)
	assert.ErrorIs(t, ValidateIngredientAmount(0.5), ErrInvalidInput)
	assert.NoError(t, ValidateIngredientAmount(MinIngredientAmount))
}
