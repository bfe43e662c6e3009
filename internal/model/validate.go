package model

import (
	"fmt"
	"regexp"
)

const (
	// MinCookingTime is the lowest accepted cooking time in minutes.
	MinCookingTime = 1
	// MinIngredientAmount is the lowest accepted ingredient amount.
	MinIngredientAmount = 1
	// ReservedUsername is the path segment used for current-user lookups
	// and therefore not available as a username.
	ReservedUsername = "me"
)

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)
	slugRe     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ValidateUsername checks the allowed character set and the reserved name.
func ValidateUsername(name string) error {
	if name == "" || !usernameRe.MatchString(name) {
		return fmt.Errorf("%w: username %q may only contain letters, digits and @/./+/-/_", ErrInvalidInput, name)
	}
	if name == ReservedUsername {
		return fmt.Errorf("%w: username %q is reserved", ErrInvalidInput, name)
	}
	return nil
}

// ValidateSlug checks that a tag slug is URL-safe.
func ValidateSlug(slug string) error {
	if slug == "" || !slugRe.MatchString(slug) {
		return fmt.Errorf("%w: slug %q may only contain letters, digits, hyphens and underscores", ErrInvalidInput, slug)
	}
	return nil
}

// ValidateCookingTime enforces the minimum cooking time.
func ValidateCookingTime(minutes int) error {
	if minutes < MinCookingTime {
		return fmt.Errorf("%w: cooking time must be at least %d minute(s)", ErrInvalidInput, MinCookingTime)
	}
	return nil
}

// ValidateIngredientAmount enforces the minimum ingredient amount.
func ValidateIngredientAmount(amount float64) error {
	if amount < MinIngredientAmount {
		return fmt.Errorf("%w: ingredient amount must be at least %d", ErrInvalidInput, MinIngredientAmount)
	}
	return nil
}
