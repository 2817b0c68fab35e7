package services

import "errors"

var (
	ErrProfileNotFound    = errors.New("profile not found")
	ErrProfileUnavailable = errors.New("could not retrieve user profile")
	ErrQuotaExhausted     = errors.New("no reports remaining")
)
