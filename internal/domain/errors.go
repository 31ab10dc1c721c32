package domain

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientCoins = errors.New("insufficient coins")
	ErrProviderFailure   = errors.New("provider failure")
	ErrNoImage           = errors.New("no image returned")
	ErrRunInFlight       = errors.New("generation already in progress")
	ErrUnsupportedPlan   = errors.New("unsupported plan")
	ErrNotFound          = errors.New("not found")
)
