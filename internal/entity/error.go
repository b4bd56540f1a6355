package entity

import (
	"errors"
)

var (
	ErrDataNotFound     = errors.New("data not found")
	ErrConflictingData  = errors.New("data conflicts with existing data in unique column")
	ErrInvalidData      = errors.New("invalid data")
	ErrConfigPathNotSet = errors.New("CONFIG_PATH not set and -config flag not provided")

	ErrOrderNotFound     = errors.New("order not found")
	ErrAlreadyRegistered = errors.New("order is already registered")
	ErrNotRegistered     = errors.New("order has no registration")
	ErrWarrantyExpired   = errors.New("warranty period has expired")
	ErrClaimNotFound     = errors.New("claim not found")
	ErrInvalidStatus     = errors.New("unknown claim status")
	ErrInvalidTransition = errors.New("illegal claim status transition")
	ErrNotAuthorized     = errors.New("user is not authorized for admin actions")
)
