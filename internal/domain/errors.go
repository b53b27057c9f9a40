package domain

import "errors"

var (
	// ErrEmptyBundle is returned when a bundle is created with no items
	ErrEmptyBundle = errors.New("cannot create an empty bundle")

	// ErrInvalidPrice is returned when a bundle price is zero or negative
	ErrInvalidPrice = errors.New("price must be greater than zero")

	// ErrUnknownContract is returned when a contract address has no category entry
	ErrUnknownContract = errors.New("contract address is not registered")

	// ErrItemInvalid is returned when an item's ownership or quantity claim does not hold
	ErrItemInvalid = errors.New("item is not valid for bundling")

	// ErrBundleNotFound is returned when a bundle ID does not resolve
	ErrBundleNotFound = errors.New("bundle not found")

	// ErrUnauthorized is returned when a caller's credential is missing or invalid
	ErrUnauthorized = errors.New("unauthorized")
)
