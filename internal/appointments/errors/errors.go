package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrInvalidConfirmationID = errors.New("invalid confirmation ID format")

	ErrDuplicateConfirmationID = errors.New("confirmation ID already exists")

	ErrNotCompleted = errors.New("booking is not completed")

	ErrPersistenceDisabled = errors.New("appointment persistence is disabled")
)
