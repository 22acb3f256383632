package cart

import "errors"

var (
	// ErrSlotEmpty is returned by Storage.Load when nothing was saved yet.
	ErrSlotEmpty = errors.New("cart slot is empty")

	ErrInvalidState = errors.New("invalid persisted cart state")
)
