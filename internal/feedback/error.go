package feedback

import "errors"

var (
	ErrMissingField  = errors.New("feedback field is required")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrInvalidEmail  = errors.New("invalid email address")
)
