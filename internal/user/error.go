package user

import "errors"

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrMissingField       = errors.New("registration field is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)
