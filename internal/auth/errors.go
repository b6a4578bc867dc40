package auth

import "errors"

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingField       = errors.New("all fields are required")
	ErrInvalidUsername    = errors.New("username must contain letters or digits")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("email address is invalid")
	ErrNoSession          = errors.New("no valid session")
	ErrMissingSecret      = errors.New("session secret is required")
)
