package images

import "errors"

var (
	ErrNoFileProvided       = errors.New("no file provided")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrStoreUnavailable     = errors.New("image store unavailable")
	ErrInvalidSlug          = errors.New("invalid slug")

	// Store level errors
	ErrNotFound    = errors.New("image not found")
	ErrInvalidName = errors.New("invalid image name")
)
