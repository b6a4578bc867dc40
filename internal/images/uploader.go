package images

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pulse/internal/slug"
)

// Uploader replaces the picture stored for a slug.
type Uploader struct {
	store  Store
	locks  *keyedMutex
	logger *log.Logger
}

// NewUploader creates an [Uploader] writing to store. A nil logger discards output.
func NewUploader(store Store, logger *log.Logger) *Uploader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Uploader{store: store, locks: newKeyedMutex(), logger: logger}
}

// Upload validates content and stores it as the only picture for the slug,
// returning the stored file name. When the other variants cannot be evicted
// the new file is deleted again, so a failed upload never leaves two pictures.
//
// Errors are [ErrNoFileProvided], [ErrUnsupportedImageType], [ErrInvalidSlug]
// or a wrapped [ErrStoreUnavailable].
func (u *Uploader) Upload(ctx context.Context, userSlug, filename string, content []byte) (string, error) {
	if filename == "" || len(content) == 0 {
		return "", ErrNoFileProvided
	}

	ext := ExtensionOf(filename)
	if !IsAllowedExtension(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImageType, filename)
	}

	name, err := SanitizeName(userSlug, ext)
	if err != nil {
		return "", err
	}
	key, _ := splitName(name)

	unlock := u.locks.Lock(key)
	defer unlock()

	if err := u.store.Write(ctx, name, content); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := u.evict(ctx, key, ext); err != nil {
		if rerr := u.store.Delete(ctx, name); rerr != nil {
			u.logger.Error("failed to roll back upload", "slug", key, "name", name, "error", rerr)
		}
		u.logger.Warn("eviction failed, upload rolled back", "slug", key, "name", name, "error", err)
		return "", err
	}

	u.logger.Info("stored profile picture", "slug", key, "name", name, "bytes", len(content))
	return name, nil
}

// Remove deletes every picture variant stored for the slug.
func (u *Uploader) Remove(ctx context.Context, userSlug string) error {
	key := slug.Slugify(userSlug)
	if key == "" {
		return ErrInvalidSlug
	}

	unlock := u.locks.Lock(key)
	defer unlock()

	if err := u.evict(ctx, key, ""); err != nil {
		return err
	}

	u.logger.Info("removed profile pictures", "slug", key)
	return nil
}

// evict deletes every variant for key except the one with extension keep.
func (u *Uploader) evict(ctx context.Context, key, keep string) error {
	for _, ext := range AllowedExtensions {
		if ext == keep {
			continue
		}
		if err := u.store.Delete(ctx, FileName(key, ext)); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}
	return nil
}

// SanitizeName builds the stored "<slug>.<ext>" name, re-normalizing the slug so
// that no separators or traversal sequences reach the store.
func SanitizeName(userSlug, ext string) (string, error) {
	key := slug.Slugify(userSlug)
	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, userSlug)
	}

	ext = normalizeExt(ext)
	if !IsAllowedExtension(ext) {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImageType, ext)
	}

	name := FileName(key, ext)
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
