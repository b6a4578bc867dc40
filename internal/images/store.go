package images

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Entry describes one stored picture.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store is a flat, keyed blob namespace holding pictures.
//
// Names are plain file names: no path separators, no leading dot.
// Implementations must be safe for concurrent use.
type Store interface {
	Init(ctx context.Context) error                            // Init prepares the backing storage once at startup
	Exists(ctx context.Context, name string) (bool, error)     // Exists reports whether name is stored
	List(ctx context.Context) ([]Entry, error)                 // List returns every stored entry
	Read(ctx context.Context, name string) ([]byte, error)     // Read returns the content stored under name
	Write(ctx context.Context, name string, data []byte) error // Write stores data under name, replacing any previous content
	Delete(ctx context.Context, name string) error             // Delete removes name; deleting a missing name is not an error
}

// ValidateName rejects names that could escape a flat namespace.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q is hidden", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}
