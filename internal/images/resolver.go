package images

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Source identifies which rule produced a [Resolution].
type Source string

const (
	SourceExact       Source = "exact"
	SourceLatest      Source = "latest"
	SourcePlaceholder Source = "placeholder"
)

const (
	DefaultBaseURL     = "/static/uploads"
	DefaultPlaceholder = "/static/images/profile_placeholder.png"
)

// Resolution is the outcome of resolving a slug. Name is empty for placeholders.
type Resolution struct {
	Reference string
	Name      string
	Source    Source
}

// ResolverOptions configures a [Resolver].
type ResolverOptions struct {
	BaseURL     string // URL prefix the store is served under
	Placeholder string // Reference returned when nothing matches

	// DisableLatestFallback skips the "most recently modified picture" rule, so
	// a user without a picture gets the placeholder instead of another user's.
	DisableLatestFallback bool

	Logger *log.Logger
}

// Resolver picks the picture reference shown for a slug.
type Resolver struct {
	store  Store
	opts   ResolverOptions
	logger *log.Logger
}

// NewResolver creates a [Resolver] reading from store.
func NewResolver(store Store, opts ResolverOptions) *Resolver {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Resolver{store: store, opts: opts, logger: logger}
}

// Resolve returns the reference of the picture to show for slug. It never fails.
func (r *Resolver) Resolve(ctx context.Context, slug string) string {
	return r.Lookup(ctx, slug).Reference
}

// Lookup is [Resolver.Resolve] reporting which rule matched.
//
// Store errors are logged and treated as a miss.
func (r *Resolver) Lookup(ctx context.Context, slug string) Resolution {
	if slug != "" {
		for _, ext := range AllowedExtensions {
			name := FileName(slug, ext)
			ok, err := r.store.Exists(ctx, name)
			if err != nil {
				r.logger.Warn("exists check failed", "name", name, "error", err)
				continue
			}
			if ok {
				return r.resolution(name, SourceExact)
			}
		}
	}

	if !r.opts.DisableLatestFallback {
		if latest, ok := r.latest(ctx); ok {
			return r.resolution(latest.Name, SourceLatest)
		}
	}

	return Resolution{Reference: r.opts.Placeholder, Source: SourcePlaceholder}
}

// latest returns the most recently modified allowed picture, breaking ties by
// the lexicographically smallest name.
func (r *Resolver) latest(ctx context.Context) (Entry, bool) {
	entries, err := r.store.List(ctx)
	if err != nil {
		r.logger.Warn("list failed, treating store as empty", "error", err)
		return Entry{}, false
	}

	var (
		best  Entry
		found bool
	)
	for _, e := range entries {
		if !IsAllowedExtension(ExtensionOf(e.Name)) {
			continue
		}
		if !found || e.ModTime.After(best.ModTime) || (e.ModTime.Equal(best.ModTime) && e.Name < best.Name) {
			best, found = e, true
		}
	}
	return best, found
}

// Reference builds the URL of a stored name. BaseURL may be a path or an absolute URL.
func (r *Resolver) Reference(name string) string {
	return strings.TrimSuffix(r.opts.BaseURL, "/") + "/" + name
}

// Placeholder returns the placeholder reference.
func (r *Resolver) Placeholder() string {
	return r.opts.Placeholder
}

func (r *Resolver) resolution(name string, src Source) Resolution {
	return Resolution{Reference: r.Reference(name), Name: name, Source: src}
}
