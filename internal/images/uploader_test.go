package images

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// brokenWriteStore fails every Write.
type brokenWriteStore struct{ *MemoryStore }

func (b *brokenWriteStore) Write(ctx context.Context, name string, data []byte) error {
	return errors.New("read-only filesystem")
}

// stuckStore refuses to delete one name.
type stuckStore struct {
	*MemoryStore
	stuck string
}

func (s *stuckStore) Delete(ctx context.Context, name string) error {
	if name == s.stuck {
		return errors.New("permission denied")
	}
	return s.MemoryStore.Delete(ctx, name)
}

func names(t *testing.T, s Store) []string {
	t.Helper()
	entries, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestUploader(t *testing.T) {
	ctx := context.Background()

	t.Run("Upload then resolve", func(t *testing.T) {
		s := NewMemoryStore()
		u := NewUploader(s, nil)
		r := NewResolver(s, ResolverOptions{})

		stored, err := u.Upload(ctx, "alice", "pic.PNG", []byte("png"))
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if stored != "alice.png" {
			t.Errorf("expected alice.png, got %s", stored)
		}

		if got := r.Resolve(ctx, "alice"); !strings.HasSuffix(got, "alice.png") {
			t.Errorf("expected reference ending in alice.png, got %s", got)
		}
	})

	t.Run("Replacing evicts other extensions", func(t *testing.T) {
		s := NewMemoryStore()
		u := NewUploader(s, nil)

		if _, err := u.Upload(ctx, "alice", "first.png", []byte("png")); err != nil {
			t.Fatalf("first upload failed: %v", err)
		}
		if _, err := u.Upload(ctx, "alice", "second.JPG", []byte("jpg")); err != nil {
			t.Fatalf("second upload failed: %v", err)
		}

		got := names(t, s)
		if len(got) != 1 || got[0] != "alice.jpg" {
			t.Errorf("expected only alice.jpg, got %v", got)
		}
	})

	t.Run("Same extension overwrites", func(t *testing.T) {
		s := NewMemoryStore()
		u := NewUploader(s, nil)

		_, _ = u.Upload(ctx, "alice", "a.gif", []byte("one"))
		_, _ = u.Upload(ctx, "alice", "b.gif", []byte("two"))

		data, err := s.Read(ctx, "alice.gif")
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(data) != "two" {
			t.Errorf("expected latest content, got %q", data)
		}
	})

	t.Run("Other slugs untouched", func(t *testing.T) {
		s := NewMemoryStore()
		u := NewUploader(s, nil)

		_, _ = u.Upload(ctx, "bob", "bob.webp", []byte("webp"))
		_, _ = u.Upload(ctx, "alice", "a.png", []byte("png"))
		_, _ = u.Upload(ctx, "alice", "a.jpeg", []byte("jpeg"))

		got := names(t, s)
		if len(got) != 2 || got[0] != "alice.jpeg" || got[1] != "bob.webp" {
			t.Errorf("expected [alice.jpeg bob.webp], got %v", got)
		}
	})

	t.Run("Unsupported type leaves store unchanged", func(t *testing.T) {
		s := NewMemoryStore()
		u := NewUploader(s, nil)
		_, _ = u.Upload(ctx, "bob", "pic.png", []byte("png"))

		_, err := u.Upload(ctx, "bob", "virus.exe", []byte("MZ"))
		if !errors.Is(err, ErrUnsupportedImageType) {
			t.Fatalf("expected ErrUnsupportedImageType, got %v", err)
		}

		got := names(t, s)
		if len(got) != 1 || got[0] != "bob.png" {
			t.Errorf("expected store unchanged, got %v", got)
		}
	})

	t.Run("No file provided", func(t *testing.T) {
		u := NewUploader(NewMemoryStore(), nil)

		tc := []struct {
			name     string
			filename string
			content  []byte
		}{
			{"empty content", "pic.png", []byte{}},
			{"nil content", "pic.png", nil},
			{"empty filename", "", []byte("png")},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := u.Upload(ctx, "bob", tt.filename, tt.content); !errors.Is(err, ErrNoFileProvided) {
					t.Errorf("expected ErrNoFileProvided, got %v", err)
				}
			})
		}
	})

	t.Run("Missing extension", func(t *testing.T) {
		u := NewUploader(NewMemoryStore(), nil)

		if _, err := u.Upload(ctx, "bob", "picture", []byte("png")); !errors.Is(err, ErrUnsupportedImageType) {
			t.Errorf("expected ErrUnsupportedImageType, got %v", err)
		}
	})

	t.Run("Empty slug", func(t *testing.T) {
		u := NewUploader(NewMemoryStore(), nil)

		if _, err := u.Upload(ctx, "!!!", "pic.png", []byte("png")); !errors.Is(err, ErrInvalidSlug) {
			t.Errorf("expected ErrInvalidSlug, got %v", err)
		}
	})

	t.Run("Traversal in slug is neutralized", func(t *testing.T) {
		root := t.TempDir()
		s := NewDirStore(filepath.Join(root, "uploads"))
		if err := s.Init(ctx); err != nil {
			t.Fatal(err)
		}
		u := NewUploader(s, nil)

		stored, err := u.Upload(ctx, "../../etc/passwd", "../../x.png", []byte("png"))
		if err != nil {
			t.Fatalf("upload failed: %v", err)
		}
		if stored != "etc-passwd.png" {
			t.Errorf("expected etc-passwd.png, got %s", stored)
		}
		if ok, _ := s.Exists(ctx, "etc-passwd.png"); !ok {
			t.Error("expected sanitized file inside the store")
		}
	})

	t.Run("Store failure", func(t *testing.T) {
		u := NewUploader(&brokenWriteStore{MemoryStore: NewMemoryStore()}, nil)

		if _, err := u.Upload(ctx, "bob", "pic.png", []byte("png")); !errors.Is(err, ErrStoreUnavailable) {
			t.Errorf("expected ErrStoreUnavailable, got %v", err)
		}
	})

	t.Run("Failed eviction rolls back the new picture", func(t *testing.T) {
		s := &stuckStore{MemoryStore: NewMemoryStore(), stuck: "carol.jpg"}
		if err := s.Write(ctx, "carol.jpg", []byte("old")); err != nil {
			t.Fatal(err)
		}
		u := NewUploader(s, nil)

		if _, err := u.Upload(ctx, "carol", "new.png", []byte("png")); !errors.Is(err, ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}

		got := names(t, s)
		if len(got) != 1 || got[0] != "carol.jpg" {
			t.Errorf("expected only carol.jpg to remain, got %v", got)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		s := NewMemoryStore()
		u := NewUploader(s, nil)
		_ = s.Write(ctx, "alice.png", []byte("png"))
		_ = s.Write(ctx, "alice.jpg", []byte("jpg"))
		_ = s.Write(ctx, "bob.png", []byte("png"))

		if err := u.Remove(ctx, "Alice"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}

		got := names(t, s)
		if len(got) != 1 || got[0] != "bob.png" {
			t.Errorf("expected only bob.png, got %v", got)
		}

		if err := u.Remove(ctx, ""); !errors.Is(err, ErrInvalidSlug) {
			t.Errorf("expected ErrInvalidSlug, got %v", err)
		}
	})

	t.Run("Concurrent uploads keep one picture per slug", func(t *testing.T) {
		s := NewDirStore(t.TempDir())
		u := NewUploader(s, nil)

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				ext := AllowedExtensions[i%len(AllowedExtensions)]
				if _, err := u.Upload(ctx, "alice", "pic."+ext, []byte(fmt.Sprint(i))); err != nil {
					t.Errorf("upload %d failed: %v", i, err)
				}
			}(i)
		}
		wg.Wait()

		got := names(t, s)
		if len(got) != 1 || !strings.HasPrefix(got[0], "alice.") {
			t.Errorf("expected exactly one alice picture, got %v", got)
		}
		if n := u.locks.len(); n != 0 {
			t.Errorf("expected lock table to be empty, got %d", n)
		}
	})
}

func TestSanitizeName(t *testing.T) {
	tc := []struct {
		slug, ext, want string
		err             error
	}{
		{"alice", "PNG", "alice.png", nil},
		{"Jane Doe", ".jpg", "jane-doe.jpg", nil},
		{"a/b", "gif", "a-b.gif", nil},
		{"", "png", "", ErrInvalidSlug},
		{"bob", "exe", "", ErrUnsupportedImageType},
	}

	for _, tt := range tc {
		got, err := SanitizeName(tt.slug, tt.ext)
		if !errors.Is(err, tt.err) {
			t.Errorf("SanitizeName(%q, %q) error = %v, want %v", tt.slug, tt.ext, err, tt.err)
		}
		if got != tt.want {
			t.Errorf("SanitizeName(%q, %q) = %q, want %q", tt.slug, tt.ext, got, tt.want)
		}
	}
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()

	unlockA := k.Lock("a")
	unlockB := k.Lock("b")
	if n := k.len(); n != 2 {
		t.Errorf("expected 2 held keys, got %d", n)
	}

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("a")
		unlock()
		close(done)
	}()

	unlockB()
	unlockA()
	<-done

	if n := k.len(); n != 0 {
		t.Errorf("expected no held keys, got %d", n)
	}
}
