package images

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memFile struct {
	data    []byte
	modTime time.Time
}

// MemoryStore implements [Store] in memory.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]memFile
	now   func() time.Time
}

// NewMemoryStore creates an empty [MemoryStore] stamping writes with [time.Now].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]memFile), now: time.Now}
}

// SetClock replaces the clock used to stamp modification times.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryStore) Init(ctx context.Context) error { return nil }

func (m *MemoryStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[name]
	return ok, nil
}

// List returns entries sorted by name.
func (m *MemoryStore) List(ctx context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]Entry, 0, len(m.files))
	for name, f := range m.files {
		entries = append(entries, Entry{Name: name, Size: int64(len(f.data)), ModTime: f.modTime})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MemoryStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), f.data...), nil
}

func (m *MemoryStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = memFile{data: append([]byte(nil), data...), modTime: m.now()}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}
