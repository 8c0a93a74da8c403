package theme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// PreferenceKey is the store key holding the chosen theme
const PreferenceKey = "theme"

// Store is a string key-value store for user preferences
type Store interface {
	// Get returns the value for key; ok is false when nothing is stored
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore keeps preferences for the life of the process
type MemoryStore struct {
	c *cache.Cache
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.New(cache.NoExpiration, 0)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, ok := v.(string)
	return s, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.c.Set(key, value, cache.NoExpiration)
	return nil
}

// FileStore persists preferences as a flat YAML map
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the YAML file at path.
// The file is created on the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefs, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := prefs[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefs, err := f.read()
	if err != nil {
		return err
	}
	prefs[key] = value

	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating preferences dir: %w", err)
		}
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("writing preferences %s: %w", f.path, err)
	}
	return nil
}

func (f *FileStore) read() (map[string]string, error) {
	prefs := map[string]string{}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading preferences %s: %w", f.path, err)
	}
	if err := yaml.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("parsing preferences %s: %w", f.path, err)
	}
	if prefs == nil {
		prefs = map[string]string{}
	}
	return prefs, nil
}

// KeyringService is the OS keyring service name used by KeyringStore
const KeyringService = "map-gallery"

// KeyringStore keeps preferences in the OS keyring
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a store under service, or KeyringService when empty
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = KeyringService
	}
	return &KeyringStore{service: service}
}

func (k *KeyringStore) Get(_ context.Context, key string) (string, bool, error) {
	v, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("keyring get %s: %w", key, err)
	}
	return v, true, nil
}

func (k *KeyringStore) Set(_ context.Context, key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("keyring set %s: %w", key, err)
	}
	return nil
}

// NewStore builds the store named by kind: memory, file or keyring
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "file", "":
		return NewFileStore(path), nil
	case "keyring":
		return NewKeyringStore(""), nil
	}
	return nil, fmt.Errorf("unknown preference store %q", kind)
}
