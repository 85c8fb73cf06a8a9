package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/golangsnmp/mibtree/internal/types"
)

// schemaVersion is bumped when the on-disk entry layout changes. Entries
// written with another version read as missing.
const schemaVersion uint16 = 1

const entryExt = ".mp"

// entry is the on-disk form of one value. The key is kept alongside the
// value so Keys can list the store without a separate index.
type entry struct {
	Schema uint16 `msgpack:"schema"`
	Key    string `msgpack:"key"`
	Value  []byte `msgpack:"value"`
}

// DiskStore keeps one file per key under a directory. Writes go to a
// temporary file that is renamed into place.
type DiskStore struct {
	mu  sync.RWMutex
	dir string
	types.Logger
}

// OpenDisk returns a DiskStore rooted at dir, creating it if needed.
func OpenDisk(dir string, logger *slog.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &DiskStore{dir: dir, Logger: types.Logger{L: types.Component(logger, "store")}}, nil
}

// DefaultDir returns the per-user store directory for app, under
// XDG_DATA_HOME or ~/.local/share.
func DefaultDir(app string) (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, app), nil
}

// Dir returns the store directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) pathFor(key string) string {
	return filepath.Join(s.dir, keyDigest(key)+entryExt)
}

func (s *DiskStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.CreateTemp(s.dir, "tmp-*")
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	err = msgpack.NewEncoder(f).Encode(&entry{Schema: schemaVersion, Key: key, Value: value})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	if err := os.Rename(tmp, s.pathFor(key)); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	s.Log(slog.LevelDebug, "stored", slog.String("key", key), slog.Int("bytes", len(value)))
	return nil
}

func (s *DiskStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, err := readEntry(s.pathFor(key))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	// Digest collision: the file belongs to another key.
	if e.Key != key {
		return nil, ErrNotFound
	}
	return e.Value, nil
}

func (s *DiskStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pathFor(key)
	e, err := readEntry(p)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err == nil && e.Key != key {
		return nil
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	s.Log(slog.LevelDebug, "deleted", slog.String("key", key))
	return nil
}

func (s *DiskStore) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list store: %w", err)
	}
	var keys []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryExt) {
			continue
		}
		e, err := readEntry(filepath.Join(s.dir, f.Name()))
		if err != nil {
			s.Log(slog.LevelWarn, "unreadable store entry",
				slog.String("file", f.Name()),
				slog.String("error", err.Error()))
			continue
		}
		if strings.HasPrefix(e.Key, prefix) {
			keys = append(keys, e.Key)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func readEntry(path string) (*entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	var e entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, err
	}
	if e.Schema != schemaVersion {
		return nil, ErrNotFound
	}
	return &e, nil
}
