package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/golangsnmp/mibtree/mib"
)

const (
	sourcePrefix = "source/"
	metaPrefix   = "meta/"
	forestKey    = "forest"
)

// Source is the stored text of one module file.
type Source struct {
	Name   string `msgpack:"name"`
	Text   string `msgpack:"text"`
	Digest string `msgpack:"digest"`
}

// FileMeta is what the last resolution learned about one stored file.
type FileMeta struct {
	Name        string           `msgpack:"name"`
	Digest      string           `msgpack:"digest"`
	Modules     []string         `msgpack:"modules,omitempty"`
	Diagnostics []mib.Diagnostic `msgpack:"diagnostics,omitempty"`
	Conflicts   []mib.Conflict   `msgpack:"conflicts,omitempty"`
	Error       string           `msgpack:"error,omitempty"`
}

// SaveSource stores text under name. It reports whether the stored
// content changed.
func SaveSource(s Store, name, text string) (bool, error) {
	digest := Digest([]byte(text))
	var prev Source
	switch err := get(s, sourcePrefix+name, &prev); {
	case err == nil && prev.Digest == digest:
		return false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return false, err
	}
	return true, put(s, sourcePrefix+name, &Source{Name: name, Text: text, Digest: digest})
}

// LoadSource returns the stored source called name.
func LoadSource(s Store, name string) (*Source, error) {
	var src Source
	if err := get(s, sourcePrefix+name, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// Sources returns every stored source, ordered by name.
func Sources(s Store) ([]Source, error) {
	keys, err := s.Keys(sourcePrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Source, 0, len(keys))
	for _, k := range keys {
		var src Source
		if err := get(s, k, &src); err != nil {
			// Removed between Keys and Get.
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

// SourceNames returns the names of every stored source, sorted.
func SourceNames(s Store) ([]string, error) {
	keys, err := s.Keys(sourcePrefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, sourcePrefix)
	}
	return keys, nil
}

// RemoveSource deletes a stored source and its metadata.
func RemoveSource(s Store, name string) error {
	if err := s.Delete(sourcePrefix + name); err != nil {
		return err
	}
	return s.Delete(metaPrefix + name)
}

// SaveFileMeta stores meta under meta.Name.
func SaveFileMeta(s Store, meta *FileMeta) error {
	return put(s, metaPrefix+meta.Name, meta)
}

// LoadFileMeta returns the metadata stored for name.
func LoadFileMeta(s Store, name string) (*FileMeta, error) {
	var meta FileMeta
	if err := get(s, metaPrefix+name, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// SaveForest replaces the stored merged forest. A nil forest clears it.
func SaveForest(s Store, f *mib.Forest) error {
	if f == nil {
		return s.Delete(forestKey)
	}
	return put(s, forestKey, f.Roots)
}

// LoadForest returns the stored merged forest.
func LoadForest(s Store) (*mib.Forest, error) {
	var roots []mib.Node
	if err := get(s, forestKey, &roots); err != nil {
		return nil, err
	}
	return mib.NewForest(roots), nil
}

func put(s Store, key string, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(key, data)
}

func get(s Store, key string, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
