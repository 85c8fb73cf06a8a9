package mibtree

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// DefaultExtensions are the file extensions Load accepts.
// Empty string matches files with no extension (e.g., "IF-MIB").
var DefaultExtensions = []string{"", ".mib", ".smi", ".txt", ".my"}

// Source lists module files and reads them.
type Source interface {
	// Files returns every file path known to this source, sorted.
	Files() ([]string, error)

	// ReadFile returns the content of a path returned by Files, or an
	// error matching fs.ErrNotExist if this source does not hold it.
	ReadFile(path string) ([]byte, error)
}

// --- Dir Source (single directory) ---

type dirSource struct {
	path string
}

// Dir creates a Source listing the regular files of one directory
// (no recursion).
func Dir(path string) (Source, error) {
	if err := checkDir(path); err != nil {
		return nil, err
	}
	return &dirSource{path: path}, nil
}

// MustDir is like Dir but panics on error.
func MustDir(path string) Source {
	src, err := Dir(path)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *dirSource) Files() ([]string, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			files = append(files, filepath.Join(s.path, entry.Name()))
		}
	}
	return files, nil
}

func (s *dirSource) ReadFile(path string) ([]byte, error) {
	return readOwned(s.path, path)
}

// --- DirTree Source (recursive directory) ---

type treeSource struct {
	root string

	once  sync.Once
	files []string
	err   error
}

// DirTree creates a Source listing every regular file below root. The
// tree is walked once, on the first call to Files. Unreadable
// directories are skipped.
func DirTree(root string) (Source, error) {
	if err := checkDir(root); err != nil {
		return nil, err
	}
	return &treeSource{root: root}, nil
}

// MustDirTree is like DirTree but panics on error.
func MustDirTree(root string) Source {
	src, err := DirTree(root)
	if err != nil {
		panic(err)
	}
	return src
}

func (s *treeSource) Files() ([]string, error) {
	s.once.Do(func() {
		s.err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				s.files = append(s.files, path)
			}
			return nil
		})
	})
	return s.files, s.err
}

func (s *treeSource) ReadFile(path string) ([]byte, error) {
	return readOwned(s.root, path)
}

// --- Files Source (explicit list) ---

type fileSource struct {
	paths []string
}

// Files creates a Source over an explicit list of file paths. Paths are
// listed in the order given.
func Files(paths ...string) Source {
	return &fileSource{paths: slices.Clone(paths)}
}

func (s *fileSource) Files() ([]string, error) {
	return s.paths, nil
}

func (s *fileSource) ReadFile(path string) ([]byte, error) {
	if !slices.Contains(s.paths, path) {
		return nil, fs.ErrNotExist
	}
	return os.ReadFile(path)
}

// --- FS Source (for embed.FS, testing) ---

type fsSource struct {
	name string
	fsys fs.FS
}

// FS creates a Source backed by an fs.FS (e.g., embed.FS). Listed paths
// are prefixed with name and a colon so they stay distinct from paths of
// other sources.
func FS(name string, fsys fs.FS) Source {
	return &fsSource{name: name, fsys: fsys}
}

func (s *fsSource) Files() ([]string, error) {
	var files []string
	err := fs.WalkDir(s.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, s.name+":"+path)
		}
		return nil
	})
	return files, err
}

func (s *fsSource) ReadFile(path string) ([]byte, error) {
	rel, ok := strings.CutPrefix(path, s.name+":")
	if !ok {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(s.fsys, rel)
}

// --- Multi Source (combines multiple sources) ---

type multiSource struct {
	sources []Source
}

// Multi combines multiple sources into one. Files concatenates their
// listings in order; ReadFile asks each source in turn.
func Multi(sources ...Source) Source {
	return &multiSource{sources: sources}
}

func (s *multiSource) Files() ([]string, error) {
	var files []string
	for _, src := range s.sources {
		f, err := src.Files()
		if err != nil {
			return nil, err
		}
		files = append(files, f...)
	}
	return files, nil
}

func (s *multiSource) ReadFile(path string) ([]byte, error) {
	for _, src := range s.sources {
		data, err := src.ReadFile(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			return data, err
		}
	}
	return nil, fs.ErrNotExist
}

// --- Helpers ---

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	return nil
}

// readOwned reads path if it lies below root.
func readOwned(root, path string) ([]byte, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fs.ErrNotExist
	}
	return os.ReadFile(path)
}

func makeExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

func hasValidExtension(path string, extSet map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := extSet[ext]
	return ok
}
