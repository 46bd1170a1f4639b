// Package pages serves page content from a directory, caching file contents in memory.
package pages

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a request path does not map to a readable page.
var ErrNotFound = errors.New("page not found")

const indexFile = "index.html"

// Page is a cached file.
type Page struct {
	Path    string
	Name    string
	Data    []byte
	ModTime time.Time
}

// Store maps request paths to files under root and caches their contents.
type Store struct {
	root  string
	mu    sync.RWMutex
	cache map[string]*Page // keyed by cleaned absolute file path
}

// NewStore creates a store rooted at root. The root must be an existing directory.
func NewStore(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root is not a directory: %s", abs)
	}
	return &Store{root: abs, cache: make(map[string]*Page)}, nil
}

// Root returns the absolute content root.
func (s *Store) Root() string {
	return s.root
}

// Resolve maps a slash-separated request path to a file under the root.
// Directories resolve to their index.html.
func (s *Store) Resolve(reqPath string) (string, error) {
	file, _, err := s.resolve(reqPath)
	return file, err
}

func (s *Store) resolve(reqPath string) (string, os.FileInfo, error) {
	clean := path.Clean("/" + reqPath)
	file := filepath.Join(s.root, filepath.FromSlash(clean))
	if file != s.root && !strings.HasPrefix(file, s.root+string(filepath.Separator)) {
		return "", nil, ErrNotFound
	}
	info, err := os.Stat(file)
	if err != nil {
		return "", nil, ErrNotFound
	}
	if info.IsDir() {
		file = filepath.Join(file, indexFile)
		if info, err = os.Stat(file); err != nil || info.IsDir() {
			return "", nil, ErrNotFound
		}
	}
	return file, info, nil
}

// Get returns the page for reqPath. A cached page is reused only while the
// file's modification time and size are unchanged; otherwise it is reread.
func (s *Store) Get(reqPath string) (*Page, error) {
	file, info, err := s.resolve(reqPath)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	p, ok := s.cache[file]
	s.mu.RUnlock()
	if ok && p.ModTime.Equal(info.ModTime()) && int64(len(p.Data)) == info.Size() {
		return p, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	p = &Page{Path: file, Name: filepath.Base(file), Data: data, ModTime: info.ModTime()}
	s.mu.Lock()
	s.cache[file] = p
	s.mu.Unlock()
	return p, nil
}

// Invalidate drops the cached entry for an absolute file path.
func (s *Store) Invalidate(file string) {
	s.mu.Lock()
	delete(s.cache, filepath.Clean(file))
	s.mu.Unlock()
}

// Len returns the number of cached pages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cache)
}
