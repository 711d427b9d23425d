// Package buffers keeps the named-buffer list on disk: an index file plus
// one PNG per buffer. The list is ordered head first, newest buffer on top,
// the way an image editor lists its named buffers.
package buffers

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"
)

// ErrNotFound is returned for a buffer name that is not in the list.
var ErrNotFound = errors.New("no such buffer")

const indexFile = "index.json"

type entry struct {
	Name string `json:"name"`
	File string `json:"file"`
}

type index struct {
	Next    int     `json:"next"`
	Buffers []entry `json:"buffers"`
}

// Store is a directory-backed buffer list.
type Store struct {
	dir    string
	logger hclog.Logger
}

// DefaultDir returns <user cache dir>/copynaut/buffers.
func DefaultDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "copynaut", "buffers"), nil
}

// Open returns the store rooted at dir, creating the directory if needed.
func Open(dir string, logger hclog.Logger) (*Store, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("buffer directory %q: %w", dir, err)
	}
	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return nil, fmt.Errorf("creating buffer directory: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{dir: expanded, logger: logger}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Names returns the buffer names, head first.
func (s *Store) Names() ([]string, error) {
	idx, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(idx.Buffers))
	for i, e := range idx.Buffers {
		names[i] = e.Name
	}
	return names, nil
}

// Add stores img at the head of the list. A name already in use gets a
// " #N" suffix; the name actually used is returned.
func (s *Store) Add(name string, img image.Image) (string, error) {
	idx, err := s.read()
	if err != nil {
		return "", err
	}
	name = uniqueName(idx, name)

	idx.Next++
	file := fmt.Sprintf("buffer-%06d.png", idx.Next)
	if err := writePNG(filepath.Join(s.dir, file), img); err != nil {
		return "", err
	}
	idx.Buffers = append([]entry{{Name: name, File: file}}, idx.Buffers...)
	if err := s.write(idx); err != nil {
		os.Remove(filepath.Join(s.dir, file))
		return "", err
	}
	s.logger.Debug("added buffer", "name", name, "file", file)
	return name, nil
}

// Image decodes the pixels of the named buffer.
func (s *Store) Image(name string) (image.Image, error) {
	idx, err := s.read()
	if err != nil {
		return nil, err
	}
	i := find(idx, name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	img, err := imgio.Open(filepath.Join(s.dir, idx.Buffers[i].File))
	if err != nil {
		return nil, fmt.Errorf("reading buffer %q: %w", name, err)
	}
	return img, nil
}

// Delete removes the named buffer.
func (s *Store) Delete(name string) error {
	idx, err := s.read()
	if err != nil {
		return err
	}
	i := find(idx, name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	file := idx.Buffers[i].File
	idx.Buffers = append(idx.Buffers[:i], idx.Buffers[i+1:]...)
	if err := s.write(idx); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, file)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("could not remove buffer file", "file", file, "error", err)
	}
	s.logger.Debug("deleted buffer", "name", name)
	return nil
}

func (s *Store) read() (*index, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if os.IsNotExist(err) {
		return &index{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading buffer index: %w", err)
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing buffer index: %w", err)
	}
	return &idx, nil
}

// write replaces the index through a rename so a crash never leaves it
// half written.
func (s *Store) write(idx *index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, indexFile+".*")
	if err != nil {
		return fmt.Errorf("writing buffer index: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing buffer index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing buffer index: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, indexFile)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing buffer index: %w", err)
	}
	return nil
}

func find(idx *index, name string) int {
	for i, e := range idx.Buffers {
		if e.Name == name {
			return i
		}
	}
	return -1
}

func uniqueName(idx *index, name string) string {
	if find(idx, name) < 0 {
		return name
	}
	for n := 1; ; n++ {
		candidate := name + " #" + strconv.Itoa(n)
		if find(idx, candidate) < 0 {
			return candidate
		}
	}
}

func writePNG(path string, img image.Image) error {
	if err := imgio.Save(path, img, imgio.PNGEncoder()); err != nil {
		os.Remove(path)
		return fmt.Errorf("writing buffer file: %w", err)
	}
	return nil
}
