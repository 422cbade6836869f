// Package cache stores annotation responses as binary protobuf files.
//
// A Store is one cache tier: a directory holding {key}.pb files. Writes go
// through a temporary file and a rename so a reader never sees a partial
// entry.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/protobuf/proto"
)

// Ext is the file extension of cache entries
const Ext = ".pb"

var (
	// ErrMiss is returned by Load when no entry exists for the key
	ErrMiss = errors.New("cache miss")
	// ErrCorrupt is returned by Load when an entry cannot be decoded
	ErrCorrupt = errors.New("corrupt cache entry")
)

// Store is a directory of cached annotation responses
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created on first Save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the file path of the entry for key
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+Ext)
}

// Load reads the entry for key
func (s *Store) Load(key string) (*visionpb.AnnotateImageResponse, error) {
	path := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read cache entry %s: %w", path, err)
	}

	resp := &visionpb.AnnotateImageResponse{}
	if err := proto.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorrupt, path, err)
	}
	return resp, nil
}

// Save writes resp as the entry for key, replacing any existing entry
func (s *Store) Save(key string, resp *visionpb.AnnotateImageResponse) error {
	data, err := Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create cache entry %s: %w", key, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(key)); err != nil {
		return fmt.Errorf("failed to move cache entry %s into place: %w", key, err)
	}
	return nil
}

// Marshal encodes resp deterministically, so equal responses produce
// identical cache files.
func Marshal(resp *visionpb.AnnotateImageResponse) ([]byte, error) {
	return proto.MarshalOptions{Deterministic: true}.Marshal(resp)
}
