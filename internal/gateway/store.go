// Package gateway serves the two backup endpoints that push the practice
// document to a remote blob store and read it back.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrBlobNotFound is returned by a BlobStore for an unknown id.
var ErrBlobNotFound = errors.New("gateway: blob not found")

// File is one named document inside a blob.
type File struct {
	Name    string
	Content string
}

// BlobStore is a remote container of named files.
type BlobStore interface {
	Create(ctx context.Context, description string, file File) (string, error)
	Update(ctx context.Context, id string, file File) error
	Files(ctx context.Context, id string) ([]File, error)
}

// MemoryBlobStore keeps blobs in process memory.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	seq   int
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	description string
	files       map[string]string
}

// NewMemoryBlobStore constructs an empty store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string]memoryBlob)}
}

// Create implements BlobStore.
func (s *MemoryBlobStore) Create(ctx context.Context, description string, file File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	id := fmt.Sprintf("blob-%d", s.seq)
	s.blobs[id] = memoryBlob{description: description, files: map[string]string{file.Name: file.Content}}
	return id, nil
}

// Update implements BlobStore.
func (s *MemoryBlobStore) Update(ctx context.Context, id string, file File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, ok := s.blobs[id]
	if !ok {
		return ErrBlobNotFound
	}
	blob.files[file.Name] = file.Content
	return nil
}

// Files implements BlobStore, sorted by name.
func (s *MemoryBlobStore) Files(ctx context.Context, id string) ([]File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[id]
	if !ok {
		return nil, ErrBlobNotFound
	}
	files := make([]File, 0, len(blob.files))
	for name, content := range blob.files {
		files = append(files, File{Name: name, Content: content})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Description returns the description a blob was created with.
func (s *MemoryBlobStore) Description(id string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[id]
	return blob.description, ok
}
