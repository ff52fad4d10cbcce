package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MemoryStore keeps uploads in memory. Used in development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	seq     int
	blobs   map[string][]byte
	deleted []string

	// FailUpload and FailDelete, when set, are returned by the next calls.
	FailUpload error
	FailDelete error
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{baseURL: baseURL, blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Upload(ctx context.Context, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", localPath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpload != nil {
		return "", s.FailUpload
	}
	s.seq++
	url := fmt.Sprintf("%s/upload/v1/%d-%s", s.baseURL, s.seq, filepath.Base(localPath))
	s.blobs[url] = data
	return url, nil
}

func (s *MemoryStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDelete != nil {
		return s.FailDelete
	}
	if _, ok := s.blobs[url]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, url)
	}
	delete(s.blobs, url)
	s.deleted = append(s.deleted, url)
	return nil
}

// Put registers an existing blob, as if uploaded earlier.
func (s *MemoryStore) Put(url string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[url] = data
}

func (s *MemoryStore) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[url]
	return ok
}

func (s *MemoryStore) Get(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[url]
	return b, ok
}

// Deleted returns the URLs deleted so far, in call order.
func (s *MemoryStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
