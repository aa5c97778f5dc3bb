package files

import (
	"context"
	"io"
	"io/ioutil"
	"sync"

	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core/file"
)

// MemStorage keeps uploaded bytes in memory; used by tests.
type MemStorage struct {
	mu        sync.Mutex
	urlPrefix string
	blobs     map[string][]byte
}

var _ file.Storage = (*MemStorage)(nil)

func NewMemStorage(urlPrefix string) *MemStorage {
	return &MemStorage{urlPrefix: urlPrefix, blobs: make(map[string][]byte)}
}

func (s *MemStorage) Save(_ context.Context, token string, src io.Reader) (string, error) {
	data, err := ioutil.ReadAll(src)
	if err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	s.mu.Lock()
	s.blobs[token] = data
	s.mu.Unlock()
	return s.urlPrefix + "/" + token, nil
}

func (s *MemStorage) Remove(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.blobs, token)
	s.mu.Unlock()
	return nil
}

// Len reports how many blobs are currently stored.
func (s *MemStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
