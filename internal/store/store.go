// Package store persists the ledger and the display preference in an opaque
// key-value store. Backends live in the filekv and sqlkv subpackages.
package store

import (
	"context"
	"sync"
)

// Keys used in the key-value store.
const (
	KeyRecords  = "records"
	KeyDarkMode = "darkMode"
)

// KV is the key-value capability the adapter needs. Values are strings.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Memory is an in-process KV. Nothing survives the process.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemory() *Memory {
	return &Memory{m: map[string]string{}}
}

func (s *Memory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Close() error { return nil }
