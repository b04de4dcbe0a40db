package kv

import (
	"errors"
	"sync"
)

var errInjected = errors.New("kv: injected failure")

// Memory is an in-process Store. It backs the -memory flag and tests.
type Memory struct {
	mu     sync.Mutex
	data   map[string]string
	writes map[string][]string
	closed bool

	failGet bool
	failSet bool
}

func NewMemory() *Memory {
	return &Memory{
		data:   make(map[string]string),
		writes: make(map[string][]string),
	}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return "", false, ErrClosed
	}
	if m.failGet {
		return "", false, errInjected
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.failSet {
		return errInjected
	}
	m.data[key] = value
	m.writes[key] = append(m.writes[key], value)
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Put stores a raw value without counting it as a write.
func (m *Memory) Put(key, value string) {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
}

// Writes returns every value written to key through Set, oldest first.
func (m *Memory) Writes(key string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes[key]...)
}

// FailGets makes subsequent Get calls return an error.
func (m *Memory) FailGets(fail bool) {
	m.mu.Lock()
	m.failGet = fail
	m.mu.Unlock()
}

// FailSets makes subsequent Set calls return an error.
func (m *Memory) FailSets(fail bool) {
	m.mu.Lock()
	m.failSet = fail
	m.mu.Unlock()
}
