package kv

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Writer persists JSON snapshots of one key in the background. It holds a
// single pending slot: a snapshot queued while another is waiting replaces
// it, so only the newest state reaches the Store.
type Writer struct {
	store   Store
	key     string
	onError func(error)

	mu      sync.Mutex
	pending []byte
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewWriter starts the background goroutine. onError receives write
// failures; it may be nil.
func NewWriter(store Store, key string, onError func(error)) *Writer {
	if onError == nil {
		onError = func(error) {}
	}
	w := &Writer{
		store:   store,
		key:     key,
		onError: onError,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// Save encodes v immediately and queues it for writing. It never blocks on
// the Store. Saves after Close are dropped.
func (w *Writer) Save(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.onError(fmt.Errorf("encode %s: %w", w.key, err))
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = data
	select {
	case w.wake <- struct{}{}:
	default:
	}
	w.mu.Unlock()
}

func (w *Writer) run() {
	defer close(w.done)
	for range w.wake {
		w.flush()
	}
	w.flush()
}

func (w *Writer) flush() {
	w.mu.Lock()
	data := w.pending
	w.pending = nil
	w.mu.Unlock()
	if data == nil {
		return
	}
	if err := w.store.Set(w.key, string(data)); err != nil {
		w.onError(fmt.Errorf("write %s: %w", w.key, err))
	}
}

// Close writes any pending snapshot and stops the goroutine.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.wake)
	w.mu.Unlock()
	<-w.done
}
