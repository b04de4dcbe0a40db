// Package shutdown turns termination signals into a graceful quit of the
// terminal UI, so the draft is flushed and the stores are closed.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
)

// OnSignal calls quit once when the process receives a termination signal.
// The returned stop function unregisters the handler.
func OnSignal(quit func()) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		select {
		case <-ch:
			quit()
		case <-done:
		}
	}()

	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
}
