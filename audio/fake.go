package audio

import (
	"errors"
	"sync"
)

var _ Output = (*Fake)(nil)

// Fake is an in-memory Output for tests. It records every Play call.
type Fake struct {
	mu         sync.Mutex
	state      State
	resumeErr  error
	stayAsleep bool
	plays      [][]int16
	resumes    int
	name       string
}

func NewFake() *Fake {
	return &Fake{name: "fake"}
}

// FailResume makes subsequent Resume calls return err. nil clears it.
func (f *Fake) FailResume(err error) {
	f.mu.Lock()
	f.resumeErr = err
	f.mu.Unlock()
}

// StaySuspended makes Resume succeed without the device leaving the
// Suspended state, like a browser that ignores the gesture.
func (f *Fake) StaySuspended(v bool) {
	f.mu.Lock()
	f.stayAsleep = v
	f.mu.Unlock()
}

func (f *Fake) SetDeviceName(name string) {
	f.mu.Lock()
	f.name = name
	f.mu.Unlock()
}

func (f *Fake) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes++
	if f.state == Closed {
		return ErrClosed
	}
	if f.resumeErr != nil {
		return f.resumeErr
	}
	if !f.stayAsleep {
		f.state = Running
	}
	return nil
}

func (f *Fake) Suspend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Closed {
		return ErrClosed
	}
	f.state = Suspended
	return nil
}

func (f *Fake) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Fake) Play(samples []int16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case Closed:
		return ErrClosed
	case Suspended:
		return errors.New("fake: output suspended")
	}
	f.plays = append(f.plays, append([]int16(nil), samples...))
	return nil
}

func (f *Fake) DeviceName() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

func (f *Fake) Close() error {
	f.mu.Lock()
	f.state = Closed
	f.mu.Unlock()
	return nil
}

// Plays returns copies of every buffer played so far.
func (f *Fake) Plays() [][]int16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]int16(nil), f.plays...)
}

func (f *Fake) Resumes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumes
}
