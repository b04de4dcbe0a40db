package main

import "github.com/chiejihye/pilsa/sound"

// unlockedMsg reports the engine state after an unlock attempt.
type unlockedMsg struct {
	State sound.State
}

// copiedMsg reports the result of copying a transcription.
type copiedMsg struct {
	Err error
}

// statusExpiredMsg clears the status line unless a newer status replaced it.
type statusExpiredMsg struct {
	Seq int
}
