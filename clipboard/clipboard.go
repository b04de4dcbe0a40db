// Package clipboard copies archived transcriptions to the system
// clipboard.
package clipboard

import (
	"errors"
	"fmt"

	cb "github.com/atotto/clipboard"
)

// ErrUnavailable is returned when no clipboard utility is installed
// (xclip, xsel or wl-clipboard on Linux).
var ErrUnavailable = errors.New("clipboard: no clipboard utility found")

func Available() bool {
	return !cb.Unsupported
}

func Copy(text string) error {
	if cb.Unsupported {
		return ErrUnavailable
	}
	if err := cb.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

func Read() (string, error) {
	if cb.Unsupported {
		return "", ErrUnavailable
	}
	s, err := cb.ReadAll()
	if err != nil {
		return "", fmt.Errorf("clipboard read: %w", err)
	}
	return s, nil
}
