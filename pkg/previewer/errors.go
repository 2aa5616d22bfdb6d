package previewer

import (
	"errors"
	"fmt"
)

var (
	// ErrDiscovery is returned when the viewer's stdout closes before it
	// announced an IPC address.
	ErrDiscovery = errors.New("previewer: no IPC address announced")

	// ErrSpawn is returned when the viewer executable cannot be started.
	ErrSpawn = errors.New("previewer: spawn failed")

	// ErrInvalidTransition is returned by the session state machine.
	ErrInvalidTransition = errors.New("previewer: invalid session transition")

	// ErrBadPath is returned for image paths tev cannot receive.
	ErrBadPath = errors.New("previewer: image path contains NUL")
)

// TransportError reports a failure to reach or talk to the viewer.
type TransportError struct {
	Op   string // "dial" or "send"
	Addr string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("previewer: %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
