package previewer

import (
	"fmt"

	"github.com/bft-labs/ptflview/pkg/log"
)

// SessionState is the lifecycle state of a viewer session.
type SessionState int

const (
	// NoSession means no process is owned.
	NoSession SessionState = iota
	// Live means a process and an open connection are held.
	Live
	// Dead means the process is gone or unknown and is being discarded.
	Dead
)

func (s SessionState) String() string {
	switch s {
	case NoSession:
		return "NoSession"
	case Live:
		return "Live"
	case Dead:
		return "Dead"
	default:
		return "Unknown"
	}
}

// sessionMachine validates and logs session state changes.
type sessionMachine struct {
	state  SessionState
	logger log.Logger
}

func (m *sessionMachine) transitionTo(next SessionState, reason string) error {
	prev := m.state

	switch prev {
	case NoSession:
		if next != Live {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
		}
	case Live:
		if next != Dead && next != NoSession {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
		}
	case Dead:
		if next != NoSession {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
		}
	}

	m.state = next
	m.logger.Debug("previewer session",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason),
	)
	return nil
}
