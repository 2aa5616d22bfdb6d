package console

import "errors"

// ErrUsage marks malformed commands. The command's usage is printed and the
// loop continues.
var ErrUsage = errors.New("usage error")

// UsageError names the command whose grammar was violated.
type UsageError struct {
	Command string
	Reason  string
}

func (e *UsageError) Error() string {
	if e.Command == "" {
		return e.Reason
	}
	return e.Command + ": " + e.Reason
}

func (e *UsageError) Unwrap() error {
	return ErrUsage
}

func usageErr(cmd, reason string) error {
	return &UsageError{Command: cmd, Reason: reason}
}
