package previewer

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Process is a running viewer.
type Process interface {
	// Stdout is the child's standard output.
	Stdout() io.Reader
	// Exited reports without blocking whether the process has finished. An
	// error means the status could not be determined.
	Exited() (bool, error)
	// Kill terminates the process and releases its stdout. Killing a
	// finished process returns nil or an error matching os.ErrProcessDone.
	Kill() error
}

// Launcher starts viewer processes.
type Launcher interface {
	Launch() (Process, error)
}

// ExecLauncher runs Path with no arguments. Stdout is captured, stdin and
// stderr are connected to the null device.
type ExecLauncher struct {
	Path string
}

// Launch starts the executable.
func (l ExecLauncher) Launch() (Process, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(l.Path)
	cmd.Stdout = pw
	cmd.Stderr = nil
	cmd.Stdin = nil
	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	// The child holds its own copy of the write end.
	pw.Close()

	p := &execProcess{cmd: cmd, stdout: pr, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout *os.File
	done   chan struct{}
	once   sync.Once
}

func (p *execProcess) Stdout() io.Reader {
	return p.stdout
}

func (p *execProcess) Exited() (bool, error) {
	select {
	case <-p.done:
		return true, nil
	default:
		return false, nil
	}
}

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	p.once.Do(func() { p.stdout.Close() })
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
