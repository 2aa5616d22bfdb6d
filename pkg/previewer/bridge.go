package previewer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/bft-labs/ptflview/pkg/log"
)

// Default dial settings.
const (
	DefaultExecutable   = "tev"
	DefaultDialAttempts = 3
	DefaultDialTimeout  = 5 * time.Second
)

// Dialer opens the IPC connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type options struct {
	launcher     Launcher
	dialer       Dialer
	dialAttempts int
	backoffMin   time.Duration
	backoffMax   time.Duration
	logger       log.Logger
}

// Option configures a Bridge.
type Option func(*options)

// WithLauncher replaces the process launcher.
func WithLauncher(l Launcher) Option {
	return func(o *options) {
		o.launcher = l
	}
}

// WithExecutable launches path instead of "tev".
func WithExecutable(path string) Option {
	return func(o *options) {
		o.launcher = ExecLauncher{Path: path}
	}
}

// WithDialer replaces the TCP dialer.
func WithDialer(d Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithDialAttempts bounds connection attempts per session start.
func WithDialAttempts(n int) Option {
	return func(o *options) {
		o.dialAttempts = n
	}
}

// WithBackoff sets the delay between dial attempts.
func WithBackoff(initial, max time.Duration) Option {
	return func(o *options) {
		o.backoffMin = initial
		o.backoffMax = max
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Bridge owns at most one viewer session.
type Bridge struct {
	mu      sync.Mutex
	opts    options
	session sessionMachine
	proc    Process
	client  *Client
	addr    string
	backoff *Backoff
}

// NewBridge returns a bridge with no session. Nothing is spawned until the
// first EnsureStarted or OpenImage.
func NewBridge(opts ...Option) *Bridge {
	o := options{
		launcher:     ExecLauncher{Path: DefaultExecutable},
		dialer:       &net.Dialer{Timeout: DefaultDialTimeout},
		dialAttempts: DefaultDialAttempts,
		backoffMin:   100 * time.Millisecond,
		backoffMax:   2 * time.Second,
		logger:       log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialAttempts < 1 {
		o.dialAttempts = 1
	}
	return &Bridge{
		opts:    o,
		session: sessionMachine{state: NoSession, logger: o.logger},
		backoff: NewBackoff(o.backoffMin, o.backoffMax),
	}
}

// State returns the session state.
func (b *Bridge) State() SessionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.state
}

// Addr returns the IPC address of the live session, if any.
func (b *Bridge) Addr() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addr
}

// EnsureStarted makes sure a live session exists, replacing one whose
// process has exited.
func (b *Bridge) EnsureStarted(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ensureStarted(ctx)
}

func (b *Bridge) ensureStarted(ctx context.Context) error {
	if b.session.state == Live {
		exited, err := b.proc.Exited()
		switch {
		case err != nil:
			b.opts.logger.Warn("previewer status unknown, killing old instance", log.Err(err))
			if kerr := b.proc.Kill(); kerr != nil && !errors.Is(kerr, os.ErrProcessDone) {
				return fmt.Errorf("previewer: ending previous process: %w", kerr)
			}
			b.discard("status unknown")
		case exited:
			b.discard("process exited")
		default:
			return nil
		}
	}
	return b.start(ctx)
}

// discard drops the current session. The process is assumed finished or
// already killed; killing it again only releases its stdout.
func (b *Bridge) discard(reason string) {
	_ = b.session.transitionTo(Dead, reason)
	if b.client != nil {
		b.client.Close()
	}
	killQuietly(b.proc)
	b.proc, b.client, b.addr = nil, nil, ""
	_ = b.session.transitionTo(NoSession, "discarded")
}

func (b *Bridge) start(ctx context.Context) error {
	b.opts.logger.Info("starting previewer")

	proc, err := b.opts.launcher.Launch()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	stdout := bufio.NewReader(proc.Stdout())
	addr, err := discover(stdout)
	if err != nil {
		killQuietly(proc)
		return err
	}
	b.opts.logger.Debug("previewer announced IPC address", log.String("addr", addr))

	conn, err := b.dial(ctx, addr)
	if err != nil {
		killQuietly(proc)
		return &TransportError{Op: "dial", Addr: addr, Err: err}
	}

	// Keep the pipe drained so the viewer never blocks on its own output.
	go io.Copy(io.Discard, stdout)

	b.proc = proc
	b.client = NewClient(conn)
	b.addr = addr
	return b.session.transitionTo(Live, "connected to "+addr)
}

func (b *Bridge) dial(ctx context.Context, addr string) (net.Conn, error) {
	defer b.backoff.Reset()
	for attempt := 1; ; attempt++ {
		conn, err := b.opts.dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			return conn, nil
		}
		if attempt >= b.opts.dialAttempts {
			return nil, err
		}
		b.opts.logger.Debug("previewer dial failed, retrying",
			log.String("addr", addr),
			log.Int("attempt", attempt),
			log.Duration("backoff", b.backoff.Current()),
			log.Err(err),
		)
		if werr := b.backoff.Wait(ctx); werr != nil {
			return nil, werr
		}
	}
}

// OpenImage displays the image at path, starting a session if needed. A send
// failure is returned as a *TransportError and keeps the session.
func (b *Bridge) OpenImage(ctx context.Context, path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ensureStarted(ctx); err != nil {
		return err
	}
	if err := b.client.OpenImage(path); err != nil {
		if errors.Is(err, ErrBadPath) {
			return err
		}
		return &TransportError{Op: "send", Addr: b.addr, Err: err}
	}
	b.opts.logger.Info("opened image in previewer", log.String("path", path))
	return nil
}

// Close ends the session, closing the connection and killing the viewer.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session.state != Live {
		return nil
	}
	var errs []error
	if err := b.client.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := b.proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		errs = append(errs, err)
	}
	b.proc, b.client, b.addr = nil, nil, ""
	errs = append(errs, b.session.transitionTo(NoSession, "closed"))
	return errors.Join(errs...)
}

func killQuietly(p Process) {
	_ = p.Kill()
}
