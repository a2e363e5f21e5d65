//go:build unix

package sigctl

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"tools.zach/dev/sigdemo/internal/logger"
)

// DefaultDeliveryTimeout bounds how long [Controller.Raise] waits for the
// callback to run after raising a managed signal.
const DefaultDeliveryTimeout = 500 * time.Millisecond

// ///////////////////////////////////////////////
// Options
// ///////////////////////////////////////////////

// Option configures a [Controller].
type Option func(*Controller)

// WithRegistrar replaces the [OSRegistrar].
func WithRegistrar(r Registrar) Option {
	return func(c *Controller) { c.reg = r }
}

// WithLogger sets the logger used for state transitions. Defaults to
// [slog.Default] at construction time.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithDeliveryTimeout sets how long Raise waits for the callback.
// Non-positive values keep the default.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.deliveryTimeout = d
		}
	}
}

// WithHighlight sets the function that decorates the "is raised" line,
// typically with a terminal color.
func WithHighlight(fn func(string) string) Option {
	return func(c *Controller) { c.highlight = fn }
}

// ///////////////////////////////////////////////
// Controller
// ///////////////////////////////////////////////

// Controller owns the disposition of the managed signal set.
type Controller struct {
	// out receives the callback output.
	out io.Writer
	// reg changes per-signal dispositions.
	reg Registrar
	// log records state transitions; never used from handle.
	log *slog.Logger
	// deliveryTimeout bounds the wait in Raise.
	deliveryTimeout time.Duration
	// highlight decorates the "is raised" line when messages are prepared.
	highlight func(string) string
	// kill delivers a signal to the current process.
	kill func(syscall.Signal) error

	// active is the customHandlersActive flag.
	active atomic.Bool
	// msgs holds the prepared callback output, swapped by SetHighlight.
	msgs atomic.Pointer[messages]

	// mu serializes Install, Restore, and Close.
	mu sync.Mutex
	// ch is the channel registered with the Registrar.
	ch chan os.Signal
	// handled carries one value per completed callback, for Raise.
	handled chan syscall.Signal
	// done stops the dispatcher; stopped is closed when it has exited.
	done    chan struct{}
	stopped chan struct{}
	// running is true once the dispatcher goroutine has started.
	running bool
	// scratch is the dispatcher-owned buffer for the fallback line.
	scratch []byte
}

// New returns an INACTIVE controller writing callback output to out.
func New(out io.Writer, opts ...Option) *Controller {
	c := &Controller{
		out:             out,
		reg:             OSRegistrar{},
		log:             slog.Default(),
		deliveryTimeout: DefaultDeliveryTimeout,
		highlight:       func(s string) string { return s },
		kill:            raiseSelf,
		ch:              make(chan os.Signal, 8),
		handled:         make(chan syscall.Signal, 8),
		done:            make(chan struct{}),
		stopped:         make(chan struct{}),
		scratch:         make([]byte, 0, 128),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.msgs.Store(prepareMessages(c.highlight))
	return c
}

// Active reports whether the custom handlers are installed.
func (c *Controller) Active() bool {
	return c.active.Load()
}

// SetHighlight rebuilds the callback output with a new decoration. It is
// safe to call while signals are being delivered.
func (c *Controller) SetHighlight(fn func(string) string) {
	c.msgs.Store(prepareMessages(fn))
}

// Install registers the callback for every managed signal. The first failing
// registration aborts the rest, rolls back the managed set to default
// handling, and leaves the controller INACTIVE.
func (c *Controller) Install() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sig := range Managed() {
		if err := c.reg.Notify(c.ch, sig); err != nil {
			c.rollback()
			c.active.Store(false)
			regErr := &RegistrationError{Op: "install", Signal: sig, Err: err}
			c.log.Warn("install custom handlers failed", "signal", signalName(sig), "error", err)
			return regErr
		}
	}

	if !c.running {
		c.running = true
		go c.dispatch(c.done, c.stopped)
	}
	c.active.Store(true)
	c.log.Info("custom signal handlers installed", "signals", len(Managed()))
	return nil
}

// rollback resets the whole managed set after a failed install. Errors are
// only logged; the install error is what the caller sees.
func (c *Controller) rollback() {
	for _, sig := range Managed() {
		if err := c.reg.Reset(sig); err != nil {
			c.log.Debug("rollback reset failed", "signal", signalName(sig), "error", err)
		}
	}
}

// Restore returns every managed signal to its default action. Each signal is
// attempted independently; failures are joined into the returned error, one
// [*RegistrationError] per signal. The controller is INACTIVE afterwards
// regardless of failures.
func (c *Controller) Restore() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, sig := range Managed() {
		if err := c.reg.Reset(sig); err != nil {
			c.log.Warn("restore default handler failed", "signal", signalName(sig), "error", err)
			errs = append(errs, &RegistrationError{Op: "restore", Signal: sig, Err: err})
		}
	}
	c.active.Store(false)
	c.log.Info("default signal handlers restored", "failures", len(errs))
	return errors.Join(errs...)
}

// Close restores default handling and stops the dispatcher.
func (c *Controller) Close() error {
	err := c.Restore()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		close(c.done)
		<-c.stopped
		c.running = false
		c.done = make(chan struct{})
		c.stopped = make(chan struct{})
	}
	return err
}

// dispatch drains the signal channel and runs the callback for each
// delivery. Logging happens here, after handle has returned.
func (c *Controller) dispatch(done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	for {
		select {
		case <-done:
			return
		case sig := <-c.ch:
			c.handle(sig)
			s, _ := sig.(syscall.Signal)
			logger.Trace(c.log, "signal handled", "signal", signalName(s))
			select {
			case c.handled <- s:
			default:
			}
		}
	}
}

// ///////////////////////////////////////////////
// Raise
// ///////////////////////////////////////////////

// Raise delivers sig to the current process. When custom handling is active
// and sig is managed, Raise returns once the callback has run for it, or
// with [ErrNotDelivered] after the delivery timeout. SIGKILL and SIGSEGV do
// not return.
func (c *Controller) Raise(sig syscall.Signal) error {
	wait := c.active.Load() && IsManaged(sig)
	if wait {
		c.drainHandled()
	}

	c.log.Info("raising signal", "signal", signalName(sig), "custom_handlers", c.active.Load())
	if err := c.kill(sig); err != nil {
		return fmt.Errorf("raise %s: %w", signalName(sig), err)
	}
	if sig == syscall.SIGSEGV {
		fault()
	}
	if !wait {
		return nil
	}

	timer := time.NewTimer(c.deliveryTimeout)
	defer timer.Stop()
	for {
		select {
		case got := <-c.handled:
			if got == sig {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("raise %s: %w", signalName(sig), ErrNotDelivered)
		}
	}
}

// drainHandled discards acknowledgements left over from earlier deliveries.
func (c *Controller) drainHandled() {
	for {
		select {
		case <-c.handled:
		default:
			return
		}
	}
}
