//go:build unix

package sigctl

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// ///////////////////////////////////////////////
// Errors
// ///////////////////////////////////////////////

var (
	// ErrUncatchable is returned when asked to change the disposition of a
	// signal the kernel never lets a process handle (SIGKILL, SIGSTOP).
	ErrUncatchable = errors.New("signal cannot be caught or ignored")

	// ErrNotDelivered is returned by [Controller.Raise] when the callback did
	// not run within the delivery timeout.
	ErrNotDelivered = errors.New("signal raised but handler did not run")
)

// RegistrationError reports a failed install or restore for one signal.
type RegistrationError struct {
	// Op is "install" or "restore".
	Op string
	// Signal is the signal whose disposition could not be changed.
	Signal syscall.Signal
	// Err is the underlying cause.
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s handler for %s: %v", e.Op, signalName(e.Signal), e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ///////////////////////////////////////////////
// Registrar
// ///////////////////////////////////////////////

// Registrar changes the disposition of a single signal. Either call may fail
// per signal; the controller decides how failures affect its state.
type Registrar interface {
	// Notify routes future deliveries of sig to c.
	Notify(c chan<- os.Signal, sig os.Signal) error
	// Reset restores the default OS action for sig.
	Reset(sig os.Signal) error
}

// OSRegistrar is the [Registrar] backed by [os/signal].
type OSRegistrar struct{}

// Notify registers c for sig via [signal.Notify]. os/signal silently accepts
// signals that can never be delivered, so those are rejected up front the
// way sigaction(2) rejects them with EINVAL.
func (OSRegistrar) Notify(c chan<- os.Signal, sig os.Signal) error {
	if err := checkCatchable(sig); err != nil {
		return err
	}
	signal.Notify(c, sig)
	return nil
}

// Reset restores the default action for sig via [signal.Reset].
func (OSRegistrar) Reset(sig os.Signal) error {
	if err := checkCatchable(sig); err != nil {
		return err
	}
	signal.Reset(sig)
	return nil
}

func checkCatchable(sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		return fmt.Errorf("unsupported signal type %T", sig)
	}
	if s == syscall.SIGKILL || s == syscall.SIGSTOP {
		return fmt.Errorf("%s: %w", signalName(s), ErrUncatchable)
	}
	return nil
}
