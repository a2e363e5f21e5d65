//go:build unix && !linux

package sigctl

import (
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// settleDelay is how long raiseSelf waits for a process-directed signal to
// take effect.
const settleDelay = 100 * time.Millisecond

// raiseSelf sends sig to the process. There is no portable thread-directed
// kill in x/sys here, so it waits settleDelay for the runtime to act on the
// signal before returning.
func raiseSelf(sig syscall.Signal) error {
	if err := unix.Kill(unix.Getpid(), sig); err != nil {
		return err
	}
	time.Sleep(settleDelay)
	return nil
}
