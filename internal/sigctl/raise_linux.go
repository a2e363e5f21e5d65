//go:build linux

package sigctl

import (
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"
)

// raiseSelf sends sig to the calling thread, as raise(3) does. The goroutine
// is locked to its thread so the signal is handled before tgkill returns to
// it; a default action that ends the process therefore runs before Raise can
// return.
func raiseSelf(sig syscall.Signal) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	return unix.Tgkill(unix.Getpid(), unix.Gettid(), sig)
}
