//go:build unix

package sigctl

import (
	"runtime/debug"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"
)

// faultAddr is never assigned. Reading it at runtime keeps the compiler from
// proving the dereference in fault.
var faultAddr *int

// fault performs a real invalid memory access. The runtime drops a SIGSEGV
// sent with kill(2) when nothing subscribed to it, so this is what takes the
// process down after raising SIGSEGV. Traceback "crash" makes the runtime end
// the process on a signal instead of exiting with status 2.
func fault() {
	debug.SetTraceback("crash")
	*faultAddr = 0
}

// signalName returns the conventional name of sig, e.g. "SIGINT".
func signalName(sig syscall.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return "signal " + strconv.Itoa(int(sig))
}
