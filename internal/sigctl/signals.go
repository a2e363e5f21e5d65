//go:build unix

package sigctl

import (
	"strings"
	"syscall"
)

// ///////////////////////////////////////////////
// Signal Table
// ///////////////////////////////////////////////

// Info describes one signal of interest.
type Info struct {
	// Signal is the platform signal value.
	Signal syscall.Signal
	// Name is the conventional upper-case name, e.g. "SIGINT".
	Name string
	// Catchable is false for signals no handler can intercept.
	Catchable bool
	// Managed marks members of the set that Install and Restore operate on.
	Managed bool
	// Meaning is the one-line description shown in the info table.
	Meaning string
	// Explain is the fixed message the callback prints after the
	// "is raised" line.
	Explain string
}

// table lists the seven signals in menu order. It is the only place
// per-signal text lives; the callback and the info display both read it.
var table = []Info{
	{
		Signal:    syscall.SIGTERM,
		Name:      "SIGTERM",
		Catchable: true,
		Managed:   true,
		Meaning:   "polite termination request",
		Explain:   "Termination was requested; the handler kept the process running.",
	},
	{
		Signal:    syscall.SIGKILL,
		Name:      "SIGKILL",
		Catchable: false,
		Meaning:   "forced kill, cannot be caught or ignored",
	},
	{
		Signal:    syscall.SIGSEGV,
		Name:      "SIGSEGV",
		Catchable: false,
		Meaning:   "invalid memory reference, terminates the process",
	},
	{
		Signal:    syscall.SIGTSTP,
		Name:      "SIGTSTP",
		Catchable: true,
		Managed:   true,
		Meaning:   "terminal stop request (Ctrl+Z)",
		Explain:   "Stop was requested; the handler kept the process in the foreground.",
	},
	{
		Signal:    syscall.SIGCONT,
		Name:      "SIGCONT",
		Catchable: true,
		Managed:   true,
		Meaning:   "continue a stopped process",
		Explain:   "Continue was delivered; the process was already running.",
	},
	{
		Signal:    syscall.SIGALRM,
		Name:      "SIGALRM",
		Catchable: true,
		Managed:   true,
		Meaning:   "timer expiry from alarm(2)",
		Explain:   "An alarm fired; the handler absorbed it instead of terminating.",
	},
	{
		Signal:    syscall.SIGINT,
		Name:      "SIGINT",
		Catchable: true,
		Managed:   true,
		Meaning:   "terminal interrupt (Ctrl+C)",
		Explain:   "Interrupt was caught; the process continues.",
	},
}

// Table returns a copy of the signal table in display order.
func Table() []Info {
	out := make([]Info, len(table))
	copy(out, table)
	return out
}

// Managed returns the managed signal set in registration order.
func Managed() []syscall.Signal {
	var out []syscall.Signal
	for _, in := range table {
		if in.Managed {
			out = append(out, in.Signal)
		}
	}
	return out
}

// Lookup returns the table entry for sig.
func Lookup(sig syscall.Signal) (Info, bool) {
	for _, in := range table {
		if in.Signal == sig {
			return in, true
		}
	}
	return Info{}, false
}

// LookupName resolves a signal by its table name, with or without the
// "SIG" prefix, ignoring case.
func LookupName(name string) (Info, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return Info{}, false
	}
	for _, in := range table {
		if in.Name == name || in.Name == "SIG"+name {
			return in, true
		}
	}
	return Info{}, false
}

// IsManaged reports whether sig belongs to the managed set.
func IsManaged(sig syscall.Signal) bool {
	in, ok := Lookup(sig)
	return ok && in.Managed
}
