// Package sigctl owns the process-wide signal dispositions for the managed
// signal set and the callback that runs when one of them is delivered.
//
// The controller has two states. INACTIVE is the initial state, where the
// five managed signals (SIGTERM, SIGTSTP, SIGCONT, SIGALRM, SIGINT) keep their
// default OS action. ACTIVE means the shared callback is installed for all
// five. [Controller.Install] moves to ACTIVE when every registration
// succeeds and [Controller.Restore] always ends in INACTIVE.
//
// # Callback contract
//
// Go never runs user code inside the kernel's signal-delivery context. The
// runtime's handler queues the signal and [os/signal] forwards it to a
// channel, which the controller's dispatcher goroutine drains and hands to
// the callback. Only the dispatcher runs the callback, and it is still
// written against the async-signal-safe subset: it issues one Write of
// prepared bytes (plus Flush when the writer buffers) and returns. It must not take locks, log, format with fmt, call
// back into the controller, or exit the process.
//
// SIGKILL and SIGSEGV are never managed. They are only raised, and raising
// them always terminates the process.
package sigctl
