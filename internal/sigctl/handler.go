//go:build unix

package sigctl

import (
	"os"
	"syscall"
)

// ///////////////////////////////////////////////
// Callback Output
// ///////////////////////////////////////////////

// messages is the callback output prepared outside the callback. handle
// only indexes into it and writes.
type messages struct {
	// bySignal holds the complete output for each managed signal.
	bySignal map[syscall.Signal][]byte
	// fallbackHead and fallbackTail surround the signal name for any
	// signal without an entry in bySignal.
	fallbackHead []byte
	fallbackTail []byte
}

// prepareMessages renders the output for every managed signal once, so the
// callback never formats.
func prepareMessages(highlight func(string) string) *messages {
	if highlight == nil {
		highlight = func(s string) string { return s }
	}
	m := &messages{bySignal: make(map[syscall.Signal][]byte)}
	for _, in := range table {
		if !in.Managed {
			continue
		}
		line := "Signal " + in.Name + " (" + in.Signal.String() + ") is raised"
		m.bySignal[in.Signal] = []byte("\n" + highlight(line) + "\n" + in.Explain + "\n")
	}
	head, tail := splitHighlight(highlight, "Signal ", " is raised")
	m.fallbackHead = []byte("\n" + head)
	m.fallbackTail = []byte(tail + "\nThis signal is not managed here; no specific action was taken.\n")
	return m
}

// splitHighlight decorates prefix+marker+suffix and splits the result back
// around the marker, so a variable name can be spliced in without
// re-running highlight inside the callback.
func splitHighlight(highlight func(string) string, prefix, suffix string) (head, tail string) {
	const marker = "\x00"
	s := highlight(prefix + marker + suffix)
	for i := 0; i < len(s); i++ {
		if s[i] == marker[0] {
			return s[:i], s[i+1:]
		}
	}
	return prefix, suffix
}

type flusher interface {
	Flush() error
}

// handle is the callback for a delivered signal. Only the dispatcher
// goroutine calls it, one delivery at a time; it owns c.scratch.
//
// handle writes the prepared description of sig followed by its fixed
// explanation, or a generic line for signals outside the managed set, and
// flushes the writer if it buffers. That Write and Flush are its only side
// effects: it takes no locks, does not log or format, never calls back into
// the controller, and always returns.
func (c *Controller) handle(sig os.Signal) {
	m := c.msgs.Load()
	s, _ := sig.(syscall.Signal)
	if b, ok := m.bySignal[s]; ok {
		_, _ = c.out.Write(b)
	} else {
		buf := append(c.scratch[:0], m.fallbackHead...)
		buf = append(buf, signalName(s)...)
		buf = append(buf, m.fallbackTail...)
		c.scratch = buf
		_, _ = c.out.Write(buf)
	}
	if f, ok := c.out.(flusher); ok {
		_ = f.Flush()
	}
}
