//go:build unix

package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	"tools.zach/dev/sigdemo/internal/sigctl"
)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Controller is the part of [sigctl.Controller] the menu drives.
type Controller interface {
	Install() error
	Restore() error
	Active() bool
	Raise(sig syscall.Signal) error
}

// item is one numbered menu entry. run returns true to leave the loop.
type item struct {
	label string
	run   func(m *Menu) bool
}

// Menu is the interactive loop.
type Menu struct {
	in      *bufio.Scanner
	out     io.Writer
	ctl     Controller
	items   []item
	palette atomic.Pointer[Palette]
	// showStatus toggles the handler state line in the header.
	showStatus atomic.Bool
}

// NewMenu builds a menu reading choices from in and writing to out.
func NewMenu(in io.Reader, out io.Writer, ctl Controller, palette Palette) *Menu {
	m := &Menu{
		in:  bufio.NewScanner(in),
		out: out,
		ctl: ctl,
	}
	m.palette.Store(&palette)
	m.showStatus.Store(true)
	m.items = []item{
		{"Override signal handlers", (*Menu).install},
		{"Revert to default signal handlers", (*Menu).restore},
		raiseItem(syscall.SIGTERM),
		raiseItem(syscall.SIGKILL),
		raiseItem(syscall.SIGSEGV),
		raiseItem(syscall.SIGTSTP),
		raiseItem(syscall.SIGCONT),
		raiseItem(syscall.SIGALRM),
		raiseItem(syscall.SIGINT),
		{"Show signal info", (*Menu).info},
		{"Back to Daemon Manager", func(*Menu) bool { return true }},
	}
	return m
}

// SetPalette swaps the colors used for subsequent output. Safe to call from
// another goroutine.
func (m *Menu) SetPalette(p Palette) {
	m.palette.Store(&p)
}

// SetShowStatus toggles the handler state line in the menu header.
func (m *Menu) SetShowStatus(show bool) {
	m.showStatus.Store(show)
}

func raiseItem(sig syscall.Signal) item {
	in, _ := sigctl.Lookup(sig)
	return item{
		label: "Send a " + in.Name + " Signal",
		run:   func(m *Menu) bool { m.raise(in); return false },
	}
}

// ///////////////////////////////////////////////
// Loop
// ///////////////////////////////////////////////

// Run shows the menu and dispatches choices until the user leaves or input
// ends. Invalid input is reported and the menu is shown again; only a read
// error is returned.
func (m *Menu) Run() error {
	for {
		m.render()
		if !m.in.Scan() {
			if err := m.in.Err(); err != nil {
				return fmt.Errorf("read choice: %w", err)
			}
			slog.Info("input closed, leaving menu")
			return nil
		}

		n, ok := m.parse(m.in.Text())
		if !ok {
			fmt.Fprintln(m.out, m.pal().Red("Invalid choice. Please try again."))
			continue
		}
		if m.items[n-1].run(m) {
			slog.Info("returning to daemon manager")
			return nil
		}
	}
}

// parse converts a line to a 1-based menu index.
func (m *Menu) parse(line string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		slog.Debug("rejected menu input", "input", line)
		return 0, false
	}
	if n < 1 || n > len(m.items) {
		slog.Debug("menu choice out of range", "choice", n)
		return 0, false
	}
	return n, true
}

func (m *Menu) render() {
	var b strings.Builder
	b.WriteString("\nSignal Handler Program\n")
	if m.showStatus.Load() {
		state := "inactive"
		if m.ctl.Active() {
			state = "active"
		}
		b.WriteString("Custom handlers: " + state + "\n")
	}
	for i, it := range m.items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, it.label)
	}
	b.WriteString("\nEnter your choice: ")
	io.WriteString(m.out, b.String())
}

func (m *Menu) pal() Palette {
	return *m.palette.Load()
}

// ///////////////////////////////////////////////
// Actions
// ///////////////////////////////////////////////

func (m *Menu) install() bool {
	if err := m.ctl.Install(); err != nil {
		fmt.Fprintln(m.out, m.pal().Red("\nFailed to install custom signal handlers: "+err.Error()))
		return false
	}
	fmt.Fprintln(m.out, m.pal().Green("\nCustom signal handlers are now active."))
	return false
}

func (m *Menu) restore() bool {
	if err := m.ctl.Restore(); err != nil {
		for _, e := range splitErrors(err) {
			fmt.Fprintln(m.out, m.pal().Red("Failed to restore: "+e.Error()))
		}
	}
	fmt.Fprintln(m.out, m.pal().Green("\nDefault signal handlers are now active."))
	return false
}

func (m *Menu) raise(in sigctl.Info) {
	if !in.Catchable {
		fmt.Fprintln(m.out, m.pal().Red("Sending "+in.Name+" signal (UNCATCHABLE)"))
	}
	if err := m.ctl.Raise(in.Signal); err != nil {
		slog.Warn("raise failed", "signal", in.Name, "error", err)
		fmt.Fprintln(m.out, m.pal().Red(err.Error()))
	}
}

func (m *Menu) info() bool {
	fmt.Fprintln(m.out)
	if err := sigctl.WriteInfo(m.out); err != nil {
		slog.Warn("write signal info failed", "error", err)
	}
	return false
}

// splitErrors flattens an errors.Join result so each failure is reported on
// its own line.
func splitErrors(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
