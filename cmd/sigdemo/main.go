//go:build unix

// Package main implements sigdemo, an interactive console that installs
// custom handlers for a fixed set of POSIX signals, restores the defaults,
// and raises signals against its own process.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	rootpkg "tools.zach/dev/sigdemo"
	"tools.zach/dev/sigdemo/internal/config"
	"tools.zach/dev/sigdemo/internal/console"
	"tools.zach/dev/sigdemo/internal/logger"
	"tools.zach/dev/sigdemo/internal/paths"
	"tools.zach/dev/sigdemo/internal/sigctl"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ///////////////////////////////////////////////
// Commands
// ///////////////////////////////////////////////

// options holds the persistent flags shared by every command.
type options struct {
	// dataDir holds config.toml and sigdemo.log. "~" is expanded.
	dataDir string
	// color overrides display.color when non-empty.
	color string
}

func (o *options) validate() error {
	switch o.color {
	case "", "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("invalid --color %q: must be auto, always, or never", o.color)
	}
}

// colorMode returns the flag override, or the configured mode.
func (o *options) colorMode(cfg *config.Config) string {
	if o.color != "" {
		return o.color
	}
	return cfg.Display.Color
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   paths.BinaryName,
		Short: "Interactive POSIX signal handling console",
		Long: `sigdemo installs custom handlers for SIGTERM, SIGTSTP, SIGCONT, SIGALRM
and SIGINT, restores the default handlers, and raises signals against
its own process so their default and customized effects can be observed.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsole(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", paths.DefaultRoot(), "Data directory for config and logs")
	root.PersistentFlags().StringVar(&opts.color, "color", "", "Override display.color: auto, always, or never")

	root.AddCommand(newInfoCmd(), newVersionCmd())
	return root
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [SIGNAL...]",
		Short: "Print the signal info table",
		Long: `Print the signal info table. With arguments, print only the named
signals, given with or without the SIG prefix (e.g. "TERM" or "SIGINT").`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := infoRows(args)
			if err != nil {
				return err
			}
			return sigctl.WriteInfoRows(cmd.OutOrStdout(), rows)
		},
	}
}

// infoRows resolves signal names to table rows. No names selects the whole
// table.
func infoRows(names []string) ([]sigctl.Info, error) {
	if len(names) == 0 {
		return sigctl.Table(), nil
	}
	rows := make([]sigctl.Info, 0, len(names))
	for _, name := range names {
		in, ok := sigctl.LookupName(name)
		if !ok {
			return nil, fmt.Errorf("unknown signal %q", name)
		}
		rows = append(rows, in)
	}
	return rows, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", paths.BinaryName, resolveVersion())
		},
	}
}

// ///////////////////////////////////////////////
// Console
// ///////////////////////////////////////////////

// runConsole prepares the data directory, config and logger, then runs the
// menu until the user leaves. Custom handlers are restored on return.
func runConsole(ctx context.Context, in io.Reader, out io.Writer, opts *options) error {
	dir := paths.DataDir{Root: paths.Expand(opts.dataDir)}
	if err := os.MkdirAll(dir.Root, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if _, err := config.WriteDefault(dir.Config(), rootpkg.DefaultConfigTOML); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write default config: %v\n", err)
	}

	cfg, err := config.Load(dir.Root)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var level slog.LevelVar
	level.Set(logger.ParseLevel(cfg.Log.Level))
	log, logCloser, err := logger.NewLogger(dir.Log(), &level, cfg.Log.MaxSizeMB)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logCloser.Close()
	slog.SetDefault(log)
	slog.Info("sigdemo starting", "version", resolveVersion(), "pid", os.Getpid(), "data_dir", dir.Root)

	outFile, _ := out.(*os.File)
	palette := console.NewPalette(console.ColorEnabled(opts.colorMode(cfg), outFile))

	ctl := sigctl.New(out,
		sigctl.WithLogger(log),
		sigctl.WithHighlight(palette.Green),
		sigctl.WithDeliveryTimeout(cfg.Signals.DeliveryTimeout()),
	)
	defer func() {
		if err := ctl.Close(); err != nil {
			slog.Warn("restore on exit", "error", err)
		}
	}()

	menu := console.NewMenu(in, out, ctl, palette)
	menu.SetShowStatus(cfg.Display.ShowStatus)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if w, err := config.NewWatcher(dir.Root); err != nil {
		slog.Warn("config watcher unavailable", "error", err)
	} else {
		defer w.Close()
		slog.Info("watching config", "dir", dir.Root, "polling", w.Polling())
		live := &liveSettings{opts: opts, outFile: outFile, menu: menu, ctl: ctl, level: &level}
		go live.follow(ctx, w.Updates())
	}

	if err := menu.Run(); err != nil {
		logger.Fail(log, "console stopped", "error", err)
		return err
	}
	slog.Info("sigdemo exiting", "custom_handlers", ctl.Active())
	return nil
}

// ///////////////////////////////////////////////
// Config Reload
// ///////////////////////////////////////////////

// liveSettings applies reloaded config to the running console. Only the
// palette, the status line, and the log level change at runtime.
type liveSettings struct {
	opts    *options
	outFile *os.File
	menu    *console.Menu
	ctl     *sigctl.Controller
	level   *slog.LevelVar
}

func (l *liveSettings) follow(ctx context.Context, updates <-chan *config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg := <-updates:
			l.apply(cfg)
		}
	}
}

func (l *liveSettings) apply(cfg *config.Config) {
	palette := console.NewPalette(console.ColorEnabled(l.opts.colorMode(cfg), l.outFile))
	l.menu.SetPalette(palette)
	l.ctl.SetHighlight(palette.Green)
	l.menu.SetShowStatus(cfg.Display.ShowStatus)
	l.level.Set(logger.ParseLevel(cfg.Log.Level))
	slog.Info("config applied",
		"color", palette.Enabled(),
		"show_status", cfg.Display.ShowStatus,
		"log_level", cfg.Log.Level,
	)
}
