package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gerunddev/mindflat/internal/daemon"
	"github.com/gerunddev/mindflat/internal/styles"
	"github.com/gerunddev/mindflat/internal/tui"
)

// logTail is how many log lines the dashboard and status show.
const logTail = 10

type daemonFlags struct {
	interval time.Duration
	watch    bool
	headless bool
}

func newDaemonCmd(opts *rootOptions) *cobra.Command {
	var flags daemonFlags

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the conversion loop in the foreground",
		Long: `Run the conversion loop in the foreground with a live dashboard. The
loop converts on every interval, and on file changes when --watch is set.
Quitting the dashboard stops the loop.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(cmd, opts, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "Time between passes (default from config)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Also convert when files change")
	cmd.Flags().BoolVar(&flags.headless, "headless", false, "Run without the dashboard until signalled")
	_ = cmd.Flags().MarkHidden("headless")

	return cmd
}

func runDaemon(cmd *cobra.Command, opts *rootOptions, flags daemonFlags) error {
	s, err := opts.openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if flags.interval > 0 {
		s.cfg.Interval = flags.interval
	}
	if cmd.Flags().Changed("watch") {
		s.cfg.Watch = flags.watch
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	if running, pid, _ := daemon.IsRunning(); running && pid != os.Getpid() {
		return fmt.Errorf("daemon already running with PID %d", pid)
	}
	if err := daemon.WritePID(); err != nil {
		return err
	}
	defer func() {
		if err := daemon.RemovePID(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove PID file on shutdown: %v\n", err)
		}
	}()

	s.log.Info("daemon started",
		"pid", os.Getpid(),
		"interval", s.cfg.Interval,
		"watch", s.cfg.Watch)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := &daemon.Loop{
		Syncer:   s.syncer(),
		Interval: s.cfg.Interval,
		Save:     s.saveState,
		Log:      s.log,
	}
	if s.cfg.Watch {
		loop.WatchDir = s.cfg.InputDir
	}

	if flags.headless {
		err := loop.Run(ctx)
		s.log.Info("daemon shutdown complete")
		return err
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	p := tea.NewProgram(tui.NewDashboardModel(func() (*tui.DaemonData, error) {
		return gatherStatus(s), nil
	}), tea.WithInput(os.Stdin), tea.WithContext(ctx))

	_, tuiErr := p.Run()
	stop()
	err = <-loopErr
	s.log.Info("daemon shutdown complete")

	if tuiErr != nil && ctx.Err() == nil {
		return tuiErr
	}
	return err
}

func newStartCmd(opts *rootOptions) *cobra.Command {
	var flags daemonFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := []string{"daemon", "--headless"}
			if flags.interval > 0 {
				args = append(args, "--interval", flags.interval.String())
			}
			if cmd.Flags().Changed("watch") {
				args = append(args, fmt.Sprintf("--watch=%t", flags.watch))
			}
			if opts.verbose {
				args = append(args, "--verbose")
			}

			if err := daemon.Daemonize(args); err != nil {
				return err
			}

			// give it a moment to write its PID file
			for i := 0; i < 10; i++ {
				time.Sleep(200 * time.Millisecond)
				if running, pid, _ := daemon.IsRunning(); running {
					fmt.Println(styles.Success.Render(fmt.Sprintf("✓ Daemon started with PID %d", pid)))
					fmt.Println(styles.Dim.Render("  Run 'mindflat status' to check on it"))
					return nil
				}
			}
			return fmt.Errorf("daemon failed to start")
		},
	}

	cmd.Flags().DurationVar(&flags.interval, "interval", 0, "Time between passes (default from config)")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Also convert when files change")
	return cmd
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background daemon",
		RunE: func(*cobra.Command, []string) error {
			running, pid, _ := daemon.IsRunning()
			if !running {
				fmt.Println(styles.Dim.Render("Daemon is not running"))
				return nil
			}

			fmt.Printf("Stopping daemon (PID %d)...\n", pid)
			if err := daemon.Stop(); err != nil {
				return err
			}

			for i := 0; i < 10; i++ {
				time.Sleep(500 * time.Millisecond)
				if running, _, _ = daemon.IsRunning(); !running {
					fmt.Println(styles.Success.Render("✓ Daemon stopped"))
					return nil
				}
			}
			return fmt.Errorf("daemon did not stop gracefully")
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and conversion status",
		RunE: func(*cobra.Command, []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Println(styles.Title.Render("mindflat status"))
			fmt.Println()
			fmt.Print(tui.RenderStatus(gatherStatus(s), time.Now()))
			return nil
		},
	}
}

// gatherStatus combines the PID file, state and log tail.
func gatherStatus(s *session) *tui.DaemonData {
	running, pid, started := daemon.IsRunning()
	data := &tui.DaemonData{
		Running:      running,
		PID:          pid,
		StartTime:    started,
		InputDir:     s.cfg.InputDir,
		OutputDir:    s.cfg.OutputDir,
		Interval:     s.cfg.Interval,
		Watch:        s.cfg.Watch,
		Tracked:      len(s.state.Sources()),
		LastSyncTime: s.state.LastPass(),
	}

	if s.cfg.LogFile != "" {
		summary := ParseLogFile(s.cfg.LogFile, logTail)
		data.LogLines = summary.Lines
		if !summary.LastSync.IsZero() {
			data.LastSyncTime = summary.LastSync
		}
		data.FilesSynced = summary.FilesSynced
		data.LastErrors = summary.Errors
	}
	return data
}
