// Package commands wires the mindflat CLI together.
package commands

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/gerunddev/mindflat/internal/config"
	"github.com/gerunddev/mindflat/internal/logger"
	"github.com/gerunddev/mindflat/internal/state"
	"github.com/gerunddev/mindflat/internal/sync"
)

// NewRoot builds the mindflat command tree.
func NewRoot(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mindflat",
		Short: "Flatten MindNode mind maps into JSON",
		Long: `mindflat converts MindNode JSON exports into flat documents: top-level
nodes, every nested node with its parent, and the connections between
nodes. It can run once or keep an output tree up to date as a daemon.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	opts := &rootOptions{}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "V", false, "Log debug events")

	cmd.AddCommand(newConvertCmd(opts))
	cmd.AddCommand(newDaemonCmd(opts))
	cmd.AddCommand(newStartCmd(opts))
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newBrowseCmd(opts))
	cmd.AddCommand(newDiffCmd(opts))
	cmd.AddCommand(newCategoriesCmd())
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newUninstallCmd())
	cmd.AddCommand(newVersionCmd(version))
	return cmd
}

// rootOptions holds the persistent flags of one command tree.
type rootOptions struct {
	verbose bool
}

// session is what most commands need: config, state and a logger writing
// to the configured log file.
type session struct {
	fs     afero.Fs
	cfg    *config.Config
	state  *state.State
	log    *logger.Logger
	closer func()
}

func (o *rootOptions) openSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	fs := afero.NewOsFs()
	st, err := state.Load(fs, cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("error loading state: %w", err)
	}

	s := &session{fs: fs, cfg: cfg, state: st, log: logger.Discard(), closer: func() {}}

	level := log.InfoLevel
	if o.verbose {
		level = log.DebugLevel
	}
	if cfg.LogFile != "" {
		if l, cleanup, err := logger.NewFileLogger(cfg.LogFile, level); err == nil {
			s.log, s.closer = l, cleanup
		}
	}
	s.log.ConfigLoaded(cfg.InputDir, cfg.OutputDir, cfg.Interval, cfg.Workers)
	return s, nil
}

func (s *session) syncer() *sync.Syncer {
	syncer := sync.NewSyncerFs(s.fs, s.cfg, s.state)
	syncer.SetLogger(s.log)
	return syncer
}

func (s *session) saveState() error {
	if err := s.state.Save(s.fs, s.cfg.StateFile); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

func (s *session) Close() {
	s.closer()
}
