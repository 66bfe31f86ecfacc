package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gerunddev/mindflat/internal/output"
	"github.com/gerunddev/mindflat/internal/styles"
	"github.com/gerunddev/mindflat/internal/sync"
	"github.com/gerunddev/mindflat/internal/tui"
)

func newConvertCmd(root *rootOptions) *cobra.Command {
	var (
		opts    sync.Options
		format  string
		workers int
		stdout  string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert changed mind maps once",
		Long: `Convert every mind map under the input directory that changed since the
last run, writing flattened documents into the output directory.

Examples:
  # Convert what changed
  mindflat convert

  # Show what would be converted without writing anything
  mindflat convert --dry-run

  # Print one flattened document
  mindflat convert --stdout ~/mindnode/go.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			if format != "" {
				s.cfg.Format = format
			}
			if workers > 0 {
				s.cfg.Workers = workers
			}
			f, err := output.ParseFormat(s.cfg.Format)
			if err != nil {
				return err
			}
			syncer := s.syncer()
			syncer.SetFormat(f)

			if stdout != "" {
				return convertToStdout(cmd, syncer, stdout)
			}
			return runConvert(cmd.Context(), s, syncer, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Convert without writing outputs or state")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Convert every mind map, changed or not")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml")
	cmd.Flags().IntVar(&workers, "workers", 0, "Documents converted in parallel")
	cmd.Flags().StringVar(&stdout, "stdout", "", "Convert FILE and print it instead of writing")

	return cmd
}

func convertToStdout(cmd *cobra.Command, syncer *sync.Syncer, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	_, data, err := syncer.ConvertFile(abs)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConvert(ctx context.Context, s *session, syncer *sync.Syncer, opts sync.Options) error {
	title := "mindflat convert"
	if opts.DryRun {
		title += " (dry run)"
	}
	fmt.Println(styles.Title.Render(title))
	fmt.Printf("%s → %s\n", styles.Dim.Render(s.cfg.InputDir), styles.Dim.Render(s.cfg.OutputDir))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.NewConvertModel(opts.DryRun), tea.WithInput(os.Stdin))

	opts.Progress = func(r sync.DocumentResult) { p.Send(tui.DocumentMsg(r)) }
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := syncer.Sync(ctx, opts)
		p.Send(tui.ConvertDoneMsg{Result: result, Err: err})
	}()

	final, err := p.Run()
	// ctrl+c quits the program before the pass finishes
	cancel()
	<-done
	if err != nil {
		return err
	}

	result, syncErr := final.(tui.ConvertModel).Result()
	if result == nil && syncErr == nil {
		return fmt.Errorf("conversion interrupted")
	}
	if syncErr != nil {
		return syncErr
	}

	if !opts.DryRun {
		if err := s.saveState(); err != nil {
			return err
		}
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d mind map(s) failed to convert", len(result.Errors))
	}
	return nil
}
