package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gerunddev/mindflat/internal/diff"
	"github.com/gerunddev/mindflat/internal/styles"
)

func newDiffCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff FILE",
		Short: "Show how converting FILE would change its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			source, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			out, err := diff.Preview(s.syncer(), source)
			if err != nil {
				return err
			}
			if out == "" {
				fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("✓ Output is up to date"))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
