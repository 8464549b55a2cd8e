package cmd

import (
	"github.com/spf13/cobra"

	"github.com/toejough/impspy/spygen/run"
)

const restoreLongDescription = `Undo an in-place rewrite: trampolines are removed, every spyOrig<Name> gets its
name and doc comment back, and the generated hook table is deleted. Packages that
were never rewritten are left as they are.

` + patternsHelp

func newRestoreCmd(a *app) *cobra.Command {
	var diff bool

	cmd := &cobra.Command{
		Use:   "restore [packages...]",
		Short: "Remove trampolines and hook tables",
		Long:  restoreLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.runner(cmd.OutOrStdout()).Restore(cmd.Context(), run.Options{
				Dir:      a.dir,
				Patterns: patterns(args),
				Diff:     diff,
			})
			if err != nil {
				return err //nolint:wrapcheck // the runner names the failing package
			}

			cmd.Printf("restored %d declarations in %d packages\n", summary.Restored, summary.Packages)

			return nil
		},
	}

	cmd.Flags().BoolVar(&diff, diffFlagName, false, "print a unified diff instead of writing")

	return cmd
}
