package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/toejough/impspy/spygen/run"
)

const rewriteLongDescription = `Rewrite every eligible function and method into a trampoline and write the
spy_<pkg>.go hook table of each package.

Rewriting is idempotent: declarations already rewritten are left alone and the
table is regenerated. By default files are rewritten in place; --overlay writes
rewritten copies plus an overlay.json for "go test -overlay" and leaves the
sources untouched, and --diff only prints what would change.

` + patternsHelp

type rewriteFlags struct {
	classes  []string
	overlay  string
	diff     bool
	native   bool
	parallel int
}

func newRewriteCmd(a *app) *cobra.Command {
	flags := &rewriteFlags{}

	cmd := &cobra.Command{
		Use:   "rewrite [packages...]",
		Short: "Install trampolines and hook tables",
		Long:  rewriteLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.runner(cmd.OutOrStdout()).Rewrite(cmd.Context(), run.Options{
				Dir:      a.dir,
				Patterns: patterns(args),
				Classes:  viper.GetStringSlice(classConfigKey),
				Overlay:  viper.GetString(overlayConfigKey),
				Diff:     flags.diff,
				Native:   viper.GetBool(nativeConfigKey),
				Parallel: viper.GetInt(parallelConfigKey),
			})
			if err != nil {
				return err //nolint:wrapcheck // the runner names the failing package
			}

			cmd.Printf("rewrote %d declarations in %d packages\n", summary.Rewritten, summary.Packages)

			return nil
		},
	}

	configureRewriteFlags(cmd, flags)

	return cmd
}

func configureRewriteFlags(cmd *cobra.Command, flags *rewriteFlags) {
	cmd.Flags().StringSliceVar(&flags.classes, classFlagName, nil,
		"only rewrite these classes: type names, or the package name for its functions (repeatable)")
	bindFlagToConfig(cmd.Flags().Lookup(classFlagName), classConfigKey)

	cmd.Flags().StringVar(&flags.overlay, overlayFlagName, "", "write rewritten copies and overlay.json to this directory")
	bindFlagToConfig(cmd.Flags().Lookup(overlayFlagName), overlayConfigKey)

	cmd.Flags().BoolVar(&flags.diff, diffFlagName, false, "print a unified diff instead of writing")

	cmd.Flags().BoolVar(&flags.native, nativeFlagName, false, "declare bodyless functions so scopes refuse their class")
	bindFlagToConfig(cmd.Flags().Lookup(nativeFlagName), nativeConfigKey)

	cmd.Flags().IntVarP(&flags.parallel, parallelFlagName, "p", defaultParallel,
		"packages processed at once (0: one per CPU)")
	bindFlagToConfig(cmd.Flags().Lookup(parallelFlagName), parallelConfigKey)
}
