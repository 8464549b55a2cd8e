// Package cmd provides the root command and CLI setup for spygen.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toejough/impspy/spygen/run"
)

const patternsHelp = `Packages are selected with go list patterns (default: the package in --dir):
  - .              the current package
  - ./...          every package below the current directory
  - ./pkg ./util   several packages`

const rootLongDescription = `spygen rewrites Go packages so their functions and methods can be intercepted
by impspy scopes in tests. Every eligible declaration becomes a trampoline that
routes through a per-class hook table, and the original body moves to a
spyOrig<Name> twin that CallOriginal answers run.

` + patternsHelp

// app holds what the commands share. Tests swap the disk, the loader and the logger.
type app struct {
	fs     run.FileSystem
	loader run.PackageLoader
	logger *slog.Logger

	dir     string
	verbose bool
	logFile string
}

func newApp() *app {
	return &app{fs: run.OSFileSystem{}, loader: run.GoPackages{}}
}

func (a *app) runner(out io.Writer) *run.Runner {
	return &run.Runner{Loader: a.loader, FS: a.fs, Out: out, Logger: a.logger}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "spygen",
		Short:         "Rewrite Go packages for call interception",
		Long:          rootLongDescription,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.logger == nil {
				a.logger = configureLogger(a.logFile, viper.GetBool(verboseFlagName))
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd, a)

	cmd.AddCommand(
		newRewriteCmd(a),
		newRestoreCmd(a),
		newListCmd(a),
		newVersionCmd(),
	)

	return cmd
}

func configureRootFlags(cmd *cobra.Command, a *app) {
	cmd.PersistentFlags().StringVarP(&a.dir, dirFlagName, "C", "", "run as if spygen was started in this directory")
	cmd.PersistentFlags().BoolVarP(&a.verbose, verboseFlagName, "v", false, "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), verboseFlagName)
	cmd.PersistentFlags().StringVar(&a.logFile, logFileFlagName, "", "log file (default "+defaultLogFilename+")")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))

		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	err := newRootCmd(newApp()).ExecuteContext(context.Background())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func patterns(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}

	return args
}
