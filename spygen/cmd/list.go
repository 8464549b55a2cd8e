package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/toejough/impspy/spygen/run"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

var errUnknownFormat = errors.New("unknown format")

const listLongDescription = `List the classes and members spygen would intercept, with their modifiers and
the table field that names them in tests.

` + patternsHelp

func newListCmd(a *app) *cobra.Command {
	var (
		format string
		native bool
	)

	cmd := &cobra.Command{
		Use:   "list [packages...]",
		Short: "List interceptable classes and members",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := a.runner(cmd.OutOrStdout()).List(cmd.Context(), run.Options{
				Dir:      a.dir,
				Patterns: patterns(args),
				Native:   native,
			})
			if err != nil {
				return err //nolint:wrapcheck // the runner names the failing package
			}

			return writeRows(cmd.OutOrStdout(), viper.GetString(formatConfigKey), rows)
		},
	}

	cmd.Flags().StringVarP(&format, formatFlagName, "f", defaultFormat, "output format: table or yaml")
	bindFlagToConfig(cmd.Flags().Lookup(formatFlagName), formatConfigKey)
	cmd.Flags().BoolVar(&native, nativeFlagName, false, "include bodyless functions")

	return cmd
}

func writeRows(out io.Writer, format string, rows []run.Row) error {
	switch format {
	case formatTable:
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Package", "Class", "Member", "Field", "Modifiers", "Rewritten", "Signature"})

		for _, row := range rows {
			table.Append([]string{
				row.Package, row.Class, row.Member, row.Field, row.Modifiers, strconv.FormatBool(row.Rewritten), row.Signature,
			})
		}

		table.Render()

		return nil
	case formatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2) //nolint:mnd // yaml indentation

		err := enc.Encode(rows)
		if err != nil {
			return fmt.Errorf("failed to encode listing: %w", err)
		}

		err = enc.Close()
		if err != nil {
			return fmt.Errorf("failed to encode listing: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q (want %s or %s)", errUnknownFormat, format, formatTable, formatYAML)
	}
}
