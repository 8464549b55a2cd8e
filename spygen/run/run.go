// Package run implements the spygen commands in a testable way: package loading and the
// disk are injected, and nothing is written until every package succeeded.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	load "github.com/toejough/impspy/spygen/run/2_load"
	detect "github.com/toejough/impspy/spygen/run/3_detect"
	rewrite "github.com/toejough/impspy/spygen/run/5_rewrite"
	output "github.com/toejough/impspy/spygen/run/6_output"
)

// Exported variables.
var (
	ErrConflictingOutput = errors.New("conflicting output modes")
)

// PackageLoader resolves package patterns.
type PackageLoader interface {
	Resolve(ctx context.Context, dir string, patterns []string) ([]load.Target, error)
}

// FileSystem is the disk as spygen uses it.
type FileSystem interface {
	output.FileSystem

	ReadFile(name string) ([]byte, error)
}

// Options select what a command works on and how it delivers.
type Options struct {
	Dir      string
	Patterns []string
	// Classes limits rewriting to the named classes.
	Classes []string
	// Overlay writes rewritten copies and an overlay.json under this directory.
	Overlay string
	// Diff prints what would change instead of writing.
	Diff bool
	// Native declares bodyless functions in the tables.
	Native bool
	// Parallel bounds how many packages are processed at once.
	Parallel int
}

// Summary counts what a command did.
type Summary struct {
	Packages  int
	Rewritten int
	Restored  int
}

// Row is one member in a listing.
type Row struct {
	Package   string `yaml:"package"`
	Class     string `yaml:"class"`
	Member    string `yaml:"member"`
	Field     string `yaml:"field"`
	Modifiers string `yaml:"modifiers"`
	Signature string `yaml:"signature"`
	Rewritten bool   `yaml:"rewritten"`
}

// Runner carries the dependencies of every command.
type Runner struct {
	Loader PackageLoader
	FS     FileSystem
	Out    io.Writer
	Logger *slog.Logger
}

// Rewrite turns every eligible declaration of the selected packages into a trampoline
// and writes the hook tables.
func (r *Runner) Rewrite(ctx context.Context, opts Options) (Summary, error) {
	if opts.Diff && opts.Overlay != "" {
		return Summary{}, fmt.Errorf("%w: --diff and --overlay", ErrConflictingOutput)
	}

	results, err := r.forEachPackage(ctx, opts, func(pkg *load.Package) (packageResult, error) {
		return r.rewritePackage(pkg, opts)
	})
	if err != nil {
		return Summary{}, err
	}

	summary, changes := collect(results)

	switch {
	case opts.Diff:
		output.Diff(changes, r.Out)
	case opts.Overlay != "":
		err = output.Overlay(r.FS, r.abs(opts, opts.Overlay), changes, r.Out)
	default:
		err = output.InPlace(r.FS, changes, r.Out)
	}

	if err != nil {
		return Summary{}, fmt.Errorf("failed to deliver rewrite: %w", err)
	}

	return summary, nil
}

// Restore reverts an in-place rewrite of the selected packages. Packages that were never
// rewritten are left as they are.
func (r *Runner) Restore(ctx context.Context, opts Options) (Summary, error) {
	if opts.Overlay != "" {
		return Summary{}, fmt.Errorf("%w: restore works in place", ErrConflictingOutput)
	}

	results, err := r.forEachPackage(ctx, opts, r.restorePackage)
	if err != nil {
		return Summary{}, err
	}

	summary, changes := collect(results)

	if opts.Diff {
		output.Diff(changes, r.Out)

		return summary, nil
	}

	err = output.InPlace(r.FS, changes, r.Out)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to deliver restore: %w", err)
	}

	return summary, nil
}

// List reports every interceptable member of the selected packages.
func (r *Runner) List(ctx context.Context, opts Options) ([]Row, error) {
	results, err := r.forEachPackage(ctx, opts, func(pkg *load.Package) (packageResult, error) {
		result, err := detect.Package(pkg, detect.Options{Classes: opts.Classes, Native: opts.Native})
		if err != nil {
			return packageResult{}, fmt.Errorf("failed to inspect %s: %w", pkg.Path, err)
		}

		return packageResult{rows: rows(result)}, nil
	})
	if err != nil {
		return nil, err
	}

	var all []Row
	for _, result := range results {
		all = append(all, result.rows...)
	}

	return all, nil
}

type packageResult struct {
	changes   []output.Change
	rewritten int
	restored  int
	rows      []Row
}

// forEachPackage resolves the patterns and runs work on every package concurrently. The
// results keep the resolution order.
func (r *Runner) forEachPackage(
	ctx context.Context, opts Options, work func(*load.Package) (packageResult, error),
) ([]packageResult, error) {
	targets, err := r.Loader.Resolve(ctx, opts.Dir, opts.Patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve packages: %w", err)
	}

	results := make([]packageResult, len(targets))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism(opts.Parallel))

	for i, target := range targets {
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err() //nolint:wrapcheck // cancellation is reported as is
			}

			pkg, err := load.Parse(r.withTable(target), r.FS.ReadFile)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", target.Path, err)
			}

			results[i], err = work(pkg)

			return err
		})
	}

	err = group.Wait()
	if err != nil {
		return nil, err //nolint:wrapcheck // work errors are already wrapped
	}

	return results, nil
}

// withTable adds the package's table file when the target does not list it but the disk
// has it, as when the table was written after the package was resolved.
func (r *Runner) withTable(target load.Target) load.Target {
	tablePath := filepath.Join(target.Dir, detect.TableFileName(target.Name))
	if slices.Contains(target.Files, tablePath) {
		return target
	}

	_, err := r.FS.ReadFile(tablePath)
	if err != nil {
		return target
	}

	target.Files = append(slices.Clone(target.Files), tablePath)

	return target
}

func (r *Runner) rewritePackage(pkg *load.Package, opts Options) (packageResult, error) {
	result, err := detect.Package(pkg, detect.Options{Classes: opts.Classes, Native: opts.Native})
	if err != nil {
		return packageResult{}, fmt.Errorf("failed to inspect %s: %w", pkg.Path, err)
	}

	r.logSkipped(result)

	if len(result.Classes) == 0 {
		r.logger().Info("nothing to rewrite", "package", pkg.Path)

		return packageResult{}, nil
	}

	var out packageResult

	var table *load.File

	for _, file := range pkg.Files {
		if file.Base() == result.TableFile {
			table = file

			continue
		}

		count := 0
		for _, class := range result.Classes {
			count += rewrite.Trampolines(file.DST, file.Path, class)
		}

		if count == 0 {
			continue
		}

		printed, err := output.Print(file.DST)
		if err != nil {
			return packageResult{}, err //nolint:wrapcheck // already names the file
		}

		out.changes = append(out.changes, output.Change{Path: file.Path, Before: file.Source, After: printed})
		out.rewritten += count
	}

	code, err := rewrite.Table(result)
	if err != nil {
		return packageResult{}, err //nolint:wrapcheck // already names the package
	}

	tablePath := filepath.Join(pkg.Dir, result.TableFile)

	reordered, err := output.Reorder(code)
	if err != nil {
		// the unordered table is still valid Go
		r.logger().Warn("failed to reorder table", "file", tablePath, "err", err)

		reordered = code
	}

	change := output.Change{Path: tablePath, After: reordered}

	if table != nil {
		change.Before = table.Source
	}

	out.changes = append(out.changes, change)

	r.logger().Info("rewrote package", "package", pkg.Path, "classes", len(result.Classes), "members", out.rewritten)

	return out, nil
}

func (r *Runner) restorePackage(pkg *load.Package) (packageResult, error) {
	result, err := detect.Package(pkg, detect.Options{Native: true})
	if err != nil {
		return packageResult{}, fmt.Errorf("failed to inspect %s: %w", pkg.Path, err)
	}

	var out packageResult

	for _, file := range pkg.Files {
		if file.Base() == result.TableFile {
			if isGenerated(file) {
				out.changes = append(out.changes, output.Change{Path: file.Path, Before: file.Source})
			}

			continue
		}

		count := rewrite.Restore(file.DST, result)
		if count == 0 {
			continue
		}

		printed, err := output.Print(file.DST)
		if err != nil {
			return packageResult{}, err //nolint:wrapcheck // already names the file
		}

		out.changes = append(out.changes, output.Change{Path: file.Path, Before: file.Source, After: printed})
		out.restored += count
	}

	if out.restored == 0 && len(out.changes) == 0 {
		r.logger().Debug("nothing to restore", "package", pkg.Path)

		return out, nil
	}

	r.logger().Info("restored package", "package", pkg.Path, "members", out.restored)

	return out, nil
}

func (r *Runner) logSkipped(result *detect.Result) {
	for _, skip := range result.Skipped {
		r.logger().Debug("skipped declaration", "package", result.PkgPath, "decl", skip.Name, "reason", skip.Reason)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return r.Logger
}

func (r *Runner) abs(opts Options, path string) string {
	if filepath.IsAbs(path) || opts.Dir == "" {
		return path
	}

	return filepath.Join(opts.Dir, path)
}

func isGenerated(file *load.File) bool {
	return bytes.HasPrefix(file.Source, []byte(rewrite.GeneratedHeader))
}

func collect(results []packageResult) (Summary, []output.Change) {
	var (
		summary Summary
		changes []output.Change
	)

	for _, result := range results {
		summary.Packages++
		summary.Rewritten += result.rewritten
		summary.Restored += result.restored
		changes = append(changes, result.changes...)
	}

	return summary, changes
}

func rows(result *detect.Result) []Row {
	var out []Row

	for _, class := range result.Classes {
		for _, member := range class.Members {
			out = append(out, Row{
				Package:   result.PkgPath,
				Class:     class.Label(result.PkgName),
				Member:    member.Name,
				Field:     class.Var + "." + member.Field,
				Modifiers: member.Modifiers(),
				Signature: member.Signature(),
				Rewritten: member.Rewritten,
			})
		}
	}

	return out
}

func parallelism(requested int) int {
	if requested > 0 {
		return requested
	}

	return runtime.GOMAXPROCS(0)
}

// OSFileSystem is the real disk.
type OSFileSystem struct{}

// ReadFile reads the file named by name and returns the contents.
func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", name, err)
	}

	return data, nil
}

// WriteFile writes data to the file named by name.
func (OSFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}

// Remove deletes the named file.
func (OSFileSystem) Remove(name string) error {
	err := os.Remove(name)
	if err != nil {
		return fmt.Errorf("failed to remove file %s: %w", name, err)
	}

	return nil
}

// MkdirAll creates a directory with any missing parents.
func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	err := os.MkdirAll(path, perm)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}

	return nil
}

// GoPackages resolves patterns with the go command.
type GoPackages struct{}

// Resolve expands patterns relative to dir.
func (GoPackages) Resolve(ctx context.Context, dir string, patterns []string) ([]load.Target, error) {
	targets, err := load.Resolve(ctx, dir, patterns)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %v: %w", patterns, err)
	}

	return targets, nil
}
