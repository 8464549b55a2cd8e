// Package load resolves package patterns and parses their Go files into DST.
package load

import (
	"context"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"golang.org/x/tools/go/packages"
)

// Exported variables.
var (
	ErrNoPackagesFound = errors.New("no packages found")
	ErrPackageErrors   = errors.New("package has errors")
)

// Target is a resolved package: its identity and the Go files of the current build.
type Target struct {
	Path  string
	Name  string
	Dir   string
	Files []string
}

// Package is a target with every file parsed.
type Package struct {
	Target

	Fset  *token.FileSet
	Files []*File
}

// File is one parsed source file.
type File struct {
	Path   string
	Source []byte
	DST    *dst.File
}

// Base returns the file name without its directory.
func (f *File) Base() string {
	return filepath.Base(f.Path)
}

// Resolve expands patterns relative to dir. Test files are not part of a target, and
// files excluded by build constraints are not either.
func Resolve(ctx context.Context, dir string, patterns []string) ([]Target, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode:    packages.NeedName | packages.NeedFiles,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", strings.Join(patterns, " "), err)
	}

	targets := make([]Target, 0, len(pkgs))

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s: %v", ErrPackageErrors, pkg.PkgPath, pkg.Errors[0])
		}

		if len(pkg.GoFiles) == 0 {
			continue
		}

		files := append([]string(nil), pkg.GoFiles...)
		sort.Strings(files)

		targets = append(targets, Target{
			Path:  pkg.PkgPath,
			Name:  pkg.Name,
			Dir:   filepath.Dir(files[0]),
			Files: files,
		})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPackagesFound, strings.Join(patterns, " "))
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Path < targets[j].Path })

	return targets, nil
}

// Parse reads and parses every file of target, keeping comments. Unlike listing, a
// rewrite cannot skip a file it failed to parse, so any parse error fails the package.
func Parse(target Target, read func(path string) ([]byte, error)) (*Package, error) {
	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	pkg := &Package{Target: target, Fset: fset, Files: make([]*File, 0, len(target.Files))}

	for _, path := range target.Files {
		src, err := read(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		file, err := dec.ParseFile(path, src, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		pkg.Files = append(pkg.Files, &File{Path: path, Source: src, DST: file})
	}

	return pkg, nil
}

// ParseSource parses a single in-memory file, for callers that already hold the source.
func ParseSource(path string, src []byte) (*File, error) {
	dec := decorator.NewDecorator(token.NewFileSet())

	file, err := dec.ParseFile(path, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &File{Path: path, Source: src, DST: file}, nil
}
