// Package output prints rewritten files and delivers them: in place, as a build overlay,
// or as a diff.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
	"github.com/toejough/go-reorder"
)

const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// OverlayFile is the name of the overlay description written next to the copies.
const OverlayFile = "overlay.json"

// FileSystem is what delivery needs from the disk.
type FileSystem interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
	Remove(name string) error
	MkdirAll(path string, perm os.FileMode) error
}

// Change is the new content of one file. A nil After removes the file.
type Change struct {
	Path   string
	Before []byte
	After  []byte
}

// Changed reports whether the change does anything.
func (c Change) Changed() bool {
	return !bytes.Equal(c.Before, c.After) || (c.After == nil) != (c.Before == nil)
}

// Print renders a DST file back to formatted source.
func Print(file *dst.File) ([]byte, error) {
	var buf bytes.Buffer

	err := decorator.Fprint(&buf, file)
	if err != nil {
		return nil, fmt.Errorf("failed to print %s: %w", file.Name.Name, err)
	}

	return buf.Bytes(), nil
}

// Reorder sorts the declarations of generated code by the project's conventions.
func Reorder(code []byte) ([]byte, error) {
	reordered, err := reorder.Source(string(code))
	if err != nil {
		return nil, fmt.Errorf("failed to reorder: %w", err)
	}

	return []byte(reordered), nil
}

// InPlace writes every change over the source it came from.
func InPlace(fs FileSystem, changes []Change, out io.Writer) error {
	for _, change := range changes {
		if !change.Changed() {
			continue
		}

		if change.After == nil {
			err := fs.Remove(change.Path)
			if err != nil {
				return fmt.Errorf("error removing %s: %w", change.Path, err)
			}

			_, _ = fmt.Fprintf(out, "%s removed.\n", change.Path)

			continue
		}

		err := fs.WriteFile(change.Path, change.After, filePermissions)
		if err != nil {
			return fmt.Errorf("error writing %s: %w", change.Path, err)
		}

		_, _ = fmt.Fprintf(out, "%s written successfully.\n", change.Path)
	}

	return nil
}

// overlay is the format `go build -overlay` reads.
type overlay struct {
	Replace map[string]string `json:"Replace"`
}

// Overlay writes every changed file under dir, named after its source path, and an
// overlay.json mapping the sources to the copies, leaving the sources untouched. A
// removed file maps to the empty string, which hides it from the build.
func Overlay(fs FileSystem, dir string, changes []Change, out io.Writer) error {
	err := fs.MkdirAll(dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", dir, err)
	}

	spec := overlay{Replace: make(map[string]string)}

	for _, change := range changes {
		if !change.Changed() {
			continue
		}

		if change.After == nil {
			spec.Replace[change.Path] = ""

			continue
		}

		target := filepath.Join(dir, overlayName(change.Path))

		err = fs.WriteFile(target, change.After, filePermissions)
		if err != nil {
			return fmt.Errorf("error writing %s: %w", target, err)
		}

		spec.Replace[change.Path] = target
	}

	data, err := json.MarshalIndent(spec, "", "\t")
	if err != nil {
		return fmt.Errorf("error encoding overlay: %w", err)
	}

	path := filepath.Join(dir, OverlayFile)

	err = fs.WriteFile(path, append(data, '\n'), filePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(out, "%s written with %d files. Build with -overlay=%s\n", path, len(spec.Replace), path)

	return nil
}

// overlayName flattens a source path into a unique file name.
func overlayName(path string) string {
	clean := strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/")

	return strings.ReplaceAll(clean, "/", "__")
}

// Diff prints a unified diff of every change, in path order.
func Diff(changes []Change, out io.Writer) {
	sorted := append([]Change(nil), changes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	for _, change := range sorted {
		if !change.Changed() {
			continue
		}

		diff := textdiff.Unified(change.Path+" (current)", change.Path+" (rewritten)", string(change.Before), string(change.After))
		_, _ = fmt.Fprint(out, diff)
	}
}
