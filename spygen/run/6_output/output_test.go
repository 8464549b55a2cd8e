package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	output "github.com/toejough/impspy/spygen/run/6_output"
)

var errDisk = errors.New("disk failure")

type fakeFS struct {
	files   map[string][]byte
	removed []string
	dirs    []string
	fail    bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: make(map[string][]byte)}
}

func (f *fakeFS) WriteFile(name string, data []byte, _ os.FileMode) error {
	if f.fail {
		return errDisk
	}

	f.files[name] = data

	return nil
}

func (f *fakeFS) Remove(name string) error {
	f.removed = append(f.removed, name)

	return nil
}

func (f *fakeFS) MkdirAll(path string, _ os.FileMode) error {
	f.dirs = append(f.dirs, path)

	return nil
}

// TestChange_Changed verifies a change is a no-op exactly when nothing differs.
func TestChange_Changed(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		before := append([]byte{}, rapid.SliceOf(rapid.Byte()).Draw(rt, "before")...)
		after := append([]byte{}, rapid.SliceOf(rapid.Byte()).Draw(rt, "after")...)

		change := output.Change{Path: "a.go", Before: before, After: after}
		if change.Changed() == bytes.Equal(before, after) {
			rt.Fatalf("Changed() = %v for before=%q after=%q", change.Changed(), before, after)
		}

		same := output.Change{Path: "a.go", Before: before, After: append([]byte{}, before...)}
		if same.Changed() {
			rt.Fatalf("Changed() = true for identical content %q", before)
		}
	})
}

// TestChange_CreateAndRemove verifies creating or removing an empty file still counts.
func TestChange_CreateAndRemove(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	g.Expect(output.Change{Path: "a.go", After: []byte{}}.Changed()).To(BeTrue())
	g.Expect(output.Change{Path: "a.go", Before: []byte{}}.Changed()).To(BeTrue())
	g.Expect(output.Change{Path: "a.go"}.Changed()).To(BeFalse())
}

// TestInPlace verifies writes and removals go to the source paths.
func TestInPlace(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)
	disk := newFakeFS()

	var out bytes.Buffer

	err := output.InPlace(disk, []output.Change{
		{Path: "/src/a.go", Before: []byte("old"), After: []byte("new")},
		{Path: "/src/b.go", Before: []byte("same"), After: []byte("same")},
		{Path: "/src/spy_a.go", Before: []byte("table")},
	}, &out)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(disk.files).To(Equal(map[string][]byte{"/src/a.go": []byte("new")}))
	g.Expect(disk.removed).To(Equal([]string{"/src/spy_a.go"}))
	g.Expect(out.String()).To(Equal("/src/a.go written successfully.\n/src/spy_a.go removed.\n"))

	disk.fail = true
	err = output.InPlace(disk, []output.Change{{Path: "/src/a.go", After: []byte("x")}}, &out)
	g.Expect(err).To(MatchError(errDisk))
}

// TestOverlay verifies copies are written under the overlay directory and mapped.
func TestOverlay(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)
	disk := newFakeFS()

	var out bytes.Buffer

	err := output.Overlay(disk, "/tmp/ov", []output.Change{
		{Path: "/src/pkg/a.go", Before: []byte("old"), After: []byte("new")},
		{Path: "/src/pkg/spy_pkg.go", Before: []byte("table")},
		{Path: "/src/pkg/c.go", Before: []byte("same"), After: []byte("same")},
	}, &out)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(disk.dirs).To(Equal([]string{"/tmp/ov"}))
	g.Expect(disk.files).To(HaveKeyWithValue("/tmp/ov/src__pkg__a.go", []byte("new")))

	var spec struct {
		Replace map[string]string
	}

	g.Expect(json.Unmarshal(disk.files["/tmp/ov/"+output.OverlayFile], &spec)).To(Succeed())
	g.Expect(spec.Replace).To(Equal(map[string]string{
		"/src/pkg/a.go":       "/tmp/ov/src__pkg__a.go",
		"/src/pkg/spy_pkg.go": "",
	}))
	g.Expect(out.String()).To(ContainSubstring("-overlay=/tmp/ov/overlay.json"))
}

// TestDiff verifies a unified diff per changed file, in path order.
func TestDiff(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	var out bytes.Buffer

	output.Diff([]output.Change{
		{Path: "/src/b.go", Before: []byte("b\n"), After: []byte("B\n")},
		{Path: "/src/a.go", Before: []byte("a\n"), After: []byte("A\n")},
		{Path: "/src/c.go", Before: []byte("c\n"), After: []byte("c\n")},
	}, &out)

	text := out.String()
	g.Expect(text).To(ContainSubstring("--- /src/a.go (current)"))
	g.Expect(text).To(ContainSubstring("+++ /src/b.go (rewritten)"))
	g.Expect(text).To(ContainSubstring("-a\n+A\n"))
	g.Expect(text).NotTo(ContainSubstring("/src/c.go"))
	g.Expect(bytes.Index(out.Bytes(), []byte("/src/a.go"))).To(BeNumerically("<", bytes.Index(out.Bytes(), []byte("/src/b.go"))))
}

// TestReorder verifies generated declarations are sorted and bad code is rejected.
func TestReorder(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	code, err := output.Reorder([]byte("package p\n\nfunc b() {}\n\nconst A = 1\n"))
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(string(code)).To(MatchRegexp(`const \(\s+A\s+= 1\s+\)`))
	g.Expect(bytes.Index(code, []byte("A = 1"))).To(BeNumerically("<", bytes.Index(code, []byte("func b"))))

	_, err = output.Reorder([]byte("package p\n\nfunc {"))
	g.Expect(err).To(HaveOccurred())
}
