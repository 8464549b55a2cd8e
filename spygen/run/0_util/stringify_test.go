package astutil_test

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"

	astutil "github.com/toejough/impspy/spygen/run/0_util"
)

func parseDecls(t *testing.T, src string) []*dst.FuncDecl {
	t.Helper()

	file, err := decorator.NewDecorator(token.NewFileSet()).ParseFile("x.go", "package x\n\n"+src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var decls []*dst.FuncDecl

	for _, decl := range file.Decls {
		if fn, ok := decl.(*dst.FuncDecl); ok {
			decls = append(decls, fn)
		}
	}

	return decls
}

func TestSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "function without results",
			src:  "func F() {}",
			want: "func F()",
		},
		{
			name: "grouped params and multiple results",
			src:  "func F(a, b int, s ...string) (int, error) { return 0, nil }",
			want: "func F(a, b int, s ...string) (int, error)",
		},
		{
			name: "named results render as types",
			src:  "func F() (n int, err error) { return }",
			want: "func F() (int, error)",
		},
		{
			name: "pointer receiver",
			src:  "func (c *C) Add(d int) int { return d }",
			want: "func (c *C) Add(d int) int",
		},
		{
			name: "unnamed receiver and params",
			src:  "func (C) m(int, map[string][]byte) chan<- int { return nil }",
			want: "func (C) m(int, map[string][]byte) chan<- int",
		},
		{
			name: "func and interface types",
			src:  "func F(fn func(int) bool, v interface{ M() }) <-chan struct{} { return nil }",
			want: "func F(fn func(int) bool, v interface{ M() }) <-chan struct{}",
		},
		{
			name: "qualified and generic types",
			src:  "func F(d time.Duration, l List[int], m Pair[K, V]) [2]any { return [2]any{} }",
			want: "func F(d time.Duration, l List[int], m Pair[K, V]) [2]any",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := astutil.Signature(parseDecls(t, testCase.src)[0])
			if got != testCase.want {
				t.Errorf("Signature() = %q, want %q", got, testCase.want)
			}
		})
	}
}

func TestReceiverTypeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		src         string
		wantName    string
		wantPointer bool
	}{
		{name: "function", src: "func F() {}", wantName: "", wantPointer: false},
		{name: "value receiver", src: "func (t T) M() {}", wantName: "T", wantPointer: false},
		{name: "pointer receiver", src: "func (t *T) M() {}", wantName: "T", wantPointer: true},
		{name: "generic receiver", src: "func (b *Box[T]) M() {}", wantName: "Box", wantPointer: true},
		{name: "two type params", src: "func (p Pair[K, V]) M() {}", wantName: "Pair", wantPointer: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			name, pointer := astutil.ReceiverTypeName(parseDecls(t, testCase.src)[0])
			if name != testCase.wantName || pointer != testCase.wantPointer {
				t.Errorf("ReceiverTypeName() = (%q, %v), want (%q, %v)",
					name, pointer, testCase.wantName, testCase.wantPointer)
			}
		})
	}
}
