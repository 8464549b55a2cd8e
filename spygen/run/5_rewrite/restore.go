package rewrite

import (
	"go/token"
	"strconv"
	"strings"

	"github.com/dave/dst"

	detect "github.com/toejough/impspy/spygen/run/3_detect"
)

// Restore undoes Trampolines for every rewritten member of result found in file: the
// trampoline goes, the original gets its name and doc comment back, and the runtime
// import is dropped once nothing uses it. It reports how many members it restored.
func Restore(file *dst.File, result *detect.Result) int {
	trampolines := make(map[*dst.FuncDecl]bool)
	originals := make(map[*dst.FuncDecl]*detect.Member)

	for _, class := range result.Classes {
		for _, member := range class.Members {
			if member.Rewritten {
				trampolines[member.Decl] = true
				originals[member.Orig] = member
			}
		}
	}

	restored := 0
	kept := make([]dst.Decl, 0, len(file.Decls))

	for _, decl := range file.Decls {
		fn, ok := decl.(*dst.FuncDecl)
		if ok && trampolines[fn] {
			continue
		}

		if member, isOrig := originals[fn]; ok && isOrig {
			restoreOriginal(member)

			restored++
		}

		kept = append(kept, decl)
	}

	file.Decls = kept

	if restored > 0 && !usesRuntime(file) {
		dropImport(file)
	}

	return restored
}

func restoreOriginal(member *detect.Member) {
	orig, trampoline := member.Orig, member.Decl

	var directives dst.Decorations

	for _, line := range orig.Decs.Start {
		if line != origComment(member) {
			directives = append(directives, line)
		}
	}

	start := append(dst.Decorations{}, trampoline.Decs.Start...)
	if len(start) == 0 {
		directives = trimBlankComments(directives)
	}

	start = append(start, directives...)

	orig.Name = dst.NewIdent(member.Name)
	orig.Decs.Start = start
	orig.Decs.Before = trampoline.Decs.Before

	member.Decl = orig
	member.Orig = nil
	member.Rewritten = false
}

// ensureImport adds the runtime import unless the file already has it. A new import goes
// into its own group after standard library imports.
func ensureImport(file *dst.File) {
	if importSpec(file) != nil {
		return
	}

	spec := &dst.ImportSpec{Path: &dst.BasicLit{Kind: token.STRING, Value: strconv.Quote(RuntimePath)}}

	for _, decl := range file.Decls {
		gen, ok := decl.(*dst.GenDecl)
		if !ok || gen.Tok != token.IMPORT {
			continue
		}

		first, _, _ := strings.Cut(lastImportPath(gen), "/")
		if !strings.Contains(first, ".") {
			spec.Decs.Before = dst.EmptyLine
		}

		gen.Specs = append(gen.Specs, spec)
		gen.Lparen = true
		gen.Rparen = true

		return
	}

	gen := &dst.GenDecl{Tok: token.IMPORT, Lparen: true, Rparen: true, Specs: []dst.Spec{spec}}
	gen.Decs.Before = dst.EmptyLine
	file.Decls = append([]dst.Decl{gen}, file.Decls...)
}

func lastImportPath(gen *dst.GenDecl) string {
	if len(gen.Specs) == 0 {
		return ""
	}

	spec, ok := gen.Specs[len(gen.Specs)-1].(*dst.ImportSpec)
	if !ok {
		return ""
	}

	path, err := strconv.Unquote(spec.Path.Value)
	if err != nil {
		return ""
	}

	return path
}

func importSpec(file *dst.File) *dst.ImportSpec {
	for _, decl := range file.Decls {
		gen, ok := decl.(*dst.GenDecl)
		if !ok || gen.Tok != token.IMPORT {
			continue
		}

		for _, spec := range gen.Specs {
			imp, isImport := spec.(*dst.ImportSpec)
			if isImport && imp.Path.Value == strconv.Quote(RuntimePath) {
				return imp
			}
		}
	}

	return nil
}

// usesRuntime reports whether any selector still refers to the runtime package.
func usesRuntime(file *dst.File) bool {
	used := false

	dst.Inspect(file, func(node dst.Node) bool {
		if used {
			return false
		}

		sel, ok := node.(*dst.SelectorExpr)
		if !ok {
			return true
		}

		if ident, isIdent := sel.X.(*dst.Ident); isIdent && ident.Name == runtimeName {
			used = true
		}

		return !used
	})

	return used
}

func dropImport(file *dst.File) {
	target := importSpec(file)
	if target == nil {
		return
	}

	decls := file.Decls[:0]

	for _, decl := range file.Decls {
		gen, ok := decl.(*dst.GenDecl)
		if !ok || gen.Tok != token.IMPORT {
			decls = append(decls, decl)

			continue
		}

		specs := gen.Specs[:0]

		for _, spec := range gen.Specs {
			if spec != target {
				specs = append(specs, spec)
			}
		}

		gen.Specs = specs

		if len(specs) > 0 {
			decls = append(decls, decl)
		}
	}

	file.Decls = decls
}
