// Package rewrite turns eligible declarations into trampolines routing through a class
// hook, generates the hook tables, and undoes both.
package rewrite

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"

	"github.com/dave/dst"

	detect "github.com/toejough/impspy/spygen/run/3_detect"
)

// RuntimePath is the import path of the runtime the trampolines call.
const RuntimePath = "github.com/toejough/impspy"

const (
	runtimeName  = "impspy"
	recvName     = "recv"
	outName      = "out"
	directiveTag = "//go:"
)

// Trampolines rewrites every member of class declared in file that is neither native nor
// already rewritten. It reports how many declarations it rewrote.
func Trampolines(file *dst.File, path string, class *detect.Class) int {
	rewritten := 0

	for _, member := range class.Members {
		if member.File != path || member.Native || member.Rewritten {
			continue
		}

		index := declIndex(file, member.Decl)
		if index < 0 {
			continue
		}

		trampoline := buildTrampoline(class, member)
		renameOriginal(member)

		decls := make([]dst.Decl, 0, len(file.Decls)+1)
		decls = append(decls, file.Decls[:index]...)
		decls = append(decls, trampoline, member.Decl)
		decls = append(decls, file.Decls[index+1:]...)
		file.Decls = decls

		member.Orig = member.Decl
		member.Decl = trampoline
		member.Rewritten = true

		if trampoline.Type.Results != nil && len(trampoline.Type.Results.List) > 0 {
			ensureImport(file)
		}

		rewritten++
	}

	return rewritten
}

func declIndex(file *dst.File, target *dst.FuncDecl) int {
	for i, decl := range file.Decls {
		if decl == target {
			return i
		}
	}

	return -1
}

// renameOriginal gives the original its spyOrig name and a doc line of its own. Compiler
// directives stay with the original body.
func renameOriginal(member *detect.Member) {
	decl := member.Decl
	decl.Name = dst.NewIdent(member.OrigName())

	start := dst.Decorations{origComment(member)}
	directives := splitDirectives(decl.Decs.Start, true)

	if len(directives) > 0 {
		start = append(start, "//")
		start = append(start, directives...)
	}

	decl.Decs.Start = start
	decl.Decs.Before = dst.EmptyLine
}

func origComment(member *detect.Member) string {
	return fmt.Sprintf("// %s is the original %s, called by its trampoline.", member.OrigName(), member.Name)
}

// buildTrampoline synthesizes a declaration with the original's name, signature and doc
// comment whose body routes the call through the class hook.
func buildTrampoline(class *detect.Class, member *detect.Member) *dst.FuncDecl {
	orig := member.Decl
	ftype := dst.Clone(orig.Type).(*dst.FuncType) //nolint:forcetypeassert // Clone preserves the node type
	ftype.Results = unnamedResults(ftype.Results)

	var recv *dst.FieldList

	receiver := ""
	reserved := reservedNames(class, ftype.Results)

	if orig.Recv != nil {
		recv = dst.Clone(orig.Recv).(*dst.FieldList) //nolint:forcetypeassert // Clone preserves the node type
		receiver = nameReceiver(recv, reserved)
		reserved[receiver] = true
	}

	args, variadic := nameParams(ftype.Params, reserved)

	trampoline := &dst.FuncDecl{
		Recv: recv,
		Name: dst.NewIdent(member.Name),
		Type: ftype,
		Body: routeBody(class, member, receiver, args, variadic, ftype.Results),
	}

	trampoline.Decs.Before = orig.Decs.Before
	trampoline.Decs.After = dst.EmptyLine

	trampoline.Decs.Start = trimBlankComments(splitDirectives(orig.Decs.Start, false))

	return trampoline
}

// splitDirectives returns the //go: lines of a doc comment, or every other line.
func splitDirectives(lines dst.Decorations, directives bool) dst.Decorations {
	var out dst.Decorations

	for _, line := range lines {
		if strings.HasPrefix(line, directiveTag) == directives {
			out = append(out, line)
		}
	}

	return out
}

// trimBlankComments drops empty comment lines and line breaks at either end.
func trimBlankComments(lines dst.Decorations) dst.Decorations {
	blank := func(line string) bool {
		return line == "//" || strings.TrimSpace(line) == ""
	}

	for len(lines) > 0 && blank(lines[0]) {
		lines = lines[1:]
	}

	for len(lines) > 0 && blank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	return lines
}

// nameReceiver makes sure the receiver has a name the body can use and returns it. A
// blank, missing or reserved name becomes recv.
func nameReceiver(recv *dst.FieldList, reserved map[string]bool) string {
	field := recv.List[0]
	if len(field.Names) > 0 && field.Names[0].Name != "_" && !reserved[field.Names[0].Name] {
		return field.Names[0].Name
	}

	name := recvName
	for reserved[name] {
		name += "_"
	}

	field.Names = []*dst.Ident{dst.NewIdent(name)}

	return name
}

// reservedNames are identifiers the receiver and parameters must not shadow inside the
// trampoline body: the runtime package, the table variable, the result slice, the
// predeclared names the body spells out and every identifier the result types mention.
func reservedNames(class *detect.Class, results *dst.FieldList) map[string]bool {
	reserved := map[string]bool{runtimeName: true, class.Var: true, outName: true, "any": true, "nil": true}

	if results != nil {
		dst.Inspect(results, func(node dst.Node) bool {
			if ident, ok := node.(*dst.Ident); ok {
				reserved[ident.Name] = true
			}

			return true
		})
	}

	return reserved
}

// nameParams names every parameter, renaming blank, missing and reserved names to p<i>,
// and returns the argument identifiers and whether the last one is variadic.
func nameParams(params *dst.FieldList, reserved map[string]bool) ([]string, bool) {
	if params == nil {
		return nil, false
	}

	var args []string

	variadic := false
	index := 0

	for _, field := range params.List {
		if _, ok := field.Type.(*dst.Ellipsis); ok {
			variadic = true
		}

		if len(field.Names) == 0 {
			field.Names = []*dst.Ident{dst.NewIdent("_")}
		}

		for i, name := range field.Names {
			if name.Name == "_" || reserved[name.Name] {
				field.Names[i] = dst.NewIdent("p" + strconv.Itoa(index))
			}

			args = append(args, field.Names[i].Name)
			index++
		}
	}

	return args, variadic
}

// unnamedResults drops result names, one field per result.
func unnamedResults(results *dst.FieldList) *dst.FieldList {
	if results == nil {
		return nil
	}

	out := &dst.FieldList{}

	for _, field := range results.List {
		count := max(len(field.Names), 1)

		for range count {
			typ := dst.Clone(field.Type).(dst.Expr) //nolint:forcetypeassert // Clone preserves the node type
			out.List = append(out.List, &dst.Field{Type: typ})
		}
	}

	out.Opening = len(out.List) > 1
	out.Closing = out.Opening

	return out
}

// routeBody builds:
//
//	out := Spy.Route(Spy.X, recv, []any{args...}, func() []any {
//		r0 := recv.spyOrigX(args...)
//
//		return []any{r0}
//	})
//
//	return impspy.Result[T0](out, 0)
func routeBody(
	class *detect.Class, member *detect.Member, receiver string, args []string, variadic bool, results *dst.FieldList,
) *dst.BlockStmt {
	count := 0
	if results != nil {
		count = len(results.List)
	}

	route := &dst.CallExpr{
		Fun: &dst.SelectorExpr{X: dst.NewIdent(class.Var), Sel: dst.NewIdent("Route")},
		Args: []dst.Expr{
			&dst.SelectorExpr{X: dst.NewIdent(class.Var), Sel: dst.NewIdent(member.Field)},
			receiverArg(receiver),
			anySlice(idents(args)),
			originalClosure(member, receiver, args, variadic, count),
		},
	}

	if count == 0 {
		return &dst.BlockStmt{List: []dst.Stmt{&dst.ExprStmt{X: route}}}
	}

	assign := &dst.AssignStmt{
		Lhs: []dst.Expr{dst.NewIdent(outName)},
		Tok: token.DEFINE,
		Rhs: []dst.Expr{route},
	}

	conversions := make([]dst.Expr, count)
	for i, field := range results.List {
		conversions[i] = &dst.CallExpr{
			Fun: &dst.IndexExpr{
				X:     &dst.SelectorExpr{X: dst.NewIdent(runtimeName), Sel: dst.NewIdent("Result")},
				Index: dst.Clone(field.Type).(dst.Expr), //nolint:forcetypeassert // Clone preserves the node type
			},
			Args: []dst.Expr{dst.NewIdent(outName), &dst.BasicLit{Kind: token.INT, Value: strconv.Itoa(i)}},
		}
	}

	ret := &dst.ReturnStmt{Results: conversions}
	ret.Decs.Before = dst.EmptyLine

	return &dst.BlockStmt{List: []dst.Stmt{assign, ret}}
}

func receiverArg(receiver string) dst.Expr {
	if receiver == "" {
		return dst.NewIdent("nil")
	}

	return dst.NewIdent(receiver)
}

// originalClosure builds the func() []any that runs the renamed original.
func originalClosure(member *detect.Member, receiver string, args []string, variadic bool, count int) *dst.FuncLit {
	var fun dst.Expr = dst.NewIdent(member.OrigName())
	if receiver != "" {
		fun = &dst.SelectorExpr{X: dst.NewIdent(receiver), Sel: dst.NewIdent(member.OrigName())}
	}

	call := &dst.CallExpr{Fun: fun, Args: idents(args), Ellipsis: variadic}

	var body []dst.Stmt

	var ret *dst.ReturnStmt

	if count == 0 {
		body = append(body, &dst.ExprStmt{X: call})
		ret = &dst.ReturnStmt{Results: []dst.Expr{dst.NewIdent("nil")}}
	} else {
		names := make([]string, count)
		for i := range names {
			names[i] = "r" + strconv.Itoa(i)
		}

		body = append(body, &dst.AssignStmt{Lhs: idents(names), Tok: token.DEFINE, Rhs: []dst.Expr{call}})
		ret = &dst.ReturnStmt{Results: []dst.Expr{anySlice(idents(names))}}
	}

	ret.Decs.Before = dst.EmptyLine
	body = append(body, ret)

	return &dst.FuncLit{
		Type: &dst.FuncType{
			Params:  &dst.FieldList{},
			Results: &dst.FieldList{List: []*dst.Field{{Type: anySliceType()}}},
		},
		Body: &dst.BlockStmt{List: body},
	}
}

func anySlice(elts []dst.Expr) *dst.CompositeLit {
	return &dst.CompositeLit{Type: anySliceType(), Elts: elts}
}

func anySliceType() *dst.ArrayType {
	return &dst.ArrayType{Elt: dst.NewIdent("any")}
}

func idents(names []string) []dst.Expr {
	exprs := make([]dst.Expr, len(names))
	for i, name := range names {
		exprs[i] = dst.NewIdent(name)
	}

	return exprs
}
