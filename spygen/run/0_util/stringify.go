// Package astutil renders dst nodes back to Go source text for listings and messages.
package astutil

import (
	"fmt"
	"strings"

	"github.com/dave/dst"
)

// Signature renders a function declaration header without its body, e.g.
// "func (c *Counter) Add(deltas ...int) int".
func Signature(decl *dst.FuncDecl) string {
	var buf strings.Builder

	buf.WriteString("func ")

	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		buf.WriteString("(")
		buf.WriteString(strings.Join(fieldDecls(decl.Recv.List), ", "))
		buf.WriteString(") ")
	}

	var params []*dst.Field
	if decl.Type.Params != nil {
		params = decl.Type.Params.List
	}

	buf.WriteString(decl.Name.Name)
	buf.WriteString("(" + strings.Join(fieldDecls(params), ", ") + ")")
	buf.WriteString(resultsString(decl.Type.Results))

	return buf.String()
}

// ReceiverTypeName returns the name of the receiver's named type and whether it is a
// pointer receiver. Generic receivers report their base name.
func ReceiverTypeName(decl *dst.FuncDecl) (string, bool) {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return "", false
	}

	expr := decl.Recv.List[0].Type
	pointer := false

	if star, ok := expr.(*dst.StarExpr); ok {
		expr = star.X
		pointer = true
	}

	switch typed := expr.(type) {
	case *dst.Ident:
		return typed.Name, pointer
	case *dst.IndexExpr:
		return TypeString(typed.X), pointer
	case *dst.IndexListExpr:
		return TypeString(typed.X), pointer
	default:
		return TypeString(expr), pointer
	}
}

// TypeString converts a type expression to its source form.
//
//nolint:cyclop // Type-switch dispatcher over dst expression kinds; complexity is inherent
func TypeString(expr dst.Expr) string {
	if expr == nil {
		return ""
	}

	switch typed := expr.(type) {
	case *dst.Ident:
		if typed.Path != "" {
			return typed.Path + "." + typed.Name
		}

		return typed.Name
	case *dst.BasicLit:
		return typed.Value
	case *dst.SelectorExpr:
		return TypeString(typed.X) + "." + typed.Sel.Name
	case *dst.StarExpr:
		return "*" + TypeString(typed.X)
	case *dst.ParenExpr:
		return "(" + TypeString(typed.X) + ")"
	case *dst.Ellipsis:
		return "..." + TypeString(typed.Elt)
	case *dst.ArrayType:
		return "[" + TypeString(typed.Len) + "]" + TypeString(typed.Elt)
	case *dst.MapType:
		return "map[" + TypeString(typed.Key) + "]" + TypeString(typed.Value)
	case *dst.ChanType:
		return chanString(typed)
	case *dst.FuncType:
		return "func(" + strings.Join(fieldTypes(typed.Params), ", ") + ")" + resultsString(typed.Results)
	case *dst.InterfaceType:
		return bracedString("interface", typed.Methods)
	case *dst.StructType:
		return bracedString("struct", typed.Fields)
	case *dst.IndexExpr:
		return TypeString(typed.X) + "[" + TypeString(typed.Index) + "]"
	case *dst.IndexListExpr:
		indices := make([]string, len(typed.Indices))
		for i, index := range typed.Indices {
			indices[i] = TypeString(index)
		}

		return TypeString(typed.X) + "[" + strings.Join(indices, ", ") + "]"
	default:
		return fmt.Sprintf("%T", expr)
	}
}

func bracedString(keyword string, fields *dst.FieldList) string {
	if fields == nil || len(fields.List) == 0 {
		return keyword + "{}"
	}

	parts := make([]string, 0, len(fields.List))

	for _, field := range fields.List {
		names := make([]string, len(field.Names))
		for i, name := range field.Names {
			names[i] = name.Name
		}

		typ := TypeString(field.Type)

		switch {
		case keyword == "interface" && len(names) > 0:
			// methods render without the func keyword
			parts = append(parts, names[0]+strings.TrimPrefix(typ, "func"))
		case len(names) > 0:
			parts = append(parts, strings.Join(names, ", ")+" "+typ)
		default:
			parts = append(parts, typ)
		}
	}

	return keyword + "{ " + strings.Join(parts, "; ") + " }"
}

func chanString(typed *dst.ChanType) string {
	switch typed.Dir {
	case dst.SEND:
		return "chan<- " + TypeString(typed.Value)
	case dst.RECV:
		return "<-chan " + TypeString(typed.Value)
	default:
		return "chan " + TypeString(typed.Value)
	}
}

// fieldDecls renders fields with their names, e.g. "a, b int".
func fieldDecls(fields []*dst.Field) []string {
	parts := make([]string, 0, len(fields))

	for _, field := range fields {
		typ := TypeString(field.Type)
		if len(field.Names) == 0 {
			parts = append(parts, typ)

			continue
		}

		names := make([]string, len(field.Names))
		for i, name := range field.Names {
			names[i] = name.Name
		}

		parts = append(parts, strings.Join(names, ", ")+" "+typ)
	}

	return parts
}

// fieldTypes renders one type per declared name, so "a, b int" yields "int, int".
func fieldTypes(list *dst.FieldList) []string {
	if list == nil {
		return nil
	}

	var parts []string

	for _, field := range list.List {
		count := max(len(field.Names), 1)

		for range count {
			parts = append(parts, TypeString(field.Type))
		}
	}

	return parts
}

func resultsString(results *dst.FieldList) string {
	types := fieldTypes(results)

	switch len(types) {
	case 0:
		return ""
	case 1:
		return " " + types[0]
	default:
		return " (" + strings.Join(types, ", ") + ")"
	}
}
