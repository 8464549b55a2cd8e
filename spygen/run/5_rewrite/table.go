package rewrite

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"

	detect "github.com/toejough/impspy/spygen/run/3_detect"
)

// GeneratedHeader marks the table files spygen owns.
const GeneratedHeader = "// Code generated by spygen. DO NOT EDIT."

// Table renders the table file of result: one hook variable and table type per class, and
// an init function declaring every member from its renamed original.
func Table(result *detect.Result) ([]byte, error) {
	var buf bytes.Buffer

	err := tableTmpl.Execute(&buf, tableData{Header: GeneratedHeader, Runtime: RuntimePath, Result: result})
	if err != nil {
		return nil, fmt.Errorf("failed to render table for %s: %w", result.PkgPath, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format table for %s: %w", result.PkgPath, err)
	}

	return formatted, nil
}

type tableData struct {
	*detect.Result

	Header  string
	Runtime string
}

// declaration renders the right-hand side declaring member on its class table.
func declaration(class *detect.Class, member *detect.Member) string {
	fn := member.OrigName()
	if member.Native {
		fn = member.Name
	}

	if !member.Method() {
		return fmt.Sprintf("%s.Declare(%q, %s, %s)", class.Var, member.Name, member.Mods(), fn)
	}

	recv := member.Recv
	if member.Pointer {
		recv = "(*" + recv + ")"
	}

	return fmt.Sprintf("%s.DeclareMethod(%q, %s, %s.%s)", class.Var, member.Name, member.Mods(), recv, fn)
}

//nolint:gochecknoglobals // parsed once; the template is a constant
var tableTmpl = template.Must(template.New("table").Funcs(template.FuncMap{
	"declaration": declaration,
}).Parse(`{{.Header}}

package {{.PkgName}}

import (
	"{{.Runtime}}"
)
{{range .Classes}}
{{if .Type}}// {{.Var}} is the interception table of {{.Type}}.
{{- else}}// {{.Var}} is the interception table of the package-level functions of {{$.PkgName}}.
{{- end}}
var {{.Var}} = {{.Table}}{Hook: impspy.NewHook(impspy.ClassID{Pkg: "{{$.PkgPath}}"{{if .Type}}, Name: "{{.Type}}"{{end}}})}
{{end}}
{{- range .Classes}}
type {{.Table}} struct {
	*impspy.Hook
{{range .Members}}
	{{.Field}} impspy.MemberID
{{- end}}
}
{{end}}
func init() {
{{- range $i, $class := .Classes}}{{if $i}}
{{end}}
{{- range .Members}}
	{{$class.Var}}.{{.Field}} = {{declaration $class .}}
{{- end}}
{{- end}}
}
`))
