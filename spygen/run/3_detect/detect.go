// Package detect decides which declarations of a package can be intercepted, groups them
// into classes and names their table entries.
package detect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dave/dst"

	astutil "github.com/toejough/impspy/spygen/run/0_util"
	load "github.com/toejough/impspy/spygen/run/2_load"
)

// OrigPrefix prefixes the renamed original of every rewritten declaration.
const OrigPrefix = "spyOrig"

// Exported variables.
var (
	ErrNameCollision = errors.New("name collision")
	ErrUnknownClass  = errors.New("unknown class")
)

// Result is everything detection found in one package.
type Result struct {
	PkgPath string
	PkgName string
	// TableFile is the base name of the generated table file.
	TableFile string
	// Classes lists the package class first, then type classes in source order.
	Classes []*Class
	Skipped []Skip
}

// Class is one interceptable unit: the package itself (Type empty) or a named type.
type Class struct {
	Type    string
	Var     string
	Table   string
	Members []*Member
}

// Member is one interceptable declaration.
type Member struct {
	Name  string
	Field string
	// Recv is the receiver type name for methods.
	Recv    string
	Pointer bool

	Static      bool
	Private     bool
	Constructor bool
	Native      bool
	// Rewritten is set when the declaration already is a trampoline.
	Rewritten bool

	File string
	// Decl is the declaration under Name; Orig its renamed original once rewritten.
	Decl *dst.FuncDecl
	Orig *dst.FuncDecl
}

// Skip records a declaration left alone and why.
type Skip struct {
	Name   string
	Reason string
}

// Options narrow detection.
type Options struct {
	// Classes keeps only the named classes. The package class is named by the package name.
	Classes []string
	// Native declares bodyless functions in the table.
	Native bool
}

// Label names the class the way users select it.
func (c *Class) Label(pkgName string) string {
	if c.Type == "" {
		return pkgName
	}

	return c.Type
}

// Rewritten reports whether any member of the class already is a trampoline.
func (c *Class) Rewritten() bool {
	for _, member := range c.Members {
		if member.Rewritten {
			return true
		}
	}

	return false
}

// Method reports whether the member is a method.
func (m *Member) Method() bool {
	return m.Recv != ""
}

// OrigName is the name of the renamed original. It follows the table field, which is
// unique within the class even when two members differ only in case.
func (m *Member) OrigName() string {
	return OrigPrefix + m.Field
}

// Mods renders the declaration modifiers as Go source. Final is implied for methods.
func (m *Member) Mods() string {
	var mods []string

	if m.Static {
		mods = append(mods, "impspy.Static")
	}

	if m.Constructor {
		mods = append(mods, "impspy.Constructor")
	}

	if m.Native {
		mods = append(mods, "impspy.Native")
	}

	if len(mods) == 0 {
		return "0"
	}

	return strings.Join(mods, "|")
}

// Modifiers lists the member's modifiers for people, e.g. "static|private".
func (m *Member) Modifiers() string {
	var mods []string

	flags := []struct {
		set  bool
		name string
	}{
		{m.Static, "static"},
		{m.Method(), "final"},
		{m.Private, "private"},
		{m.Constructor, "constructor"},
		{m.Native, "native"},
	}

	for _, flag := range flags {
		if flag.set {
			mods = append(mods, flag.name)
		}
	}

	return strings.Join(mods, "|")
}

// Signature renders the member's declaration header as written in the source.
func (m *Member) Signature() string {
	decl := m.Decl
	if m.Orig != nil {
		decl = m.Orig
	}

	sig := astutil.Signature(decl)

	return strings.Replace(sig, " "+decl.Name.Name+"(", " "+m.Name+"(", 1)
}

// TableFileName is the name of the table file spygen writes for a package.
func TableFileName(pkgName string) string {
	return "spy_" + pkgName + ".go"
}

// Package runs detection over a parsed package.
func Package(pkg *load.Package, opts Options) (*Result, error) {
	det := newDetector(pkg)
	det.collect()
	det.classify()
	det.nameFields()

	err := det.pair()
	if err != nil {
		return nil, err
	}

	det.dropNative(opts.Native)

	err = det.filter(opts.Classes)
	if err != nil {
		return nil, err
	}

	err = det.name()
	if err != nil {
		return nil, err
	}

	return &Result{
		PkgPath:   pkg.Path,
		PkgName:   pkg.Name,
		TableFile: det.tableFile,
		Classes:   det.classes,
		Skipped:   det.skipped,
	}, nil
}

type declRef struct {
	decl *dst.FuncDecl
	file string
}

type detector struct {
	pkg       *load.Package
	tableFile string
	// types maps declared type names to whether they are generic.
	types    map[string]bool
	topLevel map[string]bool
	decls    []declRef
	origs    map[string]declRef
	methods  map[string]map[string]bool
	classes  []*Class
	skipped  []Skip
}

func newDetector(pkg *load.Package) *detector {
	return &detector{
		pkg:       pkg,
		tableFile: TableFileName(pkg.Name),
		types:     make(map[string]bool),
		topLevel:  make(map[string]bool),
		origs:     make(map[string]declRef),
		methods:   make(map[string]map[string]bool),
	}
}

// collect indexes the package's declarations, ignoring the generated table file.
func (d *detector) collect() {
	for _, file := range d.pkg.Files {
		if file.Base() == d.tableFile {
			continue
		}

		for _, decl := range file.DST.Decls {
			switch typed := decl.(type) {
			case *dst.GenDecl:
				d.collectGen(typed)
			case *dst.FuncDecl:
				d.collectFunc(typed, file.Path)
			}
		}
	}
}

func (d *detector) collectGen(decl *dst.GenDecl) {
	for _, spec := range decl.Specs {
		switch typed := spec.(type) {
		case *dst.TypeSpec:
			d.types[typed.Name.Name] = typed.TypeParams != nil && len(typed.TypeParams.List) > 0
			d.topLevel[typed.Name.Name] = true
		case *dst.ValueSpec:
			for _, name := range typed.Names {
				d.topLevel[name.Name] = true
			}
		}
	}
}

func (d *detector) collectFunc(decl *dst.FuncDecl, path string) {
	recv, _ := astutil.ReceiverTypeName(decl)
	name := decl.Name.Name

	if recv != "" {
		if d.methods[recv] == nil {
			d.methods[recv] = make(map[string]bool)
		}

		d.methods[recv][name] = true
	} else {
		d.topLevel[name] = true
	}

	if strings.HasPrefix(name, OrigPrefix) && len(name) > len(OrigPrefix) {
		d.origs[recv+"."+name] = declRef{decl: decl, file: path}

		return
	}

	d.decls = append(d.decls, declRef{decl: decl, file: path})
}

// pair matches rewritten members with their originals. An original whose trampoline is
// gone cannot be paired and is an error.
func (d *detector) pair() error {
	paired := make(map[string]bool)

	for _, class := range d.classes {
		for _, member := range class.Members {
			key := member.Recv + "." + member.OrigName()
			if orig, found := d.origs[key]; found {
				member.Rewritten = true
				member.Orig = orig.decl
				paired[key] = true
			}
		}
	}

	for key := range d.origs {
		if !paired[key] {
			return fmt.Errorf("%w: %s has no trampoline to pair with", ErrNameCollision, strings.TrimPrefix(key, "."))
		}
	}

	return nil
}

func (d *detector) eligible(ref declRef) (*Member, bool) {
	decl := ref.decl
	name := decl.Name.Name
	recv, pointer := astutil.ReceiverTypeName(decl)

	switch {
	case name == "_":
		return nil, false
	case recv == "" && (name == "init" || name == "main"):
		d.skip(name, "runs outside of any call site")

		return nil, false
	case decl.Type.TypeParams != nil && len(decl.Type.TypeParams.List) > 0:
		d.skip(name, "has type parameters")

		return nil, false
	case recv != "" && d.types[recv]:
		d.skip(recv+"."+name, "is a method of a generic type")

		return nil, false
	case recv != "" && !d.declared(recv):
		d.skip(recv+"."+name, "has a receiver declared elsewhere")

		return nil, false
	}

	return &Member{
		Name:    name,
		Recv:    recv,
		Pointer: pointer,
		Static:  recv == "",
		Private: !isExported(name),
		Native:  decl.Body == nil,
		File:    ref.file,
		Decl:    decl,
	}, true
}

func (d *detector) declared(typeName string) bool {
	_, ok := d.types[typeName]

	return ok
}

// classify turns eligible declarations into members of classes. New<T> functions
// returning T or *T join T.
func (d *detector) classify() {
	pkgClass := &Class{}
	byType := make(map[string]*Class)
	d.classes = []*Class{pkgClass}

	for _, ref := range d.decls {
		member, ok := d.eligible(ref)
		if !ok {
			continue
		}

		owner := member.Recv
		if owner == "" {
			owner = d.constructed(member)
			member.Constructor = owner != ""
		}

		if owner == "" {
			pkgClass.Members = append(pkgClass.Members, member)

			continue
		}

		class, ok := byType[owner]
		if !ok {
			class = &Class{Type: owner}
			byType[owner] = class
			d.classes = append(d.classes, class)
		}

		class.Members = append(class.Members, member)
	}
}

// dropNative removes bodyless members unless they are wanted, then every empty class.
// Fields are named before this, so they do not depend on the option.
func (d *detector) dropNative(native bool) {
	classes := make([]*Class, 0, len(d.classes))

	for _, class := range d.classes {
		kept := make([]*Member, 0, len(class.Members))

		for _, member := range class.Members {
			if member.Native && !native {
				d.skip(member.Name, "has no body")

				continue
			}

			kept = append(kept, member)
		}

		class.Members = kept

		if len(kept) > 0 {
			classes = append(classes, class)
		}
	}

	d.classes = classes
}

// constructed returns T when member is New<T> and its first result is T or *T.
func (d *detector) constructed(member *Member) string {
	typeName, ok := strings.CutPrefix(member.Name, "New")
	if !ok || typeName == "" {
		return ""
	}

	if generic, declared := d.types[typeName]; !declared || generic {
		return ""
	}

	results := member.Decl.Type.Results
	if results == nil || len(results.List) == 0 {
		return ""
	}

	first := results.List[0].Type
	if star, isStar := first.(*dst.StarExpr); isStar {
		first = star.X
	}

	ident, isIdent := first.(*dst.Ident)
	if !isIdent || ident.Path != "" || ident.Name != typeName {
		return ""
	}

	return typeName
}

func (d *detector) filter(wanted []string) error {
	if len(wanted) == 0 {
		return nil
	}

	keep := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		keep[name] = true
	}

	var kept []*Class

	for _, class := range d.classes {
		label := class.Label(d.pkg.Name)

		// classes rewritten earlier stay in the table their trampolines refer to
		if keep[label] || class.Rewritten() {
			kept = append(kept, class)
			delete(keep, label)
		}
	}

	if len(keep) > 0 {
		missing := make([]string, 0, len(keep))
		for name := range keep {
			missing = append(missing, name)
		}

		sort.Strings(missing)

		return fmt.Errorf("%w: %s in %s", ErrUnknownClass, strings.Join(missing, ", "), d.pkg.Path)
	}

	d.classes = kept

	return nil
}

// reservedFields are promoted from the embedded hook and cannot name a member.
//
//nolint:gochecknoglobals // lookup table
var reservedFields = map[string]bool{
	"Hook":          true,
	"Declare":       true,
	"DeclareMethod": true,
	"Class":         true,
	"Members":       true,
	"Lookup":        true,
	"Route":         true,
}

// nameFields gives every member a table field unique within its class. Exported names
// keep their field; private and reserved ones get a suffix until they are free.
func (d *detector) nameFields() {
	for _, class := range d.classes {
		nameClassFields(class)
	}
}

func nameClassFields(class *Class) {
	taken := make(map[string]bool)

	for _, member := range class.Members {
		if !member.Private {
			taken[member.Name] = true
		}
	}

	for _, member := range class.Members {
		field := upperFirst(member.Name)
		if !member.Private && !reservedFields[field] {
			member.Field = field

			continue
		}

		for taken[field] || reservedFields[field] {
			field += "_"
		}

		taken[field] = true
		member.Field = field
	}
}

// name assigns table variables and table types, and checks the generated names against
// the package's own.
func (d *detector) name() error {
	origs := make(map[string]bool)

	for _, class := range d.classes {
		class.Var = "Spy" + class.Type
		class.Table = lowerFirst(class.Var) + "Table"

		for _, generated := range []string{class.Var, class.Table} {
			if d.topLevel[generated] {
				return fmt.Errorf("%w: %s already declares %s", ErrNameCollision, d.pkg.Path, generated)
			}
		}

		err := d.checkOrigs(class, origs)
		if err != nil {
			return err
		}
	}

	return nil
}

// checkOrigs makes sure no renamed original clashes with another or with the package's
// own declarations. origs collects the names taken so far, keyed by receiver.
func (d *detector) checkOrigs(class *Class, origs map[string]bool) error {
	for _, member := range class.Members {
		if member.Native {
			continue
		}

		orig := member.OrigName()
		if origs[member.Recv+"."+orig] {
			return fmt.Errorf("%w: %s and another member of %s both rename to %s",
				ErrNameCollision, member.Name, d.pkg.Path, orig)
		}

		origs[member.Recv+"."+orig] = true

		if member.Rewritten {
			continue
		}

		if member.Method() && d.methods[member.Recv][orig] {
			return fmt.Errorf("%w: %s.%s already declares %s", ErrNameCollision, d.pkg.Path, member.Recv, orig)
		}

		if !member.Method() && d.topLevel[orig] {
			return fmt.Errorf("%w: %s already declares %s", ErrNameCollision, d.pkg.Path, orig)
		}
	}

	return nil
}

func (d *detector) skip(name, reason string) {
	d.skipped = append(d.skipped, Skip{Name: name, Reason: reason})
}

func isExported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)

	return unicode.IsUpper(r)
}

func lowerFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToLower(r)) + name[size:]
}

func upperFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToUpper(r)) + name[size:]
}
