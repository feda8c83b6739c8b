// Package codegen lowers a compiled grammar module to standalone Go source
// implementing the same match contract as package matchengine, without
// requiring the generator at runtime.
//
// The pipeline: a go:embed-ed, plain Go preamble is reparsed and
// reformatted for consistent indentation, the per-grammar bodies are
// rendered with text/template into bare top-level declarations, the whole
// thing is concatenated into one source blob, parsed once more, renamed to
// the target package, and formatted a final time.
package codegen

import (
	"bytes"
	_ "embed"
	"fmt"
	goast "go/ast"
	"go/format"
	"go/parser"
	goToken "go/token"
	"sort"
	"strings"
	"text/template"

	"github.com/barnii77/barg/ast"
	"github.com/barnii77/barg/module"
)

//go:embed preamble.go.tmpl
var preambleSrc string

// Generate compiles every assignment of mod (text-string bindings become
// entries of a textBindings map rather than routines) into standalone Go
// source in package pkgName.
func Generate(mod *module.Module, pkgName string) ([]byte, error) {
	var preamble string
	{
		fset := goToken.NewFileSet()
		f, err := parser.ParseFile(fset, "preamble.go", preambleSrc, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("codegen: invalid embedded preamble: %w", err)
		}
		var b strings.Builder
		if err := format.Node(&b, fset, f); err != nil {
			return nil, err
		}
		preamble = b.String()
	}

	g := newGenerator(mod)
	body, err := g.emitModule()
	if err != nil {
		return nil, err
	}

	src := "// Code generated by barg codegen. DO NOT EDIT.\n" + preamble + "\n\n" + body + "\n"

	fset := goToken.NewFileSet()
	f, err := parser.ParseFile(fset, "", src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("codegen: assembled source failed to parse: %w", err)
	}
	f.Name = goast.NewIdent(pkgName)

	var out bytes.Buffer
	if err := format.Node(&out, fset, f); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// generator holds codegen state: fresh-id allocation and memoisation by
// AST node pointer identity. Every node compiles to exactly one routine,
// which keeps shared sub-expressions reachable through more than one
// Variable from blowing up the output.
type generator struct {
	mod        *module.Module
	uid        int
	routineOf  map[ast.Node]string
	assignedOf map[string]string // assignment name -> its routine name
	decls      []string
}

func newGenerator(mod *module.Module) *generator {
	return &generator{
		mod:        mod,
		routineOf:  map[ast.Node]string{},
		assignedOf: map[string]string{},
	}
}

func (g *generator) nextID() int {
	g.uid++
	return g.uid
}

func (g *generator) emitModule() (string, error) {
	// Reserve a routine name per assignment up front so Variable nodes can
	// reference assignments not yet emitted (mutual/self recursion).
	names := make([]string, 0, len(g.mod.Assignments))
	byName := make(map[string]*ast.Assignment, len(g.mod.Assignments))
	for _, a := range g.mod.Assignments {
		names = append(names, a.Identifier)
		byName[a.Identifier] = a
		if _, ok := a.Expr.(*ast.TextString); ok {
			// Text bindings get no match routine; referencing one as a
			// matchable expression is caught in emitVariable.
			continue
		}
		g.assignedOf[a.Identifier] = fmt.Sprintf("_matchFor_%s", sanitize(a.Identifier))
	}
	sort.Strings(names) // deterministic emission order for reproducible output

	textBindings := map[string]string{}
	for _, name := range names {
		if ts, ok := byName[name].Expr.(*ast.TextString); ok {
			textBindings[name] = ts.Value
		}
	}
	g.decls = append(g.decls, renderTextBindings(textBindings))

	for _, name := range names {
		a := byName[name]
		if _, ok := a.Expr.(*ast.TextString); ok {
			// Text bindings only exist to be fetched by name as transform
			// arguments; they have no match routine or entry point.
			continue
		}
		routine, err := g.emit(a.Expr)
		if err != nil {
			return "", err
		}
		alias := g.assignedOf[a.Identifier]
		g.decls = append(g.decls, fmt.Sprintf(
			"func %s(input string, pos int) Iter { return %s(input, pos) }",
			alias, routine,
		))
		wrapper, err := g.emitToplevelWrapper(a.Identifier, a.Expr, alias)
		if err != nil {
			return "", err
		}
		g.decls = append(g.decls, wrapper)
	}

	return strings.Join(g.decls, "\n\n"), nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
}

func renderTextBindings(m map[string]string) string {
	var b strings.Builder
	b.WriteString("var textBindings = map[string]string{\n")
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%q: %q,\n", k, m[k])
	}
	b.WriteString("}")
	return b.String()
}

// emit lowers n to a match routine, memoised by pointer identity, and
// returns the routine's function name.
func (g *generator) emit(n ast.Node) (string, error) {
	if name, ok := g.routineOf[n]; ok {
		return name, nil
	}

	switch e := n.(type) {
	case *ast.String:
		return g.emitString(e)
	case *ast.Struct:
		return g.emitStruct(e)
	case *ast.Enum:
		return g.emitEnum(e)
	case *ast.List:
		return g.emitList(e)
	case *ast.Variable:
		return g.emitVariable(e)
	case *ast.Transform:
		return g.emitTransform(e)
	case *ast.TextString:
		return "", fmt.Errorf("codegen: TextString node cannot be matched against input")
	default:
		return "", fmt.Errorf("codegen: unhandled AST node %T", n)
	}
}

func (g *generator) reserve(n ast.Node, prefix string) string {
	name := fmt.Sprintf("%s%d", prefix, g.nextID())
	g.routineOf[n] = name
	return name
}

var tmplFuncs = template.FuncMap{}

func render(name, body string, data interface{}) (string, error) {
	t, err := template.New(name).Funcs(tmplFuncs).Parse(body)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

const stringTmpl = `
var {{.PatternVar}} = compilePattern({{printf "%q" .Source}})

func {{.Name}}(input string, pos int) Iter {
	return stringIter({{.PatternVar}}, input, pos)
}
`

func (g *generator) emitString(n *ast.String) (string, error) {
	name := g.reserve(n, "_match")
	patVar := fmt.Sprintf("_pattern%d", g.nextID())
	src, err := render("string", stringTmpl, map[string]string{
		"Name":       name,
		"PatternVar": patVar,
		"Source":     n.Pattern.Source,
	})
	if err != nil {
		return "", err
	}
	g.decls = append(g.decls, src)
	return name, nil
}

const structTmpl = `
func {{.Name}}(input string, pos int) Iter {
	return structMatch([]matchFunc{ {{range .Fields}}{{.}}, {{end}} }, []string{ {{range .FieldNames}}{{printf "%q" .}}, {{end}} }, input, pos)
}
`

func (g *generator) emitStruct(n *ast.Struct) (string, error) {
	name := g.reserve(n, "_match")
	fieldRoutines := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		r, err := g.emit(f.Expr)
		if err != nil {
			return "", err
		}
		fieldRoutines[i] = r
	}
	src, err := render("struct", structTmpl, map[string]interface{}{
		"Name":       name,
		"Fields":     fieldRoutines,
		"FieldNames": n.FieldNames(),
	})
	if err != nil {
		return "", err
	}
	g.decls = append(g.decls, src)
	return name, nil
}

const enumTmpl = `
func {{.Name}}(input string, pos int) Iter {
	return enumMatch([]taggedMatchFunc{ {{range .Variants}}{Tag: {{printf "%q" .Tag}}, Fn: {{.Fn}}}, {{end}} }, input, pos)
}
`

func (g *generator) emitEnum(n *ast.Enum) (string, error) {
	name := g.reserve(n, "_match")
	type variant struct {
		Tag string
		Fn  string
	}
	variants := make([]variant, len(n.Variants))
	for i, v := range n.Variants {
		r, err := g.emit(v.Expr)
		if err != nil {
			return "", err
		}
		variants[i] = variant{Tag: v.Tag, Fn: r}
	}
	src, err := render("enum", enumTmpl, map[string]interface{}{
		"Name":     name,
		"Variants": variants,
	})
	if err != nil {
		return "", err
	}
	g.decls = append(g.decls, src)
	return name, nil
}

const listTmpl = `
func {{.Name}}(input string, pos int) Iter {
	return listMatch({{.Inner}}, {{.Mode}}, {{.Start}}, {{.EndFinite}}, {{.EndN}}, input, pos)
}
`

func (g *generator) emitList(n *ast.List) (string, error) {
	name := g.reserve(n, "_match")
	inner, err := g.emit(n.Expr)
	if err != nil {
		return "", err
	}
	mode := "modeGreedy"
	if n.Mode == ast.Lazy {
		mode = "modeLazy"
	}
	src, err := render("list", listTmpl, map[string]interface{}{
		"Name":      name,
		"Inner":     inner,
		"Mode":      mode,
		"Start":     n.Start,
		"EndFinite": n.End.Finite,
		"EndN":      n.End.N,
	})
	if err != nil {
		return "", err
	}
	g.decls = append(g.decls, src)
	return name, nil
}

func (g *generator) emitVariable(n *ast.Variable) (string, error) {
	target, ok := g.assignedOf[n.Name]
	if !ok {
		if def, defined := g.mod.Lookup(n.Name); defined {
			if _, isText := def.(*ast.TextString); isText {
				return "", fmt.Errorf("codegen: text string binding %q cannot be matched against input", n.Name)
			}
		}
		return "", fmt.Errorf("codegen: use of undefined name %q", n.Name)
	}
	g.routineOf[n] = target
	return target, nil
}

const transformTmpl = `
func {{.Name}}(input string, pos int) Iter {
	return transformMatch(registryRoot, {{printf "%q" .TransformName}}, {{.Inner}}, []argSpec{ {{range .Args}}{Kind: {{printf "%q" .Kind}}, Text: {{printf "%q" .Text}}}, {{end}} }, input, pos)
}
`

func (g *generator) emitTransform(n *ast.Transform) (string, error) {
	name := g.reserve(n, "_match")
	inner, err := g.emit(n.Expr)
	if err != nil {
		return "", err
	}
	type argData struct {
		Kind string
		Text string
	}
	args := make([]argData, len(n.Args))
	for i, a := range n.Args {
		switch arg := a.(type) {
		case *ast.TextString:
			args[i] = argData{Kind: "text", Text: arg.Value}
		case *ast.Variable:
			args[i] = argData{Kind: "var", Text: arg.Name}
		default:
			return "", fmt.Errorf("codegen: transform argument of kind %T is not resolvable", a)
		}
	}
	src, err := render("transform", transformTmpl, map[string]interface{}{
		"Name":          name,
		"TransformName": n.Name,
		"Inner":         inner,
		"Args":          args,
	})
	if err != nil {
		return "", err
	}
	g.decls = append(g.decls, src)
	return name, nil
}

// emitToplevelWrapper emits the module-level alias/wrapper for a top-level
// assignment: Struct/Enum-rooted assignments get a type alias plus a
// Parse<Name> entry point returning the first match's value alone;
// everything else gets a thin Parse<Name> function wrapping the same
// contract.
func (g *generator) emitToplevelWrapper(identifier string, expr ast.Node, routine string) (string, error) {
	ident := sanitize(identifier)
	switch expr.(type) {
	case *ast.Struct:
		return fmt.Sprintf(`type %s = Struct

func Parse%s(input string) (*%s, error) {
	v, err := parseFirst(%s, input)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*Struct)
	if !ok {
		return nil, fmt.Errorf("%s: expected a struct match, got %%T", v)
	}
	return s, nil
}`, ident, ident, ident, routine, ident), nil
	case *ast.Enum:
		return fmt.Sprintf(`type %s = Enum

func Parse%s(input string) (*%s, error) {
	v, err := parseFirst(%s, input)
	if err != nil {
		return nil, err
	}
	e, ok := v.(*Enum)
	if !ok {
		return nil, fmt.Errorf("%s: expected an enum match, got %%T", v)
	}
	return e, nil
}`, ident, ident, ident, routine, ident), nil
	default:
		return fmt.Sprintf(`func Parse%s(input string) (Value, error) {
	return parseFirst(%s, input)
}`, ident, routine), nil
	}
}
