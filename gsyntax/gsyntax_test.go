package gsyntax_test

import (
	"strings"
	"testing"

	"github.com/barnii77/barg/ast"
	"github.com/barnii77/barg/gsyntax"
)

func mustParse(t *testing.T, src string) *ast.Toplevel {
	t.Helper()
	top, err := gsyntax.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return top
}

func TestParseSimpleStringAssignment(t *testing.T) {
	top := mustParse(t, `Word := "[a-z]+";`)
	if len(top.Assignments) != 1 {
		t.Fatalf("got %d assignments, want 1", len(top.Assignments))
	}
	a := top.Assignments[0]
	if a.Identifier != "Word" {
		t.Fatalf("got identifier %q, want Word", a.Identifier)
	}
	s, ok := a.Expr.(*ast.String)
	if !ok {
		t.Fatalf("Expr is %T, want *ast.String", a.Expr)
	}
	if s.Pattern.Source != "[a-z]+" {
		t.Fatalf("got pattern %q, want [a-z]+", s.Pattern.Source)
	}
}

func TestParseComments(t *testing.T) {
	top := mustParse(t, "# a leading comment\nWord := \"[a-z]+\"; # trailing\n")
	if len(top.Assignments) != 1 {
		t.Fatalf("got %d assignments, want 1", len(top.Assignments))
	}
}

func TestParseStructWithFields(t *testing.T) {
	top := mustParse(t, `Pair := struct { key: "[a-z]+", value: "[0-9]+" };`)
	st, ok := top.Assignments[0].Expr.(*ast.Struct)
	if !ok {
		t.Fatalf("Expr is %T, want *ast.Struct", top.Assignments[0].Expr)
	}
	if len(st.Fields) != 2 || st.Fields[0].Name != "key" || st.Fields[1].Name != "value" {
		t.Fatalf("got fields %+v", st.Fields)
	}
}

func TestParseStructTrailingComma(t *testing.T) {
	top := mustParse(t, `Pair := struct { key: "a", value: "b", };`)
	st := top.Assignments[0].Expr.(*ast.Struct)
	if len(st.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(st.Fields))
	}
}

func TestParseBareAlternationBuildsEnum(t *testing.T) {
	top := mustParse(t, `Digit := "[0-9]" | "[a-f]";`)
	e, ok := top.Assignments[0].Expr.(*ast.Enum)
	if !ok {
		t.Fatalf("Expr is %T, want *ast.Enum", top.Assignments[0].Expr)
	}
	if len(e.Variants) != 2 || e.Variants[0].Tag != "0" || e.Variants[1].Tag != "1" {
		t.Fatalf("got variants %+v", e.Variants)
	}
}

func TestParseExplicitEnumTags(t *testing.T) {
	top := mustParse(t, `Token := enum { num: "[0-9]+", word: "[a-z]+" };`)
	e := top.Assignments[0].Expr.(*ast.Enum)
	if len(e.Variants) != 2 || e.Variants[0].Tag != "num" || e.Variants[1].Tag != "word" {
		t.Fatalf("got variants %+v", e.Variants)
	}
}

func TestParseListQuantifiers(t *testing.T) {
	cases := []struct {
		src         string
		mode        ast.ListMode
		start       int
		finite      bool
		end         int
	}{
		{`X := "a"*;`, ast.Greedy, 0, false, 0},
		{`X := "a"*?;`, ast.Lazy, 0, false, 0},
		{`X := "a"+;`, ast.Greedy, 1, false, 0},
		{`X := "a"+?;`, ast.Lazy, 1, false, 0},
		{`X := "a"?;`, ast.Greedy, 0, true, 1},
		{`X := "a"??;`, ast.Lazy, 0, true, 1},
		{`X := "a"{2,5};`, ast.Greedy, 2, true, 5},
		{`X := "a"{2,};`, ast.Greedy, 2, false, 0},
		{`X := "a"{3};`, ast.Greedy, 3, true, 3},
		{`X := "a"{2,5}?;`, ast.Lazy, 2, true, 5},
	}
	for _, c := range cases {
		top := mustParse(t, c.src)
		l, ok := top.Assignments[0].Expr.(*ast.List)
		if !ok {
			t.Fatalf("%s: Expr is %T, want *ast.List", c.src, top.Assignments[0].Expr)
		}
		if l.Mode != c.mode || l.Start != c.start || l.End.Finite != c.finite || (c.finite && l.End.N != c.end) {
			t.Fatalf("%s: got List{Mode:%v Start:%d End:%+v}", c.src, l.Mode, l.Start, l.End)
		}
	}
}

func TestParseTransformWithTextArg(t *testing.T) {
	top := mustParse(t, `Field := $builtin.take(struct { k: "a", v: "b" }, """v""");`)
	tr, ok := top.Assignments[0].Expr.(*ast.Transform)
	if !ok {
		t.Fatalf("Expr is %T, want *ast.Transform", top.Assignments[0].Expr)
	}
	if tr.Name != "builtin.take" {
		t.Fatalf("got name %q, want builtin.take", tr.Name)
	}
	if len(tr.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(tr.Args))
	}
	ts, ok := tr.Args[0].(*ast.TextString)
	if !ok || ts.Value != "v" {
		t.Fatalf("got arg %+v, want TextString(v)", tr.Args[0])
	}
}

func TestParseTextStringAssignment(t *testing.T) {
	top := mustParse(t, `Code := """int(x) * 2""";`)
	ts, ok := top.Assignments[0].Expr.(*ast.TextString)
	if !ok {
		t.Fatalf("Expr is %T, want *ast.TextString", top.Assignments[0].Expr)
	}
	if ts.Value != "int(x) * 2" {
		t.Fatalf("got value %q, want %q", ts.Value, "int(x) * 2")
	}
}

func TestParseTransformWithVariableArg(t *testing.T) {
	top := mustParse(t, `
Key := """v""";
Field := $builtin.take(struct { k: "a", v: "b" }, Key);
`)
	tr := top.Assignments[1].Expr.(*ast.Transform)
	v, ok := tr.Args[0].(*ast.Variable)
	if !ok || v.Name != "Key" {
		t.Fatalf("got arg %+v, want Variable(Key)", tr.Args[0])
	}
}

func TestParseVariableReference(t *testing.T) {
	top := mustParse(t, "A := B;\nB := \"x\";\n")
	v, ok := top.Assignments[0].Expr.(*ast.Variable)
	if !ok || v.Name != "B" {
		t.Fatalf("got %+v, want Variable(B)", top.Assignments[0].Expr)
	}
}

func TestParseParenGrouping(t *testing.T) {
	top := mustParse(t, `X := ("a" | "b")*;`)
	l, ok := top.Assignments[0].Expr.(*ast.List)
	if !ok {
		t.Fatalf("Expr is %T, want *ast.List", top.Assignments[0].Expr)
	}
	if _, ok := l.Expr.(*ast.Enum); !ok {
		t.Fatalf("List inner is %T, want *ast.Enum", l.Expr)
	}
}

func TestParseMultipleAssignments(t *testing.T) {
	top := mustParse(t, `
A := "a";
B := "b";
C := struct { a: A, b: B };
`)
	if len(top.Assignments) != 3 {
		t.Fatalf("got %d assignments, want 3", len(top.Assignments))
	}
}

func TestParseErrorMissingSemicolon(t *testing.T) {
	_, err := gsyntax.Parse(strings.NewReader(`A := "a"`))
	if err == nil {
		t.Fatalf("expected a syntax error for missing semicolon")
	}
}

func TestParseErrorUnclosedPattern(t *testing.T) {
	_, err := gsyntax.Parse(strings.NewReader(`A := "a;`))
	if err == nil {
		t.Fatalf("expected a syntax error for an unclosed pattern")
	}
}

func TestParseErrorBadToplevelStart(t *testing.T) {
	_, err := gsyntax.Parse(strings.NewReader(`:= "a";`))
	if err == nil {
		t.Fatalf("expected a syntax error when a production name is missing")
	}
}
