package barg_test

import (
	"strings"
	"testing"

	"github.com/barnii77/barg"
)

func TestParseMatchesFirstAlternative(t *testing.T) {
	grammar := `Greeting := "hello" | "hi";`
	iters, errs := barg.Parse([]string{"hello", "hi", "nope"}, grammar, "Greeting")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(iters) != 3 {
		t.Fatalf("got %d iters, want 3", len(iters))
	}
	if !iters[0].Next() {
		t.Fatalf("expected a match for \"hello\"")
	}
	if !iters[1].Next() {
		t.Fatalf("expected a match for \"hi\"")
	}
	if iters[2].Next() {
		t.Fatalf("expected no match for \"nope\"")
	}
}

func TestParseInvalidGrammarReturnsError(t *testing.T) {
	_, errs := barg.Parse([]string{"x"}, `Broken := ;`, "Broken")
	if len(errs) == 0 {
		t.Fatalf("expected a grammar error")
	}
}

func TestParseUnknownToplevel(t *testing.T) {
	_, errs := barg.Parse([]string{"x"}, `A := "x";`, "NotThere")
	if len(errs) == 0 {
		t.Fatalf("expected an undefined-toplevel error")
	}
}

func TestParseBareIdentifierTransformArgs(t *testing.T) {
	grammar := `
Item := $builtin.take(enum { num: $builtin.mark(struct { value: "[0-9]+" }, ok), skip: "[a-z]+" });
Toplevel := $builtin.filter(Item*, ok);
`
	iters, errs := barg.Parse([]string{"12ab34"}, grammar, "Toplevel")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	it := iters[0]
	if !it.Next() {
		t.Fatalf("expected a match: %v", it.Err())
	}
	m := it.Match()
	if m.Consumed != 6 {
		t.Fatalf("consumed %d, want 6", m.Consumed)
	}
}

func TestParsePyexprWithTextStringBinding(t *testing.T) {
	grammar := `
Doubler := """int(x) * 2""";
Num := $builtin.pyexpr("[0-9]+", Doubler);
`
	iters, errs := barg.Parse([]string{"42"}, grammar, "Num")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	it := iters[0]
	if !it.Next() {
		t.Fatalf("expected a match: %v", it.Err())
	}
}

func TestGenerateProducesGoPackage(t *testing.T) {
	grammar := `Word := "[a-z]+";`
	out, err := barg.Generate(grammar, "go")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(out), "func ParseWord(") {
		t.Fatalf("expected ParseWord entry point in generated source:\n%s", out)
	}
}

func TestGenerateUnsupportedTarget(t *testing.T) {
	_, err := barg.Generate(`A := "x";`, "rust")
	if err == nil {
		t.Fatalf("expected an error for an unsupported target")
	}
}
