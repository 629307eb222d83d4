package eiffel

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func parseOrFail(t *testing.T, source string) *Program {
	t.Helper()
	program, err := Parse(source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return program
}

func outline(t *testing.T, node Node) string {
	t.Helper()
	var b strings.Builder
	if err := FprintAST(&b, node); err != nil {
		t.Fatalf("print AST: %v", err)
	}
	return b.String()
}

func TestParseClassAndFlatProgram(t *testing.T) {
	program := parseOrFail(t, counterClass+`
local
  c: COUNTER
create c
c.inc
print(c.value)
`)

	want := `Program
  Class: COUNTER
    DeclarationList
      value: INTEGER
    FeatureBody: inc
      Body:
        Assign
          Target:
            Variable: value
          Expression:
            BinaryExpr: +
              Variable: value
              Literal: 1 (int)
  FeatureBody: (anonymous)
    Locals:
      c: COUNTER
    Body:
      Create: c
      AttributeAccess: inc
        Variable: c
      ProcedureCall: print
        Arguments:
          AttributeAccess: value
            Variable: c
`
	if diff := cmp.Diff(want, outline(t, program)); diff != "" {
		t.Fatalf("AST mismatch (-want +got):\n%s", diff)
	}

	classes := program.Classes()
	if len(classes) != 1 || classes[0].Name != "COUNTER" {
		t.Fatalf("unexpected classes: %+v", classes)
	}
	if got := classes[0].Pos(); got.Line != 2 || got.Column != 1 {
		t.Fatalf("unexpected class position %+v", got)
	}
}

func TestParseRoutineForms(t *testing.T) {
	program := parseOrFail(t, `
class SHAPES
feature
  width, height: REAL
  area: REAL
    do
      Result := width * height
    end
  scaled(f: REAL; label: STRING): REAL
    local
      tmp: REAL
    do
      tmp := area * f
      Result := tmp
    end
  reset do width := 0 height := 0 end
end
`)
	class := program.Classes()[0]
	if len(class.Features) != 4 {
		t.Fatalf("expected 4 features, got %d", len(class.Features))
	}

	attrs, ok := class.Features[0].(*DeclarationList)
	if !ok {
		t.Fatalf("expected declaration list, got %T", class.Features[0])
	}
	wantAttrs := []Declaration{{Name: "width", Type: "REAL"}, {Name: "height", Type: "REAL"}}
	if diff := cmp.Diff(wantAttrs, attrs.Decls); diff != "" {
		t.Fatalf("attributes mismatch (-want +got):\n%s", diff)
	}

	area := class.Features[1].(*FeatureBody)
	if area.Name != "area" || area.ResultType != "REAL" || len(area.Params) != 0 {
		t.Fatalf("unexpected area routine: %+v", area)
	}

	scaled := class.Features[2].(*FeatureBody)
	wantParams := []Declaration{{Name: "f", Type: "REAL"}, {Name: "label", Type: "STRING"}}
	if diff := cmp.Diff(wantParams, scaled.Params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Declaration{{Name: "tmp", Type: "REAL"}}, scaled.Locals); diff != "" {
		t.Fatalf("locals mismatch (-want +got):\n%s", diff)
	}
	wantDecls := append(append([]Declaration{}, wantParams...), Declaration{Name: "tmp", Type: "REAL"})
	if diff := cmp.Diff(wantDecls, scaled.Declarations()); diff != "" {
		t.Fatalf("declarations mismatch (-want +got):\n%s", diff)
	}
	if scaled.ResultType != "REAL" || len(scaled.Body) != 2 {
		t.Fatalf("unexpected scaled routine: %+v", scaled)
	}

	reset := class.Features[3].(*FeatureBody)
	if reset.ResultType != "" || len(reset.Body) != 2 {
		t.Fatalf("unexpected reset routine: %+v", reset)
	}
}

func TestParseCreateForms(t *testing.T) {
	program := parseOrFail(t, "create p\ncreate {POINT} q\ncreate r.make(1, 2)")
	body := program.Statements[0].(*FeatureBody).Body

	want := []struct {
		target, class, init string
		args                int
	}{
		{"p", "", "", 0},
		{"q", "POINT", "", 0},
		{"r", "", "make", 2},
	}
	for i, w := range want {
		stmt, ok := body[i].(*Create)
		if !ok {
			t.Fatalf("statement %d: expected create, got %T", i, body[i])
		}
		if stmt.Target != w.target || stmt.ClassName != w.class || stmt.Init != w.init || len(stmt.Args) != w.args {
			t.Fatalf("statement %d: unexpected create %+v", i, stmt)
		}
	}
}

func TestParseElseifDesugarsToNestedIf(t *testing.T) {
	program := parseOrFail(t, `if x = 1 then print(1) elseif x /= 2 then print(2) else print(3) end`)
	outer := program.Statements[0].(*FeatureBody).Body[0].(*IfStmt)
	if cond := outer.Condition.(*ComparisonExpr); cond.Op != CompareEQ {
		t.Fatalf("unexpected outer condition %s", cond.Op)
	}
	if len(outer.Else) != 1 {
		t.Fatalf("expected nested if in else branch, got %d statements", len(outer.Else))
	}
	inner, ok := outer.Else[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected nested if, got %T", outer.Else[0])
	}
	if cond := inner.Condition.(*ComparisonExpr); cond.Op != CompareNotEQ {
		t.Fatalf("unexpected inner condition %s", cond.Op)
	}
	if len(inner.Then) != 1 || len(inner.Else) != 1 {
		t.Fatalf("unexpected inner branches: then=%d else=%d", len(inner.Then), len(inner.Else))
	}
}

func TestParsePrecedenceAndNegation(t *testing.T) {
	program := parseOrFail(t, "x := -a + b * (c - 1) < 10")
	assign := program.Statements[0].(*FeatureBody).Body[0].(*Assign)

	want := `Assign
  Target:
    Variable: x
  Expression:
    ComparisonExpr: <
      BinaryExpr: +
        BinaryExpr: -
          Literal: 0 (int)
          Variable: a
        BinaryExpr: *
          Variable: b
          BinaryExpr: -
            Variable: c
            Literal: 1 (int)
      Literal: 10 (int)
`
	if diff := cmp.Diff(want, outline(t, assign)); diff != "" {
		t.Fatalf("AST mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLoopAndCurrent(t *testing.T) {
	program := parseOrFail(t, `
from
  i := 0
until
  i >= 3
loop
  Current.tick(i)
  i := i + 1
end`)
	loop := program.Statements[0].(*FeatureBody).Body[0].(*LoopStmt)
	if len(loop.Init) != 1 || len(loop.Body) != 2 {
		t.Fatalf("unexpected loop shape: init=%d body=%d", len(loop.Init), len(loop.Body))
	}
	call, ok := loop.Body[0].(*MethodCall)
	if !ok {
		t.Fatalf("expected method call, got %T", loop.Body[0])
	}
	if _, ok := call.Object.(*CurrentRef); !ok || call.Name != "tick" || len(call.Args) != 1 {
		t.Fatalf("unexpected call %+v", call)
	}
}

func TestParseVoidLiteral(t *testing.T) {
	program := parseOrFail(t, "if n.next = Void then n.next := Void end")
	stmt := program.Statements[0].(*FeatureBody).Body[0].(*IfStmt)
	cond, ok := stmt.Condition.(*ComparisonExpr)
	if !ok {
		t.Fatalf("expected comparison, got %T", stmt.Condition)
	}
	if _, ok := cond.Right.(*VoidLiteral); !ok {
		t.Fatalf("expected Void literal, got %T", cond.Right)
	}
	if got := cond.Right.Pos(); got != (Position{Line: 1, Column: 13}) {
		t.Fatalf("unexpected Void position %+v", got)
	}
	assign := stmt.Then[0].(*Assign)
	if _, ok := assign.Value.(*VoidLiteral); !ok {
		t.Fatalf("expected Void assignment, got %T", assign.Value)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"missing expression", "x := ", "parse error at 1:5: unexpected token end of input"},
		{"unclosed class", "class A feature x: INTEGER", "expected 'end' to close class A, got end of input"},
		{"missing then", "if x print(1) end", "expected 'then', got identifier"},
		{"bad assignment target", "1 := 2", "invalid assignment target"},
		{"illegal character", "x := 1 # 2", `invalid character "#"`},
		{"unterminated string", `print("abc`, "unterminated string"},
		{"until without loop", "from i := 0 until i > 2 print(i) end", "expected 'loop'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.source)
			requireErrorContains(t, err, tc.want)
		})
	}
}

func TestParseErrorIncludesCodeFrame(t *testing.T) {
	_, err := Parse("x := 1\ny := )")
	requireErrorContains(t, err, "parse error at 2:6")
	requireErrorContains(t, err, "  --> line 2, column 6")
	requireErrorContains(t, err, " 1 | x := 1")
	requireErrorContains(t, err, " 2 | y := )")
}
