package eiffel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIntegerArithmetic(t *testing.T) {
	pairs := [][2]int64{{7, 2}, {-7, 2}, {7, -2}, {-7, -2}, {0, 5}, {123456789, 1000}, {5, 7}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		source := fmt.Sprintf("print(%d + %d)\nprint(%d - %d)\nprint(%d * %d)\nprint(%d / %d)", a, b, a, b, a, b, a, b)
		want := fmt.Sprintf("%d\n%d\n%d\n%d\n", a+b, a-b, a*b, a/b)
		t.Run(fmt.Sprintf("%d_%d", a, b), func(t *testing.T) {
			requireOutput(t, source, want)
		})
	}
}

func TestDivisionTruncatesTowardZero(t *testing.T) {
	requireOutput(t, "print(-7 / 2)\nprint(7 / -2)\nprint(1 / 3)", "-3\n-3\n0\n")
}

func TestRealArithmeticAndPromotion(t *testing.T) {
	requireOutput(t, "print(1.5 + 1)\nprint(7 / 2.0)\nprint(2 * 0.25)\nprint(3.0 - 4)", "2.500000\n3.500000\n0.500000\n-1.000000\n")
}

func TestStringConcatenationGroupsAlike(t *testing.T) {
	requireOutput(t, `print(("ab" + "cd") + "ef")
print("ab" + ("cd" + "ef"))`, "abcdef\nabcdef\n")
}

func TestComparisonsYieldIntegers(t *testing.T) {
	requireOutput(t, `print(1 < 2, 2 <= 2, 3 > 4, 4 >= 5, 5 = 5, 5 /= 5)
print("abc" < "abd", "b" = "b", 1.5 > 1)`, "110010\n111\n")
}

func TestCreateIsIdempotent(t *testing.T) {
	requireOutput(t, pointClass+`
local
  p: POINT
create p
p.x := 7
create p
print(p.x)
`, "7\n")
}

func TestUntilLoop(t *testing.T) {
	requireOutput(t, `
local
  i: INTEGER
from
  i := 0
until
  i >= 3
loop
  print(i)
  i := i + 1
end
`, "0\n1\n2\n")
}

func TestLoopExitsImmediatelyWhenConditionHolds(t *testing.T) {
	requireOutput(t, "from until 1 loop print(\"never\") end\nprint(\"done\")", "done\n")
}

func TestObjectReferencesShareState(t *testing.T) {
	requireOutput(t, pointClass+`
local
  a, b: POINT
create a
b := a
b.x := 5
print(a.x)
`, "5\n")
}

func TestCounterScenario(t *testing.T) {
	requireOutput(t, counterClass+`
local
  c: COUNTER
create c
c.inc
c.inc
print(c.value)
`, "2\n")
}

func TestUnresolvedNameStopsEvaluation(t *testing.T) {
	out, err := runScriptWithConfig(t, Config{}, "print(1)\nprint(\"a\", missing)\nprint(2)")
	rtErr := requireRuntimeError(t, err, "NameError")
	if !errors.Is(err, ErrUnresolvedName) {
		t.Fatalf("expected ErrUnresolvedName, got %v", err)
	}
	if out != "1\n" {
		t.Fatalf("expected no output after the failure, got %q", out)
	}
	if !strings.Contains(rtErr.Message, "unresolved name 'missing'") {
		t.Fatalf("unexpected message %q", rtErr.Message)
	}
	if len(rtErr.Frames) != 1 || rtErr.Frames[0].Function != "<script>" || rtErr.Frames[0].Pos.Line != 2 {
		t.Fatalf("unexpected frames %+v", rtErr.Frames)
	}
	requireErrorContains(t, err, "  --> line 2, column 12")
}

func TestEntryRoutineRunsInsteadOfFlatProgram(t *testing.T) {
	requireOutput(t, counterClass+`
class MAIN
feature
  make
    local
      c: COUNTER
    do
      create c
      c.inc
      print("count: ", c.value)
    end
end

print("flat")
`, "count: 1\n")
}

func TestEntryPointIsConfigurable(t *testing.T) {
	source := `
class APP
feature
  start do print("started") end
end
print("flat")
`
	out, err := runScriptWithConfig(t, Config{EntryClass: "APP", EntryFeature: "start"}, source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "started\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runScriptWithConfig(t, Config{}, source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "flat\n" {
		t.Fatalf("expected flat fallback, got %q", out)
	}
}

func TestFunctionsReturnResult(t *testing.T) {
	requireOutput(t, `
class MATH
feature
  double(n: INTEGER): INTEGER
    do
      Result := n * 2
    end
  half(x: REAL): REAL do Result := x / 2 end
  greeting: STRING do Result := "hi" end
  untouched: INTEGER do end
end
local
  m: MATH
create m
print(m.double(21))
print(m.half(3))
print(m.greeting + "!")
print(m.untouched)
`, "42\n1.500000\nhi!\n0\n")
}

func TestCreationRoutine(t *testing.T) {
	requireOutput(t, pointClass+`
local
  p: POINT
create p.make(3, 4)
print(p.x, ",", p.y)
`, "3,4\n")
}

func TestAttributeDefaults(t *testing.T) {
	requireOutput(t, pointClass+`
class HOLDER
feature
  point: POINT
end
local
  p: POINT
  h: HOLDER
create p
create h
print(p.x, "|", p.label, "|", p.scale)
print(h.point)
print(h)
`, "0||0.000000\nVoid\n<HOLDER object>\n")
}

func TestExplicitCreateType(t *testing.T) {
	requireOutput(t, pointClass+`
create {POINT} q
q.y := 9
print(q.y)
`, "9\n")
}

func TestCurrentAndUnqualifiedCalls(t *testing.T) {
	requireOutput(t, `
class NODE
feature
  value: INTEGER
  me: NODE

  link do me := Current end
end

class ACC
feature
  total: INTEGER
  add(n: INTEGER) do total := total + n end
  add_twice(n: INTEGER) do add(n) add(n) end
  doubled: INTEGER do Result := total * 2 end
  report do print(doubled) end
end

local
  n: NODE
  a: ACC
create n
n.value := 3
n.link
print(n.me.value)
create a
a.add_twice(5)
a.report
`, "3\n20\n")
}

func TestConditionals(t *testing.T) {
	source := `
local
  x: INTEGER
x := %d
if x = 1 then
  print("one")
elseif x = 2 then
  print("two")
else
  print("many")
end
if x > 5 then print("big") end
`
	for x, want := range map[int]string{1: "one\n", 2: "two\n", 9: "many\nbig\n"} {
		requireOutput(t, fmt.Sprintf(source, x), want)
	}
}

func TestAssignmentWidensIntegersIntoReal(t *testing.T) {
	requireOutput(t, "local r: REAL\nr := 2\nprint(r)", "2.000000\n")
}

func TestLocalsStartAtTypeDefaults(t *testing.T) {
	requireOutput(t, "local i: INTEGER; s: STRING\ni := i + 1\nprint(i, s, \".\")", "1.\n")
}

func TestPrintForms(t *testing.T) {
	requireOutput(t, "print()\nprint(\"a\", 1, 2.5)", "\na12.500000\n")
}

func TestRuntimeTypeErrors(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"int plus string", `print(1 + "a")`, "unsupported operand types for +: INTEGER and STRING"},
		{"string minus string", `print("a" - "b")`, "unsupported operand types for -: STRING and STRING"},
		{"string condition", `if "a" then print(1) end`, "condition must be INTEGER, got STRING"},
		{"mixed comparison", `print(1 < "a")`, "cannot compare INTEGER < STRING"},
		{"void target", pointClass + "local p: POINT\nprint(p.x)", "feature call 'x' on Void target"},
		{"value target", "local i: INTEGER\nprint(i.x)", "feature call 'x' on INTEGER value"},
		{"arity", counterClass + "local c: COUNTER\ncreate c\nc.inc(1)", "COUNTER.inc expects 0 argument(s), got 1"},
		{"procedure value", counterClass + "local c: COUNTER; v: INTEGER\ncreate c\nv := c.inc", "expression has no value"},
		{"current outside object", "print(Current)", "Current used outside of an object"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runScriptWithConfig(t, Config{}, tc.source)
			kind := "TypeError"
			if tc.name == "current outside object" {
				kind = "NameError"
			}
			requireRuntimeError(t, err, kind)
			requireErrorContains(t, err, tc.want)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, source := range []string{"print(1 / 0)", "print(1.5 / 0)"} {
		out, err := runScriptWithConfig(t, Config{}, source)
		requireRuntimeError(t, err, "ZeroDivisionError")
		if !errors.Is(err, ErrDivisionByZero) {
			t.Fatalf("expected ErrDivisionByZero, got %v", err)
		}
		if out != "" {
			t.Fatalf("unexpected output %q", out)
		}
	}
}

func TestMissingMembersAreLenientByDefault(t *testing.T) {
	requireOutput(t, pointClass+`
local
  p: POINT
  g: GHOST
create p
p.nothing
p.nothing(1, 2)
print(p.missing)
create g
undefined_procedure(1)
print("ok")
`, "\nok\n")
}

func TestStrictMembers(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"missing routine", pointClass + "local p: POINT\ncreate p\np.nothing(1)", "class POINT has no routine 'nothing'"},
		{"missing attribute", pointClass + "local p: POINT\ncreate p\nprint(p.missing)", "class POINT has no feature 'missing'"},
		{"missing attribute write", pointClass + "local p: POINT\ncreate p\np.z := 1", "class POINT has no attribute 'z'"},
		{"missing class", "local g: GHOST\ncreate g", "class GHOST is not defined"},
		{"untyped create", "create z", "cannot create 'z': no type declared"},
		{"unknown procedure", "shout(1)", "unknown procedure 'shout'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runScriptWithConfig(t, Config{StrictMembers: true}, tc.source)
			requireRuntimeError(t, err, "LookupError")
			if !errors.Is(err, ErrMissingMember) {
				t.Fatalf("expected ErrMissingMember, got %v", err)
			}
			requireErrorContains(t, err, tc.want)
		})
	}
}

func TestDefaultCreateClass(t *testing.T) {
	source := pointClass + "create z\nprint(z)"
	out, err := runScriptWithConfig(t, Config{DefaultCreateClass: "POINT"}, source)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "<POINT object>\n" {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = runScriptWithConfig(t, Config{}, source)
	requireRuntimeError(t, err, "NameError")
}

func TestVoidLiteralComparesWithReferences(t *testing.T) {
	requireOutput(t, `
class NODE
feature
  item: INTEGER
  next: NODE
end
local
  n: NODE
  k: NODE
if k = Void then print("unattached") end
create n
if n.next = Void then print("detached") end
n.next := n
if n.next /= Void then print("attached") end
n.next := Void
print(n.next, " ", n = Void, " ", Void = Void)
`, "unattached\ndetached\nattached\nVoid 0 1\n")
}

func TestStepQuota(t *testing.T) {
	_, err := runScriptWithConfig(t, Config{StepQuota: 200}, `
local
  i: INTEGER
from i := 0 until i < 0 loop i := i + 1 end
`)
	requireRuntimeError(t, err, "QuotaError")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	requireErrorContains(t, err, "step quota exceeded (200)")
}

func TestRecursionLimit(t *testing.T) {
	_, err := runScriptWithConfig(t, Config{RecursionLimit: 20}, `
class R
feature
  down(n: INTEGER) do down(n + 1) end
end
local
  r: R
create r
r.down(0)
`)
	rtErr := requireRuntimeError(t, err, "QuotaError")
	requireErrorContains(t, err, "recursion depth exceeded (limit 20)")
	if len(rtErr.Frames) != 21 {
		t.Fatalf("expected 21 frames, got %d", len(rtErr.Frames))
	}
	requireErrorContains(t, err, "... 5 frames omitted ...")
	requireErrorContains(t, err, "at R.down")
}

func TestRunHonorsContextCancellation(t *testing.T) {
	script := compileScriptDefault(t, "print(1)")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := script.Run(ctx, &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestScriptRunsAreIndependent(t *testing.T) {
	script := compileScriptDefault(t, counterClass+"local c: COUNTER\ncreate c\nc.inc\nprint(c.value)")
	for i := 0; i < 2; i++ {
		var out bytes.Buffer
		if err := script.Run(context.Background(), &out); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
		if out.String() != "1\n" {
			t.Fatalf("run %d: unexpected output %q", i, out.String())
		}
	}
}

func TestEvaluateOnExternalAST(t *testing.T) {
	engine := MustNewEngine(Config{})
	registry := NewClassRegistry()
	exec := newExecution(context.Background(), engine, registry, "", nil)
	scope := NewGlobalScope()

	assign := &Assign{Target: &Variable{Name: "x"}, Value: &BinaryExpr{Op: '*', Left: &IntegerLiteral{Value: 6}, Right: &IntegerLiteral{Value: 7}}}
	if _, err := exec.Evaluate(assign, scope); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	val, err := exec.Evaluate(&Variable{Name: "x"}, scope)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if val.Kind() != KindInt || val.Int() != 42 {
		t.Fatalf("expected 42, got %v", val)
	}
}

func TestNewEngineValidatesConfig(t *testing.T) {
	if _, err := NewEngine(Config{EntryClass: "not valid"}); err == nil {
		t.Fatalf("expected invalid entry class error")
	}
	if _, err := NewEngine(Config{DefaultCreateClass: "end"}); err == nil {
		t.Fatalf("expected keyword to be rejected as a class name")
	}
	engine, err := NewEngine(Config{})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	cfg := engine.Config()
	if cfg.StepQuota != 0 || cfg.RecursionLimit != defaultRecursionLimit || cfg.EntryClass != "MAIN" || cfg.EntryFeature != "make" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if _, err := NewEngine(Config{StepQuota: -1}); err == nil {
		t.Fatalf("expected negative step quota to be rejected")
	}
	if _, err := NewEngine(Config{RecursionLimit: -1}); err == nil {
		t.Fatalf("expected negative recursion limit to be rejected")
	}
}

func TestDefaultLimitsAllowLongRuns(t *testing.T) {
	out, err := runScriptWithConfig(t, Config{}, `
local
  i, s: INTEGER
from i := 0 until i >= 10000 loop
  s := s + i
  i := i + 1
end
print(s)
`)
	if err != nil {
		t.Fatalf("loop failed: %v", err)
	}
	if out != "49995000\n" {
		t.Fatalf("unexpected loop output %q", out)
	}

	out, err = runScriptWithConfig(t, Config{}, `
class ADDER
feature
  sum(n: INTEGER): INTEGER
    do
      if n = 0 then
        Result := 0
      else
        Result := n + sum(n - 1)
      end
    end
end
local
  a: ADDER
create a
print(a.sum(100))
`)
	if err != nil {
		t.Fatalf("recursion failed: %v", err)
	}
	if out != "5050\n" {
		t.Fatalf("unexpected recursion output %q", out)
	}
}
