package eiffel

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const astDocSource = `class SHAPE
feature
	sides: INTEGER
	label: STRING
	area: REAL

	make(n: INTEGER)
		do
			sides := n
			label := "shape"
		end

	scaled(f: REAL): REAL
		local
			tmp: REAL
		do
			tmp := area * f
			Result := tmp + Current.area * 0
		end
end

local s: SHAPE; i: INTEGER
create {SHAPE} s.make(3)
s.area := 2.5
from i := 0 until i >= s.sides loop
	if i = 1 then
		print("one")
	elseif i /= 2 then
		print(i)
	else
		print(-i)
	end
	i := i + 1
end
print(s.label, " ", s.scaled(2), " ", s = s, " ", s /= Void)
s.make(4)
`

var astCmpOptions = cmp.Options{
	cmp.AllowUnexported(
		IntegerLiteral{}, RealLiteral{}, StringLiteral{}, BinaryExpr{}, ComparisonExpr{},
		Variable{}, CurrentRef{}, VoidLiteral{}, AttributeAccess{}, ProcedureCall{}, MethodCall{},
		Assign{}, Create{}, IfStmt{}, LoopStmt{}, DeclarationList{}, FeatureBody{}, ClassDecl{},
	),
	cmpopts.EquateEmpty(),
}

func TestASTDocumentRoundTrip(t *testing.T) {
	program := parseOrFail(t, astDocSource)
	for _, format := range []Format{FormatYAML, FormatJSON, FormatCBOR} {
		t.Run(string(format), func(t *testing.T) {
			data, err := MarshalProgram(program, format)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			decoded, err := UnmarshalProgram(data, format)
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if diff := cmp.Diff(program, decoded, astCmpOptions); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadedProgramRunsLikeCompiledSource(t *testing.T) {
	engine := MustNewEngine(Config{})
	compiled, err := engine.Compile(astDocSource)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	data, err := MarshalProgram(compiled.Program(), FormatYAML)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := UnmarshalProgram(data, FormatYAML)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	loaded := engine.Load(decoded)

	var want, got strings.Builder
	if err := compiled.Run(context.Background(), &want); err != nil {
		t.Fatalf("run compiled: %v", err)
	}
	if err := loaded.Run(context.Background(), &got); err != nil {
		t.Fatalf("run loaded: %v", err)
	}
	if want.String() != got.String() {
		t.Fatalf("output mismatch: compiled %q, loaded %q", want.String(), got.String())
	}
	if want.String() != "0\none\n-2\nshape 5.000000 1 1\n" {
		t.Fatalf("unexpected output %q", want.String())
	}
}

func TestYAMLDocumentShape(t *testing.T) {
	program := parseOrFail(t, "x := 1 + 2")
	data, err := MarshalProgram(program, FormatYAML)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc := string(data)
	for _, want := range []string{"kind: program", "kind: feature", "kind: assign", "kind: binary", "line: 1"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected %q in document:\n%s", want, doc)
		}
	}

	data, err = MarshalProgram(parseOrFail(t, "x := Void"), FormatYAML)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc = string(data)
	for _, want := range []string{"kind: void"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("expected %q in document:\n%s", want, doc)
		}
	}
}

func TestUnmarshalProgramErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		want   string
	}{
		{name: "not a map", format: FormatYAML, data: "- 1\n- 2\n", want: "must be a map"},
		{name: "wrong root", format: FormatYAML, data: "kind: integer\nvalue: 1\n", want: "AST root must be a program node"},
		{name: "missing kind", format: FormatYAML, data: "kind: program\nstatements:\n  - value: 1\n", want: "AST node missing kind"},
		{name: "unknown kind", format: FormatJSON, data: `{"kind": "program", "statements": [{"kind": "loop_forever"}]}`, want: `unknown AST node kind "loop_forever"`},
		{name: "missing field", format: FormatJSON, data: `{"kind": "program", "statements": [{"kind": "variable"}]}`, want: `variable node missing "name"`},
		{name: "bad op", format: FormatYAML, data: "kind: program\nstatements:\n  - kind: binary\n    op: '%'\n    left: {kind: integer, value: 1}\n    right: {kind: integer, value: 2}\n", want: `binary node has invalid op "%"`},
		{name: "bad assign target", format: FormatYAML, data: "kind: program\nstatements:\n  - kind: assign\n    target: {kind: integer, value: 1}\n    value: {kind: integer, value: 2}\n", want: "assign node target"},
		{name: "bad integer", format: FormatYAML, data: "kind: program\nstatements:\n  - kind: integer\n    value: 1.5\n", want: "integer node has invalid value"},
		{name: "malformed json", format: FormatJSON, data: `{"kind": `, want: "decode json AST"},
		{name: "malformed cbor", format: FormatCBOR, data: "\xff\xff", want: "decode cbor AST"},
		{name: "unknown format", format: Format("toml"), data: "", want: `unknown AST format "toml"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UnmarshalProgram([]byte(tc.data), tc.format)
			requireErrorContains(t, err, tc.want)
		})
	}
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"yaml": FormatYAML, "YML": FormatYAML, "json": FormatJSON, "Cbor": FormatCBOR} {
		got, err := ParseFormat(name)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", name, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}

	if format, ok := FormatForPath("out/prog.ast.json"); !ok || format != FormatJSON {
		t.Fatalf("unexpected format %q for json path", format)
	}
	if _, ok := FormatForPath("prog.e"); ok {
		t.Fatalf("expected no format for .e path")
	}
}
