package eiffel

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format names an AST document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
)

// ParseFormat accepts a format name, case-insensitively; "yml" is an alias of yaml.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown AST format %q (want yaml, json or cbor)", name)
	}
}

// FormatForPath picks the format matching a file extension.
func FormatForPath(path string) (Format, bool) {
	format, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	return format, err == nil
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("eiffel: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Node kinds used in AST documents.
const (
	docProgram      = "program"
	docInteger      = "integer"
	docReal         = "real"
	docString       = "string"
	docBinary       = "binary"
	docCompare      = "compare"
	docVariable     = "variable"
	docCurrent      = "current"
	docVoid         = "void"
	docAttribute    = "attribute"
	docProcedure    = "procedure_call"
	docMethod       = "method_call"
	docAssign       = "assign"
	docCreate       = "create"
	docIf           = "if"
	docLoop         = "loop"
	docDeclarations = "declarations"
	docFeature      = "feature"
	docClass        = "class"
)

// MarshalProgram encodes program as an AST document. Every node becomes a map with
// a kind tag, its fields and, when known, its line and column.
func MarshalProgram(program *Program, format Format) ([]byte, error) {
	doc := encodeNode(program)
	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatCBOR:
		return cborEncMode.Marshal(doc)
	default:
		return nil, fmt.Errorf("unknown AST format %q", string(format))
	}
}

func encodeNode(node Node) map[string]any {
	out := map[string]any{}
	if pos := node.Pos(); pos.Line > 0 {
		out["line"] = pos.Line
		out["column"] = pos.Column
	}

	switch n := node.(type) {
	case *Program:
		out["kind"] = docProgram
		delete(out, "line")
		delete(out, "column")
		out["statements"] = encodeNodes(n.Statements)
	case *IntegerLiteral:
		out["kind"] = docInteger
		out["value"] = n.Value
	case *RealLiteral:
		out["kind"] = docReal
		out["value"] = n.Value
	case *StringLiteral:
		out["kind"] = docString
		out["value"] = n.Value
	case *BinaryExpr:
		out["kind"] = docBinary
		out["op"] = string(rune(n.Op))
		out["left"] = encodeNode(n.Left)
		out["right"] = encodeNode(n.Right)
	case *ComparisonExpr:
		out["kind"] = docCompare
		out["op"] = string(n.Op)
		out["left"] = encodeNode(n.Left)
		out["right"] = encodeNode(n.Right)
	case *Variable:
		out["kind"] = docVariable
		out["name"] = n.Name
	case *CurrentRef:
		out["kind"] = docCurrent
	case *VoidLiteral:
		out["kind"] = docVoid
	case *AttributeAccess:
		out["kind"] = docAttribute
		out["object"] = encodeNode(n.Object)
		out["name"] = n.Name
	case *ProcedureCall:
		out["kind"] = docProcedure
		out["name"] = n.Name
		out["args"] = encodeNodes(n.Args)
	case *MethodCall:
		out["kind"] = docMethod
		out["object"] = encodeNode(n.Object)
		out["name"] = n.Name
		out["args"] = encodeNodes(n.Args)
	case *Assign:
		out["kind"] = docAssign
		out["target"] = encodeNode(n.Target)
		out["value"] = encodeNode(n.Value)
	case *Create:
		out["kind"] = docCreate
		out["target"] = n.Target
		if n.ClassName != "" {
			out["class"] = n.ClassName
		}
		if n.Init != "" {
			out["init"] = n.Init
			out["args"] = encodeNodes(n.Args)
		}
	case *IfStmt:
		out["kind"] = docIf
		out["condition"] = encodeNode(n.Condition)
		out["then"] = encodeNodes(n.Then)
		out["else"] = encodeNodes(n.Else)
	case *LoopStmt:
		out["kind"] = docLoop
		out["init"] = encodeNodes(n.Init)
		out["until"] = encodeNode(n.Until)
		out["body"] = encodeNodes(n.Body)
	case *DeclarationList:
		out["kind"] = docDeclarations
		out["decls"] = encodeDeclarations(n.Decls)
	case *FeatureBody:
		out["kind"] = docFeature
		if n.Name != "" {
			out["name"] = n.Name
		}
		if n.ResultType != "" {
			out["result_type"] = n.ResultType
		}
		out["params"] = encodeDeclarations(n.Params)
		out["locals"] = encodeDeclarations(n.Locals)
		out["body"] = encodeNodes(n.Body)
	case *ClassDecl:
		out["kind"] = docClass
		out["name"] = n.Name
		out["features"] = encodeNodes(n.Features)
	}
	return out
}

func encodeNodes(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, node := range nodes {
		out[i] = encodeNode(node)
	}
	return out
}

func encodeDeclarations(decls []Declaration) []any {
	out := make([]any, len(decls))
	for i, decl := range decls {
		entry := map[string]any{"name": decl.Name}
		if decl.Type != "" {
			entry["type"] = decl.Type
		}
		out[i] = entry
	}
	return out
}
