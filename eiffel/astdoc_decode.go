package eiffel

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// UnmarshalProgram decodes an AST document written by MarshalProgram or by another
// tool producing the same shape. JSON documents are read with the YAML decoder.
func UnmarshalProgram(data []byte, format Format) (*Program, error) {
	var raw any
	switch format {
	case FormatYAML, FormatJSON:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode %s AST: %w", format, err)
		}
	case FormatCBOR:
		if err := cbor.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode cbor AST: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown AST format %q", string(format))
	}

	doc, ok := asDocument(raw)
	if !ok {
		return nil, fmt.Errorf("AST document must be a map, got %T", raw)
	}
	node, err := decodeNode(doc)
	if err != nil {
		return nil, err
	}
	program, ok := node.(*Program)
	if !ok {
		return nil, fmt.Errorf("AST root must be a %s node, got %s", docProgram, doc["kind"])
	}
	return program, nil
}

type document map[string]any

// asDocument accepts the map shapes produced by the YAML and CBOR decoders.
func asDocument(raw any) (document, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return document(m), true
	case map[any]any:
		out := make(document, len(m))
		for k, v := range m {
			key, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[key] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func (d document) kind() string {
	kind, _ := d["kind"].(string)
	return kind
}

func (d document) position() Position {
	line, _ := asInt(d["line"])
	column, _ := asInt(d["column"])
	return Position{Line: int(line), Column: int(column)}
}

func (d document) str(field string, required bool) (string, error) {
	raw, ok := d[field]
	if !ok || raw == nil {
		if required {
			return "", fmt.Errorf("%s node missing %q", d.kind(), field)
		}
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s node field %q must be a string, got %T", d.kind(), field, raw)
	}
	return s, nil
}

func (d document) node(field string) (Node, error) {
	raw, ok := d[field]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s node missing %q", d.kind(), field)
	}
	child, ok := asDocument(raw)
	if !ok {
		return nil, fmt.Errorf("%s node field %q must be a node, got %T", d.kind(), field, raw)
	}
	return decodeNode(child)
}

func (d document) nodes(field string) ([]Node, error) {
	raw, ok := d[field]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s node field %q must be a list, got %T", d.kind(), field, raw)
	}
	out := make([]Node, 0, len(list))
	for i, item := range list {
		child, ok := asDocument(item)
		if !ok {
			return nil, fmt.Errorf("%s node field %q item %d must be a node", d.kind(), field, i)
		}
		node, err := decodeNode(child)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func (d document) declarations(field string) ([]Declaration, error) {
	raw, ok := d[field]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s node field %q must be a list, got %T", d.kind(), field, raw)
	}
	out := make([]Declaration, 0, len(list))
	for _, item := range list {
		entry, ok := asDocument(item)
		if !ok {
			return nil, fmt.Errorf("%s node field %q entries must be maps", d.kind(), field)
		}
		name, _ := entry["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("%s node declaration missing name", d.kind())
		}
		typeName, _ := entry["type"].(string)
		out = append(out, Declaration{Name: name, Type: typeName})
	}
	return out, nil
}

func asInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	default:
		return 0, false
	}
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		if i, ok := asInt(raw); ok {
			return float64(i), true
		}
		return 0, false
	}
}

func decodeNode(d document) (Node, error) {
	pos := d.position()
	switch d.kind() {
	case docProgram:
		stmts, err := d.nodes("statements")
		if err != nil {
			return nil, err
		}
		return &Program{Statements: stmts}, nil
	case docInteger:
		v, ok := asInt(d["value"])
		if !ok {
			return nil, fmt.Errorf("integer node has invalid value %v", d["value"])
		}
		return &IntegerLiteral{Value: v, position: pos}, nil
	case docReal:
		v, ok := asFloat(d["value"])
		if !ok {
			return nil, fmt.Errorf("real node has invalid value %v", d["value"])
		}
		return &RealLiteral{Value: v, position: pos}, nil
	case docString:
		v, err := d.str("value", true)
		if err != nil {
			return nil, err
		}
		return &StringLiteral{Value: v, position: pos}, nil
	case docBinary:
		op, err := d.str("op", true)
		if err != nil {
			return nil, err
		}
		if len(op) != 1 || !isArithmeticOp(op[0]) {
			return nil, fmt.Errorf("binary node has invalid op %q", op)
		}
		left, right, err := d.operands()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op[0], Left: left, Right: right, position: pos}, nil
	case docCompare:
		op, err := d.str("op", true)
		if err != nil {
			return nil, err
		}
		if !CompareOp(op).valid() {
			return nil, fmt.Errorf("compare node has invalid op %q", op)
		}
		left, right, err := d.operands()
		if err != nil {
			return nil, err
		}
		return &ComparisonExpr{Op: CompareOp(op), Left: left, Right: right, position: pos}, nil
	case docVariable:
		name, err := d.str("name", true)
		if err != nil {
			return nil, err
		}
		return &Variable{Name: name, position: pos}, nil
	case docCurrent:
		return &CurrentRef{position: pos}, nil
	case docVoid:
		return &VoidLiteral{position: pos}, nil
	case docAttribute:
		object, err := d.node("object")
		if err != nil {
			return nil, err
		}
		name, err := d.str("name", true)
		if err != nil {
			return nil, err
		}
		return &AttributeAccess{Object: object, Name: name, position: pos}, nil
	case docProcedure:
		name, err := d.str("name", true)
		if err != nil {
			return nil, err
		}
		args, err := d.nodes("args")
		if err != nil {
			return nil, err
		}
		return &ProcedureCall{Name: name, Args: args, position: pos}, nil
	case docMethod:
		object, err := d.node("object")
		if err != nil {
			return nil, err
		}
		name, err := d.str("name", true)
		if err != nil {
			return nil, err
		}
		args, err := d.nodes("args")
		if err != nil {
			return nil, err
		}
		return &MethodCall{Object: object, Name: name, Args: args, position: pos}, nil
	case docAssign:
		target, err := d.node("target")
		if err != nil {
			return nil, err
		}
		if !isAssignable(target) {
			return nil, fmt.Errorf("assign node target must be a variable or attribute")
		}
		value, err := d.node("value")
		if err != nil {
			return nil, err
		}
		return &Assign{Target: target, Value: value, position: pos}, nil
	case docCreate:
		return d.decodeCreate(pos)
	case docIf:
		cond, err := d.node("condition")
		if err != nil {
			return nil, err
		}
		thenBranch, err := d.nodes("then")
		if err != nil {
			return nil, err
		}
		elseBranch, err := d.nodes("else")
		if err != nil {
			return nil, err
		}
		return &IfStmt{Condition: cond, Then: thenBranch, Else: elseBranch, position: pos}, nil
	case docLoop:
		setup, err := d.nodes("init")
		if err != nil {
			return nil, err
		}
		until, err := d.node("until")
		if err != nil {
			return nil, err
		}
		body, err := d.nodes("body")
		if err != nil {
			return nil, err
		}
		return &LoopStmt{Init: setup, Until: until, Body: body, position: pos}, nil
	case docDeclarations:
		decls, err := d.declarations("decls")
		if err != nil {
			return nil, err
		}
		return &DeclarationList{Decls: decls, position: pos}, nil
	case docFeature:
		return d.decodeFeature(pos)
	case docClass:
		name, err := d.str("name", true)
		if err != nil {
			return nil, err
		}
		features, err := d.nodes("features")
		if err != nil {
			return nil, err
		}
		return &ClassDecl{Name: name, Features: features, position: pos}, nil
	case "":
		return nil, fmt.Errorf("AST node missing kind")
	default:
		return nil, fmt.Errorf("unknown AST node kind %q", d.kind())
	}
}

func (d document) operands() (Node, Node, error) {
	left, err := d.node("left")
	if err != nil {
		return nil, nil, err
	}
	right, err := d.node("right")
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func (d document) decodeCreate(pos Position) (Node, error) {
	target, err := d.str("target", true)
	if err != nil {
		return nil, err
	}
	className, err := d.str("class", false)
	if err != nil {
		return nil, err
	}
	initName, err := d.str("init", false)
	if err != nil {
		return nil, err
	}
	args, err := d.nodes("args")
	if err != nil {
		return nil, err
	}
	return &Create{Target: target, ClassName: className, Init: initName, Args: args, position: pos}, nil
}

func (d document) decodeFeature(pos Position) (Node, error) {
	name, err := d.str("name", false)
	if err != nil {
		return nil, err
	}
	resultType, err := d.str("result_type", false)
	if err != nil {
		return nil, err
	}
	params, err := d.declarations("params")
	if err != nil {
		return nil, err
	}
	locals, err := d.declarations("locals")
	if err != nil {
		return nil, err
	}
	body, err := d.nodes("body")
	if err != nil {
		return nil, err
	}
	return &FeatureBody{Name: name, Params: params, ResultType: resultType, Locals: locals, Body: body, position: pos}, nil
}

func isArithmeticOp(op byte) bool {
	switch op {
	case '+', '-', '*', '/':
		return true
	default:
		return false
	}
}
