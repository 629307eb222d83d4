package eiffel

type ValueKind int

const (
	KindVoid ValueKind = iota
	KindNull
	KindInt
	KindReal
	KindString
	KindObject
)

// Value is a runtime value. Strings are immutable Go strings, so every read and
// write already has value semantics.
type Value struct {
	kind ValueKind
	data any
}

// Basic type names with built-in defaults.
const (
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
	TypeString  = "STRING"
)

func NewVoid() Value           { return Value{kind: KindVoid} }
func NewNull() Value           { return Value{kind: KindNull} }
func NewInt(i int64) Value     { return Value{kind: KindInt, data: i} }
func NewReal(f float64) Value  { return Value{kind: KindReal, data: f} }
func NewString(s string) Value { return Value{kind: KindString, data: s} }
func NewObject(s *Scope) Value { return Value{kind: KindObject, data: s} }

func newBool(b bool) Value {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

// defaultValue returns the initial value of an attribute declared with typeName.
// Non-basic types start as null and wait for a create.
func defaultValue(typeName string) Value {
	switch typeName {
	case TypeInteger:
		return NewInt(0)
	case TypeReal:
		return NewReal(0)
	case TypeString:
		return NewString("")
	default:
		return NewNull()
	}
}

func isBasicType(typeName string) bool {
	switch typeName {
	case TypeInteger, TypeReal, TypeString:
		return true
	default:
		return false
	}
}
