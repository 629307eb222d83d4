package eiffel

import (
	"fmt"
	"strconv"
)

func (k ValueKind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindNull:
		return "Void"
	case KindInt:
		return TypeInteger
	case KindReal:
		return TypeReal
	case KindString:
		return TypeString
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) IsVoid() bool { return v.kind == KindVoid }

func (v Value) Int() int64 {
	switch v.kind {
	case KindInt:
		return v.data.(int64)
	case KindReal:
		return int64(v.data.(float64))
	default:
		return 0
	}
}

func (v Value) Real() float64 {
	switch v.kind {
	case KindReal:
		return v.data.(float64)
	case KindInt:
		return float64(v.data.(int64))
	default:
		return 0
	}
}

// Object returns the attribute store of an object reference, or nil.
func (v Value) Object() *Scope {
	if v.kind != KindObject {
		return nil
	}
	return v.data.(*Scope)
}

// TypeName is the class name for objects and the kind name otherwise.
func (v Value) TypeName() string {
	if obj := v.Object(); obj != nil {
		return obj.Owner()
	}
	return v.kind.String()
}

// String renders the value the way print writes it.
func (v Value) String() string {
	switch v.kind {
	case KindVoid:
		return ""
	case KindNull:
		return "Void"
	case KindInt:
		return strconv.FormatInt(v.data.(int64), 10)
	case KindReal:
		return fmt.Sprintf("%f", v.data.(float64))
	case KindString:
		return v.data.(string)
	case KindObject:
		return fmt.Sprintf("<%s object>", v.Object().Owner())
	default:
		return fmt.Sprintf("<%v>", v.kind)
	}
}

// Equal reports whether two values are the same; objects compare by identity.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindVoid, KindNull:
		return true
	case KindInt:
		return v.data.(int64) == other.data.(int64)
	case KindReal:
		return v.data.(float64) == other.data.(float64)
	case KindString:
		return v.data.(string) == other.data.(string)
	case KindObject:
		return v.Object() == other.Object()
	default:
		return false
	}
}
