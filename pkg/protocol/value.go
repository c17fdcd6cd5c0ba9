package protocol

import (
	"errors"
	"fmt"
)

// ErrInvalidValue reports an unknown value kind tag.
var ErrInvalidValue = errors.New("protocol: invalid value")

// ValueKind tags a Value.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueString
	ValueBool
	ValueInt
	ValueFloat
)

// String returns the string representation of the kind.
func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueString:
		return "string"
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Value is a property or event payload that survives the wire.
type Value struct {
	Kind  ValueKind
	Str   string
	Bool  bool
	Int   int64
	Float float64
}

// ValueOf converts v. Unsupported types are carried as their fmt string.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case string:
		return Value{Kind: ValueString, Str: x}
	case bool:
		return Value{Kind: ValueBool, Bool: x}
	case int:
		return Value{Kind: ValueInt, Int: int64(x)}
	case int8:
		return Value{Kind: ValueInt, Int: int64(x)}
	case int16:
		return Value{Kind: ValueInt, Int: int64(x)}
	case int32:
		return Value{Kind: ValueInt, Int: int64(x)}
	case int64:
		return Value{Kind: ValueInt, Int: x}
	case uint8:
		return Value{Kind: ValueInt, Int: int64(x)}
	case uint16:
		return Value{Kind: ValueInt, Int: int64(x)}
	case uint32:
		return Value{Kind: ValueInt, Int: int64(x)}
	case float32:
		return Value{Kind: ValueFloat, Float: float64(x)}
	case float64:
		return Value{Kind: ValueFloat, Float: x}
	case fmt.Stringer:
		return Value{Kind: ValueString, Str: x.String()}
	default:
		return Value{Kind: ValueString, Str: fmt.Sprint(v)}
	}
}

// Any returns the Go value: nil, string, bool, int64 or float64.
func (v Value) Any() any {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueBool:
		return v.Bool
	case ValueInt:
		return v.Int
	case ValueFloat:
		return v.Float
	default:
		return nil
	}
}

func (e *Encoder) writeValue(v Value) {
	e.WriteByte(byte(v.Kind))
	switch v.Kind {
	case ValueString:
		e.WriteString(v.Str)
	case ValueBool:
		e.WriteBool(v.Bool)
	case ValueInt:
		e.WriteSvarint(v.Int)
	case ValueFloat:
		e.WriteFloat64(v.Float)
	}
}

func (d *Decoder) readValue() (Value, error) {
	k, err := d.ReadByte()
	if err != nil {
		return Value{}, err
	}
	v := Value{Kind: ValueKind(k)}
	switch v.Kind {
	case ValueNull:
	case ValueString:
		v.Str, err = d.ReadString()
	case ValueBool:
		v.Bool, err = d.ReadBool()
	case ValueInt:
		v.Int, err = d.ReadSvarint()
	case ValueFloat:
		v.Float, err = d.ReadFloat64()
	default:
		return Value{}, fmt.Errorf("%w: kind %d", ErrInvalidValue, k)
	}
	return v, err
}
