package protocol

import (
	"errors"
	"fmt"
)

// NodeID names a node across the wire. IDs are allocated by the engine.
type NodeID uint64

// NoNode is the "no node" sentinel.
const NoNode NodeID = 0

// ListenerID names a listener registration across the wire.
type ListenerID uint64

// OpCode identifies a renderer operation.
type OpCode uint8

const (
	OpCreateElement   OpCode = 0x01 // Node, Name, Namespace
	OpCreateText      OpCode = 0x02 // Node, Value
	OpCreateComment   OpCode = 0x03 // Node, Value
	OpAppendChild     OpCode = 0x04 // Parent, Node
	OpInsertBefore    OpCode = 0x05 // Parent, Node, Ref, Flags
	OpRemoveChild     OpCode = 0x06 // Parent, Node
	OpSelectRoot      OpCode = 0x07 // Node, Name (selector)
	OpSetAttribute    OpCode = 0x08 // Node, Name, Value, Namespace
	OpRemoveAttribute OpCode = 0x09 // Node, Name, Namespace
	OpAddClass        OpCode = 0x0A // Node, Name
	OpRemoveClass     OpCode = 0x0B // Node, Name
	OpSetStyle        OpCode = 0x0C // Node, Name, Value, Flags
	OpRemoveStyle     OpCode = 0x0D // Node, Name
	OpSetProperty     OpCode = 0x0E // Node, Name, Prop
	OpSetValue        OpCode = 0x0F // Node, Value
	OpListen          OpCode = 0x10 // Node, Listener, Name (event)
	OpUnlisten        OpCode = 0x11 // Listener
	OpDestroyNode     OpCode = 0x12 // Node
)

var opNames = map[OpCode]string{
	OpCreateElement:   "CreateElement",
	OpCreateText:      "CreateText",
	OpCreateComment:   "CreateComment",
	OpAppendChild:     "AppendChild",
	OpInsertBefore:    "InsertBefore",
	OpRemoveChild:     "RemoveChild",
	OpSelectRoot:      "SelectRoot",
	OpSetAttribute:    "SetAttribute",
	OpRemoveAttribute: "RemoveAttribute",
	OpAddClass:        "AddClass",
	OpRemoveClass:     "RemoveClass",
	OpSetStyle:        "SetStyle",
	OpRemoveStyle:     "RemoveStyle",
	OpSetProperty:     "SetProperty",
	OpSetValue:        "SetValue",
	OpListen:          "Listen",
	OpUnlisten:        "Unlisten",
	OpDestroyNode:     "DestroyNode",
}

// String returns the string representation of the op code.
func (c OpCode) String() string {
	if name, ok := opNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Op(0x%02x)", uint8(c))
}

// Valid reports whether c is a known op code.
func (c OpCode) Valid() bool {
	_, ok := opNames[c]
	return ok
}

// ErrUnknownOp is returned when decoding an unknown op code.
var ErrUnknownOp = errors.New("protocol: unknown op code")

// Op is one renderer operation. Only the fields listed next to each
// OpCode are encoded.
type Op struct {
	Code      OpCode
	Node      NodeID
	Parent    NodeID
	Ref       NodeID
	Name      string
	Value     string
	Namespace string
	Flags     uint8
	Prop      Value
	Listener  ListenerID
}

// FlagViewRoot marks an OpInsertBefore that splices a view root into an
// anchor position.
const FlagViewRoot uint8 = 1 << 0

// String returns a compact description for logs.
func (op Op) String() string {
	switch op.Code {
	case OpAppendChild, OpRemoveChild:
		return fmt.Sprintf("%s(%d, %d)", op.Code, op.Parent, op.Node)
	case OpInsertBefore:
		return fmt.Sprintf("%s(%d, %d, %d)", op.Code, op.Parent, op.Node, op.Ref)
	case OpUnlisten:
		return fmt.Sprintf("%s(l%d)", op.Code, op.Listener)
	case OpCreateText, OpCreateComment, OpSetValue:
		return fmt.Sprintf("%s(%d, %q)", op.Code, op.Node, op.Value)
	default:
		return fmt.Sprintf("%s(%d, %q)", op.Code, op.Node, op.Name)
	}
}

func (e *Encoder) writeOp(op *Op) {
	e.WriteByte(byte(op.Code))
	switch op.Code {
	case OpCreateElement:
		e.WriteUvarint(uint64(op.Node))
		e.WriteString(op.Name)
		e.WriteString(op.Namespace)
	case OpCreateText, OpCreateComment, OpSetValue:
		e.WriteUvarint(uint64(op.Node))
		e.WriteString(op.Value)
	case OpAppendChild, OpRemoveChild:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Node))
	case OpInsertBefore:
		e.WriteUvarint(uint64(op.Parent))
		e.WriteUvarint(uint64(op.Node))
		e.WriteUvarint(uint64(op.Ref))
		e.WriteByte(op.Flags)
	case OpSelectRoot, OpAddClass, OpRemoveClass, OpRemoveStyle:
		e.WriteUvarint(uint64(op.Node))
		e.WriteString(op.Name)
	case OpSetAttribute:
		e.WriteUvarint(uint64(op.Node))
		e.WriteString(op.Name)
		e.WriteString(op.Value)
		e.WriteString(op.Namespace)
	case OpRemoveAttribute:
		e.WriteUvarint(uint64(op.Node))
		e.WriteString(op.Name)
		e.WriteString(op.Namespace)
	case OpSetStyle:
		e.WriteUvarint(uint64(op.Node))
		e.WriteString(op.Name)
		e.WriteString(op.Value)
		e.WriteByte(op.Flags)
	case OpSetProperty:
		e.WriteUvarint(uint64(op.Node))
		e.WriteString(op.Name)
		e.writeValue(op.Prop)
	case OpListen:
		e.WriteUvarint(uint64(op.Node))
		e.WriteUvarint(uint64(op.Listener))
		e.WriteString(op.Name)
	case OpUnlisten:
		e.WriteUvarint(uint64(op.Listener))
	case OpDestroyNode:
		e.WriteUvarint(uint64(op.Node))
	}
}

// opReader threads the first error through a sequence of reads.
type opReader struct {
	d   *Decoder
	err error
}

func (r *opReader) id() uint64 {
	if r.err != nil {
		return 0
	}
	var v uint64
	v, r.err = r.d.ReadUvarint()
	return v
}

func (r *opReader) str() string {
	if r.err != nil {
		return ""
	}
	var s string
	s, r.err = r.d.ReadString()
	return s
}

func (r *opReader) u8() byte {
	if r.err != nil {
		return 0
	}
	var b byte
	b, r.err = r.d.ReadByte()
	return b
}

func (r *opReader) value() Value {
	if r.err != nil {
		return Value{}
	}
	var v Value
	v, r.err = r.d.readValue()
	return v
}

func (d *Decoder) readOp() (Op, error) {
	code, err := d.ReadByte()
	if err != nil {
		return Op{}, err
	}
	op := Op{Code: OpCode(code)}
	r := &opReader{d: d}
	switch op.Code {
	case OpCreateElement:
		op.Node = NodeID(r.id())
		op.Name = r.str()
		op.Namespace = r.str()
	case OpCreateText, OpCreateComment, OpSetValue:
		op.Node = NodeID(r.id())
		op.Value = r.str()
	case OpAppendChild, OpRemoveChild:
		op.Parent = NodeID(r.id())
		op.Node = NodeID(r.id())
	case OpInsertBefore:
		op.Parent = NodeID(r.id())
		op.Node = NodeID(r.id())
		op.Ref = NodeID(r.id())
		op.Flags = r.u8()
	case OpSelectRoot, OpAddClass, OpRemoveClass, OpRemoveStyle:
		op.Node = NodeID(r.id())
		op.Name = r.str()
	case OpSetAttribute:
		op.Node = NodeID(r.id())
		op.Name = r.str()
		op.Value = r.str()
		op.Namespace = r.str()
	case OpRemoveAttribute:
		op.Node = NodeID(r.id())
		op.Name = r.str()
		op.Namespace = r.str()
	case OpSetStyle:
		op.Node = NodeID(r.id())
		op.Name = r.str()
		op.Value = r.str()
		op.Flags = r.u8()
	case OpSetProperty:
		op.Node = NodeID(r.id())
		op.Name = r.str()
		op.Prop = r.value()
	case OpListen:
		op.Node = NodeID(r.id())
		op.Listener = ListenerID(r.id())
		op.Name = r.str()
	case OpUnlisten:
		op.Listener = ListenerID(r.id())
	case OpDestroyNode:
		op.Node = NodeID(r.id())
	default:
		return Op{}, fmt.Errorf("%w: 0x%02x", ErrUnknownOp, code)
	}
	return op, r.err
}
