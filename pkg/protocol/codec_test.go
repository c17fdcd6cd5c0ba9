package protocol

import (
	"errors"
	"io"
	"reflect"
	"testing"
)

func sampleBatch() *Batch {
	return &Batch{Seq: 7, Ops: []Op{
		{Code: OpSelectRoot, Node: 1, Name: "app-root"},
		{Code: OpCreateElement, Node: 2, Name: "svg", Namespace: "http://www.w3.org/2000/svg"},
		{Code: OpCreateText, Node: 3, Value: "héllo"},
		{Code: OpCreateComment, Node: 4, Value: "anchor"},
		{Code: OpAppendChild, Parent: 1, Node: 4},
		{Code: OpInsertBefore, Parent: 1, Node: 2, Ref: 4},
		{Code: OpInsertBefore, Parent: 1, Node: 3, Ref: NoNode, Flags: FlagViewRoot},
		{Code: OpSetAttribute, Node: 2, Name: "xlink:href", Value: "#i", Namespace: "http://www.w3.org/1999/xlink"},
		{Code: OpRemoveAttribute, Node: 2, Name: "title"},
		{Code: OpAddClass, Node: 2, Name: "a"},
		{Code: OpRemoveClass, Node: 2, Name: "b"},
		{Code: OpSetStyle, Node: 2, Name: "color", Value: "red", Flags: 1},
		{Code: OpRemoveStyle, Node: 2, Name: "width"},
		{Code: OpSetProperty, Node: 2, Name: "value", Prop: ValueOf("x")},
		{Code: OpSetProperty, Node: 2, Name: "checked", Prop: ValueOf(true)},
		{Code: OpSetProperty, Node: 2, Name: "tabIndex", Prop: ValueOf(-3)},
		{Code: OpSetProperty, Node: 2, Name: "ratio", Prop: ValueOf(0.5)},
		{Code: OpSetProperty, Node: 2, Name: "cleared", Prop: ValueOf(nil)},
		{Code: OpSetValue, Node: 3, Value: "bye"},
		{Code: OpListen, Node: 2, Listener: 9, Name: "click"},
		{Code: OpUnlisten, Listener: 9},
		{Code: OpRemoveChild, Parent: 1, Node: 2},
		{Code: OpDestroyNode, Node: 2},
	}}
}

func TestBatchEncodeDecode(t *testing.T) {
	in := sampleBatch()
	out, err := DecodeBatch(EncodeBatch(in))
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Errorf("batch mismatch\n got  %+v\n want %+v", out, in)
	}
}

func TestDecodeBatchRejectsMalformedInput(t *testing.T) {
	data := EncodeBatch(sampleBatch())

	for i := 1; i < len(data); i += 7 {
		if _, err := DecodeBatch(data[:i]); err == nil {
			t.Errorf("truncated at %d decoded without error", i)
		}
	}

	if _, err := DecodeBatch(append(append([]byte{}, data...), 0)); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("trailing err = %v", err)
	}

	bad := EncodeBatch(&Batch{Seq: 1, Ops: []Op{{Code: OpDestroyNode, Node: 1}}})
	bad[2] = 0x7f
	if _, err := DecodeBatch(bad); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("unknown op err = %v", err)
	}

	many := &Batch{Seq: 1}
	for i := 0; i < 5; i++ {
		many.Ops = append(many.Ops, Op{Code: OpDestroyNode, Node: NodeID(i + 1)})
	}
	d := NewDecoderWithLimits(EncodeBatch(many), Limits{MaxOps: 4})
	if _, err := DecodeBatchFrom(d); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("op limit err = %v", err)
	}
}

func TestValueOf(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{nil, nil},
		{"s", "s"},
		{true, true},
		{42, int64(42)},
		{uint8(7), int64(7)},
		{float32(0.5), 0.5},
		{[]int{1}, "[1]"},
	}
	for _, tt := range tests {
		if got := ValueOf(tt.in).Any(); got != tt.want {
			t.Errorf("ValueOf(%v).Any() = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestEventAckErrorMessages(t *testing.T) {
	ev := &Event{Listener: 3, Type: "click", Target: 12, Detail: ValueOf(int64(2))}
	gotEv, err := DecodeEvent(EncodeEvent(ev))
	if err != nil || *gotEv != *ev {
		t.Errorf("event = %+v, %v", gotEv, err)
	}

	ack := &Ack{Seq: 4, Index: 2, Code: "E063", Err: "unknown node 9"}
	gotAck, err := DecodeAck(EncodeAck(ack))
	if err != nil || *gotAck != *ack {
		t.Errorf("ack = %+v, %v", gotAck, err)
	}
	if gotAck.OK() {
		t.Error("failed ack reported OK")
	}
	if !(&Ack{Seq: 1, Index: -1}).OK() {
		t.Error("empty ack not OK")
	}

	em := NewFatalError(ErrSequence, "expected 3")
	gotEm, err := DecodeErrorMessage(EncodeErrorMessage(em))
	if err != nil || *gotEm != *em {
		t.Errorf("error message = %+v, %v", gotEm, err)
	}
	if em.Error() != "fatal: Sequence: expected 3" {
		t.Errorf("Error() = %q", em.Error())
	}

	if _, err := DecodeAck([]byte{1}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short ack err = %v", err)
	}
}
