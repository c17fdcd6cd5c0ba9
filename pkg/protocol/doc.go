// Package protocol is the binary wire format between a proxy renderer and
// the host that owns the real tree.
//
// Every message travels in a frame with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// Payloads larger than MaxPayloadSize are split over several frames of the
// same type; the last one carries FlagFinal and an Assembler joins them.
//
// Frame types:
//
//   - FrameBatch (0x01): engine → host, an ordered list of renderer ops
//   - FrameEvent (0x02): host → engine, a DOM event for a listener
//   - FrameAck (0x03): host → engine, result of applying one batch
//   - FrameError (0x04): either direction, protocol-level failure
//
// Integers are protobuf-style varints (ZigZag for signed values), strings
// are length-prefixed and fixed-width values are big-endian.
//
// Node identifiers are allocated by the engine side. NoNode (0) is the
// "no node" sentinel, used for example as the reference of an InsertBefore
// that appends.
//
//	b := &Batch{Seq: 1, Ops: []Op{
//	    {Code: OpCreateElement, Node: 1, Name: "div"},
//	    {Code: OpAppendChild, Parent: 2, Node: 1},
//	}}
//	data := EncodeBatch(b)
//	decoded, err := DecodeBatch(data)
package protocol
