package protocol

import (
	"errors"
	"io"
)

// Frame header layout.
const (
	FrameHeaderSize = 4
	MaxPayloadSize  = 65535
)

// FrameType identifies the message carried by a frame.
type FrameType uint8

const (
	FrameBatch FrameType = 0x01 // engine → host
	FrameEvent FrameType = 0x02 // host → engine
	FrameAck   FrameType = 0x03 // host → engine
	FrameError FrameType = 0x04 // either direction
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameBatch:
		return "Batch"
	case FrameEvent:
		return "Event"
	case FrameAck:
		return "Ack"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Valid reports whether ft is a known frame type.
func (ft FrameType) Valid() bool {
	return ft >= FrameBatch && ft <= FrameError
}

// FrameFlags modify frame handling.
type FrameFlags uint8

const (
	// FlagFinal marks the last frame of a message.
	FlagFinal FrameFlags = 0x01
)

// Has reports whether ff contains flag.
func (ff FrameFlags) Has(flag FrameFlags) bool { return ff&flag != 0 }

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
	ErrFrameInterleaved = errors.New("protocol: frame type changed mid-message")
	ErrMessageTooLarge  = errors.New("protocol: reassembled message too large")
)

// Frame is one header plus payload.
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// Encode returns the header and payload as one slice.
func (f *Frame) Encode() []byte {
	n := len(f.Payload)
	buf := make([]byte, FrameHeaderSize+n)
	buf[0] = byte(f.Type)
	buf[1] = byte(f.Flags)
	buf[2] = byte(n >> 8)
	buf[3] = byte(n)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf
}

// DecodeFrame decodes one complete frame. Extra bytes after the payload
// are rejected.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}
	ft := FrameType(data[0])
	if !ft.Valid() {
		return nil, ErrInvalidFrameType
	}
	n := int(data[2])<<8 | int(data[3])
	switch {
	case len(data) < FrameHeaderSize+n:
		return nil, io.ErrUnexpectedEOF
	case len(data) > FrameHeaderSize+n:
		return nil, ErrTrailingBytes
	}
	payload := make([]byte, n)
	copy(payload, data[FrameHeaderSize:])
	return &Frame{Type: ft, Flags: FrameFlags(data[1]), Payload: payload}, nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	ft := FrameType(header[0])
	if !ft.Valid() {
		return nil, ErrInvalidFrameType
	}
	n := int(header[2])<<8 | int(header[3])
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return &Frame{Type: ft, Flags: FrameFlags(header[1]), Payload: payload}, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}

// Split cuts a message payload into frames of at most MaxPayloadSize
// bytes. The last frame carries FlagFinal; an empty payload yields one
// empty final frame.
func Split(ft FrameType, payload []byte) []*Frame {
	var frames []*Frame
	for len(payload) > MaxPayloadSize {
		frames = append(frames, &Frame{Type: ft, Payload: payload[:MaxPayloadSize]})
		payload = payload[MaxPayloadSize:]
	}
	return append(frames, &Frame{Type: ft, Flags: FlagFinal, Payload: payload})
}

// Assembler joins split frames back into message payloads.
type Assembler struct {
	// MaxBytes bounds a reassembled payload. Zero means
	// DefaultMaxBatchBytes.
	MaxBytes int

	typ     FrameType
	pending []byte
	active  bool
}

// Add consumes f. When f completes a message it returns the message type,
// the payload and true.
func (a *Assembler) Add(f *Frame) (FrameType, []byte, bool, error) {
	if a.active && f.Type != a.typ {
		a.Reset()
		return 0, nil, false, ErrFrameInterleaved
	}
	max := a.MaxBytes
	if max <= 0 {
		max = DefaultMaxBatchBytes
	}
	if len(a.pending)+len(f.Payload) > max {
		a.Reset()
		return 0, nil, false, ErrMessageTooLarge
	}

	if f.Flags.Has(FlagFinal) && !a.active {
		return f.Type, f.Payload, true, nil
	}
	a.typ = f.Type
	a.active = true
	a.pending = append(a.pending, f.Payload...)
	if !f.Flags.Has(FlagFinal) {
		return 0, nil, false, nil
	}
	out := a.pending
	a.pending = nil
	a.active = false
	return a.typ, out, true, nil
}

// Reset drops any partial message.
func (a *Assembler) Reset() {
	a.pending = nil
	a.active = false
}
