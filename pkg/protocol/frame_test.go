package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	f := &Frame{Type: FrameAck, Flags: FlagFinal, Payload: []byte{1, 2, 3}}
	data := f.Encode()
	if len(data) != FrameHeaderSize+3 {
		t.Fatalf("len = %d", len(data))
	}
	got, err := DecodeFrame(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != FrameAck || got.Flags != FlagFinal || !bytes.Equal(got.Payload, f.Payload) {
		t.Errorf("decoded %+v", got)
	}

	if _, err := DecodeFrame(data[:5]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short frame err = %v", err)
	}
	if _, err := DecodeFrame([]byte{0x09, 0, 0, 0}); !errors.Is(err, ErrInvalidFrameType) {
		t.Errorf("bad type err = %v", err)
	}
}

func TestReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, &Frame{Type: FrameEvent, Flags: FlagFinal, Payload: []byte("x")}); err != nil {
		t.Fatal(err)
	}
	f, err := ReadFrame(&buf)
	if err != nil || f.Type != FrameEvent || string(f.Payload) != "x" {
		t.Errorf("ReadFrame = %+v, %v", f, err)
	}
	if err := WriteFrame(&buf, &Frame{Payload: make([]byte, MaxPayloadSize+1)}); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("oversize err = %v", err)
	}
}

func TestSplitAndAssemble(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 2*MaxPayloadSize+10)
	frames := Split(FrameBatch, payload)
	if len(frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(frames))
	}
	for i, f := range frames {
		final := i == len(frames)-1
		if f.Flags.Has(FlagFinal) != final {
			t.Errorf("frame %d final = %v", i, f.Flags.Has(FlagFinal))
		}
	}

	var a Assembler
	var got []byte
	for i, f := range frames {
		typ, msg, done, err := a.Add(f)
		if err != nil {
			t.Fatal(err)
		}
		if done != (i == len(frames)-1) {
			t.Fatalf("frame %d done = %v", i, done)
		}
		if done {
			if typ != FrameBatch {
				t.Errorf("type = %v", typ)
			}
			got = msg
		}
	}
	if !bytes.Equal(got, payload) {
		t.Error("reassembled payload differs")
	}

	if single := Split(FrameAck, nil); len(single) != 1 || !single[0].Flags.Has(FlagFinal) {
		t.Error("empty payload should produce one final frame")
	}
}

func TestAssemblerErrors(t *testing.T) {
	var a Assembler
	_, _, _, _ = a.Add(&Frame{Type: FrameBatch, Payload: []byte{1}})
	if _, _, _, err := a.Add(&Frame{Type: FrameEvent, Flags: FlagFinal}); !errors.Is(err, ErrFrameInterleaved) {
		t.Errorf("interleaved err = %v", err)
	}

	small := Assembler{MaxBytes: 4}
	_, _, _, _ = small.Add(&Frame{Type: FrameBatch, Payload: []byte{1, 2, 3}})
	if _, _, _, err := small.Add(&Frame{Type: FrameBatch, Flags: FlagFinal, Payload: []byte{4, 5}}); !errors.Is(err, ErrMessageTooLarge) {
		t.Errorf("limit err = %v", err)
	}
}
