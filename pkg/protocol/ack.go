package protocol

// Ack reports the result of applying batch Seq. Code and Err are empty on
// success; otherwise Code is the host error code (E0xx) and Index the
// position of the failing op.
type Ack struct {
	Seq   uint64
	Index int
	Code  string
	Err   string
}

// OK reports whether the batch applied cleanly.
func (a *Ack) OK() bool { return a.Code == "" && a.Err == "" }

// EncodeAck encodes a.
func EncodeAck(a *Ack) []byte {
	e := NewEncoderWithCap(8 + len(a.Code) + len(a.Err))
	e.WriteUvarint(a.Seq)
	e.WriteSvarint(int64(a.Index))
	e.WriteString(a.Code)
	e.WriteString(a.Err)
	return e.Bytes()
}

// DecodeAck decodes an ack.
func DecodeAck(data []byte) (*Ack, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	idx, err := d.ReadSvarint()
	if err != nil {
		return nil, err
	}
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &Ack{Seq: seq, Index: int(idx), Code: code, Err: msg}, nil
}
