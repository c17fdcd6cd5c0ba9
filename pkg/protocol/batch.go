package protocol

// Batch is an ordered run of ops. Seq increases by one per batch on a
// connection, starting at 1.
type Batch struct {
	Seq uint64
	Ops []Op
}

// EncodeBatch encodes b.
func EncodeBatch(b *Batch) []byte {
	e := NewEncoderWithCap(16 + 12*len(b.Ops))
	EncodeBatchTo(e, b)
	return e.Bytes()
}

// EncodeBatchTo encodes b using e.
func EncodeBatchTo(e *Encoder, b *Batch) {
	e.WriteUvarint(b.Seq)
	e.WriteUvarint(uint64(len(b.Ops)))
	for i := range b.Ops {
		e.writeOp(&b.Ops[i])
	}
}

// DecodeBatch decodes a batch with DefaultLimits.
func DecodeBatch(data []byte) (*Batch, error) {
	return DecodeBatchFrom(NewDecoder(data))
}

// DecodeBatchFrom decodes a batch from d. The whole input must be
// consumed.
func DecodeBatchFrom(d *Decoder) (*Batch, error) {
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	n, err := d.ReadCount(d.limits.MaxOps)
	if err != nil {
		return nil, err
	}
	b := &Batch{Seq: seq, Ops: make([]Op, 0, n)}
	for i := 0; i < n; i++ {
		op, err := d.readOp()
		if err != nil {
			return nil, err
		}
		b.Ops = append(b.Ops, op)
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return b, nil
}
