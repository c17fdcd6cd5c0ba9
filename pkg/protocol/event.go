package protocol

// Event is a DOM event delivered to one listener registration.
type Event struct {
	Listener ListenerID
	Type     string
	Target   NodeID
	Detail   Value
}

// EncodeEvent encodes ev.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoderWithCap(16 + len(ev.Type))
	e.WriteUvarint(uint64(ev.Listener))
	e.WriteString(ev.Type)
	e.WriteUvarint(uint64(ev.Target))
	e.writeValue(ev.Detail)
	return e.Bytes()
}

// DecodeEvent decodes an event.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	l, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	typ, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	target, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	detail, err := d.readValue()
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &Event{Listener: ListenerID(l), Type: typ, Target: NodeID(target), Detail: detail}, nil
}
