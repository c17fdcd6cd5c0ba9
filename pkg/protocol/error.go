package protocol

// ErrorCode classifies a protocol-level failure.
type ErrorCode uint16

const (
	ErrUnknown      ErrorCode = 0x0000
	ErrInvalidFrame ErrorCode = 0x0001
	ErrInvalidBatch ErrorCode = 0x0002
	ErrSequence     ErrorCode = 0x0003
	ErrTooLarge     ErrorCode = 0x0004
	ErrServerError  ErrorCode = 0x0100
	ErrShuttingDown ErrorCode = 0x0101
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidFrame:
		return "InvalidFrame"
	case ErrInvalidBatch:
		return "InvalidBatch"
	case ErrSequence:
		return "Sequence"
	case ErrTooLarge:
		return "TooLarge"
	case ErrServerError:
		return "ServerError"
	case ErrShuttingDown:
		return "ShuttingDown"
	default:
		return "Unknown"
	}
}

// ErrorMessage is carried by FrameError.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
	Fatal   bool // the sender closes the connection after this frame
}

// NewError returns a non-fatal error message.
func NewError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message}
}

// NewFatalError returns a fatal error message.
func NewFatalError(code ErrorCode, message string) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: message, Fatal: true}
}

// Error implements error.
func (em *ErrorMessage) Error() string {
	if em.Fatal {
		return "fatal: " + em.Code.String() + ": " + em.Message
	}
	return em.Code.String() + ": " + em.Message
}

// EncodeErrorMessage encodes em.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoderWithCap(8 + len(em.Message))
	e.WriteUint16(uint16(em.Code))
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an error message.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUint16()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	fatal, err := d.ReadBool()
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: ErrorCode(code), Message: msg, Fatal: fatal}, nil
}
