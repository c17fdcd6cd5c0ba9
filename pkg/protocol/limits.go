package protocol

// Limits bound what a decoder will allocate for one message.
type Limits struct {
	// MaxOps is the largest op count accepted in one batch.
	MaxOps int

	// MaxString is the longest string accepted, in bytes.
	MaxString int

	// MaxBatchBytes is the largest reassembled batch payload.
	MaxBatchBytes int
}

// Default and ceiling values for Limits.
const (
	DefaultMaxOps        = 100_000
	DefaultMaxString     = 1 << 20
	DefaultMaxBatchBytes = 4 << 20

	HardMaxBatchBytes = 16 << 20
)

// DefaultLimits returns the limits used by NewDecoder.
func DefaultLimits() Limits {
	return Limits{
		MaxOps:        DefaultMaxOps,
		MaxString:     DefaultMaxString,
		MaxBatchBytes: DefaultMaxBatchBytes,
	}
}

// normalized fills zero fields with defaults and caps MaxBatchBytes.
func (l Limits) normalized() Limits {
	def := DefaultLimits()
	if l.MaxOps <= 0 {
		l.MaxOps = def.MaxOps
	}
	if l.MaxString <= 0 {
		l.MaxString = def.MaxString
	}
	if l.MaxBatchBytes <= 0 {
		l.MaxBatchBytes = def.MaxBatchBytes
	}
	if l.MaxBatchBytes > HardMaxBatchBytes {
		l.MaxBatchBytes = HardMaxBatchBytes
	}
	return l
}
