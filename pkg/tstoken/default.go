package tstoken

import "github.com/ssargent/tokenstream/pkg/tsio"

// ValueWithDefault pairs a field's current value with its declared default,
// mirroring the call-site ergonomics of the source's
// `writer << TokenStream::ValueWithDefault(member, def)`. Go's Writer
// methods already take (v, def) as two arguments rather than one wrapped
// value, so this type exists purely so a field accessor can be written as a
// single expression, matching how MAP_TOKEN(tok, mem, def) reads.
type ValueWithDefault[T comparable] struct {
	Value   T
	Default T
}

// WithDefault builds a ValueWithDefault pair.
func WithDefault[T comparable](value, def T) ValueWithDefault[T] {
	return ValueWithDefault[T]{Value: value, Default: def}
}

// IsDefault reports whether Value equals Default.
func (v ValueWithDefault[T]) IsDefault() bool { return v.Value == v.Default }

// PutUint8 and its siblings below are thin single-expression wrappers around
// the matching tsio.Writer method, for field accessors declared with
// WithDefault instead of spelling out (v, def) separately.
func PutUint8(w *tsio.Writer, token uint64, v ValueWithDefault[uint8]) {
	w.PutUint8(token, v.Value, v.Default)
}

func PutUint16(w *tsio.Writer, token uint64, v ValueWithDefault[uint16]) {
	w.PutUint16(token, v.Value, v.Default)
}

func PutUint32(w *tsio.Writer, token uint64, v ValueWithDefault[uint32]) {
	w.PutUint32(token, v.Value, v.Default)
}

func PutUint64(w *tsio.Writer, token uint64, v ValueWithDefault[uint64]) {
	w.PutUint64(token, v.Value, v.Default)
}

func PutInt8(w *tsio.Writer, token uint64, v ValueWithDefault[int8]) {
	w.PutInt8(token, v.Value, v.Default)
}

func PutInt16(w *tsio.Writer, token uint64, v ValueWithDefault[int16]) {
	w.PutInt16(token, v.Value, v.Default)
}

func PutInt32(w *tsio.Writer, token uint64, v ValueWithDefault[int32]) {
	w.PutInt32(token, v.Value, v.Default)
}

func PutInt64(w *tsio.Writer, token uint64, v ValueWithDefault[int64]) {
	w.PutInt64(token, v.Value, v.Default)
}

func PutFloat32(w *tsio.Writer, token uint64, v ValueWithDefault[float32]) {
	w.PutFloat32(token, v.Value, v.Default)
}

func PutFloat64(w *tsio.Writer, token uint64, v ValueWithDefault[float64]) {
	w.PutFloat64(token, v.Value, v.Default)
}

func PutBool(w *tsio.Writer, token uint64, v ValueWithDefault[bool]) {
	w.PutBool(token, v.Value, v.Default)
}

func PutString(w *tsio.Writer, token uint64, v ValueWithDefault[string]) {
	w.PutString(token, v.Value, v.Default)
}
