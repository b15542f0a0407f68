package tsio

import (
	"bytes"
	"io"

	"github.com/ssargent/tokenstream/pkg/tsnum"
	"github.com/ssargent/tokenstream/pkg/tsvarint"
)

// NoToken is the reserved sentinel denoting "no token."
const NoToken = ^uint64(0)

// ScopeGuard restores a prior Writer or Reader setting when Close is called.
// It is the explicit stand-in for the source library's RAII scope guards:
// callers are expected to `defer guard.Close()` immediately after opening
// one so the restore happens on every exit path, including panics.
type ScopeGuard struct {
	close func()
}

// Close restores the state this guard captured. Calling it more than once is
// a no-op.
func (g *ScopeGuard) Close() {
	if g.close == nil {
		return
	}
	f := g.close
	g.close = nil
	f()
}

type containerState struct {
	active   bool
	token    uint64
	expected int
	emitted  int
}

// Writer is the streaming encoder: it frames caller-supplied field values
// into chunks against a borrowed io.Writer sink (or an owned buffer for
// MemoryWriter). It is not safe for concurrent use by multiple goroutines,
// matching the core's single-threaded, synchronous concurrency model.
type Writer struct {
	sink io.Writer
	buf  *bytes.Buffer

	trim    bool
	bad     bool
	lastErr error
	cont    containerState
}

// NewWriter wraps an external byte sink. The sink is borrowed, not owned:
// Writer never closes it.
func NewWriter(sink io.Writer) *Writer {
	return &Writer{sink: sink, trim: true}
}

// NewMemoryWriter returns a Writer backed by an internal growable buffer,
// for building a sub-stream's bytes before framing them into a parent chunk,
// or for standalone in-memory encoding.
func NewMemoryWriter() *Writer {
	buf := &bytes.Buffer{}
	return &Writer{sink: buf, buf: buf, trim: true}
}

// Bytes returns the accumulated buffer of a MemoryWriter. It returns nil for
// a Writer constructed over an external sink.
func (w *Writer) Bytes() []byte {
	if w.buf == nil {
		return nil
	}
	return w.buf.Bytes()
}

// BadStream reports whether the error latch has tripped. Once true, every
// further Put* call is a no-op.
func (w *Writer) BadStream() bool { return w.bad }

// TrimDefaults reports the writer's current default-trimming policy.
func (w *Writer) TrimDefaults() bool { return w.trim }

// WithTrimDefaults temporarily overrides the trim-defaults policy. The
// caller must defer guard.Close() to restore the prior value.
func (w *Writer) WithTrimDefaults(v bool) ScopeGuard {
	prev := w.trim
	w.trim = v
	return ScopeGuard{close: func() { w.trim = prev }}
}

// LastError returns the cause of the first failure that tripped the error
// latch, or nil if the stream is still good.
func (w *Writer) LastError() error { return w.lastErr }

func (w *Writer) fail(err error) {
	w.bad = true
	if w.lastErr == nil {
		w.lastErr = err
	}
}

func (w *Writer) writeRaw(b []byte) {
	if w.bad || len(b) == 0 {
		return
	}
	if _, err := w.sink.Write(b); err != nil {
		w.fail(&StreamError{Op: "write", Err: ErrIO})
	}
}

// writeChunk emits a full <token><length><payload> chunk unconditionally.
func (w *Writer) writeChunk(token uint64, payload []byte) {
	if w.bad {
		return
	}
	var hdr []byte
	hdr = tsvarint.Encode(hdr, token)
	hdr = tsvarint.Encode(hdr, uint64(len(payload)))
	w.writeRaw(hdr)
	w.writeRaw(payload)
}

// writeLenPayload emits <length><payload> only, used for container elements
// that share a token already written in the list prefix.
func (w *Writer) writeLenPayload(payload []byte) {
	if w.bad {
		return
	}
	var hdr []byte
	hdr = tsvarint.Encode(hdr, uint64(len(payload)))
	w.writeRaw(hdr)
	w.writeRaw(payload)
}

// put is the shared primitive behind every scalar Put* method: it applies
// container-token discipline, default trimming, and chunk framing.
func (w *Writer) put(token uint64, payload []byte, isDefault bool) {
	if w.bad {
		return
	}
	if w.cont.active {
		if token != w.cont.token {
			w.fail(&StreamError{Op: "put", Err: ErrContainerTokenMismatch})
			return
		}
		w.writeLenPayload(payload)
		w.cont.emitted++
		if w.cont.emitted >= w.cont.expected {
			w.cont.active = false
		}
		return
	}
	if w.trim && isDefault {
		return
	}
	w.writeChunk(token, payload)
}

// PutUint8 through PutFloat64 encode a scalar field under token, omitting it
// entirely when trim-defaults is active and v equals def.
func (w *Writer) PutUint8(token uint64, v, def uint8) {
	w.put(token, tsnum.EncodeUint(uint64(v), 1), v == def)
}

func (w *Writer) PutUint16(token uint64, v, def uint16) {
	w.put(token, tsnum.EncodeUint(uint64(v), 2), v == def)
}

func (w *Writer) PutUint32(token uint64, v, def uint32) {
	w.put(token, tsnum.EncodeUint(uint64(v), 4), v == def)
}

func (w *Writer) PutUint64(token uint64, v, def uint64) {
	w.put(token, tsnum.EncodeUint(v, 8), v == def)
}

func (w *Writer) PutInt8(token uint64, v, def int8) {
	w.put(token, tsnum.EncodeInt(int64(v), 1), v == def)
}

func (w *Writer) PutInt16(token uint64, v, def int16) {
	w.put(token, tsnum.EncodeInt(int64(v), 2), v == def)
}

func (w *Writer) PutInt32(token uint64, v, def int32) {
	w.put(token, tsnum.EncodeInt(int64(v), 4), v == def)
}

func (w *Writer) PutInt64(token uint64, v, def int64) {
	w.put(token, tsnum.EncodeInt(v, 8), v == def)
}

func (w *Writer) PutFloat32(token uint64, v, def float32) {
	w.put(token, tsnum.EncodeFloat32(v), v == def)
}

func (w *Writer) PutFloat64(token uint64, v, def float64) {
	w.put(token, tsnum.EncodeFloat64(v), v == def)
}

func (w *Writer) PutBool(token uint64, v, def bool) {
	w.put(token, tsnum.EncodeBool(v), v == def)
}

func (w *Writer) PutString(token uint64, v, def string) {
	var payload []byte
	if v != "" {
		payload = []byte(v)
	}
	w.put(token, payload, v == def)
}

// PutBytes writes a binary block. nil and empty are equivalent and both
// compare equal to a nil/empty def.
func (w *Writer) PutBytes(token uint64, v, def []byte) {
	w.put(token, v, bytes.Equal(v, def))
}

// PutWideString transcodes UTF-16 code units to UTF-8 before writing, so a
// caller holding wide-string data from an external source can round-trip it
// without depending on process locale (see the design notes on eliminating
// locale-dependent transcoding).
func (w *Writer) PutWideString(token uint64, v, def []uint16) {
	isDefault := len(v) == len(def)
	if isDefault {
		for i := range v {
			if v[i] != def[i] {
				isDefault = false
				break
			}
		}
	}
	var payload []byte
	if len(v) > 0 {
		payload = utf16ToUTF8(v)
	}
	w.put(token, payload, isDefault)
}

// PutToken writes a bare token with a zero-length payload, used by callers
// that want a marker chunk with no data (e.g. a "present" flag).
func (w *Writer) PutToken(token uint64) {
	w.put(token, nil, false)
}

// OpenSubStream begins a nested token stream addressed to a scratch
// MemoryWriter; PutRecord is the common case built on top of this, but
// callers building custom nested encodings can use it directly.
func OpenSubStream(w *Writer) *Writer {
	sub := NewMemoryWriter()
	sub.trim = w.trim
	return sub
}

// PutRecord serializes a nested record into a scratch sub-writer via encode,
// then frames the result as a single chunk under token. If the sub-stream
// ends up empty, trim-defaults is active, and keepStub is false, nothing is
// emitted at all; keepStub forces the two-byte token+zero-length header to
// be kept as a positional stub regardless of trim. Inside an active
// container scope an empty record always keeps its zero-length element, so
// the list's element count stays correct.
func (w *Writer) PutRecord(token uint64, keepStub bool, encode func(sub *Writer)) {
	if w.bad {
		return
	}
	sub := OpenSubStream(w)
	encode(sub)
	if sub.bad {
		w.fail(sub.LastError())
		return
	}
	payload := sub.Bytes()
	if w.cont.active {
		w.put(token, payload, false)
		return
	}
	if len(payload) == 0 && w.trim && !keepStub {
		return
	}
	w.writeChunk(token, payload)
}

// PutContainerElementCount writes the 0xF8 list prefix for n (>= 2) upcoming
// elements sharing token, and installs the container scope that subsequent
// Put* calls (or PutContainer) must honor. Callers with fewer than two items
// should emit directly instead; per the format's own invariant, 0- and
// 1-element lists must never use the prefix.
func (w *Writer) PutContainerElementCount(token uint64, n int) {
	if w.bad || n < 2 {
		return
	}
	hdr := []byte{tsvarint.ListEscape}
	hdr = tsvarint.Encode(hdr, uint64(n))
	hdr = tsvarint.Encode(hdr, token)
	w.writeRaw(hdr)
	w.cont = containerState{active: true, token: token, expected: n}
}

// PutContainer writes items as a homogeneous list field under token, using
// put to encode each item (typically a closure delegating to one of the
// scalar Put* methods, PutRecord, or a pair encoder). Lists of 0 or 1
// elements degenerate to an absent chunk or a single plain chunk rather than
// using the list prefix.
func PutContainer[T any](w *Writer, token uint64, items []T, put func(w *Writer, token uint64, item T)) {
	n := len(items)
	if n == 0 || w.bad {
		return
	}
	if n == 1 {
		put(w, token, items[0])
		return
	}
	w.PutContainerElementCount(token, n)
	for _, item := range items {
		put(w, token, item)
	}
}

// PutPair writes a two-field nested record pairing a and b under token,
// supplementing the scalar/record/container vocabulary with the source
// library's std::pair support.
func PutPair[A, B any](w *Writer, token uint64, a A, b B, putA func(*Writer, uint64, A), putB func(*Writer, uint64, B)) {
	w.PutRecord(token, false, func(sub *Writer) {
		putA(sub, 0, a)
		putB(sub, 1, b)
	})
}
