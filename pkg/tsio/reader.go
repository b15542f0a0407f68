package tsio

import (
	"bytes"
	"errors"
	"io"

	"github.com/ssargent/tokenstream/pkg/tsnum"
	"github.com/ssargent/tokenstream/pkg/tsvarint"
)

// subStreamContext is the state a sub-stream scope saves and restores: the
// declared end of the current scope plus whatever container-iteration
// bookkeeping is in flight within it. A fresh Reader starts with one implicit
// context whose end is the length of the whole source.
type subStreamContext struct {
	end                 int
	containerToken      uint64
	containerCount      int
	containerIndex      int
	containerElementEnd int
}

// Reader is the streaming decoder: it walks a borrowed byte source decoding
// token/length/payload chunks, tracking a one-token look-ahead and a stack of
// sub-stream contexts (collapsed here to a single active context plus the
// scope guard's saved copy, since contexts nest LIFO and are never inspected
// below the top). Not safe for concurrent use, matching the core's
// single-threaded model.
type Reader struct {
	source *bytes.Reader
	size   int64

	remainingInElement        int
	lastToken                 uint64
	tokenPushed               bool
	nextContainerElementCount int
	bad                       bool
	lastErr                   error

	ctx subStreamContext
}

// NewReader wraps data for decoding. The Reader does not copy data; callers
// must not mutate it while decoding is in progress.
func NewReader(data []byte) *Reader {
	r := bytes.NewReader(data)
	return &Reader{
		source: r,
		size:   int64(len(data)),
		ctx:    subStreamContext{end: len(data)},
	}
}

// BadStream reports whether the error latch has tripped. Once true, every
// further Get* call returns the destination type's zero value.
func (r *Reader) BadStream() bool { return r.bad }

// LastError returns the cause of the first failure that tripped the error
// latch, or nil if the stream is still good.
func (r *Reader) LastError() error { return r.lastErr }

func (r *Reader) fail(err error) {
	r.bad = true
	if r.lastErr == nil {
		r.lastErr = err
	}
}

// offset returns the absolute byte position into the whole source, derived
// from the embedded bytes.Reader's own cursor rather than tracked separately.
func (r *Reader) offset() int {
	return int(r.size - int64(r.source.Len()))
}

// EOS reports whether the current scope is exhausted: the error latch is
// tripped, or the cursor has reached the scope's declared end with no token
// pushed back for the caller to consume first.
func (r *Reader) EOS() bool {
	return r.bad || (r.offset() >= r.ctx.end && !r.tokenPushed)
}

// PastEOS reports whether consuming n more bytes would run past (not just up
// to) the scope's declared end.
func (r *Reader) PastEOS(n int) bool {
	return r.ctx.end != 0 && r.offset()+n > r.ctx.end
}

// VerifyEOS reports whether the cursor sits at exactly the scope's declared
// end. Tests use it to assert a decoder consumed precisely its chunk, and the
// CLI inspector uses it to check that a payload parses cleanly as a stream.
func (r *Reader) VerifyEOS() bool {
	return r.ctx.end != 0 && r.offset() == r.ctx.end
}

// LastToken returns the token most recently returned by GetToken.
func (r *Reader) LastToken() uint64 { return r.lastToken }

// RemainingInElement returns the number of payload bytes left in the
// element just identified by GetToken, before any Get*/Skip call consumes
// them. Exposed for tooling that needs to report a chunk's declared length
// without committing to decoding it as any particular scalar type (e.g. a
// CLI chunk inspector).
func (r *Reader) RemainingInElement() int { return r.remainingInElement }

// PushLastToken arranges for the next GetToken call to return LastToken()
// again instead of decoding a new one: a one-token look-ahead used by
// GetContainer to put back the token that ended the run.
func (r *Reader) PushLastToken() { r.tokenPushed = true }

// NextContainerElementCount reports the element count carried by the most
// recently decoded list prefix, or 0 if the last token was not the first
// element of a list.
func (r *Reader) NextContainerElementCount() int { return r.nextContainerElementCount }

func (r *Reader) decodeToken() (uint64, error) {
	v, isList, err := tsvarint.Decode(r.source, true)
	if err != nil {
		return 0, err
	}
	if isList {
		count, err := r.decodeLength()
		if err != nil {
			return 0, err
		}
		r.nextContainerElementCount = count
		return r.decodeToken()
	}
	return v, nil
}

// decodeErrKind classifies an error surfaced by tsvarint.Decode: a malformed
// prefix byte is distinct from simply running out of bytes mid-decode.
func decodeErrKind(err error) error {
	if errors.Is(err, tsvarint.ErrMalformed) {
		return ErrMalformedVarint
	}
	return ErrTruncated
}

func (r *Reader) decodeLength() (int, error) {
	v, isList, err := tsvarint.Decode(r.source, false)
	if err != nil {
		return 0, err
	}
	if isList {
		return 0, tsvarint.ErrMalformed
	}
	return int(v), nil
}

// skipBytes advances the cursor n bytes without returning them, clearing any
// pushed-back token in the process (mirroring the source's SkipBytes, which
// always invalidates look-ahead state since the cursor is about to move).
func (r *Reader) skipBytes(n int) {
	r.tokenPushed = false
	r.remainingInElement = 0
	if r.bad || n <= 0 {
		return
	}
	if _, err := r.source.Seek(int64(n), io.SeekCurrent); err != nil {
		r.fail(&StreamError{Op: "skip", Err: ErrIO})
	}
}

// Skip discards the payload bytes associated with the token just retrieved,
// for callers that recognize the token but choose not to decode it.
func (r *Reader) Skip() {
	r.skipBytes(r.remainingInElement)
}

// GetToken decodes and returns the next token, implementing the reader state
// machine of §4.3.2: look-ahead consumption, auto-skip of an unread payload,
// container-element token synthesis, and list-prefix detection.
func (r *Reader) GetToken() uint64 {
	if r.bad {
		return NoToken
	}
	if r.tokenPushed {
		r.tokenPushed = false
		return r.lastToken
	}
	if r.remainingInElement > 0 {
		r.skipBytes(r.remainingInElement)
		if r.EOS() {
			return NoToken
		}
	}

	// A caller that stopped consuming a container early (e.g. read only the
	// first element) can leave the cursor short of containerElementEnd; if a
	// fresh top-level decode ever lands past that mark without having gone
	// through the synthesized-token branch below, the bookkeeping is stale
	// and must be cleared rather than silently misapplied to what follows.
	if r.ctx.containerElementEnd != 0 && r.offset() > r.ctx.containerElementEnd {
		r.ctx.containerToken = NoToken
		r.ctx.containerCount = 0
		r.ctx.containerIndex = 0
		r.ctx.containerElementEnd = 0
	}

	r.nextContainerElementCount = 0
	updateContainerElementEnd := false

	if r.ctx.containerElementEnd != 0 && r.ctx.containerElementEnd == r.offset() {
		if r.PastEOS(1) {
			r.fail(&StreamError{Op: "token", Err: ErrTruncated})
			return NoToken
		}
		r.lastToken = r.ctx.containerToken
		r.ctx.containerIndex++
		if r.ctx.containerIndex == r.ctx.containerCount {
			r.ctx.containerCount = 0
			r.ctx.containerIndex = 0
			r.ctx.containerElementEnd = 0
			r.ctx.containerToken = NoToken
		} else {
			updateContainerElementEnd = true
		}
	} else {
		if r.PastEOS(2) {
			r.fail(&StreamError{Op: "token", Err: ErrTruncated})
			return NoToken
		}
		tok, err := r.decodeToken()
		if err != nil {
			r.fail(&StreamError{Op: "token", Err: decodeErrKind(err)})
			return NoToken
		}
		r.lastToken = tok
		if r.nextContainerElementCount > 1 {
			r.ctx.containerToken = r.lastToken
			r.ctx.containerCount = r.nextContainerElementCount
			r.ctx.containerIndex = 1
			updateContainerElementEnd = true
		}
	}

	if r.bad {
		r.lastToken = NoToken
		return NoToken
	}

	length, err := r.decodeLength()
	if err != nil {
		r.fail(&StreamError{Op: "length", Err: decodeErrKind(err)})
		return NoToken
	}
	r.remainingInElement = length

	if updateContainerElementEnd {
		r.ctx.containerElementEnd = r.offset() + r.remainingInElement
	}

	if r.bad {
		return NoToken
	}
	if r.PastEOS(r.remainingInElement) {
		r.fail(&StreamError{Op: "length", Err: ErrPayloadTooLarge})
		return NoToken
	}

	return r.lastToken
}

// fetch consumes exactly remainingInElement bytes and returns them, or nil
// for a zero-length payload. It never returns more than width bytes; a
// payload wider than the destination trips the error latch.
func (r *Reader) fetch(width int) []byte {
	if r.bad {
		return nil
	}
	if r.remainingInElement > width {
		r.fail(&StreamError{Op: "fetch", Err: ErrPayloadTooLarge})
		return nil
	}
	if r.remainingInElement == 0 {
		return nil
	}
	buf := make([]byte, r.remainingInElement)
	if _, err := io.ReadFull(r.source, buf); err != nil {
		r.fail(&StreamError{Op: "fetch", Err: ErrTruncated})
		return nil
	}
	r.remainingInElement = 0
	return buf
}

// GetUint8 through GetFloat64 decode the scalar just identified by GetToken.
// A zero-length payload yields the type's zero value, per §4.2.
func (r *Reader) GetUint8() uint8   { return uint8(tsnum.DecodeUint(r.fetch(1), 1)) }
func (r *Reader) GetUint16() uint16 { return uint16(tsnum.DecodeUint(r.fetch(2), 2)) }
func (r *Reader) GetUint32() uint32 { return uint32(tsnum.DecodeUint(r.fetch(4), 4)) }
func (r *Reader) GetUint64() uint64 { return tsnum.DecodeUint(r.fetch(8), 8) }

func (r *Reader) GetInt8() int8   { return int8(tsnum.DecodeInt(r.fetch(1), 1)) }
func (r *Reader) GetInt16() int16 { return int16(tsnum.DecodeInt(r.fetch(2), 2)) }
func (r *Reader) GetInt32() int32 { return int32(tsnum.DecodeInt(r.fetch(4), 4)) }
func (r *Reader) GetInt64() int64 { return tsnum.DecodeInt(r.fetch(8), 8) }

func (r *Reader) GetFloat32() float32 { return tsnum.DecodeFloat32(r.fetch(4)) }
func (r *Reader) GetFloat64() float64 { return tsnum.DecodeFloat64(r.fetch(8)) }

func (r *Reader) GetBool() bool { return tsnum.DecodeBool(r.fetch(1)) }

// GetString decodes a UTF-8 string payload.
func (r *Reader) GetString() string {
	payload := r.fetch(r.remainingInElement)
	return string(payload)
}

// GetBytes decodes a binary block payload, returning nil for an empty one.
func (r *Reader) GetBytes() []byte {
	return r.fetch(r.remainingInElement)
}

// GetWideString decodes a UTF-8 payload and transcodes it to UTF-16 code
// units, the read-side counterpart of Writer.PutWideString.
func (r *Reader) GetWideString() []uint16 {
	payload := r.GetBytes()
	if len(payload) == 0 {
		return nil
	}
	return utf8ToUTF16(payload)
}

// OpenSubStream narrows the reader to the payload of the element just
// identified by GetToken, saving the enclosing context so Close restores it.
// Close also skips any bytes the inner decoder left unread, guaranteeing the
// outer cursor lands exactly at the declared sub-stream end regardless of
// what the inner decoder actually consumed.
func (r *Reader) OpenSubStream() ScopeGuard {
	prev := r.ctx
	r.ctx = subStreamContext{end: r.offset() + r.remainingInElement}
	r.remainingInElement = 0
	return ScopeGuard{close: func() {
		r.skipBytes(r.ctx.end - r.offset())
		r.ctx = prev
	}}
}

// GetContainer decodes a homogeneous list field: it keeps reading elements
// with get, appending each to the result, until a token other than the one
// that introduced the list appears (which is pushed back for the caller) or
// the stream ends. If the list carried a prefix count, the result is
// preallocated to it.
func GetContainer[T any](r *Reader, get func(r *Reader) T) []T {
	if r.bad {
		return nil
	}
	containerToken := r.lastToken
	var out []T
	if n := r.nextContainerElementCount; n > 0 {
		out = make([]T, 0, n)
	}
	for {
		out = append(out, get(r))
		if r.EOS() {
			return out
		}
		if r.GetToken() != containerToken {
			r.PushLastToken()
			return out
		}
	}
}

// GetPair decodes a two-field nested record written by PutPair, dispatching
// token 0 to getA and token 1 to getB.
func GetPair[A, B any](r *Reader, getA func(*Reader) A, getB func(*Reader) B) (A, B) {
	var a A
	var b B
	guard := r.OpenSubStream()
	defer guard.Close()
	for !r.EOS() {
		switch r.GetToken() {
		case 0:
			a = getA(r)
		case 1:
			b = getB(r)
		default:
			r.Skip()
		}
	}
	return a, b
}
