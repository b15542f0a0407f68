// Package tstoken is the schema-binding layer on top of pkg/tsio: it lets a
// Go struct declare, once, which token maps to which field, then generates
// its own Write/Read methods from that declaration instead of hand-rolling a
// token switch for every record type.
//
// The source library gets this from the MAP_TOKEN/TOKEN_MAP preprocessor
// macros, which expand into a static std::map<uint64_t, MemberAccessor> per
// type. Go has neither templates nor reflection-free generic maps, so the
// same shape is built by hand with a generic TokenMap[T] holding typed
// closures instead of type-erased function pointers plus reinterpret_cast.
package tstoken

import (
	"fmt"

	"github.com/ssargent/tokenstream/pkg/tsio"
)

// Accessor pairs the read and write sides of a single field of T. Put
// receives the token so the same closure can be reused by FlattenBase under
// a different containing type without rebinding it.
type Accessor[T any] struct {
	Get func(r *tsio.Reader, dest *T)
	Put func(w *tsio.Writer, token uint64, src *T)
}

// Entry binds one token to the Accessor that reads and writes it.
type Entry[T any] struct {
	Token uint64
	Accessor[T]
}

// TokenMap is the ordered, token-unique dispatch table for T, the Go
// counterpart of TokenStream::TokenMap. Unlike the source's std::map, order
// is preserved and matters: Write visits entries in declaration order, which
// is also the order fields land on the wire.
type TokenMap[T any] struct {
	entries []Entry[T]
	index   map[uint64]int
}

// NewTokenMap builds a token map from entries, in source's declaration
// order. It panics on a duplicate token, the Go equivalent of the source's
// TS_ASSERT(find(item.first) == end(), "Duplicate token found ...") — a
// schema authoring mistake, not a runtime condition a caller can recover
// from, so it is caught at construction rather than threaded through every
// Write/Read call.
func NewTokenMap[T any](entries ...Entry[T]) *TokenMap[T] {
	m := &TokenMap[T]{
		entries: entries,
		index:   make(map[uint64]int, len(entries)),
	}
	for i, e := range entries {
		if _, dup := m.index[e.Token]; dup {
			panic(fmt.Sprintf("tstoken: duplicate token %#x in token map", e.Token))
		}
		m.index[e.Token] = i
	}
	return m
}

// Write serializes every field of src through its bound Put closure, in
// declaration order. It does not open a sub-stream itself: callers writing a
// nested record do that via Writer.PutRecord (see PutRecord/NestedBase
// below), and a top-level record is written directly against the stream's
// own Writer.
func (m *TokenMap[T]) Write(w *tsio.Writer, src *T) {
	for _, e := range m.entries {
		e.Put(w, e.Token, src)
	}
}

// Read dispatches every token encountered until EOS, handing recognized ones
// to their bound Get closure and skipping the rest — the forward-compatible
// tolerance of an unknown field required by the format.
func (m *TokenMap[T]) Read(r *tsio.Reader, dest *T) {
	for !r.EOS() {
		tok := r.GetToken()
		if i, ok := m.index[tok]; ok {
			m.entries[i].Get(r, dest)
			continue
		}
		r.Skip()
	}
}

// PutRecord frames src as a nested record under token, mirroring
// Writer::PutRecord in the expanded writer package but resolved through a
// token map instead of a hand-written encode closure. keepStub forces the
// positional stub to be kept even when the record serializes to nothing.
func PutRecord[T any](w *tsio.Writer, token uint64, keepStub bool, m *TokenMap[T], src *T) {
	w.PutRecord(token, keepStub, func(sub *tsio.Writer) {
		m.Write(sub, src)
	})
}

// GetRecord opens the sub-stream for the element just identified by
// GetToken, reads it through m, and closes the sub-stream — restoring the
// enclosing scope regardless of whether m consumed every byte.
func GetRecord[T any](r *tsio.Reader, m *TokenMap[T], dest *T) {
	guard := r.OpenSubStream()
	defer guard.Close()
	m.Read(r, dest)
}

// NestedBase returns an Entry that serializes a base-class field as its own
// nested record under token, the Go counterpart of MAP_BASE_TOKEN: safer
// than flattening because the base's tokens live in their own namespace, at
// the cost of an extra chunk header.
func NestedBase[D any, B any](token uint64, base *TokenMap[B], field func(*D) *B) Entry[D] {
	return Entry[D]{
		Token: token,
		Accessor: Accessor[D]{
			Get: func(r *tsio.Reader, dest *D) {
				GetRecord(r, base, field(dest))
			},
			Put: func(w *tsio.Writer, token uint64, src *D) {
				PutRecord(w, token, false, base, field(src))
			},
		},
	}
}

// FlattenBase merges a base type's entries into a derived type's token map,
// the counterpart of DERIVED_TOKEN_MAP: the base's fields are written
// directly into the derived record rather than nested under their own
// token, so the base and derived token spaces must not overlap. NewTokenMap
// catches the overlap the same way it catches any other duplicate.
func FlattenBase[D any, B any](base *TokenMap[B], field func(*D) *B, derived ...Entry[D]) []Entry[D] {
	merged := make([]Entry[D], 0, len(base.entries)+len(derived))
	for _, be := range base.entries {
		be := be
		merged = append(merged, Entry[D]{
			Token: be.Token,
			Accessor: Accessor[D]{
				Get: func(r *tsio.Reader, dest *D) { be.Get(r, field(dest)) },
				Put: func(w *tsio.Writer, token uint64, src *D) { be.Put(w, token, field(src)) },
			},
		})
	}
	return append(merged, derived...)
}
