// Package tsgeneric is the dynamic-record layer (C5): a runtime
// token-to-value map for building or consuming records whose shape is not
// known at compile time — a config blob, a schema-less event payload, a
// record whose fields vary by caller. Where pkg/tstoken binds tokens to the
// fields of a fixed Go struct ahead of time, tsgeneric binds them one Add
// call at a time and stores the values behind a small closed type switch
// instead of a struct field.
package tsgeneric

import (
	"sort"

	"github.com/ssargent/tokenstream/pkg/tsio"
)

// member is the type-erased storage behind one token, the counterpart of
// the source's MemberBase pointer held in its std::map.
type member interface {
	get(r *tsio.Reader)
	put(token uint64, w *tsio.Writer)
	valueAny() any
}

// Member holds one token's value with no declared default of its own: it is
// trimmed against T's zero value, so a zero value is omitted while the
// writer's trim-defaults policy is active.
type Member[T Scalar] struct {
	Value T
}

func (m *Member[T]) get(r *tsio.Reader)                   { m.Value = decodeScalar[T](r) }
func (m *Member[T]) valueAny() any                        { return m.Value }
func (m *Member[T]) put(token uint64, w *tsio.Writer) {
	var zero T
	putScalar(w, token, m.Value, zero)
}

// MemberWithDefault holds one token's value plus the default it is trimmed
// against, the counterpart of the source's MemberWithDefault<T> subclass.
type MemberWithDefault[T Scalar] struct {
	Member[T]
	Default T
}

func (m *MemberWithDefault[T]) put(token uint64, w *tsio.Writer) {
	putScalar(w, token, m.Value, m.Default)
}

// Generic is an ordered token-to-value map usable as a record without a
// declared Go struct, the counterpart of TokenStream::Generic.
type Generic struct {
	order   []uint64
	members map[uint64]member
}

// NewGeneric returns an empty record.
func NewGeneric() *Generic {
	return &Generic{members: make(map[uint64]member)}
}

func (g *Generic) set(token uint64, m member) {
	if _, exists := g.members[token]; !exists {
		g.order = append(g.order, token)
	}
	g.members[token] = m
}

// Add binds token to value with no default, overwriting the token's prior
// binding if one existed. Returns g so calls can be chained, matching the
// source's `employee.Add(...).Add(...)` chaining idiom.
func Add[T Scalar](g *Generic, token uint64, value T) *Generic {
	g.set(token, &Member[T]{Value: value})
	return g
}

// AddWithDefault binds token to value, trimmed against def when the
// writer's trim-defaults policy is active.
func AddWithDefault[T Scalar](g *Generic, token uint64, value, def T) *Generic {
	g.set(token, &MemberWithDefault[T]{Member: Member[T]{Value: value}, Default: def})
	return g
}

// At returns the value bound to token and whether it was present and of
// type T. The source's `at<T>` instead assumes the caller has it right and
// UB's on a mismatch; returning ok is the idiomatic Go alternative to that
// assumption.
func At[T Scalar](g *Generic, token uint64) (T, bool) {
	m, ok := g.members[token]
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := m.valueAny().(T)
	return v, ok
}

// Has reports whether token is bound, regardless of its type.
func (g *Generic) Has(token uint64) bool {
	_, ok := g.members[token]
	return ok
}

// Write serializes every bound member in ascending token order.
func (g *Generic) Write(w *tsio.Writer) {
	tokens := append([]uint64(nil), g.order...)
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	for _, tok := range tokens {
		g.members[tok].put(tok, w)
	}
}

// Read decodes every token up to EOS, dispatching to whichever member was
// already bound at that token (callers must Add every token they expect to
// read before calling Read, matching the source's documented contract) and
// skipping anything else.
func (g *Generic) Read(r *tsio.Reader) {
	for !r.EOS() {
		tok := r.GetToken()
		if m, ok := g.members[tok]; ok {
			m.get(r)
			continue
		}
		r.Skip()
	}
}
