package tstoken

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/tokenstream/pkg/tsio"
)

// ExternalAccessor is a read/write pair for a type that cannot implement its
// own Write/Read pair because it is defined outside this module — the Go
// counterpart of the source's `template<> struct Helper<T>` specialization,
// which exists for exactly the same reason (you cannot add member functions
// to a type you don't own). Go has no template specialization to hang this
// off of, so it is a plain value registered once per external type, the
// same shape pkg/di uses for registering a factory by name rather than by
// reflection.
type ExternalAccessor[V any] struct {
	Get func(r *tsio.Reader) V
	Put func(w *tsio.Writer, token uint64, v V)
}

// KSUIDAccessor round-trips a ksuid.KSUID as its 20-byte binary form.
var KSUIDAccessor = ExternalAccessor[ksuid.KSUID]{
	Get: func(r *tsio.Reader) ksuid.KSUID {
		raw := r.GetBytes()
		if len(raw) == 0 {
			return ksuid.Nil
		}
		id, err := ksuid.FromBytes(raw)
		if err != nil {
			return ksuid.Nil
		}
		return id
	},
	Put: func(w *tsio.Writer, token uint64, v ksuid.KSUID) {
		w.PutBytes(token, v.Bytes(), ksuid.Nil.Bytes())
	},
}

// TimeAccessor round-trips a time.Time as Unix nanoseconds, decoding it back
// in UTC.
var TimeAccessor = ExternalAccessor[time.Time]{
	Get: func(r *tsio.Reader) time.Time {
		return time.Unix(0, r.GetInt64()).UTC()
	},
	Put: func(w *tsio.Writer, token uint64, v time.Time) {
		w.PutInt64(token, v.UnixNano(), 0)
	},
}

// FieldFromExternal wraps an ExternalAccessor into an Entry bound to one
// field of D, so an external type composes with TokenMap the same way a
// native scalar field does.
func FieldFromExternal[D any, V any](token uint64, ext ExternalAccessor[V], field func(*D) *V) Entry[D] {
	return Entry[D]{
		Token: token,
		Accessor: Accessor[D]{
			Get: func(r *tsio.Reader, dest *D) { *field(dest) = ext.Get(r) },
			Put: func(w *tsio.Writer, token uint64, src *D) { ext.Put(w, token, *field(src)) },
		},
	}
}
