package tstoken

import "github.com/ssargent/tokenstream/pkg/tsio"

// ContainerField returns an Entry for a slice field of scalar or otherwise
// self-contained elements, built on tsio.PutContainer/GetContainer — the
// list-prefix framing counterpart of a plain scalar Entry.
func ContainerField[D any, E any](
	token uint64,
	field func(*D) *[]E,
	getElem func(r *tsio.Reader) E,
	putElem func(w *tsio.Writer, token uint64, v E),
) Entry[D] {
	return Entry[D]{
		Token: token,
		Accessor: Accessor[D]{
			Get: func(r *tsio.Reader, dest *D) {
				*field(dest) = tsio.GetContainer(r, getElem)
			},
			Put: func(w *tsio.Writer, token uint64, src *D) {
				tsio.PutContainer(w, token, *field(src), putElem)
			},
		},
	}
}

// RecordContainerField returns an Entry for a slice of nested records, each
// element itself dispatched through elemMap rather than a scalar get/put
// pair. This is the common case for a list of sub-records (e.g. a
// manifest's file entries).
func RecordContainerField[D any, E any](token uint64, field func(*D) *[]E, elemMap *TokenMap[E]) Entry[D] {
	return ContainerField(token, field,
		func(r *tsio.Reader) E {
			var v E
			GetRecord(r, elemMap, &v)
			return v
		},
		func(w *tsio.Writer, token uint64, v E) {
			// Keep the positional stub for a record-typed container item: an
			// empty item still emits <length=0> rather than nothing, or the
			// item's index among its siblings would be lost.
			PutRecord(w, token, true, elemMap, &v)
		},
	)
}
