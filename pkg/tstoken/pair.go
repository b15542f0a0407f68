package tstoken

import "github.com/ssargent/tokenstream/pkg/tsio"

// PairField returns an Entry for a field holding two independently typed
// values nested under one token (token 0 for a, token 1 for b), built on
// tsio.PutPair/GetPair — the schema-binding counterpart of the source
// library's std::pair support.
func PairField[D any, A any, B any](
	token uint64,
	field func(*D) (*A, *B),
	getA func(*tsio.Reader) A,
	getB func(*tsio.Reader) B,
	putA func(*tsio.Writer, uint64, A),
	putB func(*tsio.Writer, uint64, B),
) Entry[D] {
	return Entry[D]{
		Token: token,
		Accessor: Accessor[D]{
			Get: func(r *tsio.Reader, dest *D) {
				a, b := field(dest)
				*a, *b = tsio.GetPair(r, getA, getB)
			},
			Put: func(w *tsio.Writer, token uint64, src *D) {
				a, b := field(src)
				tsio.PutPair(w, token, *a, *b, putA, putB)
			},
		},
	}
}
