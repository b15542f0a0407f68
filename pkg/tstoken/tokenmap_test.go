package tstoken

import (
	"testing"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tokenstream/pkg/tsio"
)

type point struct {
	X, Y int32
}

var pointMap = NewTokenMap(
	Entry[point]{Token: 0, Accessor: Accessor[point]{
		Get: func(r *tsio.Reader, d *point) { d.X = r.GetInt32() },
		Put: func(w *tsio.Writer, t uint64, s *point) { PutInt32(w, t, WithDefault(s.X, 0)) },
	}},
	Entry[point]{Token: 1, Accessor: Accessor[point]{
		Get: func(r *tsio.Reader, d *point) { d.Y = r.GetInt32() },
		Put: func(w *tsio.Writer, t uint64, s *point) { PutInt32(w, t, WithDefault(s.Y, 0)) },
	}},
)

type shape struct {
	Origin point
	Name   string
	Points []point
}

var shapeMap = NewTokenMap(
	NestedBase(0, pointMap, func(s *shape) *point { return &s.Origin }),
	Entry[shape]{Token: 1, Accessor: Accessor[shape]{
		Get: func(r *tsio.Reader, d *shape) { d.Name = r.GetString() },
		Put: func(w *tsio.Writer, t uint64, s *shape) { PutString(w, t, WithDefault(s.Name, "")) },
	}},
	RecordContainerField(2, func(s *shape) *[]point { return &s.Points }, pointMap),
)

func TestTokenMapRoundTripScalarsAndNestedBase(t *testing.T) {
	w := tsio.NewMemoryWriter()
	in := shape{Origin: point{X: 3, Y: 4}, Name: "tri", Points: []point{{1, 1}, {2, 2}, {3, 3}}}
	shapeMap.Write(w, &in)
	require.False(t, w.BadStream())

	r := tsio.NewReader(w.Bytes())
	var out shape
	shapeMap.Read(r, &out)
	require.False(t, r.BadStream())
	require.Equal(t, in, out)
}

func TestNewTokenMapPanicsOnDuplicateToken(t *testing.T) {
	require.Panics(t, func() {
		NewTokenMap(
			Entry[point]{Token: 0, Accessor: Accessor[point]{
				Get: func(r *tsio.Reader, d *point) {},
				Put: func(w *tsio.Writer, t uint64, s *point) {},
			}},
			Entry[point]{Token: 0, Accessor: Accessor[point]{
				Get: func(r *tsio.Reader, d *point) {},
				Put: func(w *tsio.Writer, t uint64, s *point) {},
			}},
		)
	})
}

type base struct {
	ID ksuid.KSUID
}

type derived struct {
	Base    base
	Created time.Time
	Title   string
}

var baseMap = NewTokenMap(
	FieldFromExternal(0, KSUIDAccessor, func(b *base) *ksuid.KSUID { return &b.ID }),
)

var derivedMap = NewTokenMap(
	FlattenBase(baseMap, func(d *derived) *base { return &d.Base },
		Entry[derived]{Token: 1, Accessor: Accessor[derived]{
			Get: func(r *tsio.Reader, d *derived) { d.Created = TimeAccessor.Get(r) },
			Put: func(w *tsio.Writer, t uint64, s *derived) { TimeAccessor.Put(w, t, s.Created) },
		}},
		Entry[derived]{Token: 2, Accessor: Accessor[derived]{
			Get: func(r *tsio.Reader, d *derived) { d.Title = r.GetString() },
			Put: func(w *tsio.Writer, t uint64, s *derived) { PutString(w, t, WithDefault(s.Title, "")) },
		}},
	)...,
)

func TestFlattenBaseMergesBaseEntriesIntoDerivedTokenSpace(t *testing.T) {
	id := ksuid.New()
	when := time.Unix(1000, 0).UTC()
	in := derived{Base: base{ID: id}, Created: when, Title: "report"}

	w := tsio.NewMemoryWriter()
	derivedMap.Write(w, &in)
	require.False(t, w.BadStream())

	r := tsio.NewReader(w.Bytes())
	var out derived
	derivedMap.Read(r, &out)
	require.False(t, r.BadStream())
	require.Equal(t, in.Base.ID, out.Base.ID)
	require.Equal(t, in.Created, out.Created)
	require.Equal(t, in.Title, out.Title)
}

func TestValueWithDefaultIsDefault(t *testing.T) {
	require.True(t, WithDefault(uint8(5), uint8(5)).IsDefault())
	require.False(t, WithDefault(uint8(5), uint8(6)).IsDefault())
}

func TestPairFieldRoundTrip(t *testing.T) {
	type withPair struct {
		A int32
		B string
	}
	m := NewTokenMap(
		PairField(0,
			func(s *withPair) (*int32, *string) { return &s.A, &s.B },
			func(r *tsio.Reader) int32 { return r.GetInt32() },
			func(r *tsio.Reader) string { return r.GetString() },
			func(w *tsio.Writer, t uint64, v int32) { w.PutInt32(t, v, 0) },
			func(w *tsio.Writer, t uint64, v string) { w.PutString(t, v, "") },
		),
	)

	w := tsio.NewMemoryWriter()
	in := withPair{A: 42, B: "hi"}
	m.Write(w, &in)

	r := tsio.NewReader(w.Bytes())
	var out withPair
	m.Read(r, &out)
	require.Equal(t, in, out)
}
