package tsgeneric

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssargent/tokenstream/pkg/tsio"
)

const (
	birthMonthToken = 0
	birthDayToken   = 1
	birthYearToken  = 2
	ssnToken        = 3
	firstNameToken  = 4
	lastNameToken   = 5
)

func TestGenericRoundTrip(t *testing.T) {
	employee := NewGeneric()
	Add(employee, uint64(birthMonthToken), uint8(9))
	Add(employee, uint64(birthDayToken), uint8(21))
	Add(employee, uint64(birthYearToken), uint16(1992))
	Add(employee, uint64(ssnToken), "800-55-1212")
	Add(employee, uint64(firstNameToken), "Ford")
	Add(employee, uint64(lastNameToken), "Prefect")

	w := tsio.NewMemoryWriter()
	employee.Write(w)
	require.False(t, w.BadStream())

	decoded := NewGeneric()
	Add(decoded, uint64(birthMonthToken), uint8(0))
	Add(decoded, uint64(birthDayToken), uint8(0))
	Add(decoded, uint64(birthYearToken), uint16(0))
	Add(decoded, uint64(ssnToken), "")
	Add(decoded, uint64(firstNameToken), "")
	Add(decoded, uint64(lastNameToken), "")

	r := tsio.NewReader(w.Bytes())
	decoded.Read(r)
	require.False(t, r.BadStream())

	month, ok := At[uint8](decoded, birthMonthToken)
	require.True(t, ok)
	require.Equal(t, uint8(9), month)

	year, ok := At[uint16](decoded, birthYearToken)
	require.True(t, ok)
	require.Equal(t, uint16(1992), year)

	first, ok := At[string](decoded, firstNameToken)
	require.True(t, ok)
	require.Equal(t, "Ford", first)

	last, ok := At[string](decoded, lastNameToken)
	require.True(t, ok)
	require.Equal(t, "Prefect", last)
}

func TestGenericAddWithDefaultTrims(t *testing.T) {
	g := NewGeneric()
	AddWithDefault(g, uint64(1), int32(0), int32(0))
	AddWithDefault(g, uint64(2), int32(5), int32(0))

	w := tsio.NewMemoryWriter()
	g.Write(w)
	require.False(t, w.BadStream())

	r := tsio.NewReader(w.Bytes())
	require.Equal(t, uint64(2), r.GetToken())
	require.Equal(t, int32(5), r.GetInt32())
	require.True(t, r.EOS())
}

func TestGenericAtMissingTokenReturnsZeroAndFalse(t *testing.T) {
	g := NewGeneric()
	v, ok := At[uint32](g, 99)
	require.False(t, ok)
	require.Equal(t, uint32(0), v)
}

func TestGenericAtWrongTypeReturnsFalse(t *testing.T) {
	g := NewGeneric()
	Add(g, uint64(1), uint8(7))
	_, ok := At[string](g, 1)
	require.False(t, ok)
}

func TestGenericHas(t *testing.T) {
	g := NewGeneric()
	require.False(t, g.Has(1))
	Add(g, uint64(1), true)
	require.True(t, g.Has(1))
}

func TestGenericReadSkipsUnboundTokens(t *testing.T) {
	w := tsio.NewMemoryWriter()
	w.PutUint8(1, 1, 0)
	w.PutUint8(2, 2, 0)
	w.PutUint8(3, 3, 0)

	g := NewGeneric()
	Add(g, uint64(2), uint8(0))

	r := tsio.NewReader(w.Bytes())
	g.Read(r)
	require.False(t, r.BadStream())

	v, ok := At[uint8](g, 2)
	require.True(t, ok)
	require.Equal(t, uint8(2), v)
}
