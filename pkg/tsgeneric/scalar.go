package tsgeneric

import (
	"fmt"

	"github.com/ssargent/tokenstream/pkg/tsio"
)

// Scalar enumerates the field types a Member can hold. The source library
// resolves this by template argument deduction plus operator overloading on
// Reader/Writer; Go has neither, so the type set is closed here and
// dispatched with a type switch instead — the reflection-free substitute
// for the source's compile-time overload resolution.
type Scalar interface {
	uint8 | uint16 | uint32 | uint64 |
		int8 | int16 | int32 | int64 |
		float32 | float64 |
		bool | string
}

func decodeScalar[T any](r *tsio.Reader) T {
	var zero T
	var out any
	switch any(zero).(type) {
	case uint8:
		out = r.GetUint8()
	case uint16:
		out = r.GetUint16()
	case uint32:
		out = r.GetUint32()
	case uint64:
		out = r.GetUint64()
	case int8:
		out = r.GetInt8()
	case int16:
		out = r.GetInt16()
	case int32:
		out = r.GetInt32()
	case int64:
		out = r.GetInt64()
	case float32:
		out = r.GetFloat32()
	case float64:
		out = r.GetFloat64()
	case bool:
		out = r.GetBool()
	case string:
		out = r.GetString()
	default:
		panic(fmt.Sprintf("tsgeneric: unsupported member type %T", zero))
	}
	return out.(T)
}

func putScalar[T any](w *tsio.Writer, token uint64, v, def T) {
	switch vv := any(v).(type) {
	case uint8:
		w.PutUint8(token, vv, any(def).(uint8))
	case uint16:
		w.PutUint16(token, vv, any(def).(uint16))
	case uint32:
		w.PutUint32(token, vv, any(def).(uint32))
	case uint64:
		w.PutUint64(token, vv, any(def).(uint64))
	case int8:
		w.PutInt8(token, vv, any(def).(int8))
	case int16:
		w.PutInt16(token, vv, any(def).(int16))
	case int32:
		w.PutInt32(token, vv, any(def).(int32))
	case int64:
		w.PutInt64(token, vv, any(def).(int64))
	case float32:
		w.PutFloat32(token, vv, any(def).(float32))
	case float64:
		w.PutFloat64(token, vv, any(def).(float64))
	case bool:
		w.PutBool(token, vv, any(def).(bool))
	case string:
		w.PutString(token, vv, any(def).(string))
	default:
		panic(fmt.Sprintf("tsgeneric: unsupported member type %T", v))
	}
}
