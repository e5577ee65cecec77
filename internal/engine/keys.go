package engine

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/leengari/recordstore/internal/domain/data"
)

// encodeKey renders a key or index value as a map key.
//
// Numbers are normalized so that values equal under comparison.Equal share
// an encoding: int64(1), uint8(1) and 1.0 all encode as "i:1". Integral
// floats are encoded exactly, so 2^53 and 2^53+1 stay distinct. Strings are
// length-prefixed so composite encodings cannot collide.
func encodeKey(v any) string {
	enc, _ := encodeExact(v)
	return enc
}

// encodeExact is encodeKey that also reports whether every component had a
// canonical encoding. Values of other types fall back to their Go syntax
// representation, which equal values need not share.
func encodeExact(v any) (string, bool) {
	var b keyWriter
	writeKey(&b, v)
	return b.String(), !b.opaque
}

type keyWriter struct {
	strings.Builder
	opaque bool
}

func writeKey(b *keyWriter, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteString("n")
		return
	case string:
		b.WriteString("s")
		b.WriteString(strconv.Itoa(len(t)))
		b.WriteString(":")
		b.WriteString(t)
		return
	case bool:
		if t {
			b.WriteString("b:1")
		} else {
			b.WriteString("b:0")
		}
		return
	case time.Time:
		b.WriteString("T:")
		b.WriteString(t.UTC().Format(time.RFC3339Nano))
		return
	case data.Tuple:
		writeSequence(b, reflect.ValueOf([]any(t)))
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString("i:")
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		switch {
		case f != math.Trunc(f):
		case f >= -(1<<63) && f < 1<<63:
			b.WriteString("i:")
			b.WriteString(strconv.FormatInt(int64(f), 10))
			return
		case f >= 0 && f < 1<<64:
			b.WriteString("i:")
			b.WriteString(strconv.FormatUint(uint64(f), 10))
			return
		}
		b.WriteString("f:")
		b.WriteString(strconv.FormatUint(math.Float64bits(f), 16))
	case reflect.Slice, reflect.Array:
		writeSequence(b, rv)
	default:
		b.opaque = true
		fmt.Fprintf(b, "x:%T:%#v", v, v)
	}
}

// writeSequence encodes slices, arrays and tuples alike, so a composite key
// can be looked up with either a data.Tuple or a []any.
func writeSequence(b *keyWriter, rv reflect.Value) {
	b.WriteString("t")
	b.WriteString(strconv.Itoa(rv.Len()))
	b.WriteString("(")
	for i := 0; i < rv.Len(); i++ {
		if i > 0 {
			b.WriteString(",")
		}
		writeKey(b, rv.Index(i).Interface())
	}
	b.WriteString(")")
}
