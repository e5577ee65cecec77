// Package comparison evaluates filter predicates between loosely typed values.
//
// Evaluation never fails: when operands cannot be compared (a string against
// a number, a membership test against a non-container) the result is
// indeterminate and the caller decides what that means.
package comparison

import (
	"math"
	"reflect"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Compare evaluates "left op right".
// ok is false when the result is indeterminate because the operands are not
// comparable under op.
func Compare(left, right any, op Operator) (result bool, ok bool) {
	switch op {
	case Equals:
		return Equal(left, right), true
	case IEquals:
		return Equal(Lower(left), Lower(right)), true
	case LessThan, LessEqual, Greater, GreaterEq:
		return ordered(left, right, op)
	case In:
		return member(left, right)
	case IIn:
		return member(Lower(left), LowerAll(right))
	case Contains:
		return member(right, left)
	case IContains:
		return member(Lower(right), LowerAll(left))
	}
	return false, false
}

// Equal reports whether a and b hold the same value. Numbers compare by
// value across Go numeric types, so int(1) equals float64(1).
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return isNil(a) && isNil(b)
	}
	if na, ok := toNumber(a); ok {
		if nb, ok := toNumber(b); ok {
			return na.cmp(nb) == 0 && !na.nan() && !nb.nan()
		}
		return false
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if sa, ok := sequence(a); ok {
		sb, ok := sequence(b)
		if !ok || sa.Len() != sb.Len() {
			return false
		}
		for i := 0; i < sa.Len(); i++ {
			if !Equal(sa.Index(i).Interface(), sb.Index(i).Interface()) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

// sequence returns v as a slice or array value. Strings are not sequences.
func sequence(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	}
	return reflect.Value{}, false
}

// Lower lower-cases v when it is a string and returns it unchanged otherwise.
func Lower(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return cases.Lower(language.Und).String(s)
}

// LowerAll lower-cases a string, or every string element of a slice.
// Other values are returned unchanged.
func LowerAll(v any) any {
	switch c := v.(type) {
	case string:
		return Lower(c)
	case []string:
		out := make([]string, len(c))
		caser := cases.Lower(language.Und)
		for i, s := range c {
			out[i] = caser.String(s)
		}
		return out
	case []any:
		out := make([]any, len(c))
		for i, e := range c {
			out[i] = Lower(e)
		}
		return out
	}
	return v
}

func ordered(left, right any, op Operator) (bool, bool) {
	if left == nil || right == nil {
		return false, false
	}

	var c int
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return false, false
		}
		c = strings.Compare(l, r)
	case time.Time:
		r, ok := right.(time.Time)
		if !ok {
			return false, false
		}
		c = l.Compare(r)
	case bool:
		r, ok := right.(bool)
		if !ok {
			return false, false
		}
		c = compareBool(l, r)
	default:
		nl, ok := toNumber(left)
		if !ok {
			return false, false
		}
		nr, ok := toNumber(right)
		if !ok {
			return false, false
		}
		// NaN is comparable but never ordered.
		if nl.nan() || nr.nan() {
			return false, true
		}
		c = nl.cmp(nr)
	}

	switch op {
	case LessThan:
		return c < 0, true
	case LessEqual:
		return c <= 0, true
	case Greater:
		return c > 0, true
	case GreaterEq:
		return c >= 0, true
	}
	return false, false
}

// member reports whether value is an element of container: a substring of a
// string, an element of a slice or array, or a key of a map.
func member(value, container any) (bool, bool) {
	if container == nil {
		return false, false
	}
	if s, ok := container.(string); ok {
		sub, ok := value.(string)
		if !ok {
			return false, false
		}
		return strings.Contains(s, sub), true
	}

	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if Equal(value, rv.Index(i).Interface()) {
				return true, true
			}
		}
		return false, true
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if Equal(value, iter.Key().Interface()) {
				return true, true
			}
		}
		return false, true
	}
	return false, false
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// number is a normalized numeric operand. Integers keep full precision and
// compare exactly against floats.
type number struct {
	kind byte // 'i', 'u' or 'f'
	i    int64
	u    uint64
	f    float64
}

func toNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: 'i', i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: 'u', u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: 'f', f: rv.Float()}, true
	}
	return number{}, false
}

func (n number) nan() bool { return n.kind == 'f' && math.IsNaN(n.f) }

func (n number) cmp(o number) int {
	switch {
	case n.kind == 'i' && o.kind == 'i':
		return cmpOrdered(n.i, o.i)
	case n.kind == 'u' && o.kind == 'u':
		return cmpOrdered(n.u, o.u)
	case n.kind == 'i' && o.kind == 'u':
		if n.i < 0 {
			return -1
		}
		return cmpOrdered(uint64(n.i), o.u)
	case n.kind == 'u' && o.kind == 'i':
		if o.i < 0 {
			return 1
		}
		return cmpOrdered(n.u, uint64(o.i))
	case n.kind == 'f' && o.kind == 'f':
		return cmpOrdered(n.f, o.f)
	case n.kind == 'f':
		return -o.cmp(n)
	case n.kind == 'i':
		return cmpIntFloat(n.i, o.f)
	}
	return cmpUintFloat(n.u, o.f)
}

// cmpIntFloat compares exactly, without rounding i to float64. NaN
// compares as 0; callers rule it out first.
func cmpIntFloat(i int64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= 1<<63:
		return -1
	case f < -(1 << 63):
		return 1
	}
	t := math.Trunc(f)
	if c := cmpOrdered(i, int64(t)); c != 0 {
		return c
	}
	return cmpOrdered(t, f)
}

func cmpUintFloat(u uint64, f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f < 0:
		return 1
	case f >= 1<<64:
		return -1
	}
	t := math.Trunc(f)
	if c := cmpOrdered(u, uint64(t)); c != 0 {
		return c
	}
	return cmpOrdered(t, f)
}

func cmpOrdered[T int64 | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
