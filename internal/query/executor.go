package query

import (
	"iter"

	"github.com/leengari/recordstore/internal/domain/data"
)

// Run lazily applies ops, in order, to source. Nothing is pulled from
// source until the returned sequence is ranged over.
func Run(source iter.Seq[*data.Record], ops []Operation) iter.Seq[*data.Record] {
	seq := source
	for _, op := range ops {
		seq = Apply(seq, op)
	}
	return seq
}

// Apply wraps seq with a single operation.
func Apply(seq iter.Seq[*data.Record], op Operation) iter.Seq[*data.Record] {
	switch o := op.(type) {
	case Filter:
		return filter(seq, o.Conditions)
	case Head:
		return head(seq, o.N)
	case Tail:
		return tail(seq, o.N)
	case Slice:
		if o.Streaming() {
			return sliceStream(seq, o.Start, o.Stop)
		}
		return sliceMaterialized(seq, o.Start, o.Stop)
	}
	return seq
}

// Matches reports whether r passes every condition.
func Matches(r *data.Record, conds []Condition) bool {
	for _, c := range conds {
		if !c.Match(r) {
			return false
		}
	}
	return true
}

func filter(seq iter.Seq[*data.Record], conds []Condition) iter.Seq[*data.Record] {
	return func(yield func(*data.Record) bool) {
		for r := range seq {
			if !Matches(r, conds) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

func head(seq iter.Seq[*data.Record], n int) iter.Seq[*data.Record] {
	return func(yield func(*data.Record) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for r := range seq {
			if !yield(r) {
				return
			}
			i++
			if i >= n {
				return
			}
		}
	}
}

// tail keeps a ring buffer of at most n records while draining seq.
func tail(seq iter.Seq[*data.Record], n int) iter.Seq[*data.Record] {
	return func(yield func(*data.Record) bool) {
		if n <= 0 {
			return
		}
		window := make([]*data.Record, 0, min(n, DefaultWindow))
		next := 0
		for r := range seq {
			if len(window) < n {
				window = append(window, r)
				continue
			}
			window[next] = r
			next = (next + 1) % n
		}
		for i := range window {
			if !yield(window[(next+i)%len(window)]) {
				return
			}
		}
	}
}

func sliceStream(seq iter.Seq[*data.Record], start, stop int) iter.Seq[*data.Record] {
	return func(yield func(*data.Record) bool) {
		if stop <= start {
			return
		}
		i := 0
		for r := range seq {
			if i >= start && !yield(r) {
				return
			}
			i++
			if i >= stop {
				return
			}
		}
	}
}

func sliceMaterialized(seq iter.Seq[*data.Record], start, stop int) iter.Seq[*data.Record] {
	return func(yield func(*data.Record) bool) {
		var all []*data.Record
		for r := range seq {
			all = append(all, r)
		}
		lo, hi := Bounds(len(all), start, stop)
		for _, r := range all[lo:hi] {
			if !yield(r) {
				return
			}
		}
	}
}

// Bounds resolves [start, stop) against a sequence of length n using
// negative-index slicing rules: negative bounds count from the end and
// out-of-range bounds are clamped.
func Bounds(n, start, stop int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return max(0, min(i, n))
	}
	lo, hi := clamp(start), clamp(stop)
	if hi < lo {
		hi = lo
	}
	return lo, hi
}
