package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leengari/recordstore/internal/comparison"
	"github.com/leengari/recordstore/internal/domain/data"
)

// LookupSeparator splits an attribute from its operator in keyword
// conditions, as in "age__gte".
const LookupSeparator = "__"

// Condition is one "attribute operator expected" test.
type Condition struct {
	Attribute string
	Operator  comparison.Operator
	Expected  any
}

// Cond is shorthand for building a Condition.
func Cond(attr string, op comparison.Operator, expected any) Condition {
	return Condition{Attribute: attr, Operator: op, Expected: expected}
}

// Match evaluates the condition against r. An unset attribute reads as nil.
// An indeterminate comparison does not match.
func (c Condition) Match(r *data.Record) bool {
	ok, determinate := comparison.Compare(r.Value(c.Attribute), c.Expected, c.Operator)
	return determinate && ok
}

func (c Condition) String() string {
	return fmt.Sprintf("%s %s %v", c.Attribute, c.Operator.Symbol(), c.Expected)
}

// Kwargs are keyword-style conditions: keys are attribute names with an
// optional operator suffix ("age__gte", "name__iequals"). A key without a
// known suffix tests equality on the whole key.
type Kwargs map[string]any

// ParseLookup splits a keyword key into attribute and operator.
func ParseLookup(key string) (string, comparison.Operator) {
	if i := strings.LastIndex(key, LookupSeparator); i > 0 {
		if op, ok := comparison.Parse(key[i+len(LookupSeparator):]); ok {
			return key[:i], op
		}
	}
	return key, comparison.Equals
}

// ParseKwargs turns keyword conditions into canonical conditions, ordered by
// key so evaluation order is deterministic.
func ParseKwargs(kw Kwargs) []Condition {
	keys := make([]string, 0, len(kw))
	for k := range kw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]Condition, 0, len(keys))
	for _, k := range keys {
		attr, op := ParseLookup(k)
		conds = append(conds, Cond(attr, op, kw[k]))
	}
	return conds
}
