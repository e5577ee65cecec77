package comparison

// Operator identifies the predicate evaluated between an attribute value and
// an expected value.
type Operator string

const (
	Equals    Operator = "equals"
	IEquals   Operator = "iequals"
	LessThan  Operator = "lt"
	LessEqual Operator = "lte"
	Greater   Operator = "gt"
	GreaterEq Operator = "gte"
	// In matches when the attribute value is a member of the expected value.
	In  Operator = "in"
	IIn Operator = "iin"
	// Contains matches when the expected value is a member of the attribute value.
	Contains  Operator = "contains"
	IContains Operator = "icontains"
)

// Operators lists every supported operator.
var Operators = []Operator{
	Equals, IEquals,
	LessThan, LessEqual, Greater, GreaterEq,
	In, IIn,
	Contains, IContains,
}

// Parse resolves an operator name such as "gte" or "icontains".
func Parse(name string) (Operator, bool) {
	for _, op := range Operators {
		if string(op) == name {
			return op, true
		}
	}
	return "", false
}

// Valid reports whether o is one of Operators.
func (o Operator) Valid() bool {
	_, ok := Parse(string(o))
	return ok
}

// CaseInsensitive reports whether string operands are lower-cased before
// evaluation.
func (o Operator) CaseInsensitive() bool {
	switch o {
	case IEquals, IIn, IContains:
		return true
	}
	return false
}

// Ordering reports whether o is one of the ordering operators.
func (o Operator) Ordering() bool {
	switch o {
	case LessThan, LessEqual, Greater, GreaterEq:
		return true
	}
	return false
}

// Symbol returns a short display form, e.g. ">=" for GreaterEq.
func (o Operator) Symbol() string {
	switch o {
	case Equals:
		return "="
	case IEquals:
		return "=~"
	case LessThan:
		return "<"
	case LessEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterEq:
		return ">="
	case In:
		return "in"
	case IIn:
		return "in~"
	case Contains:
		return "contains"
	case IContains:
		return "contains~"
	}
	return string(o)
}
