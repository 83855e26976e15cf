package mem

import "fmt"

// Kind identifies one of the six slot families of a frame.
type Kind int

const (
	KindNone Kind = iota // void, no slot
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBool
	KindRef
)

// String returns a string representation of the Kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindRef:
		return "ref"
	default:
		return "none"
	}
}

// Total is the number of slots of each kind a scope needs.
type Total struct {
	Ints    int
	Longs   int
	Floats  int
	Doubles int
	Bools   int
	Refs    int
}

// Add returns the slot-wise sum of t and o
func (t Total) Add(o Total) Total {
	return Total{
		Ints:    t.Ints + o.Ints,
		Longs:   t.Longs + o.Longs,
		Floats:  t.Floats + o.Floats,
		Doubles: t.Doubles + o.Doubles,
		Bools:   t.Bools + o.Bools,
		Refs:    t.Refs + o.Refs,
	}
}

// Count returns the number of slots of the given kind
func (t Total) Count(k Kind) int {
	switch k {
	case KindInt:
		return t.Ints
	case KindLong:
		return t.Longs
	case KindFloat:
		return t.Floats
	case KindDouble:
		return t.Doubles
	case KindBool:
		return t.Bools
	case KindRef:
		return t.Refs
	default:
		return 0
	}
}

// String returns a string representation of the Total
func (t Total) String() string {
	return fmt.Sprintf("Total{int=%d, long=%d, float=%d, double=%d, bool=%d, ref=%d}",
		t.Ints, t.Longs, t.Floats, t.Doubles, t.Bools, t.Refs)
}

// Provider is anything that knows the memory total of one activation.
type Provider interface {
	MemoryTotal() Total
}

// Fixed is a Provider with a constant total, used by native functions.
// Two Fixed values with the same counts compare equal.
type Fixed Total

// MemoryTotal returns the fixed total
func (f Fixed) MemoryTotal() Total {
	return Total(f)
}
