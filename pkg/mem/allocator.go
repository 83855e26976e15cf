package mem

// Allocator hands out slot indices for one compiled scope.
// Indices are never reused, so layouts only depend on declaration order.
type Allocator struct {
	ints    int // next int slot
	longs   int // next long slot
	floats  int // next float slot
	doubles int // next double slot
	bools   int // next bool slot
	refs    int // next reference slot
}

// NewAllocator creates an empty allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// NewAllocatorFrom creates an allocator whose first indices start after offset
func NewAllocatorFrom(offset Total) *Allocator {
	return &Allocator{
		ints:    offset.Ints,
		longs:   offset.Longs,
		floats:  offset.Floats,
		doubles: offset.Doubles,
		bools:   offset.Bools,
		refs:    offset.Refs,
	}
}

func (a *Allocator) NextIntIndex() int {
	n := a.ints
	a.ints++
	return n
}

func (a *Allocator) NextLongIndex() int {
	n := a.longs
	a.longs++
	return n
}

func (a *Allocator) NextFloatIndex() int {
	n := a.floats
	a.floats++
	return n
}

func (a *Allocator) NextDoubleIndex() int {
	n := a.doubles
	a.doubles++
	return n
}

func (a *Allocator) NextBoolIndex() int {
	n := a.bools
	a.bools++
	return n
}

func (a *Allocator) NextRefIndex() int {
	n := a.refs
	a.refs++
	return n
}

// NextIndex allocates a slot of the given kind, returns -1 for KindNone
func (a *Allocator) NextIndex(k Kind) int {
	switch k {
	case KindInt:
		return a.NextIntIndex()
	case KindLong:
		return a.NextLongIndex()
	case KindFloat:
		return a.NextFloatIndex()
	case KindDouble:
		return a.NextDoubleIndex()
	case KindBool:
		return a.NextBoolIndex()
	case KindRef:
		return a.NextRefIndex()
	default:
		return -1
	}
}

// Total snapshots the six counters
func (a *Allocator) Total() Total {
	return Total{
		Ints:    a.ints,
		Longs:   a.longs,
		Floats:  a.floats,
		Doubles: a.doubles,
		Bools:   a.bools,
		Refs:    a.refs,
	}
}

// MemoryTotal makes an Allocator usable as a Provider
func (a *Allocator) MemoryTotal() Total {
	return a.Total()
}
