package inst

import "plvm/pkg/mem"

// RuntimeMemory is one call frame: a fixed-size array per slot kind.
type RuntimeMemory struct {
	ints    []int32
	longs   []int64
	floats  []float32
	doubles []float64
	bools   []bool
	refs    []any
}

// NewRuntimeMemory allocates a frame shaped by total
func NewRuntimeMemory(total mem.Total) *RuntimeMemory {
	return &RuntimeMemory{
		ints:    make([]int32, total.Ints),
		longs:   make([]int64, total.Longs),
		floats:  make([]float32, total.Floats),
		doubles: make([]float64, total.Doubles),
		bools:   make([]bool, total.Bools),
		refs:    make([]any, total.Refs),
	}
}

func (m *RuntimeMemory) GetInt(i int) int32         { return m.ints[i] }
func (m *RuntimeMemory) SetInt(i int, v int32)      { m.ints[i] = v }
func (m *RuntimeMemory) GetLong(i int) int64        { return m.longs[i] }
func (m *RuntimeMemory) SetLong(i int, v int64)     { m.longs[i] = v }
func (m *RuntimeMemory) GetFloat(i int) float32     { return m.floats[i] }
func (m *RuntimeMemory) SetFloat(i int, v float32)  { m.floats[i] = v }
func (m *RuntimeMemory) GetDouble(i int) float64    { return m.doubles[i] }
func (m *RuntimeMemory) SetDouble(i int, v float64) { m.doubles[i] = v }
func (m *RuntimeMemory) GetBool(i int) bool         { return m.bools[i] }
func (m *RuntimeMemory) SetBool(i int, v bool)      { m.bools[i] = v }
func (m *RuntimeMemory) GetRef(i int) any           { return m.refs[i] }
func (m *RuntimeMemory) SetRef(i int, v any)        { m.refs[i] = v }

// Total returns the shape of the frame
func (m *RuntimeMemory) Total() mem.Total {
	return mem.Total{
		Ints:    len(m.ints),
		Longs:   len(m.longs),
		Floats:  len(m.floats),
		Doubles: len(m.doubles),
		Bools:   len(m.bools),
		Refs:    len(m.refs),
	}
}

// Read returns the slot content of the given kind as an untyped value
func (m *RuntimeMemory) Read(k mem.Kind, i int) any {
	switch k {
	case mem.KindInt:
		return m.ints[i]
	case mem.KindLong:
		return m.longs[i]
	case mem.KindFloat:
		return m.floats[i]
	case mem.KindDouble:
		return m.doubles[i]
	case mem.KindBool:
		return m.bools[i]
	case mem.KindRef:
		return m.refs[i]
	default:
		return nil
	}
}
