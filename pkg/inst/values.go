package inst

import "plvm/pkg/mem"

// ValueHolder is the accumulator shared by all instructions of a run.
// The static kind of an expression decides which slot it writes.
type ValueHolder struct {
	Int    int32
	Long   int64
	Float  float32
	Double float64
	Bool   bool
	Ref    any
}

// Read returns the slot of the given kind as an untyped value
func (h *ValueHolder) Read(k mem.Kind) any {
	switch k {
	case mem.KindInt:
		return h.Int
	case mem.KindLong:
		return h.Long
	case mem.KindFloat:
		return h.Float
	case mem.KindDouble:
		return h.Double
	case mem.KindBool:
		return h.Bool
	case mem.KindRef:
		return h.Ref
	default:
		return nil
	}
}

// Accessor moves values of one slot kind between frames and the holder.
type Accessor[T any] struct {
	Kind  mem.Kind
	Load  func(m *RuntimeMemory, i int) T
	Store func(m *RuntimeMemory, i int, v T)
	Get   func(h *ValueHolder) T
	Put   func(h *ValueHolder, v T)
}

var Ints = Accessor[int32]{
	Kind:  mem.KindInt,
	Load:  (*RuntimeMemory).GetInt,
	Store: (*RuntimeMemory).SetInt,
	Get:   func(h *ValueHolder) int32 { return h.Int },
	Put:   func(h *ValueHolder, v int32) { h.Int = v },
}

var Longs = Accessor[int64]{
	Kind:  mem.KindLong,
	Load:  (*RuntimeMemory).GetLong,
	Store: (*RuntimeMemory).SetLong,
	Get:   func(h *ValueHolder) int64 { return h.Long },
	Put:   func(h *ValueHolder, v int64) { h.Long = v },
}

var Floats = Accessor[float32]{
	Kind:  mem.KindFloat,
	Load:  (*RuntimeMemory).GetFloat,
	Store: (*RuntimeMemory).SetFloat,
	Get:   func(h *ValueHolder) float32 { return h.Float },
	Put:   func(h *ValueHolder, v float32) { h.Float = v },
}

var Doubles = Accessor[float64]{
	Kind:  mem.KindDouble,
	Load:  (*RuntimeMemory).GetDouble,
	Store: (*RuntimeMemory).SetDouble,
	Get:   func(h *ValueHolder) float64 { return h.Double },
	Put:   func(h *ValueHolder, v float64) { h.Double = v },
}

var Bools = Accessor[bool]{
	Kind:  mem.KindBool,
	Load:  (*RuntimeMemory).GetBool,
	Store: (*RuntimeMemory).SetBool,
	Get:   func(h *ValueHolder) bool { return h.Bool },
	Put:   func(h *ValueHolder, v bool) { h.Bool = v },
}

var Refs = Accessor[any]{
	Kind:  mem.KindRef,
	Load:  (*RuntimeMemory).GetRef,
	Store: (*RuntimeMemory).SetRef,
	Get:   func(h *ValueHolder) any { return h.Ref },
	Put:   func(h *ValueHolder, v any) { h.Ref = v },
}
