package inst

import "plvm/pkg/mem"

// The helpers below pick the instantiation matching a statically known
// slot kind while the program is generated.

func GetVarOf(k mem.Kind, depth, index int) Instruction {
	switch k {
	case mem.KindInt:
		return &GetVar[int32]{Acc: Ints, Depth: depth, Index: index}
	case mem.KindLong:
		return &GetVar[int64]{Acc: Longs, Depth: depth, Index: index}
	case mem.KindFloat:
		return &GetVar[float32]{Acc: Floats, Depth: depth, Index: index}
	case mem.KindDouble:
		return &GetVar[float64]{Acc: Doubles, Depth: depth, Index: index}
	case mem.KindBool:
		return &GetVar[bool]{Acc: Bools, Depth: depth, Index: index}
	default:
		return &GetVar[any]{Acc: Refs, Depth: depth, Index: index}
	}
}

func SetVarOf(k mem.Kind, depth, index int, value Instruction) Instruction {
	switch k {
	case mem.KindInt:
		return &SetVar[int32]{Acc: Ints, Depth: depth, Index: index, Value: value}
	case mem.KindLong:
		return &SetVar[int64]{Acc: Longs, Depth: depth, Index: index, Value: value}
	case mem.KindFloat:
		return &SetVar[float32]{Acc: Floats, Depth: depth, Index: index, Value: value}
	case mem.KindDouble:
		return &SetVar[float64]{Acc: Doubles, Depth: depth, Index: index, Value: value}
	case mem.KindBool:
		return &SetVar[bool]{Acc: Bools, Depth: depth, Index: index, Value: value}
	default:
		return &SetVar[any]{Acc: Refs, Depth: depth, Index: index, Value: value}
	}
}

func GetFieldOf(k mem.Kind, object Instruction, index int, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &GetField[int32]{Info: i, Acc: Ints, Object: object, Index: index}
	case mem.KindLong:
		return &GetField[int64]{Info: i, Acc: Longs, Object: object, Index: index}
	case mem.KindFloat:
		return &GetField[float32]{Info: i, Acc: Floats, Object: object, Index: index}
	case mem.KindDouble:
		return &GetField[float64]{Info: i, Acc: Doubles, Object: object, Index: index}
	case mem.KindBool:
		return &GetField[bool]{Info: i, Acc: Bools, Object: object, Index: index}
	default:
		return &GetField[any]{Info: i, Acc: Refs, Object: object, Index: index}
	}
}

func SetFieldOf(k mem.Kind, object Instruction, index int, value Instruction, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &SetField[int32]{Info: i, Acc: Ints, Object: object, Index: index, Value: value}
	case mem.KindLong:
		return &SetField[int64]{Info: i, Acc: Longs, Object: object, Index: index, Value: value}
	case mem.KindFloat:
		return &SetField[float32]{Info: i, Acc: Floats, Object: object, Index: index, Value: value}
	case mem.KindDouble:
		return &SetField[float64]{Info: i, Acc: Doubles, Object: object, Index: index, Value: value}
	case mem.KindBool:
		return &SetField[bool]{Info: i, Acc: Bools, Object: object, Index: index, Value: value}
	default:
		return &SetField[any]{Info: i, Acc: Refs, Object: object, Index: index, Value: value}
	}
}

func UpdateFieldOf(k mem.Kind, op Op, object Instruction, index int, rhs Instruction, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &UpdateField[int32]{Info: i, Acc: Ints, Object: object, Index: index, Op: IntArith[int32](op), Rhs: rhs}
	case mem.KindLong:
		return &UpdateField[int64]{Info: i, Acc: Longs, Object: object, Index: index, Op: IntArith[int64](op), Rhs: rhs}
	case mem.KindFloat:
		return &UpdateField[float32]{Info: i, Acc: Floats, Object: object, Index: index, Op: FloatArith[float32](op), Rhs: rhs}
	case mem.KindDouble:
		return &UpdateField[float64]{Info: i, Acc: Doubles, Object: object, Index: index, Op: FloatArith[float64](op), Rhs: rhs}
	default:
		return &UpdateField[any]{Info: i, Acc: Refs, Object: object, Index: index, Op: ConcatStrings, Rhs: rhs}
	}
}

func NewArrayOf(k mem.Kind, length Instruction, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &NewArray[int32]{Info: i, Length: length}
	case mem.KindLong:
		return &NewArray[int64]{Info: i, Length: length}
	case mem.KindFloat:
		return &NewArray[float32]{Info: i, Length: length}
	case mem.KindDouble:
		return &NewArray[float64]{Info: i, Length: length}
	case mem.KindBool:
		return &NewArray[bool]{Info: i, Length: length}
	default:
		return &NewArray[any]{Info: i, Length: length}
	}
}

func ArrayLiteralOf(k mem.Kind, elems []Instruction, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &ArrayLiteral[int32]{Info: i, Acc: Ints, Elems: elems}
	case mem.KindLong:
		return &ArrayLiteral[int64]{Info: i, Acc: Longs, Elems: elems}
	case mem.KindFloat:
		return &ArrayLiteral[float32]{Info: i, Acc: Floats, Elems: elems}
	case mem.KindDouble:
		return &ArrayLiteral[float64]{Info: i, Acc: Doubles, Elems: elems}
	case mem.KindBool:
		return &ArrayLiteral[bool]{Info: i, Acc: Bools, Elems: elems}
	default:
		return &ArrayLiteral[any]{Info: i, Acc: Refs, Elems: elems}
	}
}

func GetIndexOf(k mem.Kind, array, index Instruction, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &GetIndex[int32]{Info: i, Acc: Ints, Array: array, Index: index}
	case mem.KindLong:
		return &GetIndex[int64]{Info: i, Acc: Longs, Array: array, Index: index}
	case mem.KindFloat:
		return &GetIndex[float32]{Info: i, Acc: Floats, Array: array, Index: index}
	case mem.KindDouble:
		return &GetIndex[float64]{Info: i, Acc: Doubles, Array: array, Index: index}
	case mem.KindBool:
		return &GetIndex[bool]{Info: i, Acc: Bools, Array: array, Index: index}
	default:
		return &GetIndex[any]{Info: i, Acc: Refs, Array: array, Index: index}
	}
}

func SetIndexOf(k mem.Kind, array, index, value Instruction, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &SetIndex[int32]{Info: i, Acc: Ints, Array: array, Index: index, Value: value}
	case mem.KindLong:
		return &SetIndex[int64]{Info: i, Acc: Longs, Array: array, Index: index, Value: value}
	case mem.KindFloat:
		return &SetIndex[float32]{Info: i, Acc: Floats, Array: array, Index: index, Value: value}
	case mem.KindDouble:
		return &SetIndex[float64]{Info: i, Acc: Doubles, Array: array, Index: index, Value: value}
	case mem.KindBool:
		return &SetIndex[bool]{Info: i, Acc: Bools, Array: array, Index: index, Value: value}
	default:
		return &SetIndex[any]{Info: i, Acc: Refs, Array: array, Index: index, Value: value}
	}
}

func UpdateIndexOf(k mem.Kind, op Op, array, index, rhs Instruction, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &UpdateIndex[int32]{Info: i, Acc: Ints, Array: array, Index: index, Op: IntArith[int32](op), Rhs: rhs}
	case mem.KindLong:
		return &UpdateIndex[int64]{Info: i, Acc: Longs, Array: array, Index: index, Op: IntArith[int64](op), Rhs: rhs}
	case mem.KindFloat:
		return &UpdateIndex[float32]{Info: i, Acc: Floats, Array: array, Index: index, Op: FloatArith[float32](op), Rhs: rhs}
	case mem.KindDouble:
		return &UpdateIndex[float64]{Info: i, Acc: Doubles, Array: array, Index: index, Op: FloatArith[float64](op), Rhs: rhs}
	default:
		return &UpdateIndex[any]{Info: i, Acc: Refs, Array: array, Index: index, Op: ConcatStrings, Rhs: rhs}
	}
}

// ArithOf builds an arithmetic instruction; + on references concatenates strings
func ArithOf(k mem.Kind, op Op, left, right Instruction, info *StackInfo) Instruction {
	i := Info{Stack: info}
	switch k {
	case mem.KindInt:
		return &Arith[int32]{Info: i, Acc: Ints, Fn: IntArith[int32](op), Left: left, Right: right}
	case mem.KindLong:
		return &Arith[int64]{Info: i, Acc: Longs, Fn: IntArith[int64](op), Left: left, Right: right}
	case mem.KindFloat:
		return &Arith[float32]{Info: i, Acc: Floats, Fn: FloatArith[float32](op), Left: left, Right: right}
	case mem.KindDouble:
		return &Arith[float64]{Info: i, Acc: Doubles, Fn: FloatArith[float64](op), Left: left, Right: right}
	default:
		return &Concat{Left: left, Right: right}
	}
}

// CompareOf builds a comparison leaving its result in the bool slot
func CompareOf(k mem.Kind, op Op, left, right Instruction) Instruction {
	switch k {
	case mem.KindInt:
		return &Cmp[int32]{Acc: Ints, Fn: Compare[int32](op), Left: left, Right: right}
	case mem.KindLong:
		return &Cmp[int64]{Acc: Longs, Fn: Compare[int64](op), Left: left, Right: right}
	case mem.KindFloat:
		return &Cmp[float32]{Acc: Floats, Fn: Compare[float32](op), Left: left, Right: right}
	case mem.KindDouble:
		return &Cmp[float64]{Acc: Doubles, Fn: Compare[float64](op), Left: left, Right: right}
	case mem.KindBool:
		return &Cmp[bool]{Acc: Bools, Fn: Equality[bool](op), Left: left, Right: right}
	default:
		return &Cmp[any]{Acc: Refs, Fn: Equality[any](op), Left: left, Right: right}
	}
}

func NegateOf(k mem.Kind, value Instruction) Instruction {
	switch k {
	case mem.KindInt:
		return &Negate[int32]{Acc: Ints, Value: value}
	case mem.KindLong:
		return &Negate[int64]{Acc: Longs, Value: value}
	case mem.KindFloat:
		return &Negate[float32]{Acc: Floats, Value: value}
	default:
		return &Negate[float64]{Acc: Doubles, Value: value}
	}
}

// ZeroOf loads the zero value of kind k
func ZeroOf(k mem.Kind) Instruction {
	switch k {
	case mem.KindInt:
		return &Literal[int32]{Acc: Ints}
	case mem.KindLong:
		return &Literal[int64]{Acc: Longs}
	case mem.KindFloat:
		return &Literal[float32]{Acc: Floats}
	case mem.KindDouble:
		return &Literal[float64]{Acc: Doubles}
	case mem.KindBool:
		return &Literal[bool]{Acc: Bools}
	default:
		return &Literal[any]{Acc: Refs}
	}
}
