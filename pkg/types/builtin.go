package types

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"plvm/pkg/inst"
	"plvm/pkg/mem"
)

// Primitive is one of the built-in value types. Each has a single instance.
type Primitive struct {
	Base
	name   string
	kind   mem.Kind
	fields func(p *Primitive, ctx *TypeContext, name string) *Field
}

func (p *Primitive) Kind() mem.Kind { return p.kind }
func (p *Primitive) String() string { return p.name }

func (p *Primitive) Field(ctx *TypeContext, name string, _ TypeInstance) *Field {
	if p.fields == nil {
		return nil
	}
	return p.fields(p, ctx, name)
}

// IsNumeric reports int, long, float and double
func IsNumeric(t TypeInstance) bool {
	return t == Int || t == Long || t == Float || t == Double
}

// IsIntegral reports int and long
func IsIntegral(t TypeInstance) bool {
	return t == Int || t == Long
}

// IsPrimitive reports the types whose values do not live in reference slots
func IsPrimitive(t TypeInstance) bool {
	return t.Kind() != mem.KindRef
}

var (
	Int    = &Primitive{name: "int", kind: mem.KindInt}
	Long   = &Primitive{name: "long", kind: mem.KindLong}
	Float  = &Primitive{name: "float", kind: mem.KindFloat}
	Double = &Primitive{name: "double", kind: mem.KindDouble}
	Bool   = &Primitive{name: "bool", kind: mem.KindBool}
	String = &Primitive{name: "string", kind: mem.KindRef}
	Void   = &Primitive{name: "void", kind: mem.KindNone}
	Error  = &Primitive{name: "error", kind: mem.KindRef}

	// Null is the type of the null literal, assignable to every reference type
	Null = &Primitive{name: "null", kind: mem.KindRef}
)

func init() {
	Int.fields = numericFields(inst.Ints, inst.FormatInt)
	Long.fields = numericFields(inst.Longs, inst.FormatLong)
	Float.fields = numericFields(inst.Floats, inst.FormatFloat)
	Double.fields = numericFields(inst.Doubles, inst.FormatDouble)
	Bool.fields = boolFields
	String.fields = stringFields
	Error.fields = errorFields
}

// Property builds a native field computed from the receiver in the holder
func Property(name string, t TypeInstance, native inst.Instruction) *Field {
	return &Field{Name: name, Type: t, Native: native}
}

// Args reads native call arguments out of the invocation frame
type Args struct {
	Mem    *inst.RuntimeMemory
	Params []Param
}

// Arg loads argument i through acc
func Arg[T any](a Args, acc inst.Accessor[T], i int) T {
	return acc.Load(a.Mem, a.Params[i].Index)
}

func (a Args) Int(i int) int32 {
	return a.Mem.GetInt(a.Params[i].Index)
}

func (a Args) Ref(i int) any {
	return a.Mem.GetRef(a.Params[i].Index)
}

// String reads a string argument, null reads as ""
func (a Args) String(i int) string {
	s, _ := a.Ref(i).(string)
	return s
}

// NativeMethod builds a method field backed by host code. recv reads the
// receiver from the holder when the member is accessed; body runs when the
// resulting function value is invoked.
func NativeMethod[R any](ctx *TypeContext, owner, name string, ret TypeInstance, params []TypeInstance,
	recv func(h *inst.ValueHolder) (R, error),
	body func(r R, args Args, exec *inst.Execution) error) *Field {
	ps, fixed := Signature(params...)
	desc := ctx.FunctionDescriptor(ps, ret, fixed)
	info := &inst.StackInfo{Class: owner, Function: name}
	native := inst.Method(name, info, mem.Total(fixed), recv,
		func(r R, m *inst.RuntimeMemory, exec *inst.Execution) error {
			return body(r, Args{Mem: m, Params: ps}, exec)
		})
	return &Field{Name: name, Type: ctx.FunctionType(desc), Native: native}
}

// ToString builds the toString method of a type whose values live in slots read by acc
func ToString[T any](ctx *TypeContext, owner string, acc inst.Accessor[T], format func(T) string) *Field {
	return NativeMethod(ctx, owner, "toString", String, nil,
		func(h *inst.ValueHolder) (T, error) { return acc.Get(h), nil },
		func(v T, _ Args, exec *inst.Execution) error {
			exec.Values.Ref = format(v)
			return nil
		})
}

func cast[F, T inst.Number](from inst.Accessor[F], to inst.Accessor[T]) inst.Instruction {
	if from.Kind == to.Kind {
		return inst.Nop{}
	}
	return &inst.Cast[F, T]{From: from, To: to}
}

func numericFields[T inst.Number](acc inst.Accessor[T], format func(T) string) func(*Primitive, *TypeContext, string) *Field {
	return func(p *Primitive, ctx *TypeContext, name string) *Field {
		switch name {
		case "toInt":
			return Property(name, Int, cast(acc, inst.Ints))
		case "toLong":
			return Property(name, Long, cast(acc, inst.Longs))
		case "toFloat":
			return Property(name, Float, cast(acc, inst.Floats))
		case "toDouble":
			return Property(name, Double, cast(acc, inst.Doubles))
		case "toString":
			return ToString(ctx, p.name, acc, format)
		}
		return nil
	}
}

func boolFields(p *Primitive, ctx *TypeContext, name string) *Field {
	if name == "toString" {
		return ToString(ctx, p.name, inst.Bools, inst.FormatBool)
	}
	return nil
}

func errorFields(p *Primitive, ctx *TypeContext, name string) *Field {
	switch name {
	case "message":
		return Property(name, String, inst.Func(func(_ *inst.ActionContext, exec *inst.Execution) error {
			err, ok := exec.Values.Ref.(error)
			if !ok {
				return inst.ErrNullPointer
			}
			exec.Values.Ref = inst.ErrorMessage(err)
			return nil
		}))
	case "toString":
		return NativeMethod(ctx, p.name, name, String, nil, inst.Receiver[error],
			func(err error, _ Args, exec *inst.Execution) error {
				exec.Values.Ref = inst.ErrorMessage(err)
				return nil
			})
	}
	return nil
}

func parse[T any](acc inst.Accessor[T], fn func(string) (T, error)) inst.Instruction {
	return &inst.Parse[T]{Acc: acc, Fn: fn}
}

// stringMethod builds a string method whose body does not fail
func stringMethod(ctx *TypeContext, name string, ret TypeInstance, params []TypeInstance,
	body func(s string, args Args, h *inst.ValueHolder)) *Field {
	return NativeMethod(ctx, "string", name, ret, params, inst.Receiver[string],
		func(s string, args Args, exec *inst.Execution) error {
			body(s, args, &exec.Values)
			return nil
		})
}

// indexOf is the character index of the first sub in s, -1 if absent
func indexOf(s, sub string) int {
	i := strings.Index(s, sub)
	if i < 0 {
		return -1
	}
	return utf8.RuneCountInString(s[:i])
}

func stringFields(_ *Primitive, ctx *TypeContext, name string) *Field {
	switch name {
	case "toInt":
		return Property(name, Int, parse(inst.Ints, inst.ParseInt))
	case "toLong":
		return Property(name, Long, parse(inst.Longs, inst.ParseLong))
	case "toFloat":
		return Property(name, Float, parse(inst.Floats, inst.ParseFloat))
	case "toDouble":
		return Property(name, Double, parse(inst.Doubles, inst.ParseDouble))
	case "toBool":
		return Property(name, Bool, parse(inst.Bools, inst.ParseBool))
	case "length":
		return Property(name, Int, inst.Length)
	case "toString":
		return stringMethod(ctx, name, String, nil, func(s string, _ Args, h *inst.ValueHolder) {
			h.Ref = s
		})
	case "indexOf":
		return stringMethod(ctx, name, Int, []TypeInstance{String}, func(s string, args Args, h *inst.ValueHolder) {
			h.Int = int32(indexOf(s, args.String(0)))
		})
	case "substring":
		return NativeMethod(ctx, "string", name, String, []TypeInstance{Int, Int}, inst.Receiver[string],
			func(s string, args Args, exec *inst.Execution) error {
				from, to := args.Int(0), args.Int(1)
				chars := []rune(s)
				if from < 0 || to < from || int(to) > len(chars) {
					return fmt.Errorf("%w: substring(%d, %d) of length %d", inst.ErrIndexOutOfRange, from, to, len(chars))
				}
				exec.Values.Ref = string(chars[from:to])
				return nil
			})
	case "trim":
		return stringMethod(ctx, name, String, nil, func(s string, _ Args, h *inst.ValueHolder) {
			h.Ref = strings.TrimSpace(s)
		})
	case "startsWith":
		return stringMethod(ctx, name, Bool, []TypeInstance{String}, func(s string, args Args, h *inst.ValueHolder) {
			h.Bool = strings.HasPrefix(s, args.String(0))
		})
	case "endsWith":
		return stringMethod(ctx, name, Bool, []TypeInstance{String}, func(s string, args Args, h *inst.ValueHolder) {
			h.Bool = strings.HasSuffix(s, args.String(0))
		})
	case "contains":
		return stringMethod(ctx, name, Bool, []TypeInstance{String}, func(s string, args Args, h *inst.ValueHolder) {
			h.Bool = strings.Contains(s, args.String(0))
		})
	case "toUpperCase":
		return stringMethod(ctx, name, String, nil, func(s string, _ Args, h *inst.ValueHolder) {
			h.Ref = strings.ToUpper(s)
		})
	case "toLowerCase":
		return stringMethod(ctx, name, String, nil, func(s string, _ Args, h *inst.ValueHolder) {
			h.Ref = strings.ToLower(s)
		})
	}
	return nil
}
