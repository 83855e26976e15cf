package inst

import (
	"fmt"
	"strconv"
)

// Cast converts the holder slot of one numeric kind into another
type Cast[F, T Number] struct {
	From Accessor[F]
	To   Accessor[T]
}

func (c *Cast[F, T]) Execute(_ *ActionContext, exec *Execution) error {
	c.To.Put(&exec.Values, T(c.From.Get(&exec.Values)))
	return nil
}

func (c *Cast[F, T]) StackInfo() *StackInfo { return nil }

// Format turns the holder slot into a string reference
type Format[T any] struct {
	Acc Accessor[T]
	Fn  func(T) string
}

func (f *Format[T]) Execute(_ *ActionContext, exec *Execution) error {
	exec.Values.Ref = f.Fn(f.Acc.Get(&exec.Values))
	return nil
}

func (f *Format[T]) StackInfo() *StackInfo { return nil }

func FormatInt(v int32) string     { return strconv.FormatInt(int64(v), 10) }
func FormatLong(v int64) string    { return strconv.FormatInt(v, 10) }
func FormatFloat(v float32) string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func FormatDouble(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
func FormatBool(v bool) string { return strconv.FormatBool(v) }

// Parse converts the string reference in the holder into another kind
type Parse[T any] struct {
	Info
	Acc Accessor[T]
	Fn  func(string) (T, error)
}

func (p *Parse[T]) Execute(_ *ActionContext, exec *Execution) error {
	s, ok := exec.Values.Ref.(string)
	if !ok {
		return ErrNullPointer
	}
	v, err := p.Fn(s)
	if err != nil {
		return fmt.Errorf("%w: cannot convert %q", ErrInvalidArgument, s)
	}
	p.Acc.Put(&exec.Values, v)
	return nil
}

func ParseInt(s string) (int32, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	return int32(n), err
}

func ParseLong(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func ParseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

func ParseDouble(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

func ParseBool(s string) (bool, error) {
	return strconv.ParseBool(s)
}
