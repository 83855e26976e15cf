package interpreter_test

import (
	"context"
	"testing"

	"plvm/pkg/interpreter"

	"github.com/nalgeon/be"
)

const loopScript = `var x: int = 1; for (var i: int = 0; i < 3; i += 1) { x += i; } return: x;`

func drain(s *interpreter.Session) int {
	n := 0
	for {
		step, ok := s.Next()
		if !ok {
			return n
		}
		n = step.N
	}
}

func TestSessionMatchesRun(t *testing.T) {
	it := compile(t, loopScript)
	want, err := it.Run(context.Background())
	be.Err(t, err, nil)

	s := it.Start(context.Background())
	steps := drain(s)
	got, err := s.Wait()
	be.Err(t, err, nil)
	be.Equal(t, got, want)
	be.True(t, steps > 10)

	again := it.Start(context.Background())
	be.Equal(t, drain(again), steps)
	_, err = again.Wait()
	be.Err(t, err, nil)
}

func TestSessionReportsScopes(t *testing.T) {
	it := compile(t, `function f(a: int): int { return: a * 2; } return: f(4);`)
	s := it.Start(context.Background())

	var inside bool
	for {
		step, ok := s.Next()
		if !ok {
			break
		}
		if step.Info != nil && step.Info.Function == "f" {
			inside = true
		}
	}

	v, err := s.Wait()
	be.Err(t, err, nil)
	be.Equal(t, v.Raw, any(int32(8)))
	be.True(t, inside)
}

func TestSessionAbort(t *testing.T) {
	it := compile(t, `var n: int = 0; while (true) { n += 1; }`)
	s := it.Start(context.Background())
	for range 50 {
		_, ok := s.Next()
		be.True(t, ok)
	}

	s.Abort()
	_, err := s.Wait()
	be.Err(t, err, interpreter.ErrAborted)

	_, ok := s.Next()
	be.True(t, !ok)
}

func TestSessionWaitRunsFree(t *testing.T) {
	it := compile(t, loopScript)
	s := it.Start(context.Background())
	_, ok := s.Next()
	be.True(t, ok)

	v, err := s.Wait()
	be.Err(t, err, nil)
	be.Equal(t, v.Raw, any(int32(4)))
}

func TestSessionCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := compile(t, `while (true) { }`).Start(ctx)
	_, ok := s.Next()
	be.True(t, ok)

	cancel()
	_, err := s.Wait()
	be.Err(t, err, context.Canceled)
}

func TestFrameDuringSession(t *testing.T) {
	it := compile(t, loopScript)
	s := it.Start(context.Background())

	seen := 0
	for {
		_, ok := s.Next()
		if !ok {
			break
		}
		if frame := it.Frame(); frame != nil {
			_, found := frame.Lookup("x")
			be.True(t, found)
			seen++
		}
	}

	_, err := s.Wait()
	be.Err(t, err, nil)
	be.True(t, seen > 0)
}
