package interpreter

import (
	"context"
	"sync"

	"plvm/pkg/inst"
)

// Step is one instruction boundary of a stepped run
type Step struct {
	N    int             // 1 for the first instruction
	Info *inst.StackInfo // nil for instructions without a source scope
}

// Session is a run paused before every instruction. Callers advance it
// with Next and must finish it with Wait or Abort.
type Session struct {
	boundary chan *inst.StackInfo
	resume   chan struct{}
	abort    chan struct{}
	release  chan struct{}
	done     chan struct{}

	abortOnce   sync.Once
	releaseOnce sync.Once

	pending bool // a boundary was handed out and is waiting for resume
	n       int

	value Value
	err   error
}

// Start runs the script in the background, stopping at the first instruction
func (i *Interpreter) Start(ctx context.Context) *Session {
	if ctx == nil {
		ctx = context.Background()
	}

	s := &Session{
		boundary: make(chan *inst.StackInfo),
		resume:   make(chan struct{}),
		abort:    make(chan struct{}),
		release:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		s.value, s.err = i.run(ctx, func(info *inst.StackInfo) error {
			return s.wait(ctx, info)
		})
	}()

	return s
}

// wait parks the run at a boundary until the session lets it go on
func (s *Session) wait(ctx context.Context, info *inst.StackInfo) error {
	if err := s.aborted(); err != nil {
		return err
	}

	select {
	case s.boundary <- info:
	case <-s.release:
		return s.aborted()
	case <-s.abort:
		return inst.ErrAborted
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-s.resume:
		return nil
	case <-s.release:
		return s.aborted()
	case <-s.abort:
		return inst.ErrAborted
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) aborted() error {
	select {
	case <-s.abort:
		return inst.ErrAborted
	default:
		return nil
	}
}

// Next executes up to the next instruction boundary. It returns false once
// the run has finished.
func (s *Session) Next() (Step, bool) {
	if s.pending {
		s.pending = false
		select {
		case s.resume <- struct{}{}:
		case <-s.done:
			return Step{}, false
		}
	}

	select {
	case info := <-s.boundary:
		s.pending = true
		s.n++
		return Step{N: s.n, Info: info}, true
	case <-s.done:
		return Step{}, false
	}
}

// Abort stops the run at its next boundary. Wait then reports ErrAborted.
func (s *Session) Abort() {
	s.abortOnce.Do(func() { close(s.abort) })
}

// Wait lets the run go on without pausing and returns its result
func (s *Session) Wait() (Value, error) {
	s.releaseOnce.Do(func() { close(s.release) })
	<-s.done
	return s.value, s.err
}
