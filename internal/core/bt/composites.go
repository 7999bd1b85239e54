package bt

import (
	"fmt"
	"reflect"
)

// Composite nodes: Sequence, Selector

// Sequence is a logical AND over its children.
//
// It stops at the first Failure. A Running child does not stop the pass: the
// remaining children are still evaluated in the same tick, and the sequence
// reports Running once it reaches the end without a Failure.
type Sequence struct {
	baseNode
	children []Node
}

// NewSequence builds a sequence over children in the given order. An empty
// sequence succeeds.
func NewSequence(name string, children ...Node) (*Sequence, error) {
	if err := checkChildren("sequence", name, children); err != nil {
		return nil, err
	}
	s := &Sequence{children: copyChildren(children)}
	s.init(name)
	return s, nil
}

func (s *Sequence) Evaluate() Status {
	anyRunning := false
	for _, ch := range s.children {
		switch ch.Evaluate() {
		case StatusFailure:
			return s.report(StatusFailure)
		case StatusRunning:
			anyRunning = true
		}
	}
	if anyRunning {
		return s.report(StatusRunning)
	}
	return s.report(StatusSuccess)
}

func (s *Sequence) Kind() Kind { return KindSequence }

func (s *Sequence) Children() []Node { return copyChildren(s.children) }

// Selector is a logical OR over its children: the first Success or Running
// child decides the result. A selector whose children all fail, or which has
// none, fails.
type Selector struct {
	baseNode
	children []Node
}

func NewSelector(name string, children ...Node) (*Selector, error) {
	if err := checkChildren("selector", name, children); err != nil {
		return nil, err
	}
	s := &Selector{children: copyChildren(children)}
	s.init(name)
	return s, nil
}

func (s *Selector) Evaluate() Status {
	for _, ch := range s.children {
		switch ch.Evaluate() {
		case StatusSuccess:
			return s.report(StatusSuccess)
		case StatusRunning:
			return s.report(StatusRunning)
		}
	}
	return s.report(StatusFailure)
}

func (s *Selector) Kind() Kind { return KindSelector }

func (s *Selector) Children() []Node { return copyChildren(s.children) }

func checkChildren(kind, name string, children []Node) error {
	for i, ch := range children {
		if isNil(ch) {
			return fmt.Errorf("%s %q: child %d: %w", kind, name, i, ErrNilChild)
		}
	}
	return nil
}

// isNil catches both a nil interface and a typed nil pointer wrapped in one.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
