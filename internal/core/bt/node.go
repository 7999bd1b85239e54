package bt

import (
	"errors"
	"sync/atomic"
)

var (
	// ErrNilCallback is returned when an action node is built without a callback.
	ErrNilCallback = errors.New("bt: action callback is nil")
	// ErrNilChild is returned when a decorator, composite or tree is given a nil node.
	ErrNilChild = errors.New("bt: child node is nil")
)

// Kind names the variant of a node.
type Kind string

const (
	KindAction   Kind = "action"
	KindInverter Kind = "inverter"
	KindSequence Kind = "sequence"
	KindSelector Kind = "selector"
)

// Node is the single capability shared by every behavior tree node.
//
// Evaluate takes no arguments: whatever state a node needs is captured when it
// is constructed. LastStatus is diagnostic only and reports false until the
// node has been evaluated once.
type Node interface {
	Evaluate() Status
	LastStatus() (Status, bool)
	Name() string
	Kind() Kind
}

// Parent is implemented by nodes that own children. Children returns a copy;
// the shape of a tree never changes after construction.
type Parent interface {
	Node
	Children() []Node
}

const notEvaluated = -1

// baseNode carries the name and the last reported status of a node.
type baseNode struct {
	name string
	last atomic.Int32
}

func (b *baseNode) init(name string) {
	b.name = name
	b.last.Store(notEvaluated)
}

func (b *baseNode) Name() string { return b.name }

func (b *baseNode) LastStatus() (Status, bool) {
	v := b.last.Load()
	if v == notEvaluated {
		return StatusFailure, false
	}
	return Status(v), true
}

// report records st as the last status and returns it.
func (b *baseNode) report(st Status) Status {
	b.last.Store(int32(st))
	return st
}

// Must panics if err is non-nil. It is meant for trees whose shape is fixed in
// code, where a construction error is a programming error.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func copyChildren(children []Node) []Node {
	out := make([]Node, len(children))
	copy(out, children)
	return out
}
