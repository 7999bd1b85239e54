package bt

import "fmt"

// ActionFunc is a leaf callback. Conditions and actions share this signature.
type ActionFunc func() Status

// ActionNode is a leaf that reports the result of its callback.
type ActionNode struct {
	baseNode
	fn ActionFunc
}

// NewAction wraps fn as a leaf node.
func NewAction(name string, fn ActionFunc) (*ActionNode, error) {
	if fn == nil {
		return nil, fmt.Errorf("action %q: %w", name, ErrNilCallback)
	}
	a := &ActionNode{fn: fn}
	a.init(name)
	return a, nil
}

// Evaluate invokes the callback once. A value outside the three statuses is
// reported as Failure.
func (a *ActionNode) Evaluate() Status {
	st := a.fn()
	if !st.Valid() {
		st = StatusFailure
	}
	return a.report(st)
}

func (a *ActionNode) Kind() Kind { return KindAction }
