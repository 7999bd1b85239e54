package bt

import "fmt"

// Inverter flips Success and Failure of its only child; Running passes through.
type Inverter struct {
	baseNode
	child Node
}

func NewInverter(name string, child Node) (*Inverter, error) {
	if isNil(child) {
		return nil, fmt.Errorf("inverter %q: %w", name, ErrNilChild)
	}
	d := &Inverter{child: child}
	d.init(name)
	return d, nil
}

func (d *Inverter) Evaluate() Status {
	switch d.child.Evaluate() {
	case StatusSuccess:
		return d.report(StatusFailure)
	case StatusFailure:
		return d.report(StatusSuccess)
	case StatusRunning:
		return d.report(StatusRunning)
	}
	// a child outside the status domain counts as failed, and is inverted
	return d.report(StatusSuccess)
}

func (d *Inverter) Kind() Kind { return KindInverter }

// Child returns the wrapped node.
func (d *Inverter) Child() Node { return d.child }

func (d *Inverter) Children() []Node { return []Node{d.child} }
