package bt

// tb is the part of testing.TB that rapid.T also provides.
type tb interface {
	Helper()
	Fatalf(format string, args ...any)
}

// probe is a leaf that returns a fixed status and counts its evaluations.
type probe struct {
	*ActionNode
	calls int
	ret   Status
}

func newProbe(t tb, name string, ret Status) *probe {
	t.Helper()
	p := &probe{ret: ret}
	a, err := NewAction(name, func() Status {
		p.calls++
		return p.ret
	})
	if err != nil {
		t.Fatalf("new action: %v", err)
	}
	p.ActionNode = a
	return p
}

func probes(t tb, statuses ...Status) ([]*probe, []Node) {
	t.Helper()
	ps := make([]*probe, len(statuses))
	nodes := make([]Node, len(statuses))
	for i, st := range statuses {
		ps[i] = newProbe(t, "leaf", st)
		nodes[i] = ps[i]
	}
	return ps, nodes
}
