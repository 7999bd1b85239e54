package bt

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Tree holds the root of a behavior tree and is the tick-driver entry point.
// Every Tick is a fresh traversal from the root; nothing is resumed.
type Tree struct {
	name  string
	root  Node
	ticks atomic.Uint64
	hash  uint64
}

// NewTree wraps root. The shape is fingerprinted once since it never changes.
func NewTree(name string, root Node) (*Tree, error) {
	if isNil(root) {
		return nil, fmt.Errorf("tree %q: %w", name, ErrNilChild)
	}
	t := &Tree{name: name, root: root}
	t.hash = fingerprint(root)
	return t, nil
}

func (t *Tree) Name() string { return t.name }
func (t *Tree) Root() Node   { return t.root }

// Tick evaluates the root once.
func (t *Tree) Tick() Status {
	t.ticks.Add(1)
	return t.root.Evaluate()
}

// Ticks returns how many times Tick has been called.
func (t *Tree) Ticks() uint64 { return t.ticks.Load() }

// Fingerprint identifies the shape of the tree: node kinds, names and child
// order. Trees built from the same definition share a fingerprint.
func (t *Tree) Fingerprint() uint64 { return t.hash }

// WalkFunc is called for every node in pre-order. Returning false skips the
// node's children.
type WalkFunc func(path string, depth int, n Node) bool

// Walk visits the tree depth-first. Paths are the root name followed by child
// indexes, e.g. "root/1/0". A node reachable twice is visited twice.
func (t *Tree) Walk(fn WalkFunc) {
	walk(t.root, t.root.Name(), 0, fn)
}

func walk(n Node, path string, depth int, fn WalkFunc) {
	if !fn(path, depth, n) {
		return
	}
	p, ok := n.(Parent)
	if !ok {
		return
	}
	for i, ch := range p.Children() {
		walk(ch, path+"/"+strconv.Itoa(i), depth+1, fn)
	}
}

// NodeState is a point-in-time view of one node for observers.
type NodeState struct {
	Path      string  `json:"path"`
	Depth     int     `json:"depth"`
	Kind      Kind    `json:"kind"`
	Name      string  `json:"name"`
	Status    *Status `json:"status,omitempty"`
	Evaluated bool    `json:"evaluated"`
}

// Snapshot returns the last status of every node.
func (t *Tree) Snapshot() []NodeState {
	var out []NodeState
	t.Walk(func(path string, depth int, n Node) bool {
		ns := NodeState{Path: path, Depth: depth, Kind: n.Kind(), Name: n.Name()}
		if st, ok := n.LastStatus(); ok {
			ns.Status = &st
			ns.Evaluated = true
		}
		out = append(out, ns)
		return true
	})
	return out
}

func fingerprint(root Node) uint64 {
	d := xxhash.New()
	walk(root, root.Name(), 0, func(path string, depth int, n Node) bool {
		_, _ = d.WriteString(strconv.Itoa(depth))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(string(n.Kind()))
		_, _ = d.WriteString(":")
		_, _ = d.WriteString(n.Name())
		_, _ = d.WriteString(";")
		return true
	})
	return d.Sum64()
}
