package npc

import (
	"sync"
	"time"
)

// Navigator moves an agent through the world. Trees never move agents
// directly; movement leaves issue commands to a Navigator.
type Navigator interface {
	Position() Vec2
	SetDestination(dst Vec2)
	Destination() (Vec2, bool)
	// HasPath reports whether the navigator is still travelling.
	HasPath() bool
	Stop()
	Advance(dt time.Duration)
}

var _ Navigator = (*LinearNavigator)(nil)

// LinearNavigator walks in a straight line at a fixed speed.
type LinearNavigator struct {
	mu      sync.RWMutex
	pos     Vec2
	dst     Vec2
	hasDst  bool
	speed   float64
	arrival float64
}

// NewLinearNavigator places a navigator at start. Speed is in units per second;
// within arrival of the destination the navigator snaps onto it and stops.
func NewLinearNavigator(start Vec2, speed, arrival float64) *LinearNavigator {
	return &LinearNavigator{pos: start, speed: speed, arrival: arrival}
}

func (n *LinearNavigator) Position() Vec2 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.pos
}

func (n *LinearNavigator) SetDestination(dst Vec2) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dst = dst
	n.hasDst = true
}

func (n *LinearNavigator) Destination() (Vec2, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.dst, n.hasDst
}

func (n *LinearNavigator) HasPath() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.hasDst
}

func (n *LinearNavigator) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hasDst = false
}

func (n *LinearNavigator) Advance(dt time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.hasDst || dt <= 0 {
		return
	}
	delta := n.dst.Sub(n.pos)
	dist := delta.Len()
	step := n.speed * dt.Seconds()
	if dist <= step || dist-step <= n.arrival {
		n.pos = n.dst
		n.hasDst = false
		return
	}
	n.pos = n.pos.Add(delta.Scale(step / dist))
}
