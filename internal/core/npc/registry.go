package npc

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zeusync/behave/internal/core/bt"
)

// Params are the free-form parameters of a leaf in a tree definition.
type Params map[string]any

// Float reads a numeric parameter.
func (p Params) Float(key string) (float64, bool, error) {
	v, ok := p[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	default:
		return 0, true, fmt.Errorf("param %s: want a number, got %T", key, v)
	}
}

// String reads a string parameter.
func (p Params) String(key string) (string, bool, error) {
	v, ok := p[key]
	if !ok {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", true, fmt.Errorf("param %s: want a string, got %T", key, v)
	}
	return s, true, nil
}

// Duration reads a duration written as a Go duration string ("1.5s") or as
// a number of seconds.
func (p Params) Duration(key string) (time.Duration, bool, error) {
	v, ok := p[key]
	if !ok {
		return 0, false, nil
	}
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, true, fmt.Errorf("param %s: %w", key, err)
		}
		return parsed, true, nil
	case int:
		return time.Duration(d) * time.Second, true, nil
	case float64:
		return time.Duration(d * float64(time.Second)), true, nil
	default:
		return 0, true, fmt.Errorf("param %s: want a duration, got %T", key, v)
	}
}

// LeafFactory builds the callback of a named leaf for one agent.
type LeafFactory func(a *Agent, p Params) (bt.ActionFunc, error)

// Registry maps leaf names used in tree definitions to factories.
type Registry struct {
	mu     sync.RWMutex
	leaves map[string]LeafFactory
}

func NewRegistry() *Registry {
	return &Registry{leaves: make(map[string]LeafFactory)}
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory LeafFactory) {
	r.mu.Lock()
	r.leaves[name] = factory
	r.mu.Unlock()
}

// NewLeaf builds the callback registered as name.
func (r *Registry) NewLeaf(name string, a *Agent, p Params) (bt.ActionFunc, error) {
	r.mu.RLock()
	f := r.leaves[name]
	r.mu.RUnlock()
	if f == nil {
		return nil, fmt.Errorf("unknown leaf: %s", name)
	}
	fn, err := f(a, p)
	if err != nil {
		return nil, fmt.Errorf("leaf %s: %w", name, err)
	}
	return fn, nil
}

// Names returns the registered leaf names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.leaves))
	for name := range r.leaves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func simple(build func(a *Agent) bt.ActionFunc) LeafFactory {
	return func(a *Agent, _ Params) (bt.ActionFunc, error) { return build(a), nil }
}

// RegisterBuiltins registers the leaf library.
func RegisterBuiltins(r *Registry) {
	r.Register("has_hostile", simple(HasHostile))
	r.Register("chase_hostile", simple(ChaseHostile))
	r.Register("has_target", simple(HasTarget))
	r.Register("at_destination", simple(AtDestination))
	r.Register("clear_target", simple(ClearTarget))
	r.Register("move_to_target", simple(MoveToTarget))
	r.Register("charge", simple(Charge))
	r.Register("attack", simple(Attack))

	r.Register("hostile_in_range", func(a *Agent, p Params) (bt.ActionFunc, error) {
		rng, ok, err := p.Float("range")
		if err != nil {
			return nil, err
		}
		if !ok {
			rng = a.attackRange
		}
		return HostileInRange(a, rng), nil
	})
	r.Register("pick_wander_target", func(a *Agent, p Params) (bt.ActionFunc, error) {
		radius, _, err := p.Float("radius")
		if err != nil {
			return nil, err
		}
		return PickWanderTarget(a, radius), nil
	})
	r.Register("wait", func(a *Agent, p Params) (bt.ActionFunc, error) {
		d, ok, err := p.Duration("duration")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("duration parameter is required")
		}
		key, ok, err := p.String("key")
		if err != nil {
			return nil, err
		}
		if !ok {
			key = "wait"
		}
		return Wait(a, key, d), nil
	})
	r.Register("status", func(_ *Agent, p Params) (bt.ActionFunc, error) {
		s, ok, err := p.String("status")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("status parameter is required")
		}
		st, err := bt.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		return Fixed(st), nil
	})
}
