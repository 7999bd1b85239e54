package npc

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// TargetSource lists the hostile candidates currently in the world.
type TargetSource func(ctx context.Context) ([]Target, error)

// ProximitySensor plays the part of a trigger sphere around the agent.
// Enter fires only when a candidate crosses into the sensing radius, so a
// candidate that was already inside when the target left is not acquired
// until it leaves and comes back. The target is dropped once it leaves the
// radius or the world.
type ProximitySensor struct {
	source TargetSource

	mu     sync.Mutex
	inside map[uuid.UUID]map[string]struct{}
}

func NewProximitySensor(source TargetSource) *ProximitySensor {
	return &ProximitySensor{
		source: source,
		inside: make(map[uuid.UUID]map[string]struct{}),
	}
}

func (s *ProximitySensor) Name() string { return "proximity" }

func (s *ProximitySensor) Update(ctx context.Context, a *Agent) error {
	candidates, err := s.source(ctx)
	if err != nil {
		return err
	}
	pos := a.nav.Position()

	now := make(map[string]struct{}, len(candidates))
	var seen []Target
	for _, c := range candidates {
		if pos.Distance(c.Position) <= a.senseRadius {
			now[c.ID] = struct{}{}
			seen = append(seen, c)
		}
	}

	s.mu.Lock()
	prev := s.inside[a.ID()]
	s.inside[a.ID()] = now
	s.mu.Unlock()

	if cur, ok := a.Hostile(); ok {
		if _, in := now[cur.ID]; !in {
			a.OnSightExit(cur.ID)
		}
	}

	for _, c := range seen {
		if a.TrackHostile(c) {
			continue
		}
		if _, was := prev[c.ID]; !was {
			a.OnSightEnter(c)
		}
	}
	return nil
}
