package npc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type world struct {
	targets []Target
	err     error
}

func (w *world) source(context.Context) ([]Target, error) { return w.targets, w.err }

func TestProximitySensor(t *testing.T) {
	ctx := context.Background()
	w := &world{}
	a := newTestAgent(t, "brian")
	s := NewProximitySensor(w.source)
	assert.Equal(t, "proximity", s.Name())

	require.NoError(t, s.Update(ctx, a))
	_, ok := a.Hostile()
	assert.False(t, ok)

	w.targets = []Target{{ID: "far", Position: Vec2{X: 8}}, {ID: "p1", Position: Vec2{X: 3}}, {ID: "p2", Position: Vec2{Y: 2}}}
	require.NoError(t, s.Update(ctx, a))
	cur, ok := a.Hostile()
	require.True(t, ok)
	assert.Equal(t, "p1", cur.ID)

	// the target moves but stays in sight
	w.targets[1].Position = Vec2{X: 4}
	require.NoError(t, s.Update(ctx, a))
	cur, _ = a.Hostile()
	assert.Equal(t, "p1", cur.ID)
	assert.Equal(t, Vec2{X: 4}, cur.Position)

	// it leaves; p2 was already inside, so nothing enters
	w.targets[1].Position = Vec2{X: 20}
	require.NoError(t, s.Update(ctx, a))
	_, ok = a.Hostile()
	assert.False(t, ok)

	// p2 steps out and back in
	w.targets[2].Position = Vec2{Y: 9}
	require.NoError(t, s.Update(ctx, a))
	_, ok = a.Hostile()
	assert.False(t, ok)
	w.targets[2].Position = Vec2{Y: 2}
	require.NoError(t, s.Update(ctx, a))
	cur, _ = a.Hostile()
	assert.Equal(t, "p2", cur.ID)

	w.targets = nil
	require.NoError(t, s.Update(ctx, a))
	_, ok = a.Hostile()
	assert.False(t, ok)
}

func TestProximitySensorNewArrival(t *testing.T) {
	ctx := context.Background()
	w := &world{targets: []Target{{ID: "p1", Position: Vec2{X: 1}}, {ID: "p2", Position: Vec2{X: 2}}}}
	a := newTestAgent(t, "brian")
	s := NewProximitySensor(w.source)

	require.NoError(t, s.Update(ctx, a))
	cur, _ := a.Hostile()
	assert.Equal(t, "p1", cur.ID)

	// p1 leaves as p3 arrives: p3 is acquired, p2 is not
	w.targets = []Target{{ID: "p2", Position: Vec2{X: 2}}, {ID: "p3", Position: Vec2{Y: 1}}}
	require.NoError(t, s.Update(ctx, a))
	cur, _ = a.Hostile()
	assert.Equal(t, "p3", cur.ID)
}

func TestProximitySensorPerAgent(t *testing.T) {
	ctx := context.Background()
	w := &world{targets: []Target{{ID: "p1", Position: Vec2{X: 1}}}}
	s := NewProximitySensor(w.source)
	a, b := newTestAgent(t, "a"), newTestAgent(t, "b")

	require.NoError(t, s.Update(ctx, a))
	require.NoError(t, s.Update(ctx, b))
	for _, ag := range []*Agent{a, b} {
		cur, ok := ag.Hostile()
		require.True(t, ok)
		assert.Equal(t, "p1", cur.ID)
	}
}

func TestProximitySensorError(t *testing.T) {
	boom := errors.New("boom")
	w := &world{err: boom}
	a := newTestAgent(t, "brian", WithSensors(NewProximitySensor(w.source)))
	a.SetTree(HostilityTree(a))

	_, err := a.Update(context.Background(), 0)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "sensor proximity")
}
