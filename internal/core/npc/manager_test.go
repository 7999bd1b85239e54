package npc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/bt"
)

func fixedAgent(t *testing.T, name string, st bt.Status) *Agent {
	t.Helper()
	a := newTestAgent(t, name)
	a.SetTree(bt.Must(bt.NewTree(name, bt.Must(bt.NewAction("fixed", Fixed(st))))))
	return a
}

func TestManagerAgents(t *testing.T) {
	m := NewManager(nil)
	b := fixedAgent(t, "b", bt.StatusSuccess)
	a := fixedAgent(t, "a", bt.StatusSuccess)

	require.NoError(t, m.Add(b))
	require.NoError(t, m.Add(a))
	assert.ErrorIs(t, m.Add(a), ErrDuplicateAgent)

	agents := m.Agents()
	require.Len(t, agents, 2)
	assert.Equal(t, "a", agents[0].Name())
	assert.Equal(t, "b", agents[1].Name())

	got, ok := m.Get(b.ID())
	assert.True(t, ok)
	assert.Same(t, b, got)

	assert.True(t, m.Remove(b.ID()))
	assert.False(t, m.Remove(b.ID()))
	_, ok = m.Get(b.ID())
	assert.False(t, ok)
}

func TestManagerTick(t *testing.T) {
	m := NewManager(nil, WithWorkers(2))
	require.NoError(t, m.Add(fixedAgent(t, "ok", bt.StatusSuccess)))
	require.NoError(t, m.Add(fixedAgent(t, "busy", bt.StatusRunning)))
	require.NoError(t, m.Add(fixedAgent(t, "no", bt.StatusFailure)))

	var hooked atomic.Int32
	m.OnBeforeTick(func(_ context.Context, dt time.Duration) error {
		assert.Equal(t, 100*time.Millisecond, dt)
		hooked.Add(1)
		return nil
	})

	report, err := m.Tick(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), report.Tick)
	assert.Equal(t, int32(1), hooked.Load())
	require.Len(t, report.Agents, 3)

	want := map[string]bt.Status{"busy": bt.StatusRunning, "no": bt.StatusFailure, "ok": bt.StatusSuccess}
	for _, r := range report.Agents {
		require.NotNil(t, r.Status, r.Name)
		assert.Equal(t, want[r.Name], *r.Status, r.Name)
		assert.Equal(t, r.Name, r.Tree)
		assert.Len(t, r.TreeHash, 16)
		require.Len(t, r.Nodes, 1)
		assert.True(t, r.Nodes[0].Evaluated)
	}
	assert.Equal(t, "busy", report.Agents[0].Name)
	assert.Equal(t, uint64(1), m.Ticks())
}

func TestManagerTickJoinsAgentErrors(t *testing.T) {
	m := NewManager(nil)
	ok := fixedAgent(t, "ok", bt.StatusSuccess)
	require.NoError(t, m.Add(ok))
	require.NoError(t, m.Add(newTestAgent(t, "treeless")))

	report, err := m.Tick(context.Background(), time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTree)
	assert.ErrorContains(t, err, "agent treeless")

	require.Len(t, report.Agents, 2)
	assert.NotNil(t, report.Agents[0].Status)
	assert.Nil(t, report.Agents[1].Status)
	assert.NotEmpty(t, report.Agents[1].Error)
	assert.Equal(t, uint64(1), ok.Tree().Ticks())
}

func TestManagerTickHookError(t *testing.T) {
	m := NewManager(nil)
	a := fixedAgent(t, "a", bt.StatusSuccess)
	require.NoError(t, m.Add(a))

	boom := errors.New("boom")
	m.OnBeforeTick(func(context.Context, time.Duration) error { return boom })

	_, err := m.Tick(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, a.Tree().Ticks())
	assert.Zero(t, m.Ticks())
}

func TestManagerRunPublishes(t *testing.T) {
	m := NewManager(nil)
	require.NoError(t, m.Add(fixedAgent(t, "a", bt.StatusSuccess)))

	reports, cancelSub := m.Subscribe()
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, 5*time.Millisecond) }()

	select {
	case r := <-reports:
		assert.GreaterOrEqual(t, r.Tick, uint64(1))
		assert.Equal(t, 5*time.Millisecond, r.DT)
		require.Len(t, r.Agents, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no tick report received")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestManagerRunRejectsInterval(t *testing.T) {
	assert.Error(t, NewManager(nil).Run(context.Background(), 0))
}

func TestSubscribeCancel(t *testing.T) {
	m := NewManager(nil)
	ch, cancel := m.Subscribe()
	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	m.publish(TickReport{Tick: 1})
}
