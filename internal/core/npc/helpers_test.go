package npc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/core/bt"
)

func newTestAgent(t *testing.T, name string, opts ...Option) *Agent {
	t.Helper()
	nav := NewLinearNavigator(Vec2{}, 1, 0.1)
	base := []Option{WithSeed(1), WithArrivalRadius(0.1), WithAttackRange(1.5), WithSensingRadius(5)}
	return NewAgent(name, nav, append(base, opts...)...)
}

// update ticks a once and fails the test on error.
func update(t *testing.T, a *Agent, dt time.Duration) bt.Status {
	t.Helper()
	st, err := a.Update(context.Background(), dt)
	require.NoError(t, err)
	return st
}
