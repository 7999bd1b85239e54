package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/npc"
)

func TestIntruderOrbit(t *testing.T) {
	in := Intruder{ID: "p", Center: npc.Vec2{X: 1}, Radius: 2, Period: 4 * time.Second}

	start := in.PositionAt(0)
	assert.InDelta(t, 3.0, start.X, 1e-9)
	assert.InDelta(t, 0.0, start.Y, 1e-9)

	quarter := in.PositionAt(time.Second)
	assert.InDelta(t, 1.0, quarter.X, 1e-9)
	assert.InDelta(t, 2.0, quarter.Y, 1e-9)

	lap := in.PositionAt(4 * time.Second)
	assert.InDelta(t, start.X, lap.X, 1e-9)

	still := Intruder{ID: "s", Center: npc.Vec2{Y: 5}}
	assert.Equal(t, npc.Vec2{Y: 5}, still.PositionAt(time.Hour))
}

func TestWorldTargets(t *testing.T) {
	cfg := config.Default()
	cfg.Intruders = []config.IntruderConfig{{ID: "p", Radius: 1, Period: 4 * time.Second}}
	w := ProvideWorld(cfg)
	ctx := context.Background()

	targets, err := w.Targets(ctx)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.InDelta(t, 1.0, targets[0].Position.X, 1e-9)

	require.NoError(t, w.Advance(ctx, 2*time.Second))
	assert.Equal(t, 2*time.Second, w.Elapsed())
	targets, err = w.Targets(ctx)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, targets[0].Position.X, 1e-9)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = w.Targets(canceled)
	assert.ErrorIs(t, err, context.Canceled)
}
