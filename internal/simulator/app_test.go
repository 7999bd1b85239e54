package simulator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Simulation.Seed = 42
	cfg.Simulation.TickInterval = 10 * time.Millisecond
	cfg.Agents = []config.AgentConfig{
		{Name: "brian", Kind: "brain", Speed: 2, SenseRadius: 5, AttackRange: 1.5, ChargeWait: 50 * time.Millisecond},
		{Name: "scout", Kind: "wander", X: 50, Speed: 2, SenseRadius: 5, AttackRange: 1.5, ChargeWait: time.Second},
	}
	cfg.Intruders = []config.IntruderConfig{{ID: "player", X: 3}}
	return cfg
}

func TestSimulationEngagesIntruder(t *testing.T) {
	cfg := testConfig()
	w := ProvideWorld(cfg)
	m, err := ProvideManager(cfg, log.Nop(), w, ProvideRegistry())
	require.NoError(t, err)

	ctx := context.Background()
	for range 40 {
		_, err := m.Tick(ctx, 100*time.Millisecond)
		require.NoError(t, err)
	}
	assert.Equal(t, 4*time.Second, w.Elapsed())

	agents := m.Agents()
	require.Len(t, agents, 2)

	brian := agents[0]
	hostile, ok := brian.Hostile()
	require.True(t, ok, "intruder within sensing radius is acquired")
	assert.Equal(t, "player", hostile.ID)
	assert.Positive(t, brian.Attacks())

	scout := agents[1]
	_, ok = scout.Hostile()
	assert.False(t, ok, "intruder is out of the scout's sight")
	assert.Zero(t, scout.Attacks())
	st, ok := scout.LastStatus()
	assert.True(t, ok)
	assert.NotEqual(t, bt.StatusFailure, st)
}

func TestSpawnAgentKinds(t *testing.T) {
	cfg := testConfig()
	w := ProvideWorld(cfg)
	reg := ProvideRegistry()

	treeFile := filepath.Join(t.TempDir(), "tree.yaml")
	require.NoError(t, os.WriteFile(treeFile, []byte(`
root: guard
nodes:
  guard:
    type: selector
    children: [engage, idle]
  engage:
    type: sequence
    children: [has_hostile, chase_hostile]
  has_hostile:
    type: condition
  chase_hostile:
    type: action
  idle:
    type: action
    leaf: status
    params:
      status: running
`), 0o600))

	tests := []struct {
		kind string
		tree string
	}{
		{kind: "brain", tree: "brain"},
		{kind: "wander", tree: "wander"},
		{kind: "hostility", tree: "hostility"},
		{kind: "file", tree: "guard"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			ac := cfg.Agents[0]
			ac.Kind = tt.kind
			ac.TreeFile = treeFile
			a, err := SpawnAgent(ac, cfg.Simulation, 1, w, reg, log.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.tree, a.Tree().Name())
		})
	}

	ac := cfg.Agents[0]
	ac.Kind = "dragon"
	_, err := SpawnAgent(ac, cfg.Simulation, 1, w, reg, log.Nop())
	assert.Error(t, err)
}

func TestSeededRunsAreReproducible(t *testing.T) {
	cfg := testConfig()
	cfg.Intruders = nil
	positions := func() []float64 {
		w := ProvideWorld(cfg)
		m, err := ProvideManager(cfg, log.Nop(), w, ProvideRegistry())
		require.NoError(t, err)
		for range 25 {
			_, err := m.Tick(context.Background(), 100*time.Millisecond)
			require.NoError(t, err)
		}
		var out []float64
		for _, a := range m.Agents() {
			p := a.Navigator().Position()
			out = append(out, p.X, p.Y)
		}
		return out
	}
	assert.Equal(t, positions(), positions())
}

func TestAppRun(t *testing.T) {
	cfg := testConfig()
	cfg.Debug.Enabled = true
	cfg.Debug.Addr = "127.0.0.1:0"

	w := ProvideWorld(cfg)
	m, err := ProvideManager(cfg, log.Nop(), w, ProvideRegistry())
	require.NoError(t, err)
	debug := ProvideDebugServer(cfg, m, log.Nop())
	require.NotNil(t, debug)
	app := NewApp(cfg, log.Nop(), m, w, debug)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, ok := app.Debug().Latest()
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Positive(t, app.Manager().Ticks())
	assert.False(t, app.Debug().GetStats().Running)
}

func TestProvideLogger(t *testing.T) {
	cfg := config.Default()
	logger, cleanup, err := ProvideLogger(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	cleanup()

	cfg.Logging.Format = "xml"
	_, _, err = ProvideLogger(cfg)
	assert.Error(t, err)

	assert.Nil(t, ProvideDebugServer(config.Default(), nil, log.Nop()))
}

func TestSampleConfig(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "configs", "simulator.yaml"))
	require.NoError(t, err)
	assert.Len(t, cfg.Agents, 3)
	assert.Len(t, cfg.Intruders, 1)

	w := ProvideWorld(cfg)
	a, err := SpawnAgent(cfg.Agents[2], cfg.Simulation, 1, w, ProvideRegistry(), log.Nop())
	require.NoError(t, err)
	assert.Equal(t, "guard", a.Tree().Name())
}
