package simulator

import (
	"fmt"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/npc"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// arrivalRadius is how close an agent must get to a destination to stop.
const arrivalRadius = 0.25

// ProvideRegistry returns a registry holding the built-in leaves.
func ProvideRegistry() *npc.Registry {
	reg := npc.NewRegistry()
	npc.RegisterBuiltins(reg)
	return reg
}

// SpawnAgent creates the agent described by ac and attaches its tree.
// A non-zero seed makes its wandering reproducible.
func SpawnAgent(ac config.AgentConfig, sim config.SimulationConfig, seed uint64, world *World, reg *npc.Registry, logger log.Log) (*npc.Agent, error) {
	nav := npc.NewLinearNavigator(npc.Vec2{X: ac.X, Y: ac.Y}, ac.Speed, arrivalRadius)
	opts := []npc.Option{
		npc.WithLogger(logger),
		npc.WithSensingRadius(ac.SenseRadius),
		npc.WithAttackRange(ac.AttackRange),
		npc.WithArrivalRadius(arrivalRadius),
		npc.WithWanderRadius(sim.WorldRadius),
		npc.WithSensors(npc.NewProximitySensor(world.Targets)),
	}
	if seed != 0 {
		opts = append(opts, npc.WithSeed(seed))
	}
	a := npc.NewAgent(ac.Name, nav, opts...)

	var tree *bt.Tree
	switch ac.Kind {
	case "brain":
		tree = npc.BrainTree(a, ac.ChargeWait)
	case "wander":
		tree = npc.WanderTree(a, 0)
	case "hostility":
		tree = npc.HostilityTree(a)
	case "file":
		def, err := npc.LoadDefinitionFile(ac.TreeFile)
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", ac.Name, err)
		}
		if tree, err = def.Build(reg, a); err != nil {
			return nil, fmt.Errorf("agent %s: %w", ac.Name, err)
		}
	default:
		return nil, fmt.Errorf("agent %s: unknown kind %q", ac.Name, ac.Kind)
	}
	a.SetTree(tree)
	return a, nil
}

// ProvideManager spawns every configured agent into a new manager whose
// ticks also advance the world.
func ProvideManager(cfg config.Config, logger log.Log, world *World, reg *npc.Registry) (*npc.Manager, error) {
	m := npc.NewManager(logger)
	m.OnBeforeTick(world.Advance)

	for i, ac := range cfg.Agents {
		var seed uint64
		if cfg.Simulation.Seed != 0 {
			seed = uint64(cfg.Simulation.Seed) + uint64(i)
		}
		a, err := SpawnAgent(ac, cfg.Simulation, seed, world, reg, logger)
		if err != nil {
			return nil, err
		}
		if err := m.Add(a); err != nil {
			return nil, err
		}
	}
	return m, nil
}
