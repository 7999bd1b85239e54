package npc

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// ErrNoTree is returned by Update when no tree has been attached.
var ErrNoTree = errors.New("npc: agent has no behavior tree")

// Target is something an agent can be hostile towards.
type Target struct {
	ID       string `json:"id"`
	Position Vec2   `json:"position"`
}

// Sensor refreshes what the agent knows about the world before its tree is
// evaluated.
type Sensor interface {
	Name() string
	Update(ctx context.Context, a *Agent) error
}

// Agent owns one behavior tree and drives it once per Update. Leaves close
// over the agent and keep their progress on its blackboard.
type Agent struct {
	id   uuid.UUID
	name string
	home Vec2

	nav     Navigator
	bb      *Blackboard
	log     log.Log
	rng     *rand.Rand
	sensors []Sensor

	senseRadius  float64
	attackRange  float64
	arrival      float64
	wanderRadius float64

	mu      sync.Mutex // serializes Update
	tree    *bt.Tree
	elapsed atomic.Int64
	last    atomic.Int32
}

type Option func(*Agent)

func WithID(id uuid.UUID) Option           { return func(a *Agent) { a.id = id } }
func WithLogger(l log.Log) Option          { return func(a *Agent) { a.log = l } }
func WithSensingRadius(r float64) Option   { return func(a *Agent) { a.senseRadius = r } }
func WithAttackRange(r float64) Option     { return func(a *Agent) { a.attackRange = r } }
func WithArrivalRadius(r float64) Option   { return func(a *Agent) { a.arrival = r } }
func WithWanderRadius(r float64) Option    { return func(a *Agent) { a.wanderRadius = r } }
func WithSensors(sensors ...Sensor) Option { return func(a *Agent) { a.sensors = append(a.sensors, sensors...) } }

// WithSeed makes wander targets reproducible.
func WithSeed(seed uint64) Option {
	return func(a *Agent) { a.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// NewAgent creates an agent standing at the navigator's current position,
// which also becomes its home for wandering.
func NewAgent(name string, nav Navigator, opts ...Option) *Agent {
	a := &Agent{
		id:           uuid.New(),
		name:         name,
		home:         nav.Position(),
		nav:          nav,
		bb:           NewBlackboard(),
		log:          log.Nop(),
		senseRadius:  10,
		attackRange:  1.5,
		arrival:      0.5,
		wanderRadius: 10,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	a.last.Store(-1)
	a.log = a.log.With(log.String("agent_id", a.id.String()), log.String("agent", a.name))
	return a
}

func (a *Agent) ID() uuid.UUID           { return a.id }
func (a *Agent) Name() string            { return a.name }
func (a *Agent) Home() Vec2              { return a.home }
func (a *Agent) Navigator() Navigator    { return a.nav }
func (a *Agent) Blackboard() *Blackboard { return a.bb }
func (a *Agent) Logger() log.Log         { return a.log }
func (a *Agent) SenseRadius() float64    { return a.senseRadius }
func (a *Agent) AttackRange() float64    { return a.attackRange }

// Elapsed is the agent's clock: the sum of every dt passed to Update.
func (a *Agent) Elapsed() time.Duration { return time.Duration(a.elapsed.Load()) }

// SetTree attaches the tree built for this agent. It is meant to be called
// once during setup.
func (a *Agent) SetTree(t *bt.Tree) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tree = t
	if t != nil {
		a.log.Debug("tree attached",
			log.String("tree", t.Name()),
			log.String("tree_hash", fmt.Sprintf("%016x", t.Fingerprint())),
		)
	}
}

func (a *Agent) Tree() *bt.Tree {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tree
}

// LastStatus is the root status of the latest Update, false before the first.
func (a *Agent) LastStatus() (bt.Status, bool) {
	v := a.last.Load()
	if v < 0 {
		return bt.StatusFailure, false
	}
	return bt.Status(v), true
}

// Update advances the agent by dt: the clock and navigator move first, then
// sensors refresh the blackboard, then the tree is evaluated exactly once.
func (a *Agent) Update(ctx context.Context, dt time.Duration) (bt.Status, error) {
	if err := ctx.Err(); err != nil {
		return bt.StatusFailure, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tree == nil {
		return bt.StatusFailure, ErrNoTree
	}

	a.elapsed.Add(int64(dt))
	a.nav.Advance(dt)

	for _, s := range a.sensors {
		if err := s.Update(ctx, a); err != nil {
			return bt.StatusFailure, fmt.Errorf("sensor %s: %w", s.Name(), err)
		}
	}

	st := a.tree.Tick()
	a.last.Store(int32(st))
	if a.log.Enabled(log.LevelDebug) {
		a.log.Debug("tick",
			log.Uint64("tick", a.tree.Ticks()),
			log.Stringer("status", st),
			log.Duration("elapsed", a.Elapsed()),
		)
	}
	return st, nil
}

// OnSightEnter makes t the hostility target unless one is already set.
func (a *Agent) OnSightEnter(t Target) bool {
	if !a.bb.SetIfAbsent(KeyHostile, t) {
		return false
	}
	a.log.Info("hostile target acquired", log.String("target", t.ID))
	return true
}

// OnSightExit drops the hostility target if it is the one leaving.
func (a *Agent) OnSightExit(id string) bool {
	dropped := a.bb.DeleteIf(KeyHostile, func(v any) bool {
		cur, ok := v.(Target)
		return ok && cur.ID == id
	})
	if dropped {
		a.bb.Delete(KeyCharging)
		a.log.Info("hostile target lost", log.String("target", id))
	}
	return dropped
}

// TrackHostile refreshes the position of the current hostility target.
func (a *Agent) TrackHostile(t Target) bool {
	cur, ok := a.Hostile()
	if !ok || cur.ID != t.ID {
		return false
	}
	a.bb.Set(KeyHostile, t)
	return true
}

func (a *Agent) Hostile() (Target, bool) {
	return Lookup[Target](a.bb, KeyHostile)
}

// Attacks is the number of attacks landed so far.
func (a *Agent) Attacks() int {
	n, _ := a.bb.GetInt(KeyAttacks)
	return n
}
