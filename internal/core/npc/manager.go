package npc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// ErrDuplicateAgent is returned when an agent id is registered twice.
var ErrDuplicateAgent = errors.New("npc: agent already registered")

// AgentReport is the outcome of one agent's tick.
type AgentReport struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Tree     string         `json:"tree"`
	TreeHash string         `json:"tree_hash"`
	Status   *bt.Status     `json:"status,omitempty"`
	Error    string         `json:"error,omitempty"`
	Position Vec2           `json:"position"`
	Hostile  *Target        `json:"hostile,omitempty"`
	Attacks  int            `json:"attacks"`
	Nodes    []bt.NodeState `json:"nodes,omitempty"`
}

// TickReport collects every agent's outcome for one tick.
type TickReport struct {
	Tick   uint64        `json:"tick"`
	DT     time.Duration `json:"dt"`
	Agents []AgentReport `json:"agents"`
}

// TickHook runs before the agents of a tick, e.g. to move the world.
type TickHook func(ctx context.Context, dt time.Duration) error

// Manager ticks a set of independent agents. Agents share nothing, so their
// trees are evaluated concurrently.
type Manager struct {
	log     log.Log
	workers int

	mu     sync.RWMutex
	agents map[uuid.UUID]*Agent
	hooks  []TickHook

	tick atomic.Uint64

	subsMu  sync.Mutex
	subs    map[int]chan TickReport
	nextSub int
}

type ManagerOption func(*Manager)

// WithWorkers bounds how many agents are ticked at once; 0 means no limit.
func WithWorkers(n int) ManagerOption { return func(m *Manager) { m.workers = n } }

func NewManager(logger log.Log, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = log.Nop()
	}
	m := &Manager{
		log:    logger.Named("manager"),
		agents: make(map[uuid.UUID]*Agent),
		subs:   make(map[int]chan TickReport),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Add(a *Agent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.agents[a.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, a.ID())
	}
	m.agents[a.ID()] = a
	m.log.Info("agent added", log.String("agent_id", a.ID().String()), log.String("agent", a.Name()))
	return nil
}

func (m *Manager) Remove(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.agents[id]; !exists {
		return false
	}
	delete(m.agents, id)
	return true
}

func (m *Manager) Get(id uuid.UUID) (*Agent, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.agents[id]
	return a, ok
}

// Agents returns the registered agents ordered by name, then id.
func (m *Manager) Agents() []*Agent {
	m.mu.RLock()
	out := make([]*Agent, 0, len(m.agents))
	for _, a := range m.agents {
		out = append(out, a)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// OnBeforeTick registers a hook run at the start of every tick.
func (m *Manager) OnBeforeTick(h TickHook) {
	m.mu.Lock()
	m.hooks = append(m.hooks, h)
	m.mu.Unlock()
}

// Tick runs the hooks, then updates every agent once. An agent failing does
// not stop the others; all agent errors are joined into the returned error.
func (m *Manager) Tick(ctx context.Context, dt time.Duration) (TickReport, error) {
	m.mu.RLock()
	hooks := append([]TickHook(nil), m.hooks...)
	m.mu.RUnlock()

	for _, h := range hooks {
		if err := h(ctx, dt); err != nil {
			return TickReport{}, fmt.Errorf("tick hook: %w", err)
		}
	}

	agents := m.Agents()
	report := TickReport{Tick: m.tick.Add(1), DT: dt, Agents: make([]AgentReport, len(agents))}
	errs := make([]error, len(agents))

	var g errgroup.Group
	if m.workers > 0 {
		g.SetLimit(m.workers)
	}
	for i, a := range agents {
		g.Go(func() error {
			st, err := a.Update(ctx, dt)
			report.Agents[i] = agentReport(a, st, err)
			if err != nil {
				errs[i] = fmt.Errorf("agent %s: %w", a.Name(), err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return report, errors.Join(errs...)
}

func agentReport(a *Agent, st bt.Status, err error) AgentReport {
	r := AgentReport{
		ID:       a.ID().String(),
		Name:     a.Name(),
		Position: a.Navigator().Position(),
		Attacks:  a.Attacks(),
	}
	if t, ok := a.Hostile(); ok {
		r.Hostile = &t
	}
	if tree := a.Tree(); tree != nil {
		r.Tree = tree.Name()
		r.TreeHash = fmt.Sprintf("%016x", tree.Fingerprint())
		r.Nodes = tree.Snapshot()
	}
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Status = &st
	return r
}

// Run ticks every interval with a fixed step of interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.log.Info("tick loop started", log.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			m.log.Info("tick loop stopped", log.Uint64("ticks", m.tick.Load()))
			return nil
		case <-ticker.C:
			report, err := m.Tick(ctx, interval)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				m.log.Warn("tick finished with errors", log.Uint64("tick", report.Tick), log.Error(err))
				if report.Tick == 0 {
					continue
				}
			}
			m.publish(report)
		}
	}
}

// Ticks returns how many ticks have started.
func (m *Manager) Ticks() uint64 { return m.tick.Load() }

// Subscribe delivers every tick report from Run. A subscriber that falls
// behind misses reports rather than slowing the loop. Call cancel to stop.
func (m *Manager) Subscribe() (<-chan TickReport, func()) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan TickReport, 8)
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
			close(ch)
		})
	}
}

func (m *Manager) publish(r TickReport) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- r:
		default:
		}
	}
}
