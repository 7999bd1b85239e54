package simulator

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/npc"
)

// Intruder is a hostile target circling a fixed point.
type Intruder struct {
	ID     string
	Center npc.Vec2
	Radius float64
	Period time.Duration
}

// PositionAt is where the intruder is after t of world time.
func (in Intruder) PositionAt(t time.Duration) npc.Vec2 {
	if in.Radius == 0 || in.Period <= 0 {
		return in.Center
	}
	phase := float64(t%in.Period) / float64(in.Period)
	angle := 2 * math.Pi * phase
	return in.Center.Add(npc.Vec2{X: math.Cos(angle) * in.Radius, Y: math.Sin(angle) * in.Radius})
}

// World moves the intruders agents react to. It advances once per tick
// before any agent is updated.
type World struct {
	mu        sync.RWMutex
	elapsed   time.Duration
	intruders []Intruder
}

func NewWorld(intruders ...Intruder) *World {
	return &World{intruders: intruders}
}

// ProvideWorld builds the world from the configured intruders.
func ProvideWorld(cfg config.Config) *World {
	intruders := make([]Intruder, 0, len(cfg.Intruders))
	for _, ic := range cfg.Intruders {
		intruders = append(intruders, Intruder{
			ID:     ic.ID,
			Center: npc.Vec2{X: ic.X, Y: ic.Y},
			Radius: ic.Radius,
			Period: ic.Period,
		})
	}
	return NewWorld(intruders...)
}

// Advance is an npc.TickHook.
func (w *World) Advance(_ context.Context, dt time.Duration) error {
	w.mu.Lock()
	w.elapsed += dt
	w.mu.Unlock()
	return nil
}

// Targets is an npc.TargetSource listing every intruder at its current position.
func (w *World) Targets(ctx context.Context) ([]npc.Target, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]npc.Target, len(w.intruders))
	for i, in := range w.intruders {
		out[i] = npc.Target{ID: in.ID, Position: in.PositionAt(w.elapsed)}
	}
	return out, nil
}

func (w *World) Elapsed() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.elapsed
}
