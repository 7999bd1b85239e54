package npc

import (
	"math"
	"time"

	"github.com/zeusync/behave/internal/core/bt"
	"github.com/zeusync/behave/internal/core/observability/log"
)

// Leaf library. Conditions only read agent state; actions issue commands to
// the navigator or write the blackboard. Both are plain bt.ActionFunc values.

func status(ok bool) bt.Status {
	if ok {
		return bt.StatusSuccess
	}
	return bt.StatusFailure
}

// HasHostile succeeds while the agent has a hostility target.
func HasHostile(a *Agent) bt.ActionFunc {
	return func() bt.Status {
		_, ok := a.Hostile()
		return status(ok)
	}
}

// HostileInRange succeeds when the hostility target is within r.
func HostileInRange(a *Agent, r float64) bt.ActionFunc {
	return func() bt.Status {
		t, ok := a.Hostile()
		return status(ok && a.nav.Position().Distance(t.Position) <= r)
	}
}

// ChaseHostile heads for the hostility target. A path already in progress is
// left alone.
func ChaseHostile(a *Agent) bt.ActionFunc {
	return func() bt.Status {
		t, ok := a.Hostile()
		if !ok {
			return bt.StatusFailure
		}
		if a.nav.HasPath() {
			return bt.StatusSuccess
		}
		a.nav.SetDestination(t.Position)
		return bt.StatusSuccess
	}
}

// HasTarget succeeds while a wander destination is set.
func HasTarget(a *Agent) bt.ActionFunc {
	return func() bt.Status {
		return status(a.bb.Has(KeyTarget))
	}
}

// AtDestination succeeds when the agent stands on its wander destination.
func AtDestination(a *Agent) bt.ActionFunc {
	return func() bt.Status {
		dst, ok := a.bb.GetVec2(KeyTarget)
		return status(ok && a.nav.Position().Distance(dst) <= a.arrival)
	}
}

// PickWanderTarget chooses a random point within radius of home. A radius of
// zero or less uses the agent's wander radius.
func PickWanderTarget(a *Agent, radius float64) bt.ActionFunc {
	return func() bt.Status {
		r := radius
		if r <= 0 {
			r = a.wanderRadius
		}
		angle := a.rng.Float64() * 2 * math.Pi
		dist := r * math.Sqrt(a.rng.Float64())
		dst := a.home.Add(Vec2{X: math.Cos(angle) * dist, Y: math.Sin(angle) * dist})
		a.bb.Set(KeyTarget, dst)
		a.nav.SetDestination(dst)
		a.log.Debug("wander target picked", log.Float64("x", dst.X), log.Float64("y", dst.Y))
		return bt.StatusSuccess
	}
}

// ClearTarget forgets the wander destination and stops.
func ClearTarget(a *Agent) bt.ActionFunc {
	return func() bt.Status {
		a.bb.Delete(KeyTarget)
		a.nav.Stop()
		return bt.StatusSuccess
	}
}

// MoveToTarget travels towards the wander destination: Running on the way,
// Success on arrival, Failure without a destination.
func MoveToTarget(a *Agent) bt.ActionFunc {
	return func() bt.Status {
		dst, ok := a.bb.GetVec2(KeyTarget)
		if !ok {
			return bt.StatusFailure
		}
		if a.nav.Position().Distance(dst) <= a.arrival {
			return bt.StatusSuccess
		}
		if cur, ok := a.nav.Destination(); !ok || cur != dst || !a.nav.HasPath() {
			a.nav.SetDestination(dst)
		}
		return bt.StatusRunning
	}
}

// Wait reports Running until d of agent time has passed since it was first
// evaluated, then succeeds once and rearms. Progress lives on the blackboard
// under key, so one Wait instance may appear in a tree more than once.
func Wait(a *Agent, key string, d time.Duration) bt.ActionFunc {
	k := waitPrefix + key
	return func() bt.Status {
		now := a.Elapsed()
		start, ok := a.bb.GetDuration(k)
		if !ok {
			if d <= 0 {
				return bt.StatusSuccess
			}
			a.bb.Set(k, now)
			return bt.StatusRunning
		}
		if now-start >= d {
			a.bb.Delete(k)
			return bt.StatusSuccess
		}
		return bt.StatusRunning
	}
}

// Charge rushes the hostility target's current position.
func Charge(a *Agent) bt.ActionFunc {
	return func() bt.Status {
		t, ok := a.Hostile()
		if !ok {
			a.bb.Delete(KeyCharging)
			return bt.StatusFailure
		}
		a.nav.SetDestination(t.Position)
		if a.bb.SetIfAbsent(KeyCharging, true) {
			a.log.Debug("charging", log.String("target", t.ID))
		}
		return bt.StatusSuccess
	}
}

// Attack lands a hit when the hostility target is within attack range.
func Attack(a *Agent) bt.ActionFunc {
	return func() bt.Status {
		t, ok := a.Hostile()
		if !ok || a.nav.Position().Distance(t.Position) > a.attackRange {
			return bt.StatusFailure
		}
		n := a.bb.Incr(KeyAttacks, 1)
		a.log.Debug("attack", log.String("target", t.ID), log.Int("attacks", n))
		return bt.StatusSuccess
	}
}

// Fixed returns a leaf that always reports st.
func Fixed(st bt.Status) bt.ActionFunc {
	return func() bt.Status { return st }
}
