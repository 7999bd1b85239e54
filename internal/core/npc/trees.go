package npc

import (
	"time"

	"github.com/zeusync/behave/internal/core/bt"
)

func action(name string, fn bt.ActionFunc) bt.Node {
	return bt.Must(bt.NewAction(name, fn))
}

func mustTree(name string, root bt.Node) *bt.Tree {
	return bt.Must(bt.NewTree(name, root))
}

// HostilityTree chases a hostility target once one has been sighted:
//
//	Selector(Sequence(has_hostile, chase_hostile))
func HostilityTree(a *Agent) *bt.Tree {
	nearby := bt.Must(bt.NewSequence("hostile_nearby",
		action("has_hostile", HasHostile(a)),
		action("chase_hostile", ChaseHostile(a)),
	))
	return mustTree("hostility", bt.Must(bt.NewSelector("root", nearby)))
}

func wanderNode(a *Agent, radius float64) bt.Node {
	pick := bt.Must(bt.NewSequence("pick_target",
		bt.Must(bt.NewInverter("no_target", action("has_target", HasTarget(a)))),
		action("pick_wander_target", PickWanderTarget(a, radius)),
	))
	arrive := bt.Must(bt.NewSequence("arrive",
		action("at_destination", AtDestination(a)),
		action("clear_target", ClearTarget(a)),
	))
	return bt.Must(bt.NewSelector("wander", pick, arrive, action("move_to_target", MoveToTarget(a))))
}

// WanderTree roams between random points around home:
//
//	Selector(
//	  Sequence(Inverter(has_target), pick_wander_target),
//	  Sequence(at_destination, clear_target),
//	  move_to_target)
func WanderTree(a *Agent, radius float64) *bt.Tree {
	return mustTree("wander", wanderNode(a, radius))
}

func chargeNode(a *Agent, wait time.Duration) bt.Node {
	// the same wait node runs before and after the charge
	windup := action("wait", Wait(a, "charge", wait))
	return bt.Must(bt.NewSequence("charge",
		windup,
		action("charge", Charge(a)),
		action("attack", Attack(a)),
		windup,
	))
}

// ChargeTree winds up, charges, attacks and winds up again:
//
//	Sequence(wait, charge, attack, wait)
//
// Because a sequence keeps going past a Running child, the charge and attack
// run on the same tick the wait reports Running.
func ChargeTree(a *Agent, wait time.Duration) *bt.Tree {
	return mustTree("charge", chargeNode(a, wait))
}

// BrainTree combines the behaviors: engage a hostility target when there is
// one, charging once it is in attack range, and wander otherwise.
//
//	Selector(
//	  Sequence(has_hostile,
//	    Selector(Sequence(hostile_in_range, charge...), chase_hostile)),
//	  wander...)
func BrainTree(a *Agent, wait time.Duration) *bt.Tree {
	closeIn := bt.Must(bt.NewSequence("close_in",
		action("hostile_in_range", HostileInRange(a, a.attackRange)),
		chargeNode(a, wait),
	))
	approach := bt.Must(bt.NewSelector("approach", closeIn, action("chase_hostile", ChaseHostile(a))))
	engage := bt.Must(bt.NewSequence("engage", action("has_hostile", HasHostile(a)), approach))
	return mustTree("brain", bt.Must(bt.NewSelector("root", engage, wanderNode(a, 0))))
}
