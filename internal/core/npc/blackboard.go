package npc

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Well-known blackboard keys written by the leaf library.
const (
	KeyTarget   = "target"   // Vec2: current wander destination
	KeyHostile  = "hostile"  // Target: hostility target
	KeyAttacks  = "attacks"  // int: attacks landed
	KeyCharging = "charging" // bool: charge in progress
	waitPrefix  = "wait:"    // time.Duration: agent time a wait started
)

// Blackboard is the per-agent store leaves use to remember progress between
// ticks. The tree itself keeps no such state.
type Blackboard struct {
	mu      sync.RWMutex
	data    map[string]any
	version uint64
}

func NewBlackboard() *Blackboard {
	return &Blackboard{data: make(map[string]any)}
}

// Set stores a value in the blackboard
func (bb *Blackboard) Set(key string, value any) {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	bb.data[key] = value
	bb.version++
}

// SetIfAbsent stores value only when key is unset and reports whether it did.
func (bb *Blackboard) SetIfAbsent(key string, value any) bool {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if _, exists := bb.data[key]; exists {
		return false
	}
	bb.data[key] = value
	bb.version++
	return true
}

// Get retrieves a value from the blackboard
func (bb *Blackboard) Get(key string) (any, bool) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	value, exists := bb.data[key]
	return value, exists
}

// Lookup returns the value under key if it holds a T.
func Lookup[T any](bb *Blackboard, key string) (T, bool) {
	var zero T
	value, exists := bb.Get(key)
	if !exists {
		return zero, false
	}
	v, ok := value.(T)
	return v, ok
}

func (bb *Blackboard) GetString(key string) (string, bool) {
	return Lookup[string](bb, key)
}

func (bb *Blackboard) GetBool(key string) (bool, bool) {
	return Lookup[bool](bb, key)
}

func (bb *Blackboard) GetVec2(key string) (Vec2, bool) {
	return Lookup[Vec2](bb, key)
}

func (bb *Blackboard) GetDuration(key string) (time.Duration, bool) {
	return Lookup[time.Duration](bb, key)
}

// GetInt accepts the numeric types JSON and YAML decoding produce.
func (bb *Blackboard) GetInt(key string) (int, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func (bb *Blackboard) GetFloat(key string) (float64, bool) {
	value, exists := bb.Get(key)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Incr adds delta to the integer under key, starting from zero.
func (bb *Blackboard) Incr(key string, delta int) int {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	n, _ := bb.data[key].(int)
	n += delta
	bb.data[key] = n
	bb.version++
	return n
}

func (bb *Blackboard) Has(key string) bool {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	_, exists := bb.data[key]
	return exists
}

// Delete removes a key from the blackboard
func (bb *Blackboard) Delete(key string) {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if _, exists := bb.data[key]; !exists {
		return
	}
	delete(bb.data, key)
	bb.version++
}

// DeleteIf removes key when match accepts its current value.
func (bb *Blackboard) DeleteIf(key string, match func(any) bool) bool {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	value, exists := bb.data[key]
	if !exists || !match(value) {
		return false
	}
	delete(bb.data, key)
	bb.version++
	return true
}

// Keys returns all keys in sorted order.
func (bb *Blackboard) Keys() []string {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	keys := make([]string, 0, len(bb.data))
	for key := range bb.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Version increases on every mutation.
func (bb *Blackboard) Version() uint64 {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	return bb.version
}

func (bb *Blackboard) Clear() {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	bb.data = make(map[string]any)
	bb.version++
}

// Clone creates a shallow copy of the blackboard
func (bb *Blackboard) Clone() *Blackboard {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	clone := NewBlackboard()
	for key, value := range bb.data {
		clone.data[key] = value
	}
	clone.version = bb.version
	return clone
}

// MarshalJSON exports the blackboard for debugging.
func (bb *Blackboard) MarshalJSON() ([]byte, error) {
	bb.mu.RLock()
	defer bb.mu.RUnlock()

	export := struct {
		Data    map[string]any `json:"data"`
		Version uint64         `json:"version"`
	}{
		Data:    bb.data,
		Version: bb.version,
	}

	b, err := json.Marshal(export)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal blackboard data: %w", err)
	}
	return b, nil
}
