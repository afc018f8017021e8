// Package components defines ECS components for the simulation.
package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"
)

// Faction identifies which side an agent fights for.
type Faction uint8

const (
	Red Faction = iota
	Blue
)

// String returns the lowercase faction name used in config and logs.
func (f Faction) String() string {
	switch f {
	case Red:
		return "red"
	case Blue:
		return "blue"
	}
	return "unknown"
}

// Valid reports whether f is Red or Blue.
func (f Faction) Valid() bool {
	return f == Red || f == Blue
}

// Enemy returns the opposing faction.
func (f Faction) Enemy() Faction {
	if f == Red {
		return Blue
	}
	return Red
}

// ParseFaction maps a config name to a Faction.
func ParseFaction(s string) (Faction, bool) {
	switch s {
	case "red":
		return Red, true
	case "blue":
		return Blue, true
	}
	return 0, false
}

// Position represents an agent's world position.
type Position struct {
	X, Y, Z float32
}

// Vec returns the position as an mgl32 vector.
func (p Position) Vec() mgl32.Vec3 {
	return mgl32.Vec3{p.X, p.Y, p.Z}
}

// Set overwrites the position from a vector.
func (p *Position) Set(v mgl32.Vec3) {
	p.X, p.Y, p.Z = v[0], v[1], v[2]
}

// PositionOf builds a Position from a vector.
func PositionOf(v mgl32.Vec3) Position {
	return Position{X: v[0], Y: v[1], Z: v[2]}
}

// Warrior holds agent identity.
type Warrior struct {
	ID      uint32
	Faction Faction
}

// Target is the agent's current movement target.
// Enabled is the two-state flag: it only becomes true through a fresh match
// and only becomes false when the referenced entity no longer exists.
type Target struct {
	Entity  ecs.Entity
	Enabled bool
}
