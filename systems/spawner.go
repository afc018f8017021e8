package systems

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/pthm-cable/skirmish/components"
)

// Spawner emits one agent every Delay seconds at Position.
type Spawner struct {
	Faction  components.Faction
	Position mgl32.Vec3
	Delay    float32

	lastSpawn float32
}

// SpawnerSystem drives a fixed set of spawners on simulation time.
type SpawnerSystem struct {
	spawners []Spawner
	offset   mgl32.Vec3
	elapsed  float32
}

// NewSpawnerSystem creates a spawner system. Agents appear offset above
// their spawner.
func NewSpawnerSystem(spawners []Spawner, offset float32) *SpawnerSystem {
	return &SpawnerSystem{
		spawners: append([]Spawner(nil), spawners...),
		offset:   mgl32.Vec3{0, offset, 0},
	}
}

// Update advances simulation time by dt and calls spawn for every spawner
// whose delay has elapsed since its last spawn. Returns the number spawned.
func (s *SpawnerSystem) Update(dt float32, spawn func(components.Faction, mgl32.Vec3)) int {
	s.elapsed += dt

	spawned := 0
	for i := range s.spawners {
		sp := &s.spawners[i]
		if s.elapsed-sp.lastSpawn < sp.Delay {
			continue
		}
		spawn(sp.Faction, sp.Position.Add(s.offset))
		sp.lastSpawn = s.elapsed
		spawned++
	}
	return spawned
}

// Elapsed returns accumulated simulation time in seconds.
func (s *SpawnerSystem) Elapsed() float32 {
	return s.elapsed
}
