package walker

import (
	"math/rand"

	"github.com/aravindSwamy94/carla/internal/world"
)

// minOngoingPoints is the smallest registry that can serve destinations:
// with fewer than two points a walker could only ever be sent back to its
// own spawn location.
const minOngoingPoints = 2

// Registry holds the spawn points usable for ongoing spawns and destination
// selection. Populated once at startup, immutable afterwards.
type Registry struct {
	points []world.SpawnPoint
}

// RegisterAll stores the discovered point set. Called once at startup.
func (r *Registry) RegisterAll(points []world.SpawnPoint) {
	r.points = points
}

// Len returns the number of registered points.
func (r *Registry) Len() int {
	return len(r.points)
}

// Usable reports whether the registry can serve spawns and destinations.
func (r *Registry) Usable() bool {
	return len(r.points) >= minOngoingPoints
}

// RandomPoint returns a uniformly selected point. Calling it on an empty
// registry is a programming error.
func (r *Registry) RandomPoint(rng *rand.Rand) world.SpawnPoint {
	if len(r.points) == 0 {
		panic("walker: RandomPoint on empty registry")
	}
	return r.points[rng.Intn(len(r.points))]
}
