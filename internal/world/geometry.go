// Package world provides the simulated terrain and spawn point discovery.
// Terrain is generated from layered simplex noise; spawn points are derived
// from walkable ground once at startup and never change afterwards.
package world

import "math"

// Location is a point in world space. Z is elevation above ground level.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistanceTo returns the straight-line distance to another location.
func (l Location) DistanceTo(o Location) float64 {
	dx := l.X - o.X
	dy := l.Y - o.Y
	dz := l.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Transform is a placement in the world: a location plus a facing direction.
type Transform struct {
	Location Location `json:"location"`
	Yaw      float64  `json:"yaw"` // Degrees, 0 = +X.
}

// SpawnPoint is an immutable location where a walker may be placed. Points
// flagged Ongoing carry the richer descriptor needed for spawning during the
// run; the full set is only usable for the initial batch.
type SpawnPoint struct {
	Transform Transform `json:"transform"`
	Ongoing   bool      `json:"ongoing"`
}
