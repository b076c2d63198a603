// Package sim is the kinematic substrate the walker manager drives. It owns
// the walker entities: spawning bodies onto walkable ground, advancing them
// toward their destinations each frame, and reporting when one has stopped
// making progress.
package sim

import (
	"github.com/google/uuid"

	"github.com/aravindSwamy94/carla/internal/walker"
	"github.com/aravindSwamy94/carla/internal/world"
)

// arriveTolerance is how close a walker must get before its destination
// counts as reached.
const arriveTolerance = 0.5

// Stage implements walker.Stage over a generated terrain.
type Stage struct {
	terrain *world.Terrain

	// Speed is world units moved per Advance call.
	Speed float64
	// StuckAfter is how many consecutive blocked steps flag a walker stuck.
	StuckAfter int

	bodies map[walker.Handle]*body
}

type body struct {
	loc     world.Location
	yaw     float64
	dest    world.Location
	hasDest bool
	blocked int
	stuck   bool
}

// NewStage creates a stage over the terrain with default motion parameters.
func NewStage(t *world.Terrain) *Stage {
	return &Stage{
		terrain:    t,
		Speed:      1.0,
		StuckAfter: 30,
		bodies:     make(map[walker.Handle]*body),
	}
}

// Spawn places a walker body at the transform. Fails if the ground there is
// not walkable.
func (s *Stage) Spawn(at world.Transform) (walker.Handle, bool) {
	if !s.terrain.Walkable(at.Location) {
		return "", false
	}
	h := walker.Handle(uuid.NewString())
	s.bodies[h] = &body{loc: at.Location, yaw: at.Yaw}
	return h, true
}

// Controller resolves the navigation controller for a handle.
func (s *Stage) Controller(h walker.Handle) (walker.Controller, bool) {
	b, ok := s.bodies[h]
	if !ok {
		return nil, false
	}
	return &controller{b: b}, true
}

// Location resolves a walker's current position.
func (s *Stage) Location(h walker.Handle) (world.Location, bool) {
	b, ok := s.bodies[h]
	if !ok {
		return world.Location{}, false
	}
	return b.loc, true
}

// Destroy removes a walker body. Destroying an unknown handle is a no-op.
func (s *Stage) Destroy(h walker.Handle) {
	delete(s.bodies, h)
}

// Count returns the number of live bodies.
func (s *Stage) Count() int {
	return len(s.bodies)
}

// Advance moves every walker one step toward its destination. A walker
// whose straight-line path is blocked by unwalkable ground accumulates
// blocked steps and eventually reports stuck; it has no pathfinding.
func (s *Stage) Advance() {
	for _, b := range s.bodies {
		if !b.hasDest {
			continue
		}

		dist := b.loc.DistanceTo(b.dest)
		if dist <= arriveTolerance {
			b.hasDest = false
			b.blocked = 0
			continue
		}

		step := s.Speed
		if step > dist {
			step = dist
		}
		next := world.Location{
			X: b.loc.X + (b.dest.X-b.loc.X)/dist*step,
			Y: b.loc.Y + (b.dest.Y-b.loc.Y)/dist*step,
			Z: b.loc.Z + (b.dest.Z-b.loc.Z)/dist*step,
		}

		if s.terrain.Walkable(next) {
			b.loc = next
			b.blocked = 0
		} else {
			b.blocked++
			if b.blocked >= s.StuckAfter {
				b.stuck = true
			}
		}
	}
}

type controller struct {
	b *body
}

func (c *controller) IsStuck() bool {
	return c.b.stuck
}

func (c *controller) MoveTo(dest world.Location) {
	c.b.dest = dest
	c.b.hasDest = true
	c.b.blocked = 0
	c.b.stuck = false
}
