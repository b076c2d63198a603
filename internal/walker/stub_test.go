package walker

import (
	"fmt"

	"github.com/aravindSwamy94/carla/internal/world"
)

// stubStage is a deterministic in-memory Stage for tests. It records every
// spawn, destroy, and issued destination, and counts resolve and stuck
// queries so per-tick work can be asserted.
type stubStage struct {
	nextID int
	bodies map[Handle]*stubBody
	order  []Handle

	spawnFail  bool // Spawn returns an invalid entity.
	attachFail bool // Controller resolution fails for everything.

	spawns    []world.Transform
	moves     []world.Location // Every MoveTo destination, in issue order.
	destroyed []Handle

	resolveCalls int
	stuckCalls   int
}

type stubBody struct {
	stage *stubStage
	loc   world.Location
	stuck bool
	moves []world.Location
}

func newStubStage() *stubStage {
	return &stubStage{bodies: make(map[Handle]*stubBody)}
}

func (s *stubStage) Spawn(at world.Transform) (Handle, bool) {
	s.spawns = append(s.spawns, at)
	if s.spawnFail {
		return "", false
	}
	s.nextID++
	h := Handle(fmt.Sprintf("w-%d", s.nextID))
	s.bodies[h] = &stubBody{stage: s, loc: at.Location}
	s.order = append(s.order, h)
	return h, true
}

func (s *stubStage) Controller(h Handle) (Controller, bool) {
	s.resolveCalls++
	if s.attachFail {
		return nil, false
	}
	b, ok := s.bodies[h]
	if !ok {
		return nil, false
	}
	return &stubController{b: b}, true
}

func (s *stubStage) Location(h Handle) (world.Location, bool) {
	b, ok := s.bodies[h]
	if !ok {
		return world.Location{}, false
	}
	return b.loc, true
}

func (s *stubStage) Destroy(h Handle) {
	s.destroyed = append(s.destroyed, h)
	delete(s.bodies, h)
}

// vanish removes a body without going through Destroy, simulating an entity
// dying outside the manager's control.
func (s *stubStage) vanish(h Handle) {
	delete(s.bodies, h)
}

type stubController struct {
	b *stubBody
}

func (c *stubController) IsStuck() bool {
	c.b.stage.stuckCalls++
	return c.b.stuck
}

func (c *stubController) MoveTo(dest world.Location) {
	c.b.moves = append(c.b.moves, dest)
	c.b.stage.moves = append(c.b.stage.moves, dest)
	// A fresh move order resets the stall detector, as the real substrate
	// does.
	c.b.stuck = false
}

// linePoints returns n ongoing spawn points spaced along the X axis.
func linePoints(n int, spacing float64) []world.SpawnPoint {
	pts := make([]world.SpawnPoint, n)
	for i := range pts {
		pts[i] = world.SpawnPoint{
			Transform: world.Transform{
				Location: world.Location{X: float64(i) * spacing},
			},
			Ongoing: true,
		}
	}
	return pts
}
