package walker

import (
	"fmt"
	"log/slog"

	"github.com/aravindSwamy94/carla/internal/world"
)

// tryPickDestination draws one random registry point and accepts it only if
// it is far enough from origin. Exactly one draw per call: rejection is
// returned to the caller rather than hidden behind a retry loop, keeping the
// per-call cost constant.
func (m *Manager) tryPickDestination(origin world.Location) (world.Location, bool) {
	dest := m.registry.RandomPoint(m.rng).Transform.Location
	return dest, origin.DistanceTo(dest) >= m.cfg.MinimumWalkDistance
}

// trySpawnAt attempts to create one walker at the given point. Each failure
// point unwinds whatever the attempt created, so the managed sets never see
// a half-constructed walker.
func (m *Manager) trySpawnAt(pt world.SpawnPoint) bool {
	dest, ok := m.tryPickDestination(pt.Transform.Location)
	if !ok {
		return false
	}

	h, ok := m.stage.Spawn(pt.Transform)
	if !ok {
		return false
	}

	ctrl, ok := m.stage.Controller(h)
	if !ok {
		// Attachment failed; destroy the entity so nothing is orphaned.
		slog.Error("controller attachment failed for new walker", "handle", h)
		m.stage.Destroy(h)
		return false
	}

	m.active = append(m.active, h)
	ctrl.MoveTo(dest)

	m.stats.Spawned++
	m.record("spawn", fmt.Sprintf("walker %s spawned at (%.1f, %.1f)", h,
		pt.Transform.Location.X, pt.Transform.Location.Y))
	return true
}

// trySetDestination gives an existing walker a fresh destination from its
// current location. One destination draw; failure is tolerated by callers.
func (m *Manager) trySetDestination(h Handle) bool {
	ctrl, ok := m.stage.Controller(h)
	if !ok {
		return false
	}
	origin, ok := m.stage.Location(h)
	if !ok {
		return false
	}
	dest, ok := m.tryPickDestination(origin)
	if !ok {
		return false
	}
	ctrl.MoveTo(dest)
	return true
}
