// Package walker manages the population of autonomous walkers: how many
// exist, where they spawn, where each one walks to next, and when a stalled
// walker is evicted. It decides when and where; moving a walker is the
// stage's job.
package walker

import (
	"github.com/aravindSwamy94/carla/internal/world"
)

// Handle identifies a walker entity owned by the stage. Handles may go
// stale at any time; resolve through the stage before use.
type Handle string

// Controller steers one walker. Implemented by the navigation substrate.
type Controller interface {
	// IsStuck reports whether the walker has stopped making progress
	// toward its destination.
	IsStuck() bool
	// MoveTo orders the walker toward a new destination.
	MoveTo(dest world.Location)
}

// Stage is the external substrate that owns walker entities. Spawn and
// controller attachment can each fail; Controller and Location are the
// explicit resolve operations for possibly-stale handles.
type Stage interface {
	Spawn(at world.Transform) (Handle, bool)
	Controller(h Handle) (Controller, bool)
	Location(h Handle) (world.Location, bool)
	Destroy(h Handle)
}

// Config holds the population parameters.
type Config struct {
	TargetPopulation    int
	UseFixedSeed        bool
	Seed                int64
	MinimumWalkDistance float64
}

// Event is a notable population occurrence, drained by the host for
// journaling.
type Event struct {
	Tick        uint64 `json:"tick" db:"tick"`
	Category    string `json:"category" db:"category"` // "spawn", "quarantine", "evict", "config"
	Description string `json:"description" db:"description"`
}

// Stats tracks aggregate population counters for diagnostics.
type Stats struct {
	BeginPoints    int    `json:"begin_points"`
	OngoingPoints  int    `json:"ongoing_points"`
	StartupSpawned int    `json:"startup_spawned"`
	Spawned        uint64 `json:"spawned"`
	Quarantined    uint64 `json:"quarantined"`
	Evicted        uint64 `json:"evicted"`
}

// WalkerInfo is a read-only view of one managed walker.
type WalkerInfo struct {
	Handle      Handle         `json:"handle"`
	Blacklisted bool           `json:"blacklisted"`
	Location    world.Location `json:"location"`
}
