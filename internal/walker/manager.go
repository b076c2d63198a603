package walker

import (
	crand "crypto/rand"
	"encoding/binary"
	"log/slog"
	"math/rand"

	"github.com/aravindSwamy94/carla/internal/world"
)

// Manager owns the walker population: the active and blacklisted sets, the
// spawn point registry, the seeded random stream, and the round-robin
// cursor. All methods must be called from the tick goroutine; the manager
// does no locking of its own.
type Manager struct {
	cfg      Config
	stage    Stage
	registry Registry
	rng      *rand.Rand

	target       int
	spawnEnabled bool

	active    []Handle
	blacklist []Handle
	cursor    uint64

	lastTick uint64
	stats    Stats
	events   []Event
}

// NewManager creates a population manager. With UseFixedSeed the random
// stream is reproducible; otherwise a fresh seed is drawn and logged so a
// run can still be replayed afterwards.
func NewManager(cfg Config, stage Stage) *Manager {
	if cfg.TargetPopulation < 0 {
		cfg.TargetPopulation = 0
	}

	seed := cfg.Seed
	if !cfg.UseFixedSeed {
		seed = freshSeed()
	}
	slog.Info("walker manager seeded", "seed", seed, "fixed", cfg.UseFixedSeed)

	return &Manager{
		cfg:          cfg,
		stage:        stage,
		rng:          rand.New(rand.NewSource(seed)),
		target:       cfg.TargetPopulation,
		spawnEnabled: cfg.TargetPopulation > 0,
	}
}

// freshSeed draws a random seed from the OS entropy source.
func freshSeed() int64 {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		// Entropy exhaustion is effectively unreachable; fall back to a
		// constant rather than abort the run.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}

// Start registers the discovered spawn points and performs the initial batch
// spawn. Points flagged Ongoing feed the registry used for destinations and
// per-tick top-up; the full set is only used for this initial batch.
//
// Fewer than two ongoing points permanently disables spawning for this run.
// The process keeps going: already-spawned walkers (none, in that case) are
// unaffected and the diagnostics surfaces stay live.
func (m *Manager) Start(points []world.SpawnPoint) {
	begin := points
	var ongoing []world.SpawnPoint
	for _, p := range points {
		if p.Ongoing {
			ongoing = append(ongoing, p)
		}
	}
	m.registry.RegisterAll(ongoing)

	m.stats.BeginPoints = len(begin)
	m.stats.OngoingPoints = len(ongoing)
	slog.Info("found positions for spawning walkers at startup", "count", len(begin))
	slog.Info("found positions for spawning walkers during the run", "count", len(ongoing))

	if !m.registry.Usable() {
		m.spawnEnabled = false
		slog.Error("not enough spawn points for walkers, spawning disabled",
			"ongoing", len(ongoing), "required", minOngoingPoints)
		m.record("config", "spawning disabled: not enough ongoing spawn points")
		return
	}
	if len(begin) < m.target {
		slog.Warn("requested more walkers than startup spawn points, some will fail to spawn",
			"requested", m.target, "points", len(begin))
	}

	if m.spawnEnabled && len(begin) > 0 {
		count := 0
		for i := 0; i < m.target; i++ {
			if m.trySpawnAt(begin[i%len(begin)]) {
				count++
			}
		}
		m.stats.StartupSpawned = count
		slog.Info("spawned walkers at startup", "count", count, "requested", m.target)
	}
}

// Tick runs one maintenance step: at most one top-up spawn attempt, one
// active-set check, and one blacklist check, in that order.
func (m *Manager) Tick(tick uint64) {
	m.lastTick = tick

	if m.spawnEnabled && m.registry.Usable() && len(m.active) < m.target {
		m.trySpawnAt(m.registry.RandomPoint(m.rng))
	}

	m.checkActive()
	m.checkBlacklist()
}

// SetTarget changes the target population. A positive count enables
// spawning (unless the registry never had enough points); zero or negative
// disables it without evicting existing walkers.
func (m *Manager) SetTarget(count int) {
	if count > 0 {
		m.target = count
		m.spawnEnabled = m.registry.Usable()
		slog.Info("walker target changed", "target", count, "spawning", m.spawnEnabled)
	} else {
		m.spawnEnabled = false
		slog.Info("walker spawning disabled")
	}
	m.record("config", "target population changed")
}

// Target returns the current target population.
func (m *Manager) Target() int { return m.target }

// SpawningEnabled reports whether the manager will attempt top-up spawns.
func (m *Manager) SpawningEnabled() bool { return m.spawnEnabled }

// ActiveCount returns the number of walkers in the active set.
func (m *Manager) ActiveCount() int { return len(m.active) }

// BlacklistedCount returns the number of quarantined walkers.
func (m *Manager) BlacklistedCount() int { return len(m.blacklist) }

// LastTick returns the most recently processed tick.
func (m *Manager) LastTick() uint64 { return m.lastTick }

// Stats returns the aggregate population counters.
func (m *Manager) Stats() Stats { return m.stats }

// Walkers returns a read-only view of every managed walker, resolving
// current locations through the stage.
func (m *Manager) Walkers() []WalkerInfo {
	out := make([]WalkerInfo, 0, len(m.active)+len(m.blacklist))
	for _, h := range m.active {
		info := WalkerInfo{Handle: h}
		if loc, ok := m.stage.Location(h); ok {
			info.Location = loc
		}
		out = append(out, info)
	}
	for _, h := range m.blacklist {
		info := WalkerInfo{Handle: h, Blacklisted: true}
		if loc, ok := m.stage.Location(h); ok {
			info.Location = loc
		}
		out = append(out, info)
	}
	return out
}

// DrainEvents returns the accumulated events and clears the buffer.
func (m *Manager) DrainEvents() []Event {
	ev := m.events
	m.events = nil
	return ev
}

func (m *Manager) record(category, description string) {
	m.events = append(m.events, Event{
		Tick:        m.lastTick,
		Category:    category,
		Description: description,
	})
}
