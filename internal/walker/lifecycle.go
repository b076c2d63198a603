package walker

import "fmt"

// Lifecycle checks. One member of each set is inspected per tick by round
// robin, so the per-tick cost stays constant regardless of population size;
// every member is revisited once every len(set) ticks.
//
// State machine per walker: active → active (destination reassigned),
// active → blacklisted, active → destroyed, blacklisted → destroyed.
// There is no path from the blacklist back to the active set.

// checkActive inspects one active walker.
func (m *Manager) checkActive() {
	if len(m.active) == 0 {
		return
	}

	m.cursor++
	i := int(m.cursor % uint64(len(m.active)))
	h := m.active[i]

	ctrl, ok := m.stage.Controller(h)
	if !ok {
		// Controller vanished outside our control; prune and clean up
		// whatever is left of the entity.
		m.active = swapRemove(m.active, i)
		m.stage.Destroy(h)
		m.stats.Evicted++
		m.record("evict", fmt.Sprintf("walker %s lost its controller, removed", h))
		return
	}

	if ctrl.IsStuck() {
		// One reassignment attempt, then quarantine regardless of whether
		// it succeeded.
		m.trySetDestination(h)
		m.blacklist = append(m.blacklist, h)
		m.active = swapRemove(m.active, i)
		m.stats.Quarantined++
		m.record("quarantine", fmt.Sprintf("walker %s is stuck, blacklisted", h))
	}
}

// checkBlacklist inspects one blacklisted walker. Still stuck, or gone
// entirely: destroy it. Recovered walkers are left inert in the blacklist
// until they stall again or their controller disappears.
func (m *Manager) checkBlacklist() {
	if len(m.blacklist) == 0 {
		return
	}

	m.cursor++
	i := int(m.cursor % uint64(len(m.blacklist)))
	h := m.blacklist[i]

	ctrl, ok := m.stage.Controller(h)
	if !ok || ctrl.IsStuck() {
		m.blacklist = swapRemove(m.blacklist, i)
		m.stage.Destroy(h)
		m.stats.Evicted++
		m.record("evict", fmt.Sprintf("blacklisted walker %s destroyed", h))
	}
}

// swapRemove removes index i in O(1) by swapping the last element into its
// slot. The sets are unordered, so the reordering is harmless.
func swapRemove(s []Handle, i int) []Handle {
	s[i] = s[len(s)-1]
	return s[:len(s)-1]
}
