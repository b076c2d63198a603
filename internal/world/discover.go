// Spawn point discovery — finds walker placements on the generated terrain.
// Runs once at startup; the returned descriptors are never mutated.
package world

import (
	"math"
	"sort"
)

// DiscoverConfig controls spawn point discovery.
type DiscoverConfig struct {
	Stride     int     // Grid stride between candidate cells.
	MinSpacing float64 // Minimum distance between ongoing points.
}

// DefaultDiscoverConfig returns the standard discovery parameters.
func DefaultDiscoverConfig() DiscoverConfig {
	return DiscoverConfig{
		Stride:     2,
		MinSpacing: 10.0,
	}
}

// DiscoverSpawnPoints scans the terrain for walker placements.
//
// Every walkable candidate cell yields a point usable for the initial batch.
// The Ongoing subset is restricted to interior cells (all neighbors walkable,
// so a walker placed there has somewhere to go) spaced at least MinSpacing
// apart, ordered by how open the surrounding ground is.
func DiscoverSpawnPoints(t *Terrain, cfg DiscoverConfig) []SpawnPoint {
	stride := cfg.Stride
	if stride < 1 {
		stride = 1
	}

	type candidate struct {
		row, col int
		score    float64
	}
	var candidates []candidate

	for r := 0; r < t.Config.Size; r += stride {
		for c := 0; c < t.Config.Size; c += stride {
			if !t.walkableCell(r, c) {
				continue
			}
			candidates = append(candidates, candidate{r, c, openness(t, r, c)})
		}
	}

	// Best-open cells claim ongoing slots first.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		// Stable order for equal scores keeps discovery deterministic.
		if candidates[i].row != candidates[j].row {
			return candidates[i].row < candidates[j].row
		}
		return candidates[i].col < candidates[j].col
	})

	var points []SpawnPoint
	var placed []Location

	for _, c := range candidates {
		loc := t.CellLocation(c.row, c.col)
		pt := SpawnPoint{
			Transform: Transform{
				Location: loc,
				Yaw:      yawAt(t, c.row, c.col),
			},
		}
		if c.score >= 1.0 && !tooClose(loc, placed, cfg.MinSpacing) {
			pt.Ongoing = true
			placed = append(placed, loc)
		}
		points = append(points, pt)
	}

	return points
}

// openness scores a cell by the walkable fraction of its neighborhood.
// 1.0 means fully interior.
func openness(t *Terrain, row, col int) float64 {
	walkable := 0
	total := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || r >= t.Config.Size || c < 0 || c >= t.Config.Size {
				return 0 // Edge cells never qualify as interior.
			}
			total++
			if t.walkableCell(r, c) {
				walkable++
			}
		}
	}
	return float64(walkable) / float64(total)
}

// yawAt derives a stable facing direction from the local elevation gradient.
func yawAt(t *Terrain, row, col int) float64 {
	east := col
	if col+1 < t.Config.Size {
		east = col + 1
	}
	north := row
	if row+1 < t.Config.Size {
		north = row + 1
	}
	dx := t.Elevation[row][east] - t.Elevation[row][col]
	dy := t.Elevation[north][col] - t.Elevation[row][col]
	yaw := math.Atan2(dy, dx) * 180 / math.Pi
	if yaw < 0 {
		yaw += 360
	}
	return yaw
}

func tooClose(loc Location, placed []Location, minDist float64) bool {
	for _, p := range placed {
		if loc.DistanceTo(p) < minDist {
			return true
		}
	}
	return false
}
