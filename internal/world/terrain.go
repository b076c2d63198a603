// Terrain generation using layered simplex noise.
// Elevation decides walkability: cells below the flood line or above the
// rubble line cannot hold a walker.
package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Size        int     // Grid cells per side.
	CellSpacing float64 // World units between adjacent cells.
	Seed        int64
	FloodLine   float64 // Elevation below this is flooded (0.0–1.0).
	RubbleLine  float64 // Elevation above this is impassable rubble.
}

// DefaultGenConfig returns a reasonable mid-size terrain.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:        64,
		CellSpacing: 4.0,
		Seed:        0,
		FloodLine:   0.30,
		RubbleLine:  0.78,
	}
}

// SmallTestConfig returns a tiny terrain for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Size:        12,
		CellSpacing: 4.0,
		Seed:        42,
		FloodLine:   0.30,
		RubbleLine:  0.80,
	}
}

// Terrain is the generated ground the walkers move across.
type Terrain struct {
	Config    GenConfig
	Elevation [][]float64 // [row][col], normalized to [0, 1].
}

// Generate creates a terrain from the config. The same seed always yields
// the same terrain.
func Generate(cfg GenConfig) *Terrain {
	elevNoise := opensimplex.NewNormalized(cfg.Seed)
	detailNoise := opensimplex.NewNormalized(cfg.Seed + 1)

	elev := make([][]float64, cfg.Size)
	for r := 0; r < cfg.Size; r++ {
		elev[r] = make([]float64, cfg.Size)
		for c := 0; c < cfg.Size; c++ {
			x := float64(c)
			y := float64(r)
			base := octaveNoise(elevNoise, x, y, 4, 0.07, 0.5)
			detail := octaveNoise(detailNoise, x, y, 2, 0.21, 0.5)
			elev[r][c] = base*0.8 + detail*0.2
		}
	}

	return &Terrain{Config: cfg, Elevation: elev}
}

// CellLocation returns the world-space center of a grid cell.
func (t *Terrain) CellLocation(row, col int) Location {
	return Location{
		X: float64(col) * t.Config.CellSpacing,
		Y: float64(row) * t.Config.CellSpacing,
		Z: 0,
	}
}

// cellAt maps a world location back onto the grid. Returns false outside
// the terrain bounds.
func (t *Terrain) cellAt(loc Location) (row, col int, ok bool) {
	col = int(loc.X/t.Config.CellSpacing + 0.5)
	row = int(loc.Y/t.Config.CellSpacing + 0.5)
	if row < 0 || row >= t.Config.Size || col < 0 || col >= t.Config.Size {
		return 0, 0, false
	}
	return row, col, true
}

// Walkable reports whether ground at the location can hold a walker.
func (t *Terrain) Walkable(loc Location) bool {
	row, col, ok := t.cellAt(loc)
	if !ok {
		return false
	}
	return t.walkableCell(row, col)
}

func (t *Terrain) walkableCell(row, col int) bool {
	e := t.Elevation[row][col]
	return e >= t.Config.FloodLine && e <= t.Config.RubbleLine
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
