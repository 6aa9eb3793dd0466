package telemetry

import "github.com/scurry-sim/scurry/world"

// Heatmap accumulates per-cell visit counts over the whole run.
type Heatmap struct {
	width, height int
	counts        []int
}

// NewHeatmap creates a zeroed heatmap for a width x height grid.
func NewHeatmap(width, height int) *Heatmap {
	return &Heatmap{
		width:  width,
		height: height,
		counts: make([]int, width*height),
	}
}

// Visit increments the visit count at the cell. Out-of-grid cells are ignored.
func (h *Heatmap) Visit(c world.Cell) {
	if c.Row < 0 || c.Row >= h.height || c.Col < 0 || c.Col >= h.width {
		return
	}
	h.counts[c.Row*h.width+c.Col]++
}

// Count returns the visit count at the cell.
func (h *Heatmap) Count(c world.Cell) int {
	return h.counts[c.Row*h.width+c.Col]
}

// HeatmapCell is one CSV row of the exported heatmap.
type HeatmapCell struct {
	Row    int `csv:"row"`
	Col    int `csv:"col"`
	Visits int `csv:"visits"`
}

// Records returns the visited cells in row-major order for CSV export.
// Unvisited cells are omitted.
func (h *Heatmap) Records() []HeatmapCell {
	var out []HeatmapCell
	for row := 0; row < h.height; row++ {
		for col := 0; col < h.width; col++ {
			n := h.counts[row*h.width+col]
			if n == 0 {
				continue
			}
			out = append(out, HeatmapCell{Row: row, Col: col, Visits: n})
		}
	}
	return out
}
