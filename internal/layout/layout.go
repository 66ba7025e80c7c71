// Package layout assigns content items to masonry columns and size tiers.
//
// Columns follow a breakpoint table over the viewport width in layout
// pixels. Items are dealt round-robin in sequence order; the engine never
// balances columns by rendered height. Tiers come from importance alone.
package layout

import (
	"math"
	"sync"

	"github.com/briefdeck/briefdeck/internal/model"
)

// Breakpoints, in layout pixels.
const (
	BreakpointMedium = 640
	BreakpointLarge  = 1024
	BreakpointXLarge = 1536
)

// DefaultPxPerCell converts one terminal column into layout pixels.
const DefaultPxPerCell = 8

// Tier is a rendering-density hint derived from importance.
type Tier int

const (
	TierSmall Tier = iota
	TierMedium
	TierLarge
)

func (t Tier) String() string {
	switch t {
	case TierLarge:
		return "large"
	case TierMedium:
		return "medium"
	default:
		return "small"
	}
}

// TierFor maps an importance score to a tier. Non-finite scores are small.
func TierFor(importance float64) Tier {
	switch {
	case math.IsNaN(importance) || math.IsInf(importance, 0):
		return TierSmall
	case importance >= 8:
		return TierLarge
	case importance >= 5:
		return TierMedium
	default:
		return TierSmall
	}
}

// ColumnsForWidth returns the column count for a viewport width.
func ColumnsForWidth(width int) int {
	switch {
	case width >= BreakpointXLarge:
		return 4
	case width >= BreakpointLarge:
		return 3
	case width >= BreakpointMedium:
		return 2
	default:
		return 1
	}
}

// CellsToPixels converts a terminal width in cells to layout pixels.
// A non-positive pxPerCell uses DefaultPxPerCell.
func CellsToPixels(cells, pxPerCell int) int {
	if pxPerCell <= 0 {
		pxPerCell = DefaultPxPerCell
	}
	if cells < 0 {
		cells = 0
	}
	return cells * pxPerCell
}

// ColumnAssignment places one item.
type ColumnAssignment struct {
	Column int
	Row    int
	Tier   Tier
}

// Placement is a ColumnAssignment tied to its item and sequence position.
type Placement struct {
	ItemID string
	Index  int // Position in the input sequence
	ColumnAssignment
}

// Plan is the render plan for one item sequence and column count.
type Plan struct {
	Columns    int
	Placements []Placement // In input order
}

// Assign deals items round-robin: item i goes to column i mod columns.
// A column count below 1 is treated as 1.
func Assign(items []model.ContentItem, columns int) Plan {
	if columns < 1 {
		columns = 1
	}
	p := Plan{Columns: columns, Placements: make([]Placement, len(items))}
	for i, it := range items {
		p.Placements[i] = Placement{
			ItemID: it.ID,
			Index:  i,
			ColumnAssignment: ColumnAssignment{
				Column: i % columns,
				Row:    i / columns,
				Tier:   TierFor(it.Importance),
			},
		}
	}
	return p
}

// Column returns the placements in column c, top to bottom.
func (p Plan) Column(c int) []Placement {
	var out []Placement
	for _, pl := range p.Placements {
		if pl.Column == c {
			out = append(out, pl)
		}
	}
	return out
}

// Sizes returns the number of items in each column.
func (p Plan) Sizes() []int {
	sizes := make([]int, p.Columns)
	for _, pl := range p.Placements {
		sizes[pl.Column]++
	}
	return sizes
}

// Assignment maps item IDs to their placement. With duplicate IDs the
// first occurrence wins.
func (p Plan) Assignment() map[string]ColumnAssignment {
	m := make(map[string]ColumnAssignment, len(p.Placements))
	for _, pl := range p.Placements {
		if _, ok := m[pl.ItemID]; !ok {
			m[pl.ItemID] = pl.ColumnAssignment
		}
	}
	return m
}

// Engine memoizes the last plan. A new plan is computed from scratch when
// the item sequence (IDs and tiers, in order) or the column count changes.
type Engine struct {
	mu       sync.Mutex
	plan     Plan
	key      []planKey
	valid    bool
	computed int
}

type planKey struct {
	id   string
	tier Tier
}

// Plan returns the plan for items at the given column count. Cached plans
// are shared between callers and must not be modified.
func (e *Engine) Plan(items []model.ContentItem, columns int) Plan {
	if columns < 1 {
		columns = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.valid && e.plan.Columns == columns && e.sameSequence(items) {
		return e.plan
	}
	e.plan = Assign(items, columns)
	e.key = e.key[:0]
	for _, it := range items {
		e.key = append(e.key, planKey{id: it.ID, tier: TierFor(it.Importance)})
	}
	e.valid = true
	e.computed++
	return e.plan
}

func (e *Engine) sameSequence(items []model.ContentItem) bool {
	if len(items) != len(e.key) {
		return false
	}
	for i, it := range items {
		if e.key[i] != (planKey{id: it.ID, tier: TierFor(it.Importance)}) {
			return false
		}
	}
	return true
}

// Computed reports how many plans the engine has built.
func (e *Engine) Computed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computed
}
