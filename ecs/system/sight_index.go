package system

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformcore/ecs"
	"github.com/milk9111/platformcore/ecs/component"
)

// sightPointSize is the edge length of the box indexed for each actor.
const sightPointSize = 0.01

type sightEntry struct {
	entity   ecs.Entity
	pos      cp.Vector
	category component.Category
	hidden   bool
	rect     rtreego.Rect
}

func (s *sightEntry) Bounds() rtreego.Rect {
	return s.rect
}

// SightIndex is a per-frame R-tree snapshot of actor positions used for
// radius scans.
type SightIndex struct {
	tree    *rtreego.Rtree
	entries int
}

func NewSightIndex() *SightIndex {
	return &SightIndex{tree: rtreego.NewTree(2, 25, 50)}
}

// Rebuild snapshots every live actor with a body.
func (idx *SightIndex) Rebuild(w *ecs.World) {
	var spatials []rtreego.Spatial
	ecs.ForEach(w, component.ActorComponent.Kind(), func(e ecs.Entity, actor *component.Actor) {
		if actor.Dead {
			return
		}
		pb, ok := bodyOf(w, e)
		if !ok {
			return
		}
		pos := pb.Body.Position()
		rect, err := rtreego.NewRect(rtreego.Point{pos.X - sightPointSize/2, pos.Y - sightPointSize/2}, []float64{sightPointSize, sightPointSize})
		if err != nil {
			return
		}
		spatials = append(spatials, &sightEntry{entity: e, pos: pos, category: actor.Category, hidden: actor.Hidden, rect: rect})
	})
	idx.tree = rtreego.NewTree(2, 25, 50, spatials...)
	idx.entries = len(spatials)
}

func (idx *SightIndex) Len() int {
	return idx.entries
}

// Nearest returns the closest visible actor within radius of origin that is
// not self and matches filter (CategoryNone matches any). Ties go to the
// lower entity.
func (idx *SightIndex) Nearest(origin cp.Vector, radius float64, self ecs.Entity, filter component.Category) (ecs.Entity, cp.Vector, bool) {
	if idx == nil || idx.tree == nil || radius <= 0 {
		return 0, cp.Vector{}, false
	}
	bb, err := rtreego.NewRect(rtreego.Point{origin.X - radius, origin.Y - radius}, []float64{2 * radius, 2 * radius})
	if err != nil {
		return 0, cp.Vector{}, false
	}

	var (
		best     *sightEntry
		bestDist = math.Inf(1)
	)
	for _, obj := range idx.tree.SearchIntersect(bb) {
		entry, ok := obj.(*sightEntry)
		if !ok || entry.entity == self || entry.hidden {
			continue
		}
		if filter != component.CategoryNone && entry.category != filter {
			continue
		}
		d := math.Hypot(entry.pos.X-origin.X, entry.pos.Y-origin.Y)
		if d > radius {
			continue
		}
		if d < bestDist || (d == bestDist && best != nil && entry.entity < best.entity) {
			best, bestDist = entry, d
		}
	}
	if best == nil {
		return 0, cp.Vector{}, false
	}
	return best.entity, best.pos, true
}
