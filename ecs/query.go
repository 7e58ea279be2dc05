package ecs

import (
	"slices"

	"github.com/milk9111/platformcore/ecs/component"
)

// Query returns the live entities that hold every kind, ordered by slot id.
// A kind with no store yields nil.
func Query(w *World, kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	sets := make([]store, 0, len(kinds))
	for _, k := range kinds {
		if k == nil {
			return nil
		}
		s, ok := w.stores[k.ID()]
		if !ok {
			return nil
		}
		sets = append(sets, s)
	}

	// iterate the smallest set
	slices.SortFunc(sets, func(a, b store) int { return a.len() - b.len() })
	var out []Entity
	for _, e := range sets[0].entities() {
		if !w.entities.isAlive(e) {
			continue
		}
		all := true
		for _, s := range sets[1:] {
			if !s.has(e.id()) {
				all = false
				break
			}
		}
		if all {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b Entity) int { return int(a.id()) - int(b.id()) })
	return out
}
