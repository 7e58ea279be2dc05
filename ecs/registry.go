package ecs

import "slices"

// Registry is a membership list whose mutations are deferred until Commit,
// so every read between two commits sees the same members.
type Registry struct {
	members []Entity
	pending []registryOp
}

type registryOp struct {
	entity Entity
	add    bool
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register queues e for addition at the next Commit.
func (r *Registry) Register(e Entity) {
	if r == nil || !e.Valid() {
		return
	}
	r.pending = append(r.pending, registryOp{entity: e, add: true})
}

// Unregister queues e for removal at the next Commit.
func (r *Registry) Unregister(e Entity) {
	if r == nil || !e.Valid() {
		return
	}
	r.pending = append(r.pending, registryOp{entity: e})
}

// Commit applies queued operations in order and reports whether membership
// changed.
func (r *Registry) Commit() bool {
	if r == nil || len(r.pending) == 0 {
		return false
	}
	changed := false
	for _, op := range r.pending {
		idx := slices.Index(r.members, op.entity)
		switch {
		case op.add && idx < 0:
			r.members = append(r.members, op.entity)
			changed = true
		case !op.add && idx >= 0:
			r.members = slices.Delete(r.members, idx, idx+1)
			changed = true
		}
	}
	r.pending = r.pending[:0]
	return changed
}

// Snapshot returns a copy of the committed members in registration order.
func (r *Registry) Snapshot() []Entity {
	if r == nil {
		return nil
	}
	return slices.Clone(r.members)
}

func (r *Registry) Contains(e Entity) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.members, e)
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.members)
}
