package memgraph

import (
	"errors"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

var errInvalidID = errors.New("entity id must not be empty")

// upsertEntityLocked merges props (shallow) into any existing row; it
// never overwrites the whole row (§4.1). Caller must hold s.mu.
func upsertEntityLocked(s *store, id string, labels []string, props map[string]any) *graph.Entity {
	existing, ok := s.entities[id]
	if !ok {
		merged := cloneProps(props)
		labelsCopy := append([]string(nil), labels...)
		e := &graph.Entity{ID: id, Labels: labelsCopy, Props: merged}
		s.entities[id] = e

		return cloneEntity(e)
	}

	for _, l := range labels {
		if !containsLabel(existing.Labels, l) {
			existing.Labels = append(existing.Labels, l)
		}
	}

	for k, v := range props {
		existing.Props[k] = v
	}

	return cloneEntity(existing)
}

func containsLabel(labels []string, l string) bool {
	for _, x := range labels {
		if x == l {
			return true
		}
	}

	return false
}

// upsertRelationLocked merges props (shallow) into any existing row,
// preserving the (head,tail,relType) key (§3, §4.1). Caller must hold s.mu.
func upsertRelationLocked(s *store, headID, relType, tailID string, props map[string]any) *graph.Relation {
	key := relStoreKey(headID, relType, tailID)

	existing, ok := s.relations[key]
	if !ok {
		r := &graph.Relation{HeadID: headID, TailID: tailID, RelType: relType, Props: cloneProps(props)}
		s.relations[key] = r
		s.addIndex(r)

		return cloneRelation(r)
	}

	for k, v := range props {
		existing.Props[k] = v
	}

	return cloneRelation(existing)
}

// deleteEntityLocked removes the entity and cascades to every relation
// incident to it (§4.1). Caller must hold s.mu.
func deleteEntityLocked(s *store, id string) {
	delete(s.entities, id)

	for key := range s.outAdj[id] {
		if r, ok := s.relations[key]; ok {
			deleteRelationLocked(s, r.HeadID, r.RelType, r.TailID)
		}
	}

	for key := range s.inAdj[id] {
		if r, ok := s.relations[key]; ok {
			deleteRelationLocked(s, r.HeadID, r.RelType, r.TailID)
		}
	}

	delete(s.outAdj, id)
	delete(s.inAdj, id)
}

// deleteRelationLocked removes one relation row and its adjacency index
// entries. Caller must hold s.mu.
func deleteRelationLocked(s *store, headID, relType, tailID string) {
	key := relStoreKey(headID, relType, tailID)

	r, ok := s.relations[key]
	if !ok {
		return
	}

	s.removeIndex(r)
	delete(s.relations, key)
}

// neighborsLocked returns relations incident to id, filtered by relType
// ("" = any) and direction. Caller must hold s.mu (read lock suffices).
func neighborsLocked(s *store, id string, relType string, dir mmodel.NeighborDirection) []*graph.Relation {
	seen := make(map[string]struct{})
	out := make([]*graph.Relation, 0)

	collect := func(idx map[string]map[string]struct{}) {
		for key := range idx[id] {
			if _, dup := seen[key]; dup {
				continue
			}

			r, ok := s.relations[key]
			if !ok {
				continue
			}

			if relType != "" && r.RelType != relType {
				continue
			}

			seen[key] = struct{}{}
			out = append(out, cloneRelation(r))
		}
	}

	switch dir {
	case mmodel.DirOut:
		collect(s.outAdj)
	case mmodel.DirIn:
		collect(s.inAdj)
	default: // both
		collect(s.outAdj)
		collect(s.inAdj)
	}

	return out
}
