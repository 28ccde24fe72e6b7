// Package memgraph is the default, in-memory GraphRepository: a
// mutex-guarded map store with outgoing/incoming adjacency indexes so
// neighbour queries are O(deg), per spec §4.1.
package memgraph

import (
	"sync"

	"github.com/lerian-kg/kgarbiter/internal/graph"
)

func relStoreKey(headID, relType, tailID string) string {
	return headID + "\x00" + relType + "\x00" + tailID
}

type store struct {
	mu        sync.RWMutex
	entities  map[string]*graph.Entity
	relations map[string]*graph.Relation
	// outAdj/inAdj map an entity id to the store keys of relations where
	// it is, respectively, the head or the tail.
	outAdj map[string]map[string]struct{}
	inAdj  map[string]map[string]struct{}
}

func newStore() *store {
	return &store{
		entities:  make(map[string]*graph.Entity),
		relations: make(map[string]*graph.Relation),
		outAdj:    make(map[string]map[string]struct{}),
		inAdj:     make(map[string]map[string]struct{}),
	}
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}

	return out
}

func cloneEntity(e *graph.Entity) *graph.Entity {
	if e == nil {
		return nil
	}

	labels := make([]string, len(e.Labels))
	copy(labels, e.Labels)

	return &graph.Entity{ID: e.ID, Labels: labels, Props: cloneProps(e.Props)}
}

func cloneRelation(r *graph.Relation) *graph.Relation {
	if r == nil {
		return nil
	}

	return &graph.Relation{HeadID: r.HeadID, TailID: r.TailID, RelType: r.RelType, Props: cloneProps(r.Props)}
}

// addIndex registers a relation's store key under both adjacency maps.
func (s *store) addIndex(r *graph.Relation) {
	key := relStoreKey(r.HeadID, r.RelType, r.TailID)

	if s.outAdj[r.HeadID] == nil {
		s.outAdj[r.HeadID] = make(map[string]struct{})
	}

	s.outAdj[r.HeadID][key] = struct{}{}

	if s.inAdj[r.TailID] == nil {
		s.inAdj[r.TailID] = make(map[string]struct{})
	}

	s.inAdj[r.TailID][key] = struct{}{}
}

func (s *store) removeIndex(r *graph.Relation) {
	key := relStoreKey(r.HeadID, r.RelType, r.TailID)

	delete(s.outAdj[r.HeadID], key)
	delete(s.inAdj[r.TailID], key)
}
