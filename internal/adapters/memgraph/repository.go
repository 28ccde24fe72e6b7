package memgraph

import (
	"context"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/merrors"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// Repository is the direct (non-transactional) GraphRepository. It never
// records a ChangeRecord; use a Transaction (tx.go) when rollback
// semantics are needed.
type Repository struct {
	s *store
}

// NewRepository constructs an empty in-memory graph repository.
func NewRepository() *Repository {
	return &Repository{s: newStore()}
}

var _ graph.Repository = (*Repository)(nil)

func (r *Repository) UpsertEntity(_ context.Context, id string, labels []string, props map[string]any) (*graph.Entity, error) {
	if id == "" {
		return nil, merrors.NewStorageError("UpsertEntity", errInvalidID)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return upsertEntityLocked(r.s, id, labels, props), nil
}

func (r *Repository) UpsertRelation(_ context.Context, headID, relType, tailID string, props map[string]any) (*graph.Relation, error) {
	if headID == "" || tailID == "" || relType == "" {
		return nil, merrors.NewStorageError("UpsertRelation", errInvalidID)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return upsertRelationLocked(r.s, headID, relType, tailID, props), nil
}

func (r *Repository) GetEntity(_ context.Context, id string) (*graph.Entity, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.entities[id]

	return cloneEntity(e), ok
}

func (r *Repository) GetRelation(_ context.Context, headID, relType, tailID string) (*graph.Relation, bool) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rel, ok := r.s.relations[relStoreKey(headID, relType, tailID)]

	return cloneRelation(rel), ok
}

func (r *Repository) GetNeighbors(_ context.Context, id string, relType string, dir mmodel.NeighborDirection) ([]*graph.Relation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return neighborsLocked(r.s, id, relType, dir), nil
}

func (r *Repository) GetAllEntities(_ context.Context) []*graph.Entity {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*graph.Entity, 0, len(r.s.entities))
	for _, e := range r.s.entities {
		out = append(out, cloneEntity(e))
	}

	return out
}

func (r *Repository) GetAllRelations(_ context.Context) []*graph.Relation {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*graph.Relation, 0, len(r.s.relations))
	for _, rel := range r.s.relations {
		out = append(out, cloneRelation(rel))
	}

	return out
}

func (r *Repository) DeleteEntity(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleteEntityLocked(r.s, id)

	return nil
}

func (r *Repository) DeleteRelation(_ context.Context, headID, relType, tailID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	deleteRelationLocked(r.s, headID, relType, tailID)

	return nil
}

func (r *Repository) Clear(_ context.Context) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.entities = make(map[string]*graph.Entity)
	r.s.relations = make(map[string]*graph.Relation)
	r.s.outAdj = make(map[string]map[string]struct{})
	r.s.inAdj = make(map[string]map[string]struct{})
}

func (r *Repository) CountEntities(_ context.Context) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.entities)
}

func (r *Repository) CountRelations(_ context.Context) int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.s.relations)
}
