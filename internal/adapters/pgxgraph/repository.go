package pgxgraph

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// Repository is the non-transactional, pool-backed GraphRepository used
// for read paths (the reasoning core, validation's domain lookup) that
// never need rollback semantics (§4.1).
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps an already-connected pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ graph.Repository = (*Repository)(nil)

func (r *Repository) UpsertEntity(ctx context.Context, id string, labels []string, props map[string]any) (*graph.Entity, error) {
	return upsertEntity(ctx, r.pool, id, labels, props)
}

func (r *Repository) UpsertRelation(ctx context.Context, headID, relType, tailID string, props map[string]any) (*graph.Relation, error) {
	return upsertRelation(ctx, r.pool, headID, relType, tailID, props)
}

func (r *Repository) GetEntity(ctx context.Context, id string) (*graph.Entity, bool) {
	return getEntity(ctx, r.pool, id)
}

func (r *Repository) GetRelation(ctx context.Context, headID, relType, tailID string) (*graph.Relation, bool) {
	return getRelation(ctx, r.pool, headID, relType, tailID)
}

func (r *Repository) GetNeighbors(ctx context.Context, id string, relType string, dir mmodel.NeighborDirection) ([]*graph.Relation, error) {
	return getNeighbors(ctx, r.pool, id, relType, dir)
}

func (r *Repository) GetAllEntities(ctx context.Context) []*graph.Entity {
	return getAllEntities(ctx, r.pool)
}

func (r *Repository) GetAllRelations(ctx context.Context) []*graph.Relation {
	return getAllRelations(ctx, r.pool)
}

func (r *Repository) DeleteEntity(ctx context.Context, id string) error {
	_, err := deleteEntity(ctx, r.pool, id)
	return err
}

func (r *Repository) DeleteRelation(ctx context.Context, headID, relType, tailID string) error {
	return deleteRelation(ctx, r.pool, headID, relType, tailID)
}

func (r *Repository) Clear(ctx context.Context) {
	clearAll(ctx, r.pool)
}

func (r *Repository) CountEntities(ctx context.Context) int {
	return countEntities(ctx, r.pool)
}

func (r *Repository) CountRelations(ctx context.Context) int {
	return countRelations(ctx, r.pool)
}
