// Package graph defines the storage contract (C1) shared by every KG
// adapter: typed entity/relation CRUD scoped by namespace, plus the
// transaction manager that gives callers atomic write-or-undo semantics
// over it (spec §4.1).
package graph

import (
	"context"
	"time"

	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// Entity is a stored entity row: canonical id, display name folded into
// props["name"], label set, and a shallow-mergeable props map.
type Entity struct {
	ID     string
	Labels []string
	Props  map[string]any
}

// Relation is a stored relation row, namespaced as "domain:<type>" or
// "personal:<type>" per §3.
type Relation struct {
	HeadID  string
	TailID  string
	RelType string // namespaced, e.g. "domain:Affect"
	Props   map[string]any
}

// Key returns the relation's (head, tail, rel_type) key; RelType keeps
// its namespace prefix.
func (r *Relation) Key() mmodel.RelationKey {
	return mmodel.RelationKey{HeadID: r.HeadID, TailID: r.TailID, RelType: r.RelType}
}

// Repository is the full contract named in §4.1: only these operations
// exist, upserts merge, delete_entity cascades.
type Repository interface {
	UpsertEntity(ctx context.Context, id string, labels []string, props map[string]any) (*Entity, error)
	UpsertRelation(ctx context.Context, headID, relType, tailID string, props map[string]any) (*Relation, error)
	GetEntity(ctx context.Context, id string) (*Entity, bool)
	GetRelation(ctx context.Context, headID, relType, tailID string) (*Relation, bool)
	// GetNeighbors returns relations incident to id. relType == "" matches
	// any type. dir selects out/in/both (§4.1).
	GetNeighbors(ctx context.Context, id string, relType string, dir mmodel.NeighborDirection) ([]*Relation, error)
	GetAllEntities(ctx context.Context) []*Entity
	GetAllRelations(ctx context.Context) []*Relation
	DeleteEntity(ctx context.Context, id string) error
	DeleteRelation(ctx context.Context, headID, relType, tailID string) error
	Clear(ctx context.Context)
	CountEntities(ctx context.Context) int
	CountRelations(ctx context.Context) int
}

// Transaction is a Repository scoped to one logical unit of work; every
// mutating call also appends a ChangeRecord so Rollback can invert it in
// reverse insertion order (§4.1).
type Transaction interface {
	Repository
	ID() string
	State() mmodel.TxState
	Changes() []mmodel.ChangeRecord
	Commit(ctx context.Context) error
	Rollback(ctx context.Context, reason string) error
}

// TxManager is the scoped-acquisition transaction lifecycle controller
// described in §4.1/§9: mutating calls are applied immediately (not
// deferred). The in-memory TxManager serialises begin/commit/rollback
// through one lock; the Postgres one has no such lock and leaves
// concurrent transactions to the database.
type TxManager interface {
	Begin(ctx context.Context) (Transaction, error)
	// WithTransaction begins a transaction, runs fn, commits on a nil
	// return and rolls back (re-raising the original error) otherwise —
	// the "guaranteed release" scoped-acquisition pattern of §4.1.
	WithTransaction(ctx context.Context, fn func(tx Transaction) error) error
}

// now is overridable in tests that need deterministic timestamps.
var now = time.Now
