package pgxgraph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/merrors"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// TxManager begins real pgx.Tx transactions. Unlike the in-memory
// adapter, commit/rollback are the database's own: the undo-log kept on
// Transaction is redundant for recovery and exists only so Changes()
// still reports what happened, for observability parity with memgraph.
type TxManager struct {
	pool *pgxpool.Pool
	seq  atomic.Uint64
}

// NewTxManager builds a transaction manager over an already-connected pool.
func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

var _ graph.TxManager = (*TxManager)(nil)

func (tm *TxManager) Begin(ctx context.Context) (graph.Transaction, error) {
	pgxTx, err := tm.pool.Begin(ctx)
	if err != nil {
		return nil, merrors.NewStorageError("Begin", err)
	}

	n := tm.seq.Add(1)

	return &Transaction{
		id:    fmt.Sprintf("tx-%d-%s", n, uuid.NewString()),
		tx:    pgxTx,
		state: mmodel.TxActive,
	}, nil
}

func (tm *TxManager) WithTransaction(ctx context.Context, fn func(tx graph.Transaction) error) error {
	tx, err := tm.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx, err.Error()); rbErr != nil {
			return rbErr
		}

		return err
	}

	return tx.Commit(ctx)
}

// Transaction wraps one pgx.Tx. Every mutating call is applied through
// ops.go's functions (the tx itself satisfies querier), with a
// ChangeRecord appended for symmetry with the in-memory backend's
// rollback log — here it is descriptive only, since pgx.Tx.Rollback does
// the actual undo.
type Transaction struct {
	id    string
	tx    pgx.Tx
	mu    sync.Mutex
	state mmodel.TxState

	changes []mmodel.ChangeRecord
}

var _ graph.Transaction = (*Transaction)(nil)

func (tx *Transaction) ID() string { return tx.id }

func (tx *Transaction) State() mmodel.TxState {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	return tx.state
}

func (tx *Transaction) Changes() []mmodel.ChangeRecord {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	out := make([]mmodel.ChangeRecord, len(tx.changes))
	copy(out, tx.changes)

	return out
}

func (tx *Transaction) ensureActive(op string) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.state != mmodel.TxActive {
		return merrors.NewStorageError(op, fmt.Errorf("transaction %s is not active (state=%s)", tx.id, tx.state))
	}

	return nil
}

func (tx *Transaction) recordChange(rec mmodel.ChangeRecord) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.changes = append(tx.changes, rec)
}

// --- mutating operations -------------------------------------------------

func (tx *Transaction) UpsertEntity(ctx context.Context, id string, labels []string, props map[string]any) (*graph.Entity, error) {
	if err := tx.ensureActive("UpsertEntity"); err != nil {
		return nil, err
	}

	before, existed := getEntity(ctx, tx.tx, id)

	result, err := upsertEntity(ctx, tx.tx, id, labels, props)
	if err != nil {
		return nil, err
	}

	op := mmodel.OpUpdateEntity
	if !existed {
		op = mmodel.OpCreateEntity
	}

	tx.recordChange(mmodel.ChangeRecord{
		Operation: op, EntityID: id,
		BeforeState: snapshotEntity(before), AfterState: snapshotEntity(result),
	})

	return result, nil
}

func (tx *Transaction) UpsertRelation(ctx context.Context, headID, relType, tailID string, props map[string]any) (*graph.Relation, error) {
	if err := tx.ensureActive("UpsertRelation"); err != nil {
		return nil, err
	}

	before, existed := getRelation(ctx, tx.tx, headID, relType, tailID)

	result, err := upsertRelation(ctx, tx.tx, headID, relType, tailID, props)
	if err != nil {
		return nil, err
	}

	op := mmodel.OpUpdateRelation
	if !existed {
		op = mmodel.OpCreateRelation
	}

	key := result.Key()
	tx.recordChange(mmodel.ChangeRecord{
		Operation: op, RelKey: &key,
		BeforeState: snapshotRelation(before), AfterState: snapshotRelation(result),
	})

	return result, nil
}

func (tx *Transaction) DeleteEntity(ctx context.Context, id string) error {
	if err := tx.ensureActive("DeleteEntity"); err != nil {
		return err
	}

	existing, ok := getEntity(ctx, tx.tx, id)
	if !ok {
		return nil
	}

	cascaded, err := deleteEntity(ctx, tx.tx, id)
	if err != nil {
		return err
	}

	for _, r := range cascaded {
		key := r.Key()
		tx.recordChange(mmodel.ChangeRecord{
			Operation: mmodel.OpDeleteRelation, RelKey: &key,
			BeforeState: snapshotRelation(r), AfterState: nil,
		})
	}

	tx.recordChange(mmodel.ChangeRecord{
		Operation: mmodel.OpDeleteEntity, EntityID: id,
		BeforeState: snapshotEntity(existing), AfterState: nil,
	})

	return nil
}

func (tx *Transaction) DeleteRelation(ctx context.Context, headID, relType, tailID string) error {
	if err := tx.ensureActive("DeleteRelation"); err != nil {
		return err
	}

	existing, ok := getRelation(ctx, tx.tx, headID, relType, tailID)
	if !ok {
		return nil
	}

	if err := deleteRelation(ctx, tx.tx, headID, relType, tailID); err != nil {
		return err
	}

	key := existing.Key()
	tx.recordChange(mmodel.ChangeRecord{
		Operation: mmodel.OpDeleteRelation, RelKey: &key,
		BeforeState: snapshotRelation(existing), AfterState: nil,
	})

	return nil
}

func (tx *Transaction) Clear(ctx context.Context) {
	for _, e := range tx.GetAllEntities(ctx) {
		_ = tx.DeleteEntity(ctx, e.ID)
	}
}

// --- read-only operations: observe the transaction's own writes since
// they run against the same pgx.Tx. ---------------------------------------

func (tx *Transaction) GetEntity(ctx context.Context, id string) (*graph.Entity, bool) {
	return getEntity(ctx, tx.tx, id)
}

func (tx *Transaction) GetRelation(ctx context.Context, headID, relType, tailID string) (*graph.Relation, bool) {
	return getRelation(ctx, tx.tx, headID, relType, tailID)
}

func (tx *Transaction) GetNeighbors(ctx context.Context, id string, relType string, dir mmodel.NeighborDirection) ([]*graph.Relation, error) {
	return getNeighbors(ctx, tx.tx, id, relType, dir)
}

func (tx *Transaction) GetAllEntities(ctx context.Context) []*graph.Entity {
	return getAllEntities(ctx, tx.tx)
}

func (tx *Transaction) GetAllRelations(ctx context.Context) []*graph.Relation {
	return getAllRelations(ctx, tx.tx)
}

func (tx *Transaction) CountEntities(ctx context.Context) int {
	return countEntities(ctx, tx.tx)
}

func (tx *Transaction) CountRelations(ctx context.Context) int {
	return countRelations(ctx, tx.tx)
}

// --- lifecycle ------------------------------------------------------------

func (tx *Transaction) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.state != mmodel.TxActive {
		return merrors.NewStorageError("Commit", fmt.Errorf("transaction %s is not active (state=%s)", tx.id, tx.state))
	}

	if err := tx.tx.Commit(ctx); err != nil {
		return merrors.NewStorageError("Commit", err)
	}

	tx.state = mmodel.TxCommitted

	return nil
}

// Rollback defers entirely to pgx.Tx.Rollback; the recorded changes are
// kept only so callers inspecting Changes() after a rollback still see
// what was attempted, matching memgraph's Changes() contract.
func (tx *Transaction) Rollback(ctx context.Context, reason string) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.state != mmodel.TxActive {
		return merrors.NewStorageError("Rollback", fmt.Errorf("transaction %s is not active (state=%s)", tx.id, tx.state))
	}

	if err := tx.tx.Rollback(ctx); err != nil {
		return merrors.NewStorageError("Rollback", err)
	}

	tx.state = mmodel.TxRolledBack
	_ = reason

	return nil
}
