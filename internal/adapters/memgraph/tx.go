package memgraph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/merrors"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// TxManager is the in-memory transaction manager (§4.1, §9): a single
// lock serialises begin/commit/rollback lifecycle transitions, while the
// mutations themselves are applied immediately against the shared store
// (rollback is thus a best-effort undo that assumes no interleaved
// writer, exactly as §4.1 specifies).
type TxManager struct {
	repo      *Repository
	lifecycle sync.Mutex
	seq       atomic.Uint64
}

// NewTxManager builds a transaction manager over repo's shared store.
func NewTxManager(repo *Repository) *TxManager {
	return &TxManager{repo: repo}
}

var _ graph.TxManager = (*TxManager)(nil)

func (tm *TxManager) Begin(_ context.Context) (graph.Transaction, error) {
	tm.lifecycle.Lock()
	defer tm.lifecycle.Unlock()

	n := tm.seq.Add(1)

	return &Transaction{
		id:    fmt.Sprintf("tx-%d-%s", n, uuid.NewString()),
		s:     tm.repo.s,
		tm:    tm,
		state: mmodel.TxActive,
	}, nil
}

// WithTransaction is the guaranteed-release scoped acquisition of §4.1:
// commit on a nil return, rollback (re-raising the cause) otherwise.
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

// Transaction is a Repository scoped to one unit of work; see the
// TxManager doc above for the commit/rollback model.
type Transaction struct {
	id    string
	s     *store
	tm    *TxManager
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

// --- mutating operations ---------------------------------------------

func (tx *Transaction) UpsertEntity(_ context.Context, id string, labels []string, props map[string]any) (*graph.Entity, error) {
	if err := tx.ensureActive("UpsertEntity"); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, merrors.NewStorageError("UpsertEntity", errInvalidID)
	}

	tx.s.mu.Lock()
	before := cloneEntity(tx.s.entities[id])
	result := upsertEntityLocked(tx.s, id, labels, props)
	tx.s.mu.Unlock()

	op := mmodel.OpUpdateEntity
	if before == nil {
		op = mmodel.OpCreateEntity
	}

	tx.recordChange(mmodel.ChangeRecord{
		Operation: op, EntityID: id,
		BeforeState: encodeEntity(before), AfterState: encodeEntity(result),
	})

	return result, nil
}

func (tx *Transaction) UpsertRelation(_ context.Context, headID, relType, tailID string, props map[string]any) (*graph.Relation, error) {
	if err := tx.ensureActive("UpsertRelation"); err != nil {
		return nil, err
	}

	if headID == "" || tailID == "" || relType == "" {
		return nil, merrors.NewStorageError("UpsertRelation", errInvalidID)
	}

	tx.s.mu.Lock()
	before := cloneRelation(tx.s.relations[relStoreKey(headID, relType, tailID)])
	result := upsertRelationLocked(tx.s, headID, relType, tailID, props)
	tx.s.mu.Unlock()

	op := mmodel.OpUpdateRelation
	if before == nil {
		op = mmodel.OpCreateRelation
	}

	key := result.Key()
	tx.recordChange(mmodel.ChangeRecord{
		Operation: op, RelKey: &key,
		BeforeState: encodeRelation(before), AfterState: encodeRelation(result),
	})

	return result, nil
}

func (tx *Transaction) DeleteEntity(_ context.Context, id string) error {
	if err := tx.ensureActive("DeleteEntity"); err != nil {
		return err
	}

	tx.s.mu.Lock()

	existing := cloneEntity(tx.s.entities[id])
	if existing == nil {
		tx.s.mu.Unlock()
		return nil
	}

	cascaded := collectIncidentLocked(tx.s, id)
	deleteEntityLocked(tx.s, id)
	tx.s.mu.Unlock()

	for _, r := range cascaded {
		key := r.Key()
		tx.recordChange(mmodel.ChangeRecord{
			Operation: mmodel.OpDeleteRelation, RelKey: &key,
			BeforeState: encodeRelation(r), AfterState: nil,
		})
	}

	tx.recordChange(mmodel.ChangeRecord{
		Operation: mmodel.OpDeleteEntity, EntityID: id,
		BeforeState: encodeEntity(existing), AfterState: nil,
	})

	return nil
}

func (tx *Transaction) DeleteRelation(_ context.Context, headID, relType, tailID string) error {
	if err := tx.ensureActive("DeleteRelation"); err != nil {
		return err
	}

	tx.s.mu.Lock()
	existing := cloneRelation(tx.s.relations[relStoreKey(headID, relType, tailID)])

	if existing == nil {
		tx.s.mu.Unlock()
		return nil
	}

	deleteRelationLocked(tx.s, headID, relType, tailID)
	tx.s.mu.Unlock()

	key := existing.Key()
	tx.recordChange(mmodel.ChangeRecord{
		Operation: mmodel.OpDeleteRelation, RelKey: &key,
		BeforeState: encodeRelation(existing), AfterState: nil,
	})

	return nil
}

func (tx *Transaction) Clear(ctx context.Context) {
	for _, e := range tx.GetAllEntities(ctx) {
		_ = tx.DeleteEntity(ctx, e.ID)
	}
}

// --- read-only operations: delegate to the shared store, observing the
// transaction's own writes since they land in the same store. ----------

func (tx *Transaction) GetEntity(ctx context.Context, id string) (*graph.Entity, bool) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	e, ok := tx.s.entities[id]

	return cloneEntity(e), ok
}

func (tx *Transaction) GetRelation(ctx context.Context, headID, relType, tailID string) (*graph.Relation, bool) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	r, ok := tx.s.relations[relStoreKey(headID, relType, tailID)]

	return cloneRelation(r), ok
}

func (tx *Transaction) GetNeighbors(ctx context.Context, id string, relType string, dir mmodel.NeighborDirection) ([]*graph.Relation, error) {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	return neighborsLocked(tx.s, id, relType, dir), nil
}

func (tx *Transaction) GetAllEntities(context.Context) []*graph.Entity {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	out := make([]*graph.Entity, 0, len(tx.s.entities))
	for _, e := range tx.s.entities {
		out = append(out, cloneEntity(e))
	}

	return out
}

func (tx *Transaction) GetAllRelations(context.Context) []*graph.Relation {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	out := make([]*graph.Relation, 0, len(tx.s.relations))
	for _, r := range tx.s.relations {
		out = append(out, cloneRelation(r))
	}

	return out
}

func (tx *Transaction) CountEntities(context.Context) int {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	return len(tx.s.entities)
}

func (tx *Transaction) CountRelations(context.Context) int {
	tx.s.mu.RLock()
	defer tx.s.mu.RUnlock()

	return len(tx.s.relations)
}

// --- lifecycle ----------------------------------------------------------

func (tx *Transaction) Commit(context.Context) error {
	tx.tm.lifecycle.Lock()
	defer tx.tm.lifecycle.Unlock()

	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.state != mmodel.TxActive {
		return merrors.NewStorageError("Commit", fmt.Errorf("transaction %s is not active (state=%s)", tx.id, tx.state))
	}

	tx.state = mmodel.TxCommitted

	return nil
}

// Rollback applies the inverse of every recorded change in reverse
// insertion order, then marks the transaction ROLLED_BACK (§4.1). reason
// is informational only (e.g. "abandoned" per §5).
func (tx *Transaction) Rollback(_ context.Context, reason string) error {
	tx.tm.lifecycle.Lock()
	defer tx.tm.lifecycle.Unlock()

	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.state != mmodel.TxActive {
		return merrors.NewStorageError("Rollback", fmt.Errorf("transaction %s is not active (state=%s)", tx.id, tx.state))
	}

	tx.s.mu.Lock()
	for i := len(tx.changes) - 1; i >= 0; i-- {
		invertLocked(tx.s, tx.changes[i])
	}
	tx.s.mu.Unlock()

	tx.state = mmodel.TxRolledBack
	_ = reason

	return nil
}

// collectIncidentLocked returns every relation touching id, for cascade
// bookkeeping ahead of an entity delete. Caller must hold s.mu.
func collectIncidentLocked(s *store, id string) []*graph.Relation {
	keys := make(map[string]struct{})
	for k := range s.outAdj[id] {
		keys[k] = struct{}{}
	}

	for k := range s.inAdj[id] {
		keys[k] = struct{}{}
	}

	out := make([]*graph.Relation, 0, len(keys))
	for k := range keys {
		if r, ok := s.relations[k]; ok {
			out = append(out, cloneRelation(r))
		}
	}

	return out
}

// invertLocked applies the inverse of one ChangeRecord. Caller must hold s.mu.
func invertLocked(s *store, rec mmodel.ChangeRecord) {
	switch rec.Operation {
	case mmodel.OpCreateEntity:
		deleteEntityLocked(s, rec.EntityID)
	case mmodel.OpUpdateEntity, mmodel.OpDeleteEntity:
		if e := decodeEntity(rec.BeforeState); e != nil {
			s.entities[e.ID] = cloneEntity(e)
		}
	case mmodel.OpCreateRelation:
		if rec.RelKey != nil {
			deleteRelationLocked(s, rec.RelKey.HeadID, rec.RelKey.RelType, rec.RelKey.TailID)
		}
	case mmodel.OpUpdateRelation, mmodel.OpDeleteRelation:
		if r := decodeRelation(rec.BeforeState); r != nil {
			restored := cloneRelation(r)
			s.relations[relStoreKey(restored.HeadID, restored.RelType, restored.TailID)] = restored
			s.addIndex(restored)
		}
	}
}
