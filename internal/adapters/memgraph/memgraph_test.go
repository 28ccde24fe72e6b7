package memgraph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

func TestUpsertEntity_MergesShallow(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.UpsertEntity(ctx, "e1", []string{mmodel.LabelDomainEntity}, map[string]any{"name": "Fed Funds Rate"})
	require.NoError(t, err)

	e, err := repo.UpsertEntity(ctx, "e1", nil, map[string]any{"region": "US"})
	require.NoError(t, err)

	assert.Equal(t, "Fed Funds Rate", e.Props["name"])
	assert.Equal(t, "US", e.Props["region"])
	assert.Equal(t, 1, repo.CountEntities(ctx))
}

func TestUpsertEntity_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, _ = repo.UpsertEntity(ctx, "e1", []string{mmodel.LabelDomainEntity}, map[string]any{"name": "A"})
	_, _ = repo.UpsertEntity(ctx, "e1", []string{mmodel.LabelDomainEntity}, map[string]any{"name": "A"})

	assert.Equal(t, 1, repo.CountEntities(ctx))
}

func TestDeleteEntity_CascadesRelations(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, _ = repo.UpsertEntity(ctx, "a", nil, nil)
	_, _ = repo.UpsertEntity(ctx, "b", nil, nil)
	_, _ = repo.UpsertRelation(ctx, "a", "domain:Affect", "b", nil)

	require.Equal(t, 1, repo.CountRelations(ctx))

	require.NoError(t, repo.DeleteEntity(ctx, "a"))

	assert.Equal(t, 0, repo.CountRelations(ctx))
	_, ok := repo.GetEntity(ctx, "a")
	assert.False(t, ok)
}

func TestGetNeighbors_Directions(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, _ = repo.UpsertRelation(ctx, "a", "domain:Affect", "b", nil)
	_, _ = repo.UpsertRelation(ctx, "c", "domain:Affect", "a", nil)

	out, _ := repo.GetNeighbors(ctx, "a", "", mmodel.DirOut)
	in, _ := repo.GetNeighbors(ctx, "a", "", mmodel.DirIn)
	both, _ := repo.GetNeighbors(ctx, "a", "", mmodel.DirBoth)

	assert.Len(t, out, 1)
	assert.Len(t, in, 1)
	assert.Len(t, both, 2)
}

// Scenario 4 (spec §8): a rolled-back transaction restores pre-tx counts.
func TestTransaction_RollbackRestoresCounts(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	tm := NewTxManager(repo)

	preEntities := repo.CountEntities(ctx)
	preRelations := repo.CountRelations(ctx)

	boom := errors.New("boom")

	err := tm.WithTransaction(ctx, func(tx graph.Transaction) error {
		if _, err := tx.UpsertEntity(ctx, "e", nil, map[string]any{"name": "E"}); err != nil {
			return err
		}

		if _, err := tx.UpsertEntity(ctx, "f", nil, map[string]any{"name": "F"}); err != nil {
			return err
		}

		if _, err := tx.UpsertRelation(ctx, "e", "domain:Affect", "f", nil); err != nil {
			return err
		}

		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, preEntities, repo.CountEntities(ctx))
	assert.Equal(t, preRelations, repo.CountRelations(ctx))
}

func TestTransaction_CommitPersists(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	tm := NewTxManager(repo)

	err := tm.WithTransaction(ctx, func(tx graph.Transaction) error {
		_, err := tx.UpsertEntity(ctx, "e", nil, map[string]any{"name": "E"})
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 1, repo.CountEntities(ctx))
}

func TestTransaction_RollbackUndoesUpdateAndCascade(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	tm := NewTxManager(repo)

	_, _ = repo.UpsertEntity(ctx, "a", nil, map[string]any{"name": "A"})
	_, _ = repo.UpsertEntity(ctx, "b", nil, map[string]any{"name": "B"})
	_, _ = repo.UpsertRelation(ctx, "a", "domain:Affect", "b", map[string]any{"sign": "+"})

	boom := errors.New("boom")

	err := tm.WithTransaction(ctx, func(tx graph.Transaction) error {
		if _, err := tx.UpsertEntity(ctx, "a", nil, map[string]any{"name": "Changed"}); err != nil {
			return err
		}

		if err := tx.DeleteEntity(ctx, "b"); err != nil {
			return err
		}

		return boom
	})
	require.ErrorIs(t, err, boom)

	a, _ := repo.GetEntity(ctx, "a")
	assert.Equal(t, "A", a.Props["name"])

	_, ok := repo.GetEntity(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, 1, repo.CountRelations(ctx))
}

func TestMutatingNonActiveTransactionFails(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	tm := NewTxManager(repo)

	tx, err := tm.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	_, err = tx.UpsertEntity(ctx, "x", nil, nil)
	assert.Error(t, err)
}

func TestUpsertRelation_RepeatedCallsKeepOneRow(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	for i := 0; i < 3; i++ {
		_, _ = repo.UpsertRelation(ctx, "a", "domain:Affect", "b", map[string]any{"hit": i})
	}

	assert.Equal(t, 1, repo.CountRelations(ctx))
}
