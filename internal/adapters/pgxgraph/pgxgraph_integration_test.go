//go:build integration

package pgxgraph

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// setupPostgresContainer starts a disposable Postgres container and
// returns a migrated pool against it, grounded on the teacher's
// tests/utils/{redis,mongodb}.SetupContainer generic-container shape
// (no dedicated Postgres container helper survived the retrieval pack).
func setupPostgresContainer(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	const (
		user = "kgarbiter"
		pass = "kgarbiter"
		db   = "kgarbiter"
	)

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": pass,
			"POSTGRES_DB":       db,
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithDeadline(60 * time.Second),
	}

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start postgres container")

	t.Cleanup(func() {
		_ = ctr.Terminate(context.Background())
	})

	host, err := ctr.Host(ctx)
	require.NoError(t, err)

	port, err := ctr.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, port.Port(), db)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "failed to open pool")

	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(pool), "failed to run migrations")

	return pool
}

func TestRepository_UpsertAndGetEntity(t *testing.T) {
	pool := setupPostgresContainer(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	_, err := repo.UpsertEntity(ctx, "Federal_Funds_Rate", []string{mmodel.LabelDomainEntity}, map[string]any{"name": "Fed Funds Rate"})
	require.NoError(t, err)

	e, found := repo.GetEntity(ctx, "Federal_Funds_Rate")
	require.True(t, found)
	assert.Equal(t, "Fed Funds Rate", e.Props["name"])
	assert.Equal(t, 1, repo.CountEntities(ctx))
}

func TestRepository_UpsertRelationAndNeighbors(t *testing.T) {
	pool := setupPostgresContainer(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	_, _ = repo.UpsertEntity(ctx, "a", nil, nil)
	_, _ = repo.UpsertEntity(ctx, "b", nil, nil)

	_, err := repo.UpsertRelation(ctx, "a", "domain:Affect", "b", map[string]any{"sign": "+"})
	require.NoError(t, err)

	neighbors, err := repo.GetNeighbors(ctx, "a", "", mmodel.DirOut)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "b", neighbors[0].TailID)
	assert.Equal(t, 1, repo.CountRelations(ctx))
}

func TestTransaction_RollbackDiscardsChanges(t *testing.T) {
	pool := setupPostgresContainer(t)
	repo := NewRepository(pool)
	txm := NewTxManager(pool)
	ctx := context.Background()

	_, _ = repo.UpsertEntity(ctx, "a", nil, nil)

	tx, err := txm.Begin(ctx)
	require.NoError(t, err)

	_, err = tx.UpsertEntity(ctx, "b", nil, map[string]any{"name": "B"})
	require.NoError(t, err)

	require.NoError(t, tx.Rollback(ctx, "test rollback"))
	assert.Equal(t, mmodel.TxRolledBack, tx.State())

	_, found := repo.GetEntity(ctx, "b")
	assert.False(t, found, "rolled-back entity must not be visible outside the transaction")
}

func TestTransaction_CommitPersistsChanges(t *testing.T) {
	pool := setupPostgresContainer(t)
	repo := NewRepository(pool)
	txm := NewTxManager(pool)
	ctx := context.Background()

	err := txm.WithTransaction(ctx, func(tx graph.Transaction) error {
		_, err := tx.UpsertEntity(ctx, "committed", nil, map[string]any{"name": "C"})
		return err
	})
	require.NoError(t, err)

	e, found := repo.GetEntity(ctx, "committed")
	require.True(t, found)
	assert.Equal(t, "C", e.Props["name"])
}
