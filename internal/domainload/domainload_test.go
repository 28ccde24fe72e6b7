package domainload

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerian-kg/kgarbiter/internal/adapters/memgraph"
	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/domainkg"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

func TestSeed_LoadsEntitiesAndRelations(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "entities.json"), []byte(`[
		{"id": "sleep", "props": {"name": "sleep"}},
		{"id": "mood", "props": {"name": "mood"}}
	]`), 0o644))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "relations.json"), []byte(`[
		{"head_id": "sleep", "tail_id": "mood", "type": "Affect", "props": {"sign": "+", "domain_conf": 0.9, "evidence_count": 12, "gold": true}}
	]`), 0o644))

	repo := memgraph.NewRepository()
	tuning := config.Default().DynamicUpdate

	require.NoError(t, Seed(context.Background(), repo, tuning, dir))

	ent, found := repo.GetEntity(context.Background(), "sleep")
	require.True(t, found)
	assert.Equal(t, "sleep", ent.Props["name"])

	rel, found := repo.GetRelation(context.Background(), "sleep", mmodel.NamespacedType(mmodel.NamespaceDomain, "Affect"), "mood")
	require.True(t, found)

	props, ok := domainkg.DecodeProps(rel)
	require.True(t, ok)
	assert.Equal(t, mmodel.PolarityPositive, props.Sign)
	assert.Equal(t, 12, props.EvidenceCount)
	assert.True(t, props.Gold)
}

func TestSeed_MissingFilesIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	repo := memgraph.NewRepository()

	err := Seed(context.Background(), repo, config.Default().DynamicUpdate, dir)
	require.NoError(t, err)
	assert.Zero(t, repo.CountEntities(context.Background()))
}
