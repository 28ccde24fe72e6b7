package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerian-kg/kgarbiter/internal/adapters/memgraph"
	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// TestProcess_StaticConflictRoutesToPersonal is spec §8 scenario 1: a
// static rule disagrees with the edge's own sign detector, so the edge
// lands in Personal and the Domain KG is left untouched.
func TestProcess_StaticConflictRoutesToPersonal(t *testing.T) {
	cfg := config.Default()
	cfg.StaticDomain.Rules = []config.StaticRule{
		{Head: "rates", Tail: "bonds", Relation: "Affect", Polarity: mmodel.PolarityNegative, Certainty: 0.9},
	}

	repo := memgraph.NewRepository()
	tm := memgraph.NewTxManager(repo)
	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)

	engine := New(cfg, nil)

	edge := mmodel.RawEdge{
		HeadID: "rates", TailID: "bonds", RelationType: mmodel.RelationAffect,
		FragmentText: "Rising rates have been pushing bond prices up lately",
	}
	validation := mmodel.ValidationResult{
		Sign:        mmodel.SignResult{Polarity: mmodel.PolarityPositive},
		Semantic:    mmodel.SemanticResult{Tag: mmodel.SemConfident},
		Destination: mmodel.DestinationDomainCandidate,
	}
	entities := []mmodel.Entity{
		{ID: "rates", Name: "rates", Labels: []string{mmodel.LabelDomainEntity}},
		{ID: "bonds", Name: "bonds", Labels: []string{mmodel.LabelDomainEntity}},
	}

	result, err := engine.Process(context.Background(), tx, edge, validation, entities, "", mmodel.SourceDomainRejected)
	require.NoError(t, err)

	require.NotNil(t, result.Personal)
	assert.Nil(t, result.Domain)
	assert.False(t, result.Dropped)

	require.NoError(t, tx.Commit(context.Background()))

	rels, err := repo.GetNeighbors(context.Background(), "rates", "", mmodel.DirOut)
	require.NoError(t, err)

	for _, r := range rels {
		assert.NotEqual(t, mmodel.NamespacedType(mmodel.NamespaceDomain, string(mmodel.RelationAffect)), r.RelType,
			"static conflict must never write the Domain relation")
	}
}

// TestProcess_DroppedEdgeReturnsNoResult covers the DROP_LOG path: no
// entity or relation write happens.
func TestProcess_DroppedEdgeReturnsNoResult(t *testing.T) {
	cfg := config.Default()
	repo := memgraph.NewRepository()
	tm := memgraph.NewTxManager(repo)
	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)

	engine := New(cfg, nil)

	edge := mmodel.RawEdge{HeadID: "a", TailID: "b", RelationType: mmodel.RelationAffect, FragmentText: "too short"}
	validation := mmodel.ValidationResult{Destination: mmodel.DestinationDropLog, Rejections: []mmodel.RejectionCode{mmodel.RejectBelowThreshold}}

	result, err := engine.Process(context.Background(), tx, edge, validation, nil, "", mmodel.SourceDomainRejected)
	require.NoError(t, err)

	assert.True(t, result.Dropped)
	assert.Nil(t, result.Domain)
	assert.Nil(t, result.Personal)
}

// TestProcess_AdmittedDomainEdgeCreatesRelation covers the CREATE_NEW
// path end to end through the orchestrator.
func TestProcess_AdmittedDomainEdgeCreatesRelation(t *testing.T) {
	cfg := config.Default()
	repo := memgraph.NewRepository()
	tm := memgraph.NewTxManager(repo)
	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)

	engine := New(cfg, nil)

	edge := mmodel.RawEdge{
		HeadID: "sleep", TailID: "mood", RelationType: mmodel.RelationAffect,
		PolarityGuess: mmodel.PolarityPositive,
		FragmentText:  "Plenty of sleep improves mood over the long run",
	}
	validation := mmodel.ValidationResult{
		Sign:        mmodel.SignResult{Polarity: mmodel.PolarityPositive},
		Semantic:    mmodel.SemanticResult{Tag: mmodel.SemConfident},
		Destination: mmodel.DestinationDomainCandidate,
	}
	entities := []mmodel.Entity{
		{ID: "sleep", Name: "sleep", Labels: []string{mmodel.LabelDomainEntity}},
		{ID: "mood", Name: "mood", Labels: []string{mmodel.LabelDomainEntity}},
	}

	result, err := engine.Process(context.Background(), tx, edge, validation, entities, "", mmodel.SourceDomainRejected)
	require.NoError(t, err)

	require.NotNil(t, result.Domain)
	assert.Equal(t, mmodel.ActionCreateNew, result.Domain.GuardAction)
	assert.Equal(t, 1, result.Domain.Props.EvidenceCount)

	require.NoError(t, tx.Commit(context.Background()))
}
