package reasoning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerian-kg/kgarbiter/internal/adapters/memgraph"
	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

func seedDomain(t *testing.T, repo *memgraph.Repository, head, tail, relType string, sign mmodel.Polarity) {
	t.Helper()

	props := mmodel.DomainRelationProps{
		Sign: sign, DomainConf: 0.8, EvidenceCount: 3,
		SemanticTags: []mmodel.SemanticTag{mmodel.SemConfident},
		LastUpdate:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := repo.UpsertRelation(context.Background(), head, mmodel.NamespacedType(mmodel.NamespaceDomain, relType), tail, map[string]any{"domain": props})
	require.NoError(t, err)
}

func TestParse_EmptyQuery_NoEntities(t *testing.T) {
	pq := Parse(map[string]string{}, "")

	assert.Equal(t, mmodel.QuestionUnknown, pq.Kind)
	assert.Empty(t, pq.Head)
	assert.Empty(t, pq.Tail)
}

func TestParse_ResolvesAliasesAndKind(t *testing.T) {
	aliasDict := map[string]string{
		"federal funds rate": "Federal_Funds_Rate",
		"10y treasury":        "US_10Y_Treasury",
	}

	pq := Parse(aliasDict, "does the federal funds rate affect the 10y treasury because of policy?")

	assert.Equal(t, "Federal_Funds_Rate", pq.Head)
	assert.Equal(t, "US_10Y_Treasury", pq.Tail)
	assert.Equal(t, mmodel.QuestionCausal, pq.Kind)
}

func newReasoner(repo *memgraph.Repository, aliasDict map[string]string) *Reasoner {
	cfg := config.Default()

	return New(repo, cfg.Reasoning, cfg.DynamicUpdate, aliasDict, nil, nil)
}

func TestConclude_EmptyQuery_UnknownZeroConfidence(t *testing.T) {
	repo := memgraph.NewRepository()
	r := newReasoner(repo, map[string]string{})

	concl, err := r.Conclude(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, mmodel.DirectionUnknown, concl.Direction)
	assert.Zero(t, concl.Confidence)
}

// TestConclude_PathSignPropagation_Neutral is spec §8 scenario 5: two
// domain paths of equal weight with opposite combined signs must net to
// NEUTRAL with confidence near zero.
func TestConclude_PathSignPropagation_Neutral(t *testing.T) {
	old := now
	now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }
	defer func() { now = old }()

	repo := memgraph.NewRepository()
	seedDomain(t, repo, "A", "B", "Affect", mmodel.PolarityPositive)
	seedDomain(t, repo, "B", "C", "Affect", mmodel.PolarityNegative)
	seedDomain(t, repo, "A", "D", "Affect", mmodel.PolarityPositive)
	seedDomain(t, repo, "D", "C", "Affect", mmodel.PolarityPositive)

	aliasDict := map[string]string{"a": "A", "c": "C"}
	r := newReasoner(repo, aliasDict)

	concl, err := r.Conclude(context.Background(), "how does a affect c")
	require.NoError(t, err)

	assert.Equal(t, mmodel.DirectionNeutral, concl.Direction)
	assert.InDelta(t, 0, concl.Confidence, 0.05)
	assert.Equal(t, 2, concl.PathsUsed)
}

func TestConclude_SingleDomainPath_PositiveDirection(t *testing.T) {
	old := now
	now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }
	defer func() { now = old }()

	repo := memgraph.NewRepository()
	seedDomain(t, repo, "X", "Y", "Affect", mmodel.PolarityPositive)

	aliasDict := map[string]string{"x": "X", "y": "Y"}
	r := newReasoner(repo, aliasDict)

	concl, err := r.Conclude(context.Background(), "does x affect y")
	require.NoError(t, err)

	assert.Equal(t, mmodel.DirectionPositive, concl.Direction)
	assert.Greater(t, concl.Confidence, 0.0)
	require.NotNil(t, concl.StrongestPath)
}

func TestConclude_NoPathFound_Unknown(t *testing.T) {
	repo := memgraph.NewRepository()

	aliasDict := map[string]string{"x": "X", "y": "Y"}
	r := newReasoner(repo, aliasDict)

	concl, err := r.Conclude(context.Background(), "does x affect y")
	require.NoError(t, err)

	assert.Equal(t, mmodel.DirectionUnknown, concl.Direction)
	assert.Zero(t, concl.Confidence)
}
