package personalkg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerian-kg/kgarbiter/internal/adapters/memgraph"
	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

func newTx(t *testing.T) graph.Transaction {
	t.Helper()

	repo := memgraph.NewRepository()
	tm := memgraph.NewTxManager(repo)

	tx, err := tm.Begin(context.Background())
	require.NoError(t, err)

	return tx
}

type fakeProbe struct {
	sign  mmodel.Polarity
	conf  float64
	found bool
}

func (f fakeProbe) DomainState(mmodel.RelationKey) (mmodel.Polarity, float64, bool) {
	return f.sign, f.conf, f.found
}

func TestClassifyRelevance_EmotionalMarker(t *testing.T) {
	cfg := config.Default()

	got := ClassifyRelevance(cfg.PersonalPatterns, "this makes me anxious")
	assert.Equal(t, mmodel.RelevanceEmotional, got)
}

func TestClassifyRelevance_DefaultsToObservation(t *testing.T) {
	cfg := config.Default()

	got := ClassifyRelevance(cfg.PersonalPatterns, "the meeting ran long today")
	assert.Equal(t, mmodel.RelevanceObservation, got)
}

func TestBuildCandidate_FallsBackToEdgePolarityWhenSignUnknown(t *testing.T) {
	cfg := config.Default()
	edge := mmodel.RawEdge{
		HeadID: "stress", TailID: "sleep", RelationType: mmodel.RelationAffect,
		FragmentText: "i feel like stress ruins my sleep", PolarityGuess: mmodel.PolarityNegative,
	}

	cand := BuildCandidate(cfg.PersonalPatterns, edge, mmodel.ValidationResult{}, mmodel.SourceUserWritten)

	assert.Equal(t, mmodel.PolarityNegative, cand.Polarity)
	assert.Equal(t, mmodel.RelevanceEmotional, cand.RelevanceType)
}

func TestClassify_AgreesWithDomain_HighScore(t *testing.T) {
	cfg := config.Default()
	cand := mmodel.PersonalCandidate{
		Polarity: mmodel.PolarityNegative, SemanticTag: mmodel.SemConfident, SourceType: mmodel.SourceUserWritten,
	}
	probe := fakeProbe{sign: mmodel.PolarityNegative, conf: 0.8, found: true}

	res := Classify(cfg.PCS, cand, probe, 0, false)

	assert.Greater(t, res.Score, 0.5)
}

func TestClassify_ContradictsDomain_LowScore(t *testing.T) {
	cfg := config.Default()
	cand := mmodel.PersonalCandidate{
		Polarity: mmodel.PolarityPositive, SemanticTag: mmodel.SemWrong, SourceType: mmodel.SourceLLMInferred,
	}
	probe := fakeProbe{sign: mmodel.PolarityNegative, conf: 0.9, found: true}

	res := Classify(cfg.PCS, cand, probe, 0, false)

	assert.Less(t, res.Score, 0.4)
}

func TestUpdate_CreatesNewPersonalRelation(t *testing.T) {
	cfg := config.Default()
	tx := newTx(t)
	probe := fakeProbe{found: false}

	cand := mmodel.PersonalCandidate{
		Key:         mmodel.RelationKey{HeadID: "coffee", TailID: "jitters", RelType: "Cause"},
		UserID:      "u1",
		Polarity:    mmodel.PolarityPositive,
		SemanticTag: mmodel.SemWeak,
		SourceType:  mmodel.SourceUserWritten,
	}

	props, err := Update(context.Background(), tx, cfg.PCS, probe, cand)
	require.NoError(t, err)

	assert.Equal(t, 1, props.OccurrenceCount)
	assert.Len(t, props.History, 1)
	assert.Equal(t, "created", props.History[0].Kind)
}

func TestUpdate_ExistingRelationBlendsAndAppendsHistory(t *testing.T) {
	cfg := config.Default()
	tx := newTx(t)
	probe := fakeProbe{found: false}

	cand := mmodel.PersonalCandidate{
		Key:         mmodel.RelationKey{HeadID: "coffee", TailID: "jitters", RelType: "Cause"},
		UserID:      "u1",
		Polarity:    mmodel.PolarityPositive,
		SemanticTag: mmodel.SemConfident,
		SourceType:  mmodel.SourceUserWritten,
	}

	first, err := Update(context.Background(), tx, cfg.PCS, probe, cand)
	require.NoError(t, err)

	second, err := Update(context.Background(), tx, cfg.PCS, probe, cand)
	require.NoError(t, err)

	assert.Equal(t, 2, second.OccurrenceCount)
	assert.Len(t, second.History, 2)
	assert.Equal(t, "updated", second.History[1].Kind)
	assert.NotEqual(t, first.PCSScore, 0.0)
}

func TestUpdate_NeverDeletesOrRewritesHistory(t *testing.T) {
	cfg := config.Default()
	tx := newTx(t)
	probe := fakeProbe{found: false}

	cand := mmodel.PersonalCandidate{
		Key:        mmodel.RelationKey{HeadID: "a", TailID: "b", RelType: "Cause"},
		Polarity:   mmodel.PolarityNegative,
		SourceType: mmodel.SourceUserWritten,
	}

	for i := 0; i < 3; i++ {
		_, err := Update(context.Background(), tx, cfg.PCS, probe, cand)
		require.NoError(t, err)
	}

	relType := mmodel.NamespacedType(mmodel.NamespacePersonal, cand.Key.RelType)
	rel, found := tx.GetRelation(context.Background(), cand.Key.HeadID, relType, cand.Key.TailID)
	require.True(t, found)

	props, _ := decodePersonalProps(rel)
	assert.Len(t, props.History, 3)
	assert.Equal(t, "created", props.History[0].Kind)
	assert.Equal(t, "updated", props.History[1].Kind)
	assert.Equal(t, "updated", props.History[2].Kind)
	assert.Equal(t, 3, props.OccurrenceCount)
}

func TestEvaluateDrift_NewToDomainHighOccurrence_PromotionCandidate(t *testing.T) {
	cfg := config.Default()
	key := mmodel.RelationKey{HeadID: "caffeine", TailID: "anxiety", RelType: "Cause"}

	props := mmodel.PersonalRelationProps{
		Sign: mmodel.PolarityPositive, PCSScore: 0.9, PersonalLabel: mmodel.LabelStrong,
		OccurrenceCount: 10,
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	props.AppendHistory("created", base, 0.9, "")
	props.AppendHistory("updated", base.Add(40*24*time.Hour), 0.9, "")

	staticIdx := config.StaticRuleIndex{}

	res := EvaluateDrift(cfg.Promotion, key, props, staticIdx, false, mmodel.PolarityUnknown, 0)

	assert.True(t, res.PromotionCandidate)
	assert.GreaterOrEqual(t, res.Signal, cfg.Promotion.PromotionThreshold)
}

func TestEvaluateDrift_StaticRuleExists_Veto(t *testing.T) {
	cfg := config.Default()
	key := mmodel.RelationKey{HeadID: "caffeine", TailID: "anxiety", RelType: "Cause"}

	props := mmodel.PersonalRelationProps{
		Sign: mmodel.PolarityPositive, PCSScore: 0.95, PersonalLabel: mmodel.LabelStrong,
		OccurrenceCount: 10,
	}
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	props.AppendHistory("created", base, 0.9, "")
	props.AppendHistory("updated", base.Add(40*24*time.Hour), 0.9, "")

	staticIdx := config.StaticRuleIndex{
		[2]string{"caffeine", "anxiety"}: config.StaticRule{},
	}

	res := EvaluateDrift(cfg.Promotion, key, props, staticIdx, false, mmodel.PolarityUnknown, 0)

	assert.False(t, res.PromotionCandidate)
}

func TestEvaluateDrift_LowOccurrence_NotCandidate(t *testing.T) {
	cfg := config.Default()
	key := mmodel.RelationKey{HeadID: "a", TailID: "b", RelType: "Cause"}

	props := mmodel.PersonalRelationProps{
		Sign: mmodel.PolarityPositive, PCSScore: 0.95, PersonalLabel: mmodel.LabelStrong,
		OccurrenceCount: 1,
	}

	res := EvaluateDrift(cfg.Promotion, key, props, config.StaticRuleIndex{}, false, mmodel.PolarityUnknown, 0)

	assert.False(t, res.PromotionCandidate)
}

// TestPromotionFlow_PromotesAndMarksHistory exercises spec §8's promotion
// scenario end to end: a personal belief with no opposing domain
// knowledge, repeated enough times, is promoted and the personal
// relation survives with a promoted_to_domain event appended.
func TestPromotionFlow_PromotesAndMarksHistory(t *testing.T) {
	cfg := config.Default()
	tx := newTx(t)
	probe := fakeProbe{found: false}

	cand := mmodel.PersonalCandidate{
		Key:         mmodel.RelationKey{HeadID: "caffeine", TailID: "anxiety", RelType: "Cause"},
		UserID:      "u1",
		Polarity:    mmodel.PolarityPositive,
		SemanticTag: mmodel.SemConfident,
		SourceType:  mmodel.SourceUserWritten,
	}

	old := now
	defer func() { now = old }()

	// Space the ten updates five days apart so the history spans 45 days.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	var props mmodel.PersonalRelationProps
	for i := 0; i < 10; i++ {
		at := base.Add(time.Duration(i) * 5 * 24 * time.Hour)
		now = func() time.Time { return at }

		var err error
		props, err = Update(context.Background(), tx, cfg.PCS, probe, cand)
		require.NoError(t, err)
	}

	now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	res := EvaluateDrift(cfg.Promotion, cand.Key, props, config.StaticRuleIndex{}, false, mmodel.PolarityUnknown, 0)
	require.True(t, res.PromotionCandidate)

	domainCand := BuildPromotionCandidate(cand.Key, props)
	assert.Equal(t, "personal_promotion", domainCand.EvidenceSource)
	assert.Equal(t, mmodel.SemConfident, domainCand.SemanticTag)

	err := MarkPromoted(context.Background(), tx, cand.Key)
	require.NoError(t, err)

	relType := mmodel.NamespacedType(mmodel.NamespacePersonal, cand.Key.RelType)
	rel, found := tx.GetRelation(context.Background(), cand.Key.HeadID, relType, cand.Key.TailID)
	require.True(t, found)

	after, _ := decodePersonalProps(rel)
	assert.Equal(t, "promoted_to_domain", after.History[len(after.History)-1].Kind)
	assert.Equal(t, 11, len(after.History))
}
