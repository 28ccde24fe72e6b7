package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.StaticDomain.SignPatterns = config.SignPatterns{
		Positive: []string{"improves", "increases"},
		Negative: []string{"worsens", "reduces"},
		Inverse:  []string{"despite", "not"},
	}
	cfg.StaticDomain.SemanticPatterns = config.SemanticPatterns{
		Exaggeration:           []string{"miracle", "cures everything"},
		CorrelationAsCausation: []string{"correlated with"},
		WeakEvidence:           []string{"one person said", "anecdotally"},
	}

	return cfg
}

type fakeDomainLookup struct {
	sign mmodel.Polarity
	ok   bool
}

func (f fakeDomainLookup) DomainSign(_ context.Context, _ mmodel.RelationKey) (mmodel.Polarity, bool) {
	return f.sign, f.ok
}

func baseEdge() mmodel.RawEdge {
	return mmodel.RawEdge{
		HeadID:        "sleep",
		TailID:        "mood",
		RelationType:  mmodel.RelationAffect,
		PolarityGuess: mmodel.PolarityPositive,
		StudentConf:   0.8,
		FragmentText:  "Sleep improves mood considerably.",
		FragmentID:    "frag-1",
		HeadLabel:     "Habit",
		TailLabel:     "Outcome",
	}
}

func TestCheckSchema_RejectsSelfLoop(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)
	edge := baseEdge()
	edge.TailID = edge.HeadID

	res := a.checkSchema(edge)
	assert.False(t, res.Valid)
	assert.Equal(t, mmodel.RejectSelfLoop, res.Code)
}

func TestCheckSchema_RejectsUnknownRelationType(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)
	edge := baseEdge()
	edge.RelationType = "Bogus"

	res := a.checkSchema(edge)
	assert.False(t, res.Valid)
	assert.Equal(t, mmodel.RejectUnknownRelationType, res.Code)
}

func TestCheckSchema_ForbiddenLabelPair(t *testing.T) {
	cfg := testConfig()
	cfg.ValidationSchema.Forbidden = []config.LabelTriple{
		{HeadLabel: "Habit", TailLabel: "Outcome", RelationType: "Affect"},
	}

	a := New(cfg, nil, nil, nil)

	res := a.checkSchema(baseEdge())
	assert.False(t, res.Valid)
	assert.Equal(t, mmodel.RejectForbiddenLabelPair, res.Code)
}

func TestCheckSchema_AllowedListRejectsUnlistedTriple(t *testing.T) {
	cfg := testConfig()
	cfg.ValidationSchema.Allowed = []config.LabelTriple{
		{HeadLabel: "Drug", TailLabel: "Symptom", RelationType: "Cause"},
	}

	a := New(cfg, nil, nil, nil)

	res := a.checkSchema(baseEdge())
	assert.False(t, res.Valid)
	assert.Equal(t, mmodel.RejectForbiddenLabelPair, res.Code)
}

func TestCheckSign_PatternAndStudentAgree_Confident(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)

	res := a.checkSign(context.Background(), baseEdge())
	assert.Equal(t, mmodel.SignConfident, res.Tag)
	assert.Equal(t, mmodel.PolarityPositive, res.Polarity)
}

func TestCheckSign_NoSignalAtAll_Unknown(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)
	edge := baseEdge()
	edge.PolarityGuess = mmodel.PolarityUnknown
	edge.FragmentText = "Something happened near sleep and mood."

	res := a.checkSign(context.Background(), edge)
	assert.Equal(t, mmodel.SignUnknown, res.Tag)
}

func TestCheckSign_StaticRuleOverridesDisagreeingStudent_Suspect(t *testing.T) {
	cfg := testConfig()
	cfg.StaticDomain.Rules = []config.StaticRule{
		{RuleID: "r1", Head: "sleep", Tail: "mood", Polarity: mmodel.PolarityNegative, Relation: "Affect", Certainty: 0.95},
	}

	a := New(cfg, nil, nil, nil)
	edge := baseEdge() // student guesses positive
	edge.FragmentText = "no lexical cue here"

	res := a.checkSign(context.Background(), edge)
	assert.Equal(t, mmodel.SignSuspect, res.Tag)
	assert.Equal(t, mmodel.PolarityNegative, res.Polarity)
}

func TestCheckSemantic_CorrelationPresentedAsCausation_Spurious(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)
	edge := baseEdge()
	edge.RelationType = mmodel.RelationCause
	edge.FragmentText = "Sleep is correlated with mood improvements."

	sign := a.checkSign(context.Background(), edge)
	res := a.checkSemantic(context.Background(), edge, sign)

	assert.True(t, res.CorrelationAsCausation)
	assert.Equal(t, mmodel.SemSpurious, res.Tag)
}

func TestCheckSemantic_DomainConflict_Wrong(t *testing.T) {
	lookup := fakeDomainLookup{sign: mmodel.PolarityNegative, ok: true}
	a := New(testConfig(), lookup, nil, nil)

	edge := baseEdge() // resolves to positive via pattern+student agreement

	sign := a.checkSign(context.Background(), edge)
	res := a.checkSemantic(context.Background(), edge, sign)

	assert.True(t, res.DomainConflict)
	assert.Equal(t, mmodel.SemWrong, res.Tag)
}

func TestCheckSemantic_WeakEvidenceFlag(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)
	edge := baseEdge()
	edge.FragmentText = "Anecdotally, sleep improves mood."

	sign := a.checkSign(context.Background(), edge)
	res := a.checkSemantic(context.Background(), edge, sign)

	assert.True(t, res.WeakEvidence)
	assert.Equal(t, mmodel.SemWeak, res.Tag)
}

func TestValidate_HighConfidenceRoutesToDomainCandidate(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)

	res, err := a.Validate(context.Background(), baseEdge())
	require.NoError(t, err)

	assert.Equal(t, mmodel.DestinationDomainCandidate, res.Destination)
	assert.True(t, res.Admitted())
}

// TestValidate_StaticConflictRoutesToPersonal exercises the "static
// conflict routes to Personal" scenario: an edge whose sign is forced to
// suspect by an authoritative static rule, but still clears the personal
// threshold, lands in PERSONAL_CANDIDATE rather than DOMAIN_CANDIDATE.
func TestValidate_StaticConflictRoutesToPersonal(t *testing.T) {
	cfg := testConfig()
	cfg.StaticDomain.Rules = []config.StaticRule{
		{RuleID: "r1", Head: "sleep", Tail: "mood", Polarity: mmodel.PolarityNegative, Relation: "Affect", Certainty: 0.95},
	}
	cfg.ValidationSchema.Thresholds = config.ValidationThresholds{PersonalCandidate: 0.35, DomainCandidate: 0.9}

	a := New(cfg, nil, nil, nil)
	edge := baseEdge()
	edge.FragmentText = "no lexical cue here"
	edge.StudentConf = 0.6

	res, err := a.Validate(context.Background(), edge)
	require.NoError(t, err)

	assert.True(t, res.StaticConflict)
	assert.Equal(t, mmodel.SignSuspect, res.Sign.Tag)
	assert.Equal(t, mmodel.DestinationPersonalCandidate, res.Destination)
}

func TestValidate_UnknownSignDrops(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)
	edge := baseEdge()
	edge.PolarityGuess = mmodel.PolarityUnknown
	edge.FragmentText = "no cue at all"

	res, err := a.Validate(context.Background(), edge)
	require.NoError(t, err)

	assert.Equal(t, mmodel.DestinationDropLog, res.Destination)
	assert.Contains(t, res.Rejections, mmodel.RejectSignTag)
}

func TestValidate_BelowPersonalThresholdDrops(t *testing.T) {
	cfg := testConfig()
	cfg.ValidationSchema.Thresholds = config.ValidationThresholds{PersonalCandidate: 0.99, DomainCandidate: 0.999}

	a := New(cfg, nil, nil, nil)

	res, err := a.Validate(context.Background(), baseEdge())
	require.NoError(t, err)

	assert.Equal(t, mmodel.DestinationDropLog, res.Destination)
	assert.Contains(t, res.Rejections, mmodel.RejectBelowThreshold)
}

func TestValidate_MissingFieldDropsBeforeOtherStages(t *testing.T) {
	a := New(testConfig(), nil, nil, nil)
	edge := baseEdge()
	edge.HeadID = ""

	res, err := a.Validate(context.Background(), edge)
	require.NoError(t, err)

	assert.Equal(t, mmodel.DestinationDropLog, res.Destination)
	assert.Equal(t, []mmodel.RejectionCode{mmodel.RejectMissingField}, res.Rejections)
}
