package domainkg

import (
	"context"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// DriftResult is C6's outcome for one Domain relation (§4.6).
type DriftResult struct {
	Signal    float64
	Flag      bool
	RequestQA bool
}

// Detect is C6 (§4.6): four weighted sub-scores combine into a single
// drift_signal, persisted back onto the relation's drift_flag. Runs
// inside the caller's transaction. A missing relation is a no-op.
func Detect(ctx context.Context, tx graph.Transaction, tuning config.DriftWeights, key mmodel.RelationKey) (DriftResult, error) {
	relType := mmodel.NamespacedType(mmodel.NamespaceDomain, key.RelType)

	rel, found := tx.GetRelation(ctx, key.HeadID, relType, key.TailID)
	if !found {
		return DriftResult{}, nil
	}

	props, _ := decodeDomainProps(rel)

	signal := driftSignal(tuning, props)
	result := DriftResult{
		Signal:    signal,
		Flag:      signal >= tuning.FlagThreshold,
		RequestQA: signal >= tuning.QAThreshold,
	}

	props.DriftFlag = result.Flag

	if _, err := tx.UpsertRelation(ctx, key.HeadID, relType, key.TailID, encodeDomainProps(props)); err != nil {
		return DriftResult{}, err
	}

	return result, nil
}

func driftSignal(tuning config.DriftWeights, props mmodel.DomainRelationProps) float64 {
	total := props.EvidenceCount + props.ConflictCount

	conflictScore := 0.0
	oppositeRate := 0.0

	if total >= tuning.MinTotalSample {
		ratio := float64(props.ConflictCount) / float64(total)
		conflictScore = ratio
		oppositeRate = ratio // proxy, retained for future refinement per §4.6
	}

	decayScore := 0.0
	if props.DecayApplied {
		decayScore = 0.5
	}

	semanticScore := 0.0
	switch {
	case props.HasSemanticTag(mmodel.SemAmbiguous):
		semanticScore = 0.8
	case props.HasSemanticTag(mmodel.SemWeak):
		semanticScore = 0.5
	}

	return tuning.Conflict*conflictScore + tuning.Opposite*oppositeRate + tuning.Decay*decayScore + tuning.Semantic*semanticScore
}
