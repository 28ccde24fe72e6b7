package personalkg

import (
	"context"
	"time"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// now is overridable in tests that need deterministic history timestamps.
var now = time.Now

// Update is C8 (§4.8): upsert keyed on (head, tail, rel_type), append-only
// history, never rewritten or deleted. Runs inside the caller's
// transaction.
func Update(ctx context.Context, tx graph.Transaction, weights config.PCSWeights, probe DomainProbe, candidate mmodel.PersonalCandidate) (mmodel.PersonalRelationProps, error) {
	relType := mmodel.NamespacedType(mmodel.NamespacePersonal, candidate.Key.RelType)

	existing, found := tx.GetRelation(ctx, candidate.Key.HeadID, relType, candidate.Key.TailID)
	if !found {
		pcs := Classify(weights, candidate, probe, 0, false)

		props := mmodel.PersonalRelationProps{
			UserID:          candidate.UserID,
			Sign:            candidate.Polarity,
			PCSScore:        pcs.Score,
			PersonalWeight:  personalWeight(pcs.Score, pcs.Label),
			PersonalLabel:   pcs.Label,
			OccurrenceCount: 1,
			SourceType:      candidate.SourceType,
			CreatedAt:       now(),
		}
		props.AppendRelevance(candidate.RelevanceType)
		props.AppendHistory("created", props.CreatedAt, pcs.Score, "")

		if _, err := tx.UpsertRelation(ctx, candidate.Key.HeadID, relType, candidate.Key.TailID, encodePersonalProps(props)); err != nil {
			return mmodel.PersonalRelationProps{}, err
		}

		return props, nil
	}

	props, _ := decodePersonalProps(existing)

	samePolarity := props.Sign == candidate.Polarity
	pcs := Classify(weights, candidate, probe, props.OccurrenceCount, samePolarity)

	props.OccurrenceCount++
	props.PCSScore = 0.7*props.PCSScore + 0.3*pcs.Score
	props.PersonalWeight = 0.7*props.PersonalWeight + 0.3*personalWeight(pcs.Score, pcs.Label)
	props.PersonalLabel = mmodel.LabelForPCS(props.PCSScore)
	props.AppendRelevance(candidate.RelevanceType)
	props.AppendHistory("updated", now(), props.PCSScore, "")

	if _, err := tx.UpsertRelation(ctx, candidate.Key.HeadID, relType, candidate.Key.TailID, encodePersonalProps(props)); err != nil {
		return mmodel.PersonalRelationProps{}, err
	}

	return props, nil
}

// personalWeight mirrors the label-gated weight formula used both at
// creation and, blended, on every later update (§4.8).
func personalWeight(pcs float64, label mmodel.PersonalLabel) float64 {
	switch label {
	case mmodel.LabelStrong:
		return pcs
	case mmodel.LabelWeak:
		return 0.5 * pcs
	default:
		return 0.1 * pcs
	}
}
