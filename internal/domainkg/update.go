package domainkg

import (
	"context"
	"math"
	"time"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// now is overridable in tests that need deterministic decay timing.
var now = time.Now

// UpdateResult is C4's outcome for one candidate (§4.4): the persisted
// props plus whether a pending conflict was flagged for C5.
type UpdateResult struct {
	Props           mmodel.DomainRelationProps
	ConflictFlagged bool
}

// Update is C4 (§4.4): idempotent on (head, tail, rel_type), runs inside
// the caller's transaction so it commits or rolls back with the rest of
// the batch.
func Update(ctx context.Context, tx graph.Transaction, tuning config.DynamicUpdateTuning, candidate mmodel.DomainCandidate) (UpdateResult, error) {
	relType := mmodel.NamespacedType(mmodel.NamespaceDomain, candidate.Key.RelType)

	existing, found := tx.GetRelation(ctx, candidate.Key.HeadID, relType, candidate.Key.TailID)
	if !found {
		props := mmodel.DomainRelationProps{
			Sign:          candidate.Polarity,
			DomainConf:    tuning.InitialDomainConf,
			EvidenceCount: 1,
			SemanticTags:  []mmodel.SemanticTag{candidate.SemanticTag},
			CreatedAt:     now(),
			LastUpdate:    now(),
			Origin:        candidate.EvidenceSource,
		}

		if _, err := tx.UpsertRelation(ctx, candidate.Key.HeadID, relType, candidate.Key.TailID, encodeDomainProps(props)); err != nil {
			return UpdateResult{}, err
		}

		return UpdateResult{Props: props}, nil
	}

	props, _ := decodeDomainProps(existing)

	applyDecay(&props, tuning, now())

	conflictFlagged := false

	if props.Sign == mmodel.PolarityUnknown || candidate.Polarity == mmodel.PolarityUnknown || candidate.Polarity == props.Sign {
		props.EvidenceCount++
		props.DomainConf = math.Min(0.95, props.DomainConf+tuning.ConfIncreaseRate/math.Sqrt(float64(props.EvidenceCount)))
	} else {
		props.ConflictCount++
		props.DomainConf = math.Max(0.10, props.DomainConf-tuning.ConfDecreaseRate)
		props.NeedConflictResolution = true
		conflictFlagged = true
	}

	props.AppendSemanticTag(candidate.SemanticTag)
	props.Clamp()
	props.LastUpdate = now()

	if _, err := tx.UpsertRelation(ctx, candidate.Key.HeadID, relType, candidate.Key.TailID, encodeDomainProps(props)); err != nil {
		return UpdateResult{}, err
	}

	return UpdateResult{Props: props, ConflictFlagged: conflictFlagged}, nil
}

// applyDecay multiplies domain_conf by decay_rate^floor(Δdays/decay_days)
// once enough time has passed since the last update (§4.4 step 1).
func applyDecay(props *mmodel.DomainRelationProps, tuning config.DynamicUpdateTuning, at time.Time) {
	if tuning.DecayDays <= 0 || props.LastUpdate.IsZero() {
		return
	}

	days := at.Sub(props.LastUpdate).Hours() / 24
	if days < float64(tuning.DecayDays) {
		return
	}

	periods := math.Floor(days / float64(tuning.DecayDays))
	props.DomainConf *= math.Pow(tuning.DecayRate, periods)
	props.DecayApplied = true
}
