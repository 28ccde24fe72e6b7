package personalkg

import (
	"context"
	"time"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// DriftResult is C9's per-relation outcome (§4.9).
type DriftResult struct {
	Signal             float64
	PromotionCandidate bool
}

// EvaluateDrift computes C9's four-factor drift_signal for one Personal
// relation and reports whether it qualifies for promotion. A static rule
// already covering the key is an absolute veto, independent of the
// signal (§4.9 "enforce static veto").
func EvaluateDrift(tuning config.PromotionTuning, key mmodel.RelationKey, props mmodel.PersonalRelationProps, staticIndex config.StaticRuleIndex, domainFound bool, domainSign mmodel.Polarity, domainConf float64) DriftResult {
	pcsFactor := props.PCSScore * labelMultiplier(props.PersonalLabel)
	consistencyFactor := consistencyFactor(props.OccurrenceCount)
	domainGapFactor := domainGapFactor(domainFound, domainSign, domainConf, props.Sign)
	timeFactor := timeFactor(props.HistorySpan())

	signal := tuning.PCSWeight*pcsFactor + tuning.ConsistencyWeight*consistencyFactor +
		tuning.DomainGapWeight*domainGapFactor + tuning.TimeWeight*timeFactor

	_, staticExists := staticIndex[[2]string{key.HeadID, key.TailID}]

	candidate := signal >= tuning.PromotionThreshold &&
		props.OccurrenceCount >= tuning.MinOccurrenceForPromo &&
		!staticExists

	return DriftResult{Signal: signal, PromotionCandidate: candidate}
}

func labelMultiplier(label mmodel.PersonalLabel) float64 {
	switch label {
	case mmodel.LabelStrong:
		return 1.0
	case mmodel.LabelWeak:
		return 0.5
	default:
		return 0.2
	}
}

func consistencyFactor(occurrenceCount int) float64 {
	switch {
	case occurrenceCount >= 10:
		return 1.0
	case occurrenceCount >= 5:
		return 0.7
	case occurrenceCount >= 3:
		return 0.5
	default:
		return 0.2
	}
}

func domainGapFactor(domainFound bool, domainSign mmodel.Polarity, domainConf float64, personalSign mmodel.Polarity) float64 {
	if !domainFound {
		return 0.8
	}

	if domainSign != mmodel.PolarityUnknown && domainSign == personalSign.Opposite() {
		if domainConf < 0.5 {
			return 0.7
		}

		return 0.2
	}

	return 0.4
}

func timeFactor(span time.Duration) float64 {
	switch {
	case span >= 30*24*time.Hour:
		return 1.0
	case span >= 7*24*time.Hour:
		return 0.6
	default:
		return 0.3
	}
}

// BuildPromotionCandidate renders a promoted Personal relation as a
// synthetic DomainCandidate re-entering the Domain pipeline (§4.9).
func BuildPromotionCandidate(key mmodel.RelationKey, props mmodel.PersonalRelationProps) mmodel.DomainCandidate {
	return mmodel.DomainCandidate{
		Key:            key,
		Polarity:       props.Sign,
		SemanticTag:    mmodel.SemConfident,
		StudentConf:    props.PCSScore,
		EvidenceSource: "personal_promotion",
	}
}

// MarkPromoted appends a promoted_to_domain history event to the
// Personal relation. The relation itself is never deleted (§4.9, §3 hard
// invariant).
func MarkPromoted(ctx context.Context, tx graph.Transaction, key mmodel.RelationKey) error {
	relType := mmodel.NamespacedType(mmodel.NamespacePersonal, key.RelType)

	rel, found := tx.GetRelation(ctx, key.HeadID, relType, key.TailID)
	if !found {
		return nil
	}

	props, _ := decodePersonalProps(rel)
	props.AppendHistory("promoted_to_domain", now(), props.PCSScore, "")

	_, err := tx.UpsertRelation(ctx, key.HeadID, relType, key.TailID, encodePersonalProps(props))

	return err
}
