package reasoning

import (
	"math"
	"time"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// fuseEdge computes one edge's fused weight W per §4.10 "Fuse (EES)".
// decayTuning supplies the freshness multiplier for a Domain edge's
// domain_conf; lastUpdate/now let it be computed without re-reading the
// relation's stored decay_applied flag, which only records whether decay
// was ever applied, not how stale the edge currently is.
func fuseEdge(tuning config.ReasoningTuning, decayTuning config.DynamicUpdateTuning, edge mmodel.RetrievedEdge, lastUpdate, now time.Time) float64 {
	var wd, wp float64

	if edge.Source == mmodel.EvidenceDomain || edge.HasDomainAlso {
		wd = domainWeight(tuning, decayTuning, edge, lastUpdate, now)
	}

	if edge.Source == mmodel.EvidencePersonal {
		wp = personalWeight(tuning, edge)
	}

	if wd > 0 && wp > 0 {
		return wd
	}

	return wd + wp
}

func domainWeight(tuning config.ReasoningTuning, decayTuning config.DynamicUpdateTuning, edge mmodel.RetrievedEdge, lastUpdate, now time.Time) float64 {
	freshness := freshnessFactor(decayTuning, lastUpdate, now)
	semanticScore := bestSemanticScore(edge.SemanticTags)
	evidenceBonus := 1 + math.Min(0.2, 0.02*float64(edge.EvidenceCount))

	goldBonus := 1.0
	if edge.Gold {
		goldBonus = tuning.GoldBonus
	}

	return edge.DomainConf * freshness * semanticScore * evidenceBonus * goldBonus
}

func personalWeight(tuning config.ReasoningTuning, edge mmodel.RetrievedEdge) float64 {
	discount := 1.0
	if edge.HasDomainAlso {
		discount = tuning.PersonalDiscount
	}

	return edge.PCSScore * edge.PersonalWeight * discount
}

// freshnessFactor is the "(1 - decay)" term: the same decay_rate^periods
// multiplier domainkg.applyDecay applies to domain_conf, computed
// read-only here since the reasoner never mutates the Domain KG.
func freshnessFactor(tuning config.DynamicUpdateTuning, lastUpdate, now time.Time) float64 {
	if tuning.DecayDays <= 0 || lastUpdate.IsZero() {
		return 1.0
	}

	days := now.Sub(lastUpdate).Hours() / 24
	if days < float64(tuning.DecayDays) {
		return 1.0
	}

	periods := math.Floor(days / float64(tuning.DecayDays))

	return math.Pow(tuning.DecayRate, periods)
}

// bestSemanticScore takes the most favourable tag ever confirmed on the
// edge; SemanticTags is a deduplicated set (domainkg.AppendSemanticTag),
// not an ordered history, so "most recent" isn't recoverable.
func bestSemanticScore(tags []mmodel.SemanticTag) float64 {
	if len(tags) == 0 {
		return 1.0
	}

	best := 0.0
	for _, t := range tags {
		if s := mmodel.SemanticScore(t); s > best {
			best = s
		}
	}

	return best
}

// pathMetrics computes path_weight and path_sign for one path (§4.10
// "Path metrics"). ok is false when any edge has an unknown sign — the
// path's combined sign is then undefined and it must be dropped.
func pathMetrics(tuning config.ReasoningTuning, decayTuning config.DynamicUpdateTuning, path mmodel.Path, now time.Time) (weight float64, sign mmodel.Polarity, ok bool) {
	weight = 1.0
	sign = mmodel.PolarityNeutral

	for _, edge := range path.Edges {
		if edge.Sign == mmodel.PolarityUnknown {
			return 0, mmodel.PolarityUnknown, false
		}

		w := fuseEdge(tuning, decayTuning, edge, edge.LastUpdate, now)
		weight *= math.Max(w, 0.01)

		sign = combinePathSign(sign, edge.Sign)
	}

	return weight, sign, true
}

func combinePathSign(a, b mmodel.Polarity) mmodel.Polarity {
	if a == mmodel.PolarityNeutral {
		return b
	}

	if b == mmodel.PolarityNeutral {
		return a
	}

	if a == b {
		return mmodel.PolarityPositive
	}

	return mmodel.PolarityNegative
}
