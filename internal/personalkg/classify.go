// Package personalkg implements the Personal KG's three components:
// intake and PCS classification (C7), the append-only update (C8), and
// drift/promotion (C9, §4.7-§4.9).
package personalkg

import (
	"strings"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// DomainProbe is the narrow read into the Domain KG the PCS classifier's
// P1 factor and C9's domain_gap_factor need. Satisfied by domainkg,
// injected as an interface to avoid an import cycle.
type DomainProbe interface {
	DomainState(key mmodel.RelationKey) (sign mmodel.Polarity, domainConf float64, found bool)
}

// ClassifyRelevance tags a Personal candidate's fragment text with a
// RelevanceType by lexical markers (§4.7); OBSERVATION is the default
// when nothing else matches.
func ClassifyRelevance(patterns config.PersonalPatterns, text string) mmodel.RelevanceType {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, patterns.Emotional):
		return mmodel.RelevanceEmotional
	case containsAny(lower, patterns.Hypothesis):
		return mmodel.RelevanceHypothesis
	case containsAny(lower, patterns.Inference):
		return mmodel.RelevanceInference
	case containsAny(lower, patterns.Opinion):
		return mmodel.RelevanceOpinion
	default:
		return mmodel.RelevanceObservation
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}

	return false
}

// PCSResult is C7's classifier output (§4.7).
type PCSResult struct {
	Score float64
	Label mmodel.PersonalLabel
}

// Classify computes the four-factor Personal Confidence Score and its
// derived label (§4.7). existingOccurrenceCount and existingSamePolarity
// describe the Personal relation being updated, if any — they drive the
// P4 consistency factor; zero values are correct for a brand-new key.
func Classify(weights config.PCSWeights, candidate mmodel.PersonalCandidate, probe DomainProbe, existingOccurrenceCount int, existingSamePolarity bool) PCSResult {
	var domainSign mmodel.Polarity
	var domainConf float64
	var domainFound bool

	if probe != nil {
		domainSign, domainConf, domainFound = probe.DomainState(candidate.Key)
	}

	p1 := domainProximity(domainFound, domainSign, domainConf, candidate.Polarity)
	p2 := semanticStrength(candidate.SemanticTag)
	p3 := userOriginWeight(candidate.SourceType)
	p4 := consistency(existingOccurrenceCount, existingSamePolarity)

	raw := weights.P1*p1 + weights.P2*p2 + weights.P3*p3 + weights.P4*p4

	normalized := (raw + 1) / 2
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	return PCSResult{Score: normalized, Label: mmodel.LabelForPCS(normalized)}
}

func domainProximity(found bool, domainSign mmodel.Polarity, domainConf float64, candidatePolarity mmodel.Polarity) float64 {
	if !found {
		return 0
	}

	switch {
	case candidatePolarity == mmodel.PolarityUnknown:
		return 0.3 * domainConf
	case candidatePolarity == domainSign:
		return 0.8 * domainConf
	default:
		return -0.6 * domainConf
	}
}

func semanticStrength(tag mmodel.SemanticTag) float64 {
	switch tag {
	case mmodel.SemConfident:
		return 1.0
	case mmodel.SemWeak:
		return 0.5
	case mmodel.SemAmbiguous:
		return 0.2
	case mmodel.SemSpurious:
		return -0.4
	case mmodel.SemWrong:
		return -1.0
	default:
		return 0
	}
}

func userOriginWeight(source mmodel.SourceType) float64 {
	switch source {
	case mmodel.SourceUserWritten:
		return 0.3
	case mmodel.SourceTextReport:
		return 0.1
	case mmodel.SourceDomainRejected:
		return 0.05
	default: // llm_inferred
		return 0
	}
}

// consistency is P4 (§4.7): same_pattern_count is how many occurrences
// agreed with this candidate's polarity (the quadruple
// head/tail/rel_type/polarity); total_patterns is every occurrence of this
// key regardless of polarity. Both counts include this new submission.
// The prior occurrences count as agreeing all together when the stored
// sign matches the candidate's polarity, and none of them count otherwise.
func consistency(existingOccurrenceCount int, existingSamePolarity bool) float64 {
	total := existingOccurrenceCount + 1
	same := 1

	if existingSamePolarity {
		same = existingOccurrenceCount + 1
	}

	v := 2 * float64(same) / float64(total)
	if v > 0.8 {
		return 0.8
	}

	return v
}
