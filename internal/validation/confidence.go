package validation

import "github.com/lerian-kg/kgarbiter/pkg/mmodel"

// signConsistency maps a sign tag to the numeric score the combined
// confidence formula uses (§4.2 stage 4). The spec gives no explicit
// table for this one (unlike SemanticScore, which §4.10 pins down
// exactly); suspect sits below confident because an authoritative static
// rule overrode the input's own guess.
func signConsistency(tag mmodel.SignTag) float64 {
	switch tag {
	case mmodel.SignConfident:
		return 1.0
	case mmodel.SignSuspect:
		return 0.7
	case mmodel.SignAmbiguous:
		return 0.5
	default:
		return 0.0
	}
}

// applyConfidenceFilter is stage 4 (§4.2): combine the three prior
// stages into one score and route the edge to a destination.
//
// Admission rules, in order:
//
//	A. sign == unknown                      -> DROP_LOG (RejectSignTag)
//	B. semantic in {sem_wrong, sem_spurious} -> DROP_LOG (RejectSemanticTag)
//	C. combined >= domain_candidate threshold -> DOMAIN_CANDIDATE
//	D. combined >= personal_candidate threshold -> PERSONAL_CANDIDATE
//	   otherwise                             -> DROP_LOG (RejectBelowThreshold)
func (a *Arbiter) applyConfidenceFilter(edge mmodel.RawEdge, result *mmodel.ValidationResult) {
	w := a.cfg.ValidationSchema.Weights
	result.Combined = w.Student*edge.StudentConf +
		w.Sign*signConsistency(result.Sign.Tag) +
		w.Semantic*mmodel.SemanticScore(result.Semantic.Tag)

	if result.Sign.Tag == mmodel.SignUnknown {
		result.Destination = mmodel.DestinationDropLog
		result.Rejections = append(result.Rejections, mmodel.RejectSignTag)

		return
	}

	if result.Semantic.Tag == mmodel.SemWrong || result.Semantic.Tag == mmodel.SemSpurious {
		result.Destination = mmodel.DestinationDropLog
		result.Rejections = append(result.Rejections, mmodel.RejectSemanticTag)

		return
	}

	thresholds := a.cfg.ValidationSchema.Thresholds

	switch {
	case result.Combined >= thresholds.DomainCandidate:
		result.Destination = mmodel.DestinationDomainCandidate
	case result.Combined >= thresholds.PersonalCandidate:
		result.Destination = mmodel.DestinationPersonalCandidate
	default:
		result.Destination = mmodel.DestinationDropLog
		result.Rejections = append(result.Rejections, mmodel.RejectBelowThreshold)
	}
}
