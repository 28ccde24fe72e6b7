package domainkg

import (
	"strings"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// Intake is C3's first half (§4.3): it drops edges that are too short or
// read as a personal opinion, and otherwise builds a DomainCandidate
// whose polarity is resolved static > sign > student.
func Intake(cfg *config.Config, edge mmodel.RawEdge, validation mmodel.ValidationResult, staticIndex config.StaticRuleIndex) (mmodel.DomainCandidate, bool) {
	if len(strings.TrimSpace(edge.FragmentText)) < cfg.Intake.MinFragmentLength {
		return mmodel.DomainCandidate{}, false
	}

	lower := strings.ToLower(edge.FragmentText)
	for _, marker := range cfg.Intake.OpinionMarkers {
		if marker != "" && strings.Contains(lower, strings.ToLower(marker)) {
			return mmodel.DomainCandidate{}, false
		}
	}

	asserted := assertedPolarity(edge, validation)

	polarity := asserted
	if rule, ok := staticIndex[[2]string{edge.HeadID, edge.TailID}]; ok {
		polarity = rule.Polarity
	}

	return mmodel.DomainCandidate{
		Key:              mmodel.RelationKey{HeadID: edge.HeadID, TailID: edge.TailID, RelType: string(edge.RelationType)},
		Polarity:         polarity,
		AssertedPolarity: asserted,
		SemanticTag:      validation.Semantic.Tag,
		StudentConf:      edge.StudentConf,
		FragmentID:       edge.FragmentID,
		EvidenceSource:   "extraction",
	}, true
}

// assertedPolarity is what the edge itself claims, ignoring any static
// rule: sign-detector result over student guess (§4.3).
func assertedPolarity(edge mmodel.RawEdge, validation mmodel.ValidationResult) mmodel.Polarity {
	if validation.Sign.Polarity != mmodel.PolarityUnknown {
		return validation.Sign.Polarity
	}

	return edge.PolarityGuess
}

// GuardResult is the static guard's verdict for one DomainCandidate (§4.3).
type GuardResult struct {
	Action mmodel.StaticGuardAction
	Rule   *config.StaticRule
}

// StaticGuard compares candidate against the precomputed static rule
// index. It never returns a rule that should be overwritten — the rule
// itself is immutable; only the candidate's routing changes.
func StaticGuard(candidate mmodel.DomainCandidate, staticIndex config.StaticRuleIndex) GuardResult {
	rule, ok := staticIndex[[2]string{candidate.Key.HeadID, candidate.Key.TailID}]
	if !ok {
		return GuardResult{Action: mmodel.ActionCreateNew}
	}

	if rule.Certainty >= 0.95 && !strings.EqualFold(rule.Relation, candidate.Key.RelType) {
		return GuardResult{Action: mmodel.ActionRejectToPersonal, Rule: &rule}
	}

	asserted := candidate.AssertedPolarity

	if asserted == mmodel.PolarityUnknown || asserted == "" || asserted == rule.Polarity {
		return GuardResult{Action: mmodel.ActionStrengthenStatic, Rule: &rule}
	}

	return GuardResult{Action: mmodel.ActionRejectToPersonal, Rule: &rule}
}
