package personalkg

import (
	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// BuildCandidate is C7's intake half (§4.7): it tags a raw edge routed
// toward Personal — whether hinted there directly by C2, or rejected
// from Domain by C3/C5 — with a relevance type, leaving sourceType to
// the caller since that reflects where the edge came from, not its text.
func BuildCandidate(patterns config.PersonalPatterns, edge mmodel.RawEdge, validation mmodel.ValidationResult, sourceType mmodel.SourceType) mmodel.PersonalCandidate {
	polarity := validation.Sign.Polarity
	if polarity == mmodel.PolarityUnknown {
		polarity = edge.PolarityGuess
	}

	return mmodel.PersonalCandidate{
		Key:           mmodel.RelationKey{HeadID: edge.HeadID, TailID: edge.TailID, RelType: string(edge.RelationType)},
		Polarity:      polarity,
		SemanticTag:   validation.Semantic.Tag,
		StudentConf:   edge.StudentConf,
		FragmentText:  edge.FragmentText,
		FragmentID:    edge.FragmentID,
		SourceType:    sourceType,
		RelevanceType: ClassifyRelevance(patterns, edge.FragmentText),
	}
}
