package validation

import (
	"context"
	"strings"

	"github.com/lerian-kg/kgarbiter/internal/llm"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// llmSemanticVerdict is the shape the LLM semantic probe is asked to
// return as JSON. Verdict is one of valid|wrong|spurious|ambiguous.
type llmSemanticVerdict struct {
	Verdict string `json:"verdict"`
}

// checkSemantic is stage 3 (§4.2): local lexical heuristics flag
// exaggeration, correlation-presented-as-causation, and weak evidence;
// an optional LLM judgement and a domain-conflict check against the
// Domain KG round out the final tag.
func (a *Arbiter) checkSemantic(ctx context.Context, edge mmodel.RawEdge, sign mmodel.SignResult) mmodel.SemanticResult {
	patterns := a.cfg.StaticDomain.SemanticPatterns
	lower := strings.ToLower(edge.FragmentText)

	result := mmodel.SemanticResult{
		HasExaggeration:        containsAny(lower, patterns.Exaggeration),
		CorrelationAsCausation: edge.RelationType == mmodel.RelationCause && containsAny(lower, patterns.CorrelationAsCausation),
		WeakEvidence:           containsAny(lower, patterns.WeakEvidence),
		DomainConflict:         a.domainConflicts(ctx, edge, sign),
	}

	verdict, verdictFound := a.probeLLMSemantic(ctx, edge)

	switch {
	case result.DomainConflict:
		result.Tag = mmodel.SemWrong
	case verdictFound && verdict == "wrong":
		result.Tag = mmodel.SemWrong
	case result.CorrelationAsCausation || (verdictFound && verdict == "spurious"):
		result.Tag = mmodel.SemSpurious
	case verdictFound && verdict == "valid" && !result.HasExaggeration && !result.WeakEvidence:
		result.Tag = mmodel.SemConfident
	case result.HasExaggeration || result.WeakEvidence:
		result.Tag = mmodel.SemWeak
	default:
		result.Tag = mmodel.SemAmbiguous
	}

	return result
}

// domainConflicts checks the Domain KG (when a lookup is wired) for an
// existing relation between the same pair whose sign opposes the
// resolved sign of this edge.
func (a *Arbiter) domainConflicts(ctx context.Context, edge mmodel.RawEdge, sign mmodel.SignResult) bool {
	if a.domainLookup == nil || sign.Polarity == mmodel.PolarityUnknown {
		return false
	}

	existing, ok := a.domainLookup.DomainSign(ctx, mmodel.RelationKey{HeadID: edge.HeadID, TailID: edge.TailID, RelType: string(edge.RelationType)})
	if !ok || existing == mmodel.PolarityUnknown {
		return false
	}

	return existing == sign.Polarity.Opposite()
}

// probeLLMSemantic asks the LLM gateway to judge the fragment's semantic
// soundness. A nil gateway or gateway error degrades to "not found",
// letting the lexical heuristics alone drive the final tag (§5).
func (a *Arbiter) probeLLMSemantic(ctx context.Context, edge mmodel.RawEdge) (string, bool) {
	if a.gateway == nil {
		return "", false
	}

	var verdict llmSemanticVerdict

	req := llm.Request{
		System:      "You judge whether a claim is semantically sound. Respond with JSON {\"verdict\": \"valid\"|\"wrong\"|\"spurious\"|\"ambiguous\"}.",
		Prompt:      edge.FragmentText,
		Temperature: 0,
		JSONMode:    true,
	}

	if _, err := a.gateway.GenerateJSON(ctx, req, &verdict); err != nil {
		return "", false
	}

	switch verdict.Verdict {
	case "valid", "wrong", "spurious", "ambiguous":
		return verdict.Verdict, true
	default:
		return "", false
	}
}
