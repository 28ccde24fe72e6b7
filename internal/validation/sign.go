package validation

import (
	"context"
	"strings"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/llm"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// checkSign is stage 2 (§4.2): three independent oracles — lexical
// pattern, static domain rule, and an LLM polarity probe invoked only
// when the pattern oracle found nothing — feed a small decision table.
func (a *Arbiter) checkSign(ctx context.Context, edge mmodel.RawEdge) mmodel.SignResult {
	patternPolarity, patternFound := scanSignPattern(edge.FragmentText, a.cfg.StaticDomain.SignPatterns, edge.PolarityGuess)

	rule, staticFound := a.staticIndex[[2]string{edge.HeadID, edge.TailID}]
	staticAuthoritative := staticFound && rule.Certainty >= 0.9

	var llmPolarity mmodel.Polarity
	var llmFound bool
	if !patternFound {
		llmPolarity, llmFound = a.probeLLMPolarity(ctx, edge)
	}

	student := edge.PolarityGuess

	// Static authoritative rule disagrees with the input's own guess: the
	// rule wins, but the disagreement itself is notable.
	if staticAuthoritative && student != mmodel.PolarityUnknown && student != rule.Polarity {
		return mmodel.SignResult{Tag: mmodel.SignSuspect, Polarity: rule.Polarity}
	}

	votes := make([]mmodel.Polarity, 0, 4)
	if student != mmodel.PolarityUnknown {
		votes = append(votes, student)
	}
	if patternFound {
		votes = append(votes, patternPolarity)
	}
	if staticFound {
		votes = append(votes, rule.Polarity)
	}
	if llmFound {
		votes = append(votes, llmPolarity)
	}

	if len(votes) == 0 {
		return mmodel.SignResult{Tag: mmodel.SignUnknown, Polarity: mmodel.PolarityUnknown}
	}

	if allAgree(votes) {
		return mmodel.SignResult{Tag: mmodel.SignConfident, Polarity: votes[0]}
	}

	return mmodel.SignResult{Tag: mmodel.SignAmbiguous, Polarity: majority(votes)}
}

func allAgree(votes []mmodel.Polarity) bool {
	for _, v := range votes[1:] {
		if v != votes[0] {
			return false
		}
	}

	return true
}

// majority returns the plurality polarity among votes, breaking ties by
// the order the candidates first appear.
func majority(votes []mmodel.Polarity) mmodel.Polarity {
	counts := make(map[mmodel.Polarity]int, len(votes))
	order := make([]mmodel.Polarity, 0, len(votes))

	for _, v := range votes {
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}

	return best
}

// scanSignPattern is the pattern oracle: lexical cues in the fragment
// text suggest a polarity directly, or (via an inverse cue like "not" or
// "despite") flip whatever the input already guessed.
func scanSignPattern(text string, patterns config.SignPatterns, studentGuess mmodel.Polarity) (mmodel.Polarity, bool) {
	lower := strings.ToLower(text)

	hasPositive := containsAny(lower, patterns.Positive)
	hasNegative := containsAny(lower, patterns.Negative)
	hasInverse := containsAny(lower, patterns.Inverse)

	switch {
	case hasPositive && !hasNegative:
		p := mmodel.PolarityPositive
		if hasInverse {
			p = p.Opposite()
		}

		return p, true
	case hasNegative && !hasPositive:
		p := mmodel.PolarityNegative
		if hasInverse {
			p = p.Opposite()
		}

		return p, true
	case hasInverse && studentGuess != mmodel.PolarityUnknown:
		return studentGuess.Opposite(), true
	default:
		return mmodel.PolarityUnknown, false
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

// llmPolarityVerdict is the shape the LLM polarity probe is asked to
// return as JSON.
type llmPolarityVerdict struct {
	Polarity string `json:"polarity"`
}

// probeLLMPolarity asks the LLM gateway for a polarity guess. A nil
// gateway, a gateway error (including the timeout case), or an
// unparseable verdict all degrade to "not found" so the caller falls
// back to rule-based voting (§5).
func (a *Arbiter) probeLLMPolarity(ctx context.Context, edge mmodel.RawEdge) (mmodel.Polarity, bool) {
	if a.gateway == nil {
		return mmodel.PolarityUnknown, false
	}

	var verdict llmPolarityVerdict

	req := llm.Request{
		System:      "You judge the polarity of a causal or correlational claim. Respond with JSON {\"polarity\": \"+\"|\"-\"|\"neutral\"}.",
		Prompt:      edge.FragmentText,
		Temperature: 0,
		JSONMode:    true,
	}

	if _, err := a.gateway.GenerateJSON(ctx, req, &verdict); err != nil {
		return mmodel.PolarityUnknown, false
	}

	p := mmodel.Polarity(verdict.Polarity)
	if !p.Valid() || p == mmodel.PolarityUnknown {
		return mmodel.PolarityUnknown, false
	}

	return p, true
}

// isStaticConflict reports whether the edge's own polarity guess
// disagrees with an existing authoritative static rule for this (head,
// tail) pair. checkSign's decision table already resolves suspect edges
// to the rule's polarity, so this checks the edge's original guess
// rather than the resolved sign — C3's static guard needs the raw fact
// that a conflict happened, not just the already-overridden tag (§4.3).
func (a *Arbiter) isStaticConflict(edge mmodel.RawEdge, sign mmodel.SignResult) bool {
	rule, ok := a.staticIndex[[2]string{edge.HeadID, edge.TailID}]
	if !ok || rule.Certainty < 0.9 {
		return false
	}

	return edge.PolarityGuess != mmodel.PolarityUnknown && edge.PolarityGuess != rule.Polarity
}
