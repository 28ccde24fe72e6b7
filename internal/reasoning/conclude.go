package reasoning

import (
	"fmt"
	"math"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// aggregate is §4.10 "Aggregate": sums path_weight into positive or
// negative evidence by path_sign, derives direction, confidence, the
// strongest path, and the conflicting-paths count.
func aggregate(tuning config.ReasoningTuning, scored []scoredPath) mmodel.Conclusion {
	var positive, negative float64

	var strongest *scoredPath

	negativeCount := 0

	for i := range scored {
		sp := scored[i]

		switch sp.sign {
		case mmodel.PolarityPositive:
			positive += sp.weight
		case mmodel.PolarityNegative:
			negative += sp.weight
			negativeCount++
		}

		if strongest == nil || sp.weight > strongest.weight {
			strongest = &scored[i]
		}
	}

	net := positive - negative
	total := positive + negative

	direction := mmodel.DirectionUnknown
	if total > 0 {
		switch {
		case net > tuning.DirectionEpsilon*total:
			direction = mmodel.DirectionPositive
		case net < -tuning.DirectionEpsilon*total:
			direction = mmodel.DirectionNegative
		default:
			direction = mmodel.DirectionNeutral
		}
	}

	confidence := 0.0
	if total > 0 {
		confidence = math.Min(1, math.Abs(net)/math.Max(total, 0.01))
	}

	conflicting := 0
	if positive > 0 {
		conflicting = negativeCount
	}

	evidenceRatio := 0.0
	if negative > 0 {
		evidenceRatio = positive / negative
	} else if positive > 0 {
		evidenceRatio = math.Inf(1)
	}

	concl := mmodel.Conclusion{
		Direction:        direction,
		Confidence:       confidence,
		Band:             mmodel.BandForConfidence(confidence),
		EvidenceRatio:    evidenceRatio,
		PathsUsed:        len(scored),
		ConflictingPaths: conflicting,
		PositiveEvidence: positive,
		NegativeEvidence: negative,
	}

	if strongest != nil {
		concl.StrongestPath = &strongest.path
	}

	concl.Text = renderText(concl, strongest)

	return concl
}

func renderText(c mmodel.Conclusion, strongest *scoredPath) string {
	if c.Direction == mmodel.DirectionUnknown {
		return "No evidence was found to answer this question."
	}

	var sb strings.Builder

	switch c.Direction {
	case mmodel.DirectionPositive:
		sb.WriteString("The evidence supports a positive relationship")
	case mmodel.DirectionNegative:
		sb.WriteString("The evidence supports a negative relationship")
	case mmodel.DirectionNeutral:
		sb.WriteString("The evidence is mixed or inconclusive")
	}

	fmt.Fprintf(&sb, " (%s confidence, %.2f).", c.Band, c.Confidence)

	if strongest != nil {
		sb.WriteString(" Strongest path: " + renderChain(strongest.path))
	}

	return sb.String()
}

func renderChain(path mmodel.Path) string {
	if len(path.Nodes) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(humanizeNodeID(path.Nodes[0]))

	for i, edge := range path.Edges {
		sb.WriteString(" -" + string(edge.Sign) + "-> ")
		sb.WriteString(humanizeNodeID(path.Nodes[i+1]))
	}

	return sb.String()
}

// humanizeNodeID renders a PascalCase/snake_case entity id such as
// "US_10Y_Treasury" as "Us 10y Treasury" for Conclude's natural-language
// Text, rather than surfacing the raw graph id to a reader.
func humanizeNodeID(id string) string {
	words := strings.Fields(strcase.ToDelimited(id, ' '))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	return strings.Join(words, " ")
}
