// Package validation implements the Validation Arbiter (C2): a four
// stage pipeline (schema, sign, semantic, confidence filter) that turns
// one RawEdge into a single ValidationResult, never raising for bad
// content — only for malformed input (§4.2).
package validation

import (
	"context"
	"strings"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/llm"
	"github.com/lerian-kg/kgarbiter/pkg/mlog"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
	"github.com/lerian-kg/kgarbiter/pkg/observability"
)

// DomainLookup is the narrow read-only view into the Domain KG the
// semantic stage needs to detect domain_conflict (§4.2 stage 3). It is
// satisfied by the domainkg package; kept as an interface here to avoid
// an import cycle between validation and domainkg.
type DomainLookup interface {
	DomainSign(ctx context.Context, key mmodel.RelationKey) (mmodel.Polarity, bool)
}

// Gateway is the subset of *llm.Gateway the arbiter calls; an interface
// so tests can stub it without a real LLM client.
type Gateway interface {
	GenerateJSON(ctx context.Context, req llm.Request, out any) (llm.Response, error)
}

// Arbiter runs the four-stage pipeline of §4.2.
type Arbiter struct {
	cfg          *config.Config
	staticIndex  config.StaticRuleIndex
	domainLookup DomainLookup
	gateway      Gateway
	logger       mlog.Logger
}

// New builds an Arbiter. domainLookup and gateway may be nil: without a
// domainLookup, domain_conflict never fires; without a gateway, the LLM
// polarity/semantic probes are simply never invoked (rule-based
// degradation, §5).
func New(cfg *config.Config, domainLookup DomainLookup, gateway Gateway, logger mlog.Logger) *Arbiter {
	if logger == nil {
		logger = mlog.NopLogger{}
	}

	return &Arbiter{
		cfg:          cfg,
		staticIndex:  cfg.BuildStaticRuleIndex(),
		domainLookup: domainLookup,
		gateway:      gateway,
		logger:       logger,
	}
}

// Validate runs all four stages against edge and returns one result. It
// only returns a non-nil error for malformed input it cannot even
// inspect (here: a nil cfg would be a programmer error, not user input,
// so this never actually errors in practice — kept for interface parity
// with the other components' Process methods).
func (a *Arbiter) Validate(ctx context.Context, edge mmodel.RawEdge) (mmodel.ValidationResult, error) {
	ctx, span := observability.StartSpan(ctx, "validation.validate")
	defer span.End()

	var result mmodel.ValidationResult

	result.Schema = a.checkSchema(edge)
	if !result.Schema.Valid {
		result.Destination = mmodel.DestinationDropLog
		result.Rejections = []mmodel.RejectionCode{result.Schema.Code}

		return result, nil
	}

	result.Sign = a.checkSign(ctx, edge)
	result.Semantic = a.checkSemantic(ctx, edge, result.Sign)
	result.StaticConflict = a.isStaticConflict(edge, result.Sign)

	a.applyConfidenceFilter(edge, &result)

	return result, nil
}

// checkSchema is stage 1 (§4.2). It never returns an error; malformed
// input that genuinely prevents inspection (e.g. a nil pointer upstream)
// is the caller's responsibility to catch before calling Validate, per
// §4.2 "Failure semantics".
func (a *Arbiter) checkSchema(edge mmodel.RawEdge) mmodel.SchemaResult {
	if edge.HeadID == "" || edge.TailID == "" || edge.RelationType == "" {
		return mmodel.SchemaResult{Code: mmodel.RejectMissingField, Reason: "head_id, tail_id and relation_type are required"}
	}

	if edge.SelfLoop() {
		return mmodel.SchemaResult{Code: mmodel.RejectSelfLoop, Reason: "head and tail must differ"}
	}

	if !edge.RelationType.Valid() {
		return mmodel.SchemaResult{Code: mmodel.RejectUnknownRelationType, Reason: "relation_type not in the closed set"}
	}

	if a.violatesLabelSchema(edge) {
		return mmodel.SchemaResult{Code: mmodel.RejectForbiddenLabelPair, Reason: "entity pair/relation triple is forbidden"}
	}

	return mmodel.SchemaResult{Valid: true}
}

func (a *Arbiter) violatesLabelSchema(edge mmodel.RawEdge) bool {
	schema := a.cfg.ValidationSchema

	for _, f := range schema.Forbidden {
		if tripleMatches(f, edge) {
			return true
		}
	}

	if len(schema.Allowed) == 0 {
		return false
	}

	for _, al := range schema.Allowed {
		if tripleMatches(al, edge) {
			return false
		}
	}

	return true
}

func tripleMatches(t config.LabelTriple, edge mmodel.RawEdge) bool {
	return matchesField(t.HeadLabel, edge.HeadLabel) &&
		matchesField(t.TailLabel, edge.TailLabel) &&
		matchesField(t.RelationType, string(edge.RelationType))
}

func matchesField(pattern, value string) bool {
	return pattern == "" || pattern == "*" || strings.EqualFold(pattern, value)
}
