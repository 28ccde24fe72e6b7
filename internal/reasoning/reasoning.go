package reasoning

import (
	"context"
	"time"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/internal/llm"
	"github.com/lerian-kg/kgarbiter/pkg/mlog"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
	"github.com/lerian-kg/kgarbiter/pkg/observability"
)

// now is overridable in tests that need deterministic freshness scoring.
var now = time.Now

// Gateway is the narrow LLM surface the optional polish step needs.
type Gateway interface {
	Generate(ctx context.Context, req llm.Request) (llm.Response, error)
}

// Reasoner is C10 (§4.10): it only reads the repository, never mutates
// it, so it holds a graph.Repository handle rather than a transaction.
type Reasoner struct {
	repo        graph.Repository
	cfg         config.ReasoningTuning
	decayTuning config.DynamicUpdateTuning
	aliasDict   map[string]string
	gateway     Gateway
	logger      mlog.Logger
}

// New builds a Reasoner. gateway may be nil: the polish step then simply
// does not run and Conclude returns its graph-evidence rendering as-is.
func New(repo graph.Repository, cfg config.ReasoningTuning, decayTuning config.DynamicUpdateTuning, aliasDict map[string]string, gateway Gateway, logger mlog.Logger) *Reasoner {
	return &Reasoner{repo: repo, cfg: cfg, decayTuning: decayTuning, aliasDict: aliasDict, gateway: gateway, logger: logger}
}

type scoredPath struct {
	path   mmodel.Path
	weight float64
	sign   mmodel.Polarity
}

// Conclude answers questionText end to end: parse, retrieve, fuse,
// aggregate, render, and an optional non-mutating LLM polish (§4.10
// "Conclude"). An empty or entity-less query returns
// direction=UNKNOWN, confidence=0 without touching the repository (§8
// boundary case).
func (r *Reasoner) Conclude(ctx context.Context, questionText string) (mmodel.Conclusion, error) {
	ctx, span := observability.StartSpan(ctx, "reasoning.Conclude")
	defer span.End()

	parsed := Parse(r.aliasDict, questionText)

	if parsed.Head == "" || parsed.Tail == "" {
		return mmodel.Conclusion{Direction: mmodel.DirectionUnknown, Confidence: 0, Band: mmodel.BandForConfidence(0), Text: "No evidence was found to answer this question."}, nil
	}

	domainPaths := retrieveDomain(ctx, r.repo, r.cfg, parsed.Head, parsed.Tail)

	paths := domainPaths
	if len(domainPaths) < r.cfg.MinDomainPaths {
		personalPaths := retrievePersonal(ctx, r.repo, r.cfg, parsed.Head, parsed.Tail)
		paths = append(paths, personalPaths...)
	}

	scored := make([]scoredPath, 0, len(paths))

	for _, p := range paths {
		weight, sign, ok := pathMetrics(r.cfg, r.decayTuning, p, now())
		if !ok {
			continue
		}

		scored = append(scored, scoredPath{path: p, weight: weight, sign: sign})
	}

	conclusion := aggregate(r.cfg, scored)

	if r.gateway != nil {
		r.polish(ctx, questionText, &conclusion)
	}

	return conclusion, nil
}

// polish asks the gateway to rewrite Text in natural language. It must
// never change direction, confidence, or any other numeric field (§4.10
// "An LLM polishing step is optional and must not change direction or
// numbers"); a failure or timeout just leaves the rule-rendered text.
func (r *Reasoner) polish(ctx context.Context, questionText string, conclusion *mmodel.Conclusion) {
	prompt := "Rewrite this analysis conclusion in one clear sentence without changing its meaning:\n" +
		"Question: " + questionText + "\nConclusion: " + conclusion.Text

	resp, err := r.gateway.Generate(ctx, llm.Request{Prompt: prompt, Temperature: 0.2, MaxTokens: 200})
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("reasoning polish step failed, keeping rule-rendered text", "error", err)
		}

		return
	}

	if resp.Content != "" {
		conclusion.Text = resp.Content
	}
}
