// Package ingest is the per-edge orchestrator named in §6's "Ingest API":
// given an edge and the ValidationResult C2 already produced for it, it
// upserts resolved entities and then routes the edge into the Domain KG
// (C3→C4→C5→C6) or the Personal KG (C7→C8→C9), all inside the caller's
// transaction.
package ingest

import (
	"context"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/domainkg"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/internal/personalkg"
	"github.com/lerian-kg/kgarbiter/pkg/merrors"
	"github.com/lerian-kg/kgarbiter/pkg/mlog"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
	"github.com/lerian-kg/kgarbiter/pkg/observability"
)

// DomainProcessResult is returned when the edge landed in (or stayed
// out of) the Domain KG (§6 "process(...) -> DomainProcessResult").
type DomainProcessResult struct {
	Props               mmodel.DomainRelationProps
	GuardAction         mmodel.StaticGuardAction
	ConflictResolution  mmodel.Resolution
	DriftFlagged        bool
	PromotionCandidate  bool
}

// PersonalProcessResult is returned when the edge landed in the Personal
// KG (§6 "process(...) -> PersonalProcessResult").
type PersonalProcessResult struct {
	Props              mmodel.PersonalRelationProps
	PromotionCandidate bool
	PromotionSignal     float64
}

// Result is the tagged union process() actually returns: exactly one of
// Domain/Personal is non-nil, or neither when the edge was dropped.
type Result struct {
	Domain    *DomainProcessResult
	Personal  *PersonalProcessResult
	Dropped   bool
	Rejections []mmodel.RejectionCode
}

// Engine wires the per-edge ingest pipeline to one configuration and
// static-rule index. It holds no repository handle: callers pass the
// transaction for the batch they are building (§4.1, §6 "Batch form:
// wrap in one transaction").
type Engine struct {
	cfg         *config.Config
	staticIndex config.StaticRuleIndex
	logger      mlog.Logger
}

// New builds an ingest Engine from a loaded configuration.
func New(cfg *config.Config, logger mlog.Logger) *Engine {
	return &Engine{cfg: cfg, staticIndex: cfg.BuildStaticRuleIndex(), logger: logger}
}

// Process is the per-edge orchestrator (§6). entities are upserted first
// so the relation's endpoints always exist before it is written.
func (e *Engine) Process(ctx context.Context, tx graph.Transaction, edge mmodel.RawEdge, validation mmodel.ValidationResult, entities []mmodel.Entity, userID string, sourceType mmodel.SourceType) (Result, error) {
	ctx, span := observability.StartSpan(ctx, "ingest.Process")
	defer span.End()

	for _, ent := range entities {
		if _, err := tx.UpsertEntity(ctx, ent.ID, ent.Labels, mergeName(ent)); err != nil {
			err = merrors.NewStorageError("upsert_entity", err)
			observability.RecordError(span, "upsert_entity failed", err)

			return Result{}, err
		}
	}

	switch validation.Destination {
	case mmodel.DestinationDropLog:
		if e.logger != nil {
			e.logger.Warn("edge dropped", "fragment_id", edge.FragmentID, "rejections", validation.Rejections)
		}

		return Result{Dropped: true, Rejections: validation.Rejections}, nil

	case mmodel.DestinationDomainCandidate:
		return e.processDomain(ctx, tx, edge, validation)

	case mmodel.DestinationPersonalCandidate:
		return e.processPersonal(ctx, tx, edge, validation, userID, sourceType)

	default:
		return Result{Dropped: true}, nil
	}
}

func (e *Engine) processDomain(ctx context.Context, tx graph.Transaction, edge mmodel.RawEdge, validation mmodel.ValidationResult) (Result, error) {
	candidate, ok := domainkg.Intake(e.cfg, edge, validation, e.staticIndex)
	if !ok {
		return Result{Dropped: true}, nil
	}

	guard := domainkg.StaticGuard(candidate, e.staticIndex)

	if guard.Action == mmodel.ActionRejectToPersonal {
		personalCandidate := personalkg.BuildCandidate(e.cfg.PersonalPatterns, edge, validation, mmodel.SourceDomainRejected)
		personalCandidate.UserID = ""

		probe := domainkg.NewProbe(ctx, tx)

		props, err := personalkg.Update(ctx, tx, e.cfg.PCS, probe, personalCandidate)
		if err != nil {
			return Result{}, merrors.NewStorageError("personal_update_from_static_guard", err)
		}

		return Result{Personal: &PersonalProcessResult{Props: props}}, nil
	}

	updateResult, err := domainkg.Update(ctx, tx, e.cfg.DynamicUpdate, candidate)
	if err != nil {
		return Result{}, merrors.NewStorageError("domain_update", err)
	}

	result := DomainProcessResult{Props: updateResult.Props, GuardAction: guard.Action}

	if updateResult.ConflictFlagged {
		cctx := domainkg.ConflictContext{
			Candidate:    candidate,
			Existing:     updateResult.Props,
			TypeConflict: domainkg.HasConflictingRelationType(ctx, tx, candidate.Key),
		}

		resolution := domainkg.Analyze(ctx, tx, e.cfg.Conflict, cctx)
		result.ConflictResolution = resolution

		if resolution == mmodel.ResolutionToPersonal {
			personalCandidate := personalkg.BuildCandidate(e.cfg.PersonalPatterns, edge, validation, mmodel.SourceDomainRejected)

			probe := domainkg.NewProbe(ctx, tx)

			if _, err := personalkg.Update(ctx, tx, e.cfg.PCS, probe, personalCandidate); err != nil {
				return Result{}, merrors.NewStorageError("personal_update_from_conflict", err)
			}
		}
	}

	driftResult, err := domainkg.Detect(ctx, tx, e.cfg.Drift, candidate.Key)
	if err != nil {
		return Result{}, merrors.NewStorageError("drift_detect", err)
	}

	result.DriftFlagged = driftResult.Flag

	return Result{Domain: &result}, nil
}

func (e *Engine) processPersonal(ctx context.Context, tx graph.Transaction, edge mmodel.RawEdge, validation mmodel.ValidationResult, userID string, sourceType mmodel.SourceType) (Result, error) {
	candidate := personalkg.BuildCandidate(e.cfg.PersonalPatterns, edge, validation, sourceType)
	candidate.UserID = userID

	probe := domainkg.NewProbe(ctx, tx)

	props, err := personalkg.Update(ctx, tx, e.cfg.PCS, probe, candidate)
	if err != nil {
		return Result{}, merrors.NewStorageError("personal_update", err)
	}

	domainSign, domainConf, domainFound := probe.DomainState(candidate.Key)

	drift := personalkg.EvaluateDrift(e.cfg.Promotion, candidate.Key, props, e.staticIndex, domainFound, domainSign, domainConf)

	result := PersonalProcessResult{Props: props, PromotionCandidate: drift.PromotionCandidate, PromotionSignal: drift.Signal}

	if drift.PromotionCandidate {
		promoted := personalkg.BuildPromotionCandidate(candidate.Key, props)

		if _, err := domainkg.Update(ctx, tx, e.cfg.DynamicUpdate, promoted); err != nil {
			return Result{}, merrors.NewStorageError("domain_update_from_promotion", err)
		}

		if err := personalkg.MarkPromoted(ctx, tx, candidate.Key); err != nil {
			return Result{}, merrors.NewStorageError("mark_promoted", err)
		}
	}

	return Result{Personal: &result}, nil
}

func mergeName(ent mmodel.Entity) map[string]any {
	props := make(map[string]any, len(ent.Props)+1)
	for k, v := range ent.Props {
		props[k] = v
	}

	if ent.Name != "" {
		props["name"] = ent.Name
	}

	return props
}
