package domainkg

import (
	"context"
	"math"
	"strings"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

const domainPrefix = "domain:"

// ConflictContext is what the Conflict Analyzer (C5, §4.5) needs about
// the candidate that made C4 flag a pending conflict, and the Domain
// relation's state after C4 already applied the weaken step.
type ConflictContext struct {
	Candidate    mmodel.DomainCandidate
	Existing     mmodel.DomainRelationProps
	TypeConflict bool // same (head, tail) pair already carries a different relation type
}

// Analyze is C5 (§4.5), invoked only when C4 flagged a pending conflict.
// Of the five Resolution values, this algorithm only ever produces
// KEEP_EXISTING, TO_PERSONAL, and TO_DRIFT — REPLACE and MERGE are kept
// in the enum for completeness but are not reachable from this decision
// tree, matching the worked algorithm in §4.5 literally.
func Analyze(ctx context.Context, tx graph.Transaction, tuning config.ConflictTuning, cctx ConflictContext) mmodel.Resolution {
	if cctx.Candidate.SemanticTag == mmodel.SemWrong || cctx.Candidate.SemanticTag == mmodel.SemSpurious {
		return mmodel.ResolutionToPersonal
	}

	if cctx.TypeConflict {
		return mmodel.ResolutionToPersonal
	}

	if conflictsWithDomainPath(ctx, tx, cctx.Candidate, tuning.PathDepthLimit) {
		return mmodel.ResolutionToPersonal
	}

	// r is the counter-evidence ratio: ConflictCount (signed-disagreement
	// hits accumulated against this relation, i.e. the "new" evidence) over
	// EvidenceCount (the relation's original backing, i.e. the "existing"
	// evidence) — new/existing, matching the worked example's direction of
	// "strong counter-evidence overwhelms a weakly-backed Domain relation."
	// This is the inverse of the original conflict_analyzer.py, which
	// divided the other way (existing/new); dividing new/existing is the
	// one that makes "r >= min_evidence_ratio" mean "counter-evidence
	// outweighs the original backing," the direction the resolution branch
	// below assumes. With a fixed EvidenceCount this ratio only grows as
	// ConflictCount accumulates, so the candidate index at which r first
	// crosses MinEvidenceRatio scales with EvidenceCount itself (for
	// EvidenceCount=2, MinEvidenceRatio=3, that's the 6th counter-candidate,
	// not a fixed count) — callers seeding a smaller starting EvidenceCount
	// will cross the threshold earlier.
	r := float64(cctx.Existing.ConflictCount) / math.Max(float64(cctx.Existing.EvidenceCount), 1)

	switch {
	case r >= tuning.MinEvidenceRatio:
		return mmodel.ResolutionToPersonal
	case cctx.Existing.DomainConf < tuning.DriftConfFloor:
		return mmodel.ResolutionToDrift
	default:
		return mmodel.ResolutionKeepExisting
	}
}

// HasConflictingRelationType reports whether the (head, tail) pair
// already carries a Domain relation of a different type than key's,
// the "type conflict" precondition C5 checks before path/ratio analysis
// (§4.5). Exported for the ingest orchestrator, which detects this before
// calling Analyze.
func HasConflictingRelationType(ctx context.Context, tx graph.Transaction, key mmodel.RelationKey) bool {
	rels, err := tx.GetNeighbors(ctx, key.HeadID, "", mmodel.DirOut)
	if err != nil {
		return false
	}

	wantType := mmodel.NamespacedType(mmodel.NamespaceDomain, key.RelType)

	for _, r := range rels {
		if r.TailID != key.TailID {
			continue
		}

		if !strings.HasPrefix(r.RelType, domainPrefix) {
			continue
		}

		if r.RelType != wantType {
			return true
		}
	}

	return false
}

// conflictsWithDomainPath enumerates simple Domain paths from head to
// tail up to maxDepth and reports whether any path's combined sign
// disagrees with the candidate's own polarity (§4.5 "path conflict").
func conflictsWithDomainPath(ctx context.Context, tx graph.Transaction, candidate mmodel.DomainCandidate, maxDepth int) bool {
	if candidate.Polarity == mmodel.PolarityUnknown {
		return false
	}

	for _, sign := range enumerateDomainPathSigns(ctx, tx, candidate.Key.HeadID, candidate.Key.TailID, maxDepth) {
		if sign != candidate.Polarity {
			return true
		}
	}

	return false
}

// enumerateDomainPathSigns walks every simple Domain-namespaced path
// from head to tail up to maxDepth hops via depth-first search,
// returning the combined sign (product of edge signs) of each path that
// reaches tail without crossing an unknown-sign edge.
func enumerateDomainPathSigns(ctx context.Context, tx graph.Transaction, head, tail string, maxDepth int) []mmodel.Polarity {
	if maxDepth <= 0 {
		return nil
	}

	var signs []mmodel.Polarity

	var walk func(node string, combined mmodel.Polarity, visited map[string]bool, depth int)
	walk = func(node string, combined mmodel.Polarity, visited map[string]bool, depth int) {
		if depth >= maxDepth {
			return
		}

		rels, err := tx.GetNeighbors(ctx, node, "", mmodel.DirOut)
		if err != nil {
			return
		}

		for _, r := range rels {
			if !strings.HasPrefix(r.RelType, domainPrefix) {
				continue
			}

			props, ok := decodeDomainProps(r)
			if !ok || props.Sign == mmodel.PolarityUnknown {
				continue
			}

			next := combined
			if depth == 0 {
				next = props.Sign
			} else {
				next = combineSign(combined, props.Sign)
			}

			if r.TailID == tail {
				signs = append(signs, next)
			}

			if visited[r.TailID] {
				continue
			}

			visitedCopy := make(map[string]bool, len(visited)+1)
			for k := range visited {
				visitedCopy[k] = true
			}
			visitedCopy[r.TailID] = true

			walk(r.TailID, next, visitedCopy, depth+1)
		}
	}

	walk(head, mmodel.PolarityUnknown, map[string]bool{head: true}, 0)

	return signs
}

// combineSign multiplies two edge signs to extend a path's sign.
// Neutral is treated as non-inverting.
func combineSign(a, b mmodel.Polarity) mmodel.Polarity {
	if signValue(a)*signValue(b) < 0 {
		return mmodel.PolarityNegative
	}

	return mmodel.PolarityPositive
}

func signValue(p mmodel.Polarity) int {
	if p == mmodel.PolarityNegative {
		return -1
	}

	return 1
}
