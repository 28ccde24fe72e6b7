package domainkg

import (
	"context"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// Probe adapts a repository handle into personalkg.DomainProbe and
// validation.DomainLookup, without either package importing domainkg
// (§9 "cyclic KG references... adapters hold non-owning repository
// handles"). repo may be the shared Repository (bootstrap-time, one per
// process, read-only callers) or a single in-flight Transaction, since
// Transaction embeds Repository.
type Probe struct {
	ctx  context.Context
	repo graph.Repository
}

// NewProbe builds a read-only Domain lookup scoped to ctx and repo.
func NewProbe(ctx context.Context, repo graph.Repository) Probe {
	return Probe{ctx: ctx, repo: repo}
}

// DomainState satisfies personalkg.DomainProbe.
func (p Probe) DomainState(key mmodel.RelationKey) (mmodel.Polarity, float64, bool) {
	relType := mmodel.NamespacedType(mmodel.NamespaceDomain, key.RelType)

	rel, found := p.repo.GetRelation(p.ctx, key.HeadID, relType, key.TailID)
	if !found {
		return mmodel.PolarityUnknown, 0, false
	}

	props, ok := DecodeProps(rel)
	if !ok {
		return mmodel.PolarityUnknown, 0, false
	}

	return props.Sign, props.DomainConf, true
}

// DomainSign satisfies validation.DomainLookup, the narrower read-only
// view C2's semantic stage uses to detect domain_conflict (§4.2 stage 3).
func (p Probe) DomainSign(ctx context.Context, key mmodel.RelationKey) (mmodel.Polarity, bool) {
	relType := mmodel.NamespacedType(mmodel.NamespaceDomain, key.RelType)

	rel, found := p.repo.GetRelation(ctx, key.HeadID, relType, key.TailID)
	if !found {
		return mmodel.PolarityUnknown, false
	}

	props, ok := DecodeProps(rel)
	if !ok {
		return mmodel.PolarityUnknown, false
	}

	return props.Sign, true
}
