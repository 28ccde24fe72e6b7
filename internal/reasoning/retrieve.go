package reasoning

import (
	"context"
	"strings"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/domainkg"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/internal/personalkg"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// edgeHop is one namespaced relation found while walking the graph,
// carrying enough to turn into a mmodel.RetrievedEdge once a full path
// to the query's tail is known.
type edgeHop struct {
	headID string
	tailID string
	relRaw *graph.Relation
	source mmodel.EvidenceSource
}

// retrieveDomain is step (b) of §4.10's Retrieve: BFS/DFS over
// domain-namespaced relations from head to tail, deduplicated by node
// sequence, cycle-free, capped at tuning.MaxPaths and tuning.MaxPathLength.
func retrieveDomain(ctx context.Context, repo graph.Repository, tuning config.ReasoningTuning, head, tail string) []mmodel.Path {
	var paths []mmodel.Path

	seenSeq := map[string]bool{}
	visited := map[string]bool{head: true}

	var walk func(node string, hops []edgeHop)
	walk = func(node string, hops []edgeHop) {
		if len(paths) >= tuning.MaxPaths {
			return
		}

		if len(hops) >= tuning.MaxPathLength {
			return
		}

		neighbors, err := repo.GetNeighbors(ctx, node, "", mmodel.DirOut)
		if err != nil {
			return
		}

		for _, rel := range neighbors {
			if !isNamespace(rel.RelType, mmodel.NamespaceDomain) {
				continue
			}

			if visited[rel.TailID] {
				continue
			}

			nextHops := append(append([]edgeHop{}, hops...), edgeHop{
				headID: rel.HeadID, tailID: rel.TailID, relRaw: rel, source: mmodel.EvidenceDomain,
			})

			if rel.TailID == tail {
				path := buildPath(ctx, repo, nextHops)

				seq := strings.Join(path.Nodes, "\x00")
				if !seenSeq[seq] {
					seenSeq[seq] = true
					paths = append(paths, path)
				}

				if len(paths) >= tuning.MaxPaths {
					return
				}

				continue
			}

			visited[rel.TailID] = true
			walk(rel.TailID, nextHops)
			delete(visited, rel.TailID)
		}
	}

	walk(head, nil)

	return paths
}

// retrievePersonal mirrors retrieveDomain over personal-namespaced
// relations; called only when Domain retrieval falls short (§4.10 step c).
// Unlike retrieveDomain, it keeps paths that share a node sequence.
func retrievePersonal(ctx context.Context, repo graph.Repository, tuning config.ReasoningTuning, head, tail string) []mmodel.Path {
	var paths []mmodel.Path

	visited := map[string]bool{head: true}

	var walk func(node string, hops []edgeHop)
	walk = func(node string, hops []edgeHop) {
		if len(paths) >= tuning.MaxPaths {
			return
		}

		if len(hops) >= tuning.MaxPathLength {
			return
		}

		neighbors, err := repo.GetNeighbors(ctx, node, "", mmodel.DirOut)
		if err != nil {
			return
		}

		for _, rel := range neighbors {
			if !isNamespace(rel.RelType, mmodel.NamespacePersonal) {
				continue
			}

			if visited[rel.TailID] {
				continue
			}

			nextHops := append(append([]edgeHop{}, hops...), edgeHop{
				headID: rel.HeadID, tailID: rel.TailID, relRaw: rel, source: mmodel.EvidencePersonal,
			})

			if rel.TailID == tail {
				paths = append(paths, buildPath(ctx, repo, nextHops))

				if len(paths) >= tuning.MaxPaths {
					return
				}

				continue
			}

			visited[rel.TailID] = true
			walk(rel.TailID, nextHops)
			delete(visited, rel.TailID)
		}
	}

	walk(head, nil)

	return paths
}

func isNamespace(relType string, ns mmodel.Namespace) bool {
	prefix := string(ns) + ":"

	return len(relType) > len(prefix) && relType[:len(prefix)] == prefix
}

func buildPath(ctx context.Context, repo graph.Repository, hops []edgeHop) mmodel.Path {
	nodes := make([]string, 0, len(hops)+1)
	edges := make([]mmodel.RetrievedEdge, 0, len(hops))

	for i, h := range hops {
		if i == 0 {
			nodes = append(nodes, h.headID)
		}

		nodes = append(nodes, h.tailID)
		edges = append(edges, toRetrievedEdge(ctx, repo, h))
	}

	return mmodel.Path{Edges: edges, Nodes: nodes}
}

func toRetrievedEdge(ctx context.Context, repo graph.Repository, h edgeHop) mmodel.RetrievedEdge {
	edge := mmodel.RetrievedEdge{
		HeadID: h.headID, TailID: h.tailID, RelType: h.relRaw.RelType, Source: h.source,
	}

	switch h.source {
	case mmodel.EvidenceDomain:
		props, ok := domainkg.DecodeProps(h.relRaw)
		if !ok {
			edge.Sign = mmodel.PolarityUnknown
			return edge
		}

		edge.Sign = props.Sign
		edge.DomainConf = props.DomainConf
		edge.EvidenceCount = props.EvidenceCount
		edge.SemanticTags = props.SemanticTags
		edge.DecayApplied = props.DecayApplied
		edge.Gold = props.Gold
		edge.LastUpdate = props.LastUpdate
	case mmodel.EvidencePersonal:
		props, ok := personalkg.DecodeProps(h.relRaw)
		if !ok {
			edge.Sign = mmodel.PolarityUnknown
			return edge
		}

		edge.Sign = props.Sign
		edge.PCSScore = props.PCSScore
		edge.PersonalWeight = props.PersonalWeight
		edge.HasDomainAlso = domainInstanceExists(ctx, repo, h)
	}

	return edge
}

// domainInstanceExists reports whether the same (head, tail, rel_type)
// triple this Personal edge carries also has a Domain-namespaced
// instance, the "conflict case" whose personal weight §4.10's EES
// discounts to 0.3x. The Personal edge carries no Domain fields of its
// own, so its Domain weight is 0 and fuseEdge never replaces its weight
// with W_D; it keeps the discounted personal weight.
func domainInstanceExists(ctx context.Context, repo graph.Repository, h edgeHop) bool {
	bareType := h.relRaw.RelType[len(string(mmodel.NamespacePersonal))+1:]
	_, found := repo.GetRelation(ctx, h.headID, mmodel.NamespacedType(mmodel.NamespaceDomain, bareType), h.tailID)

	return found
}
