// Package extract models the extractor boundary named in §1/§6: raw-text
// fragmentation, NER, entity resolution, and raw-edge emission are out of
// scope for this engine. Extractor is the seam a caller plugs a real NLP
// pipeline into; StubExtractor only exists to exercise the seam in tests
// and is explicitly not a product implementation.
package extract

import (
	"context"

	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// Extractor turns a raw-text fragment into zero or more RawEdges plus
// the resolved entities those edges reference. Real implementations
// (NER, coreference resolution, relation extraction) are out of scope.
type Extractor interface {
	Extract(ctx context.Context, fragmentID, text string) ([]mmodel.RawEdge, []mmodel.Entity, error)
}

// StubExtractor returns a fixed set of edges/entities regardless of
// input text, for wiring tests that need an Extractor without a real
// NLP pipeline behind it.
type StubExtractor struct {
	Edges    []mmodel.RawEdge
	Entities []mmodel.Entity
}

var _ Extractor = StubExtractor{}

func (s StubExtractor) Extract(_ context.Context, fragmentID, _ string) ([]mmodel.RawEdge, []mmodel.Entity, error) {
	edges := make([]mmodel.RawEdge, len(s.Edges))
	for i, e := range s.Edges {
		e.FragmentID = fragmentID
		edges[i] = e
	}

	return edges, s.Entities, nil
}
