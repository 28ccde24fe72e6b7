package bootstrap

import (
	"context"
	"fmt"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/internal/ingest"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// ProcessEdge runs one raw edge through the full pipeline (validate,
// then ingest) inside a single transaction, committing on success and
// rolling back on any storage failure — the "Batch form: wrap in one
// transaction" scoped-acquisition pattern of §4.1, applied here to a
// single edge for callers that do not need to batch.
func (e *Engine) ProcessEdge(ctx context.Context, edge mmodel.RawEdge, entities []mmodel.Entity, userID string, sourceType mmodel.SourceType) (ingest.Result, error) {
	var result ingest.Result

	err := e.TxManager.WithTransaction(ctx, func(tx graph.Transaction) error {
		validated, err := e.Arbiter.Validate(ctx, edge)
		if err != nil {
			return fmt.Errorf("validate: %w", err)
		}

		result, err = e.Ingest.Process(ctx, tx, edge, validated, entities, userID, sourceType)

		return err
	})

	return result, err
}

// EdgeInput bundles one raw edge with the entities/provenance ingest
// needs alongside it, so ProcessBatch can carry a distinct entity set
// per edge instead of assuming one shared set for the whole batch.
type EdgeInput struct {
	Edge       mmodel.RawEdge
	Entities   []mmodel.Entity
	UserID     string
	SourceType mmodel.SourceType
}

// ProcessBatch runs every input through ProcessEdge's pipeline inside
// one shared transaction (§4.1 "Batch form"), so a failure partway
// through rolls back every edge in the batch rather than leaving a
// partial write.
func (e *Engine) ProcessBatch(ctx context.Context, inputs []EdgeInput) ([]ingest.Result, error) {
	results := make([]ingest.Result, 0, len(inputs))

	err := e.TxManager.WithTransaction(ctx, func(tx graph.Transaction) error {
		for _, in := range inputs {
			validated, err := e.Arbiter.Validate(ctx, in.Edge)
			if err != nil {
				return fmt.Errorf("validate %s->%s: %w", in.Edge.HeadID, in.Edge.TailID, err)
			}

			r, err := e.Ingest.Process(ctx, tx, in.Edge, validated, in.Entities, in.UserID, in.SourceType)
			if err != nil {
				return fmt.Errorf("ingest %s->%s: %w", in.Edge.HeadID, in.Edge.TailID, err)
			}

			results = append(results, r)
		}

		return nil
	})

	return results, err
}

// Conclude answers questionText against the current graph state (§4.10).
func (e *Engine) Conclude(ctx context.Context, questionText string) (mmodel.Conclusion, error) {
	return e.Reasoner.Conclude(ctx, questionText)
}
