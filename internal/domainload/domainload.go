// Package domainload reads the Domain bootstrap files named in §6
// ("data/domain/entities.json", "data/domain/relations.json") and seeds
// a fresh repository with them. This is the only path allowed to write
// Domain relations outside the normal C3/C4 intake/update pipeline,
// since it runs once at startup before any transaction exists.
package domainload

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/domainkg"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/merrors"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// EntityRecord is one row of entities.json: `{id, props}`.
type EntityRecord struct {
	ID    string         `json:"id"`
	Props map[string]any `json:"props"`
}

// RelationRecord is one row of relations.json: `{head_id, tail_id, type, props}`.
type RelationRecord struct {
	HeadID string         `json:"head_id"`
	TailID string         `json:"tail_id"`
	Type   string         `json:"type"`
	Props  map[string]any `json:"props"`
}

// Seed reads entities.json and relations.json from dir and upserts them
// into repo under the DomainEntity label and "domain:<type>" relation
// type (§6). Missing files are not an error: a host may seed Domain
// entirely through the normal ingest pipeline instead.
func Seed(ctx context.Context, repo graph.Repository, tuning config.DynamicUpdateTuning, dir string) error {
	entities, err := loadEntities(filepath.Join(dir, "entities.json"))
	if err != nil {
		return err
	}

	for _, e := range entities {
		if _, err := repo.UpsertEntity(ctx, e.ID, []string{mmodel.LabelDomainEntity}, e.Props); err != nil {
			return merrors.NewStorageError("domainload.seed_entity", err)
		}
	}

	relations, err := loadRelations(filepath.Join(dir, "relations.json"))
	if err != nil {
		return err
	}

	for _, r := range relations {
		relType := mmodel.NamespacedType(mmodel.NamespaceDomain, r.Type)
		props := relationProps(tuning, r.Props)

		if _, err := repo.UpsertRelation(ctx, r.HeadID, relType, r.TailID, domainkg.EncodeProps(props)); err != nil {
			return merrors.NewStorageError("domainload.seed_relation", err)
		}
	}

	return nil
}

func loadEntities(path string) ([]EntityRecord, error) {
	var records []EntityRecord
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func loadRelations(path string) ([]RelationRecord, error) {
	var records []RelationRecord
	if err := readJSON(path, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func readJSON(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return merrors.NewConfigError(path, err)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return merrors.NewConfigError(path, err)
	}

	return nil
}

// relationProps builds a DomainRelationProps from the loose JSON props
// map, falling back to the engine defaults for anything the bootstrap
// file leaves unset.
func relationProps(tuning config.DynamicUpdateTuning, raw map[string]any) mmodel.DomainRelationProps {
	p := mmodel.DomainRelationProps{
		Sign:          mmodel.PolarityUnknown,
		DomainConf:    tuning.InitialDomainConf,
		EvidenceCount: 1,
		CreatedAt:     time.Now(),
		LastUpdate:    time.Now(),
		Origin:        "bootstrap",
		Gold:          true,
	}

	if v, ok := raw["sign"].(string); ok {
		p.Sign = mmodel.Polarity(v)
	}

	if v, ok := raw["domain_conf"].(float64); ok {
		p.DomainConf = v
	}

	if v, ok := raw["evidence_count"].(float64); ok {
		p.EvidenceCount = int(v)
	}

	if v, ok := raw["gold"].(bool); ok {
		p.Gold = v
	}

	if tags, ok := raw["semantic_tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				p.AppendSemanticTag(mmodel.SemanticTag(s))
			}
		}
	}

	return p
}
