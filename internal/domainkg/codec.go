// Package domainkg implements the Domain KG's four components: intake
// and the static guard (C3), the dynamic confidence update (C4), the
// conflict analyzer (C5), and the drift detector (C6). All four operate
// against a single caller-supplied graph.Transaction so a batch of
// related edges lands or rolls back together (§4.3-§4.6).
package domainkg

import (
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// propsKey is the single map key a Domain relation's structured payload
// lives under in graph.Relation.Props; storing the whole struct there
// (rather than flattening each field into its own map key) makes every
// update a clean single-key overwrite instead of a field-by-field merge.
const propsKey = "domain"

func encodeDomainProps(p mmodel.DomainRelationProps) map[string]any {
	return map[string]any{propsKey: p}
}

// EncodeProps is encodeDomainProps exported for the Domain bootstrap
// loader (§6 "Domain bootstrap files"), which seeds relations directly
// through the repository rather than through Intake/Update.
func EncodeProps(p mmodel.DomainRelationProps) map[string]any {
	return encodeDomainProps(p)
}

// decodeDomainProps reads back the structured payload from a stored
// relation. Relations round-tripped through a transaction's msgpack
// snapshot decode as map[string]any rather than the original struct, so
// both shapes are handled.
func decodeDomainProps(r *graph.Relation) (mmodel.DomainRelationProps, bool) {
	if r == nil {
		return mmodel.DomainRelationProps{}, false
	}

	raw, ok := r.Props[propsKey]
	if !ok {
		return mmodel.DomainRelationProps{}, false
	}

	switch v := raw.(type) {
	case mmodel.DomainRelationProps:
		return v, true
	case map[string]any:
		return decodeFromMap(v), true
	default:
		return mmodel.DomainRelationProps{}, false
	}
}

// DecodeProps is decodeDomainProps exported for the reasoning core's
// read-only retrieval stage (§4.10).
func DecodeProps(r *graph.Relation) (mmodel.DomainRelationProps, bool) {
	return decodeDomainProps(r)
}

func decodeFromMap(m map[string]any) mmodel.DomainRelationProps {
	var p mmodel.DomainRelationProps

	if v, ok := m["sign"].(string); ok {
		p.Sign = mmodel.Polarity(v)
	}
	if v, ok := m["domain_conf"].(float64); ok {
		p.DomainConf = v
	}
	if v, ok := toInt(m["evidence_count"]); ok {
		p.EvidenceCount = v
	}
	if v, ok := toInt(m["conflict_count"]); ok {
		p.ConflictCount = v
	}
	if v, ok := m["decay_applied"].(bool); ok {
		p.DecayApplied = v
	}
	if v, ok := m["drift_flag"].(bool); ok {
		p.DriftFlag = v
	}
	if v, ok := m["need_conflict_resolution"].(bool); ok {
		p.NeedConflictResolution = v
	}
	if v, ok := m["origin"].(string); ok {
		p.Origin = v
	}
	if v, ok := m["gold"].(bool); ok {
		p.Gold = v
	}
	if tags, ok := m["semantic_tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				p.SemanticTags = append(p.SemanticTags, mmodel.SemanticTag(s))
			}
		}
	}

	return p
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
