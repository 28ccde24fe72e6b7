package personalkg

import (
	"time"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// propsKey mirrors domainkg's codec convention: the whole structured
// payload lives under one map key so every update is a clean overwrite.
const propsKey = "personal"

func encodePersonalProps(p mmodel.PersonalRelationProps) map[string]any {
	return map[string]any{propsKey: p}
}

// decodePersonalProps reads back the structured payload from a stored
// relation. Relations round-tripped through a transaction's msgpack
// snapshot decode as map[string]any rather than the original struct, so
// both shapes are handled (mirrors domainkg.decodeDomainProps).
func decodePersonalProps(r *graph.Relation) (mmodel.PersonalRelationProps, bool) {
	if r == nil {
		return mmodel.PersonalRelationProps{}, false
	}

	raw, ok := r.Props[propsKey]
	if !ok {
		return mmodel.PersonalRelationProps{}, false
	}

	switch v := raw.(type) {
	case mmodel.PersonalRelationProps:
		return v, true
	case map[string]any:
		return decodeFromMap(v), true
	default:
		return mmodel.PersonalRelationProps{}, false
	}
}

func decodeFromMap(m map[string]any) mmodel.PersonalRelationProps {
	var p mmodel.PersonalRelationProps

	if v, ok := m["user_id"].(string); ok {
		p.UserID = v
	}
	if v, ok := m["sign"].(string); ok {
		p.Sign = mmodel.Polarity(v)
	}
	if v, ok := m["pcs_score"].(float64); ok {
		p.PCSScore = v
	}
	if v, ok := m["personal_weight"].(float64); ok {
		p.PersonalWeight = v
	}
	if v, ok := m["personal_label"].(string); ok {
		p.PersonalLabel = mmodel.PersonalLabel(v)
	}
	if v, ok := toInt(m["occurrence_count"]); ok {
		p.OccurrenceCount = v
	}
	if v, ok := m["source_type"].(string); ok {
		p.SourceType = mmodel.SourceType(v)
	}
	if v, ok := toInt(m["domain_conflict_count"]); ok {
		p.DomainConflictCount = v
	}
	if v, ok := m["promotion_candidate"].(bool); ok {
		p.PromotionCandidate = v
	}
	if v, ok := m["drift_flag"].(bool); ok {
		p.DriftFlag = v
	}
	if v, ok := m["created_at"].(time.Time); ok {
		p.CreatedAt = v
	}
	if types, ok := m["relevance_types"].([]any); ok {
		for _, t := range types {
			if s, ok := t.(string); ok {
				p.RelevanceTypes = append(p.RelevanceTypes, mmodel.RelevanceType(s))
			}
		}
	}
	if events, ok := m["history"].([]any); ok {
		for _, e := range events {
			em, ok := e.(map[string]any)
			if !ok {
				continue
			}

			var h mmodel.HistoryEvent
			if v, ok := em["kind"].(string); ok {
				h.Kind = v
			}
			if v, ok := em["at"].(time.Time); ok {
				h.At = v
			}
			if v, ok := em["pcs"].(float64); ok {
				h.PCS = v
			}
			if v, ok := em["note"].(string); ok {
				h.Note = v
			}

			p.History = append(p.History, h)
		}
	}
	if samples, ok := m["pcs_history"].([]any); ok {
		for _, s := range samples {
			sm, ok := s.(map[string]any)
			if !ok {
				continue
			}

			var sample mmodel.PCSSample
			if v, ok := sm["at"].(time.Time); ok {
				sample.At = v
			}
			if v, ok := sm["pcs"].(float64); ok {
				sample.PCS = v
			}

			p.PCSHistory = append(p.PCSHistory, sample)
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

// DecodeProps is decodePersonalProps exported for the reasoning core's
// read-only retrieval stage (§4.10).
func DecodeProps(r *graph.Relation) (mmodel.PersonalRelationProps, bool) {
	return decodePersonalProps(r)
}
