package mmodel

import "time"

// DomainRelationProps is the struct-typed payload of a Dynamic Domain
// Relation (§3). Invariants: 0.10 <= DomainConf <= 0.95, EvidenceCount >= 1,
// ConflictCount >= 0, the key triple never changes across updates.
type DomainRelationProps struct {
	Sign                   Polarity      `msgpack:"sign"`
	DomainConf             float64       `msgpack:"domain_conf"`
	EvidenceCount          int           `msgpack:"evidence_count"`
	ConflictCount          int           `msgpack:"conflict_count"`
	CreatedAt              time.Time     `msgpack:"created_at"`
	LastUpdate             time.Time     `msgpack:"last_update"`
	SemanticTags           []SemanticTag `msgpack:"semantic_tags"`
	DecayApplied           bool          `msgpack:"decay_applied"`
	DriftFlag              bool          `msgpack:"drift_flag"`
	NeedConflictResolution bool          `msgpack:"need_conflict_resolution"`
	Origin                 string        `msgpack:"origin"`
	Gold                   bool          `msgpack:"gold"`
}

// HasSemanticTag reports whether tag is already recorded.
func (p *DomainRelationProps) HasSemanticTag(tag SemanticTag) bool {
	for _, t := range p.SemanticTags {
		if t == tag {
			return true
		}
	}

	return false
}

// AppendSemanticTag appends tag if it is not already present.
func (p *DomainRelationProps) AppendSemanticTag(tag SemanticTag) {
	if !p.HasSemanticTag(tag) {
		p.SemanticTags = append(p.SemanticTags, tag)
	}
}

// Clamp enforces the 0.10-0.95 domain_conf invariant (§3).
func (p *DomainRelationProps) Clamp() {
	if p.DomainConf < 0.10 {
		p.DomainConf = 0.10
	}

	if p.DomainConf > 0.95 {
		p.DomainConf = 0.95
	}
}

// HistoryEvent is one append-only entry in a Personal relation's history.
type HistoryEvent struct {
	Kind      string    `msgpack:"kind"` // created|updated|promoted_to_domain
	At        time.Time `msgpack:"at"`
	PCS       float64   `msgpack:"pcs"`
	Note      string    `msgpack:"note"`
}

// PCSSample is one point in a Personal relation's drift time series.
type PCSSample struct {
	At  time.Time `msgpack:"at"`
	PCS float64   `msgpack:"pcs"`
}

// PersonalRelationProps is the struct-typed payload of a Personal Relation
// (§3). Hard invariant: never deleted; updates only append to History.
type PersonalRelationProps struct {
	UserID              string          `msgpack:"user_id"`
	Sign                Polarity        `msgpack:"sign"`
	PCSScore            float64         `msgpack:"pcs_score"`
	PersonalWeight      float64         `msgpack:"personal_weight"`
	PersonalLabel       PersonalLabel   `msgpack:"personal_label"`
	OccurrenceCount     int             `msgpack:"occurrence_count"`
	SourceType          SourceType      `msgpack:"source_type"`
	RelevanceTypes      []RelevanceType `msgpack:"relevance_types"`
	History             []HistoryEvent  `msgpack:"history"`
	PCSHistory          []PCSSample     `msgpack:"pcs_history"`
	DomainConflictCount int             `msgpack:"domain_conflict_count"`
	PromotionCandidate  bool            `msgpack:"promotion_candidate"`
	DriftFlag           bool            `msgpack:"drift_flag"`
	CreatedAt           time.Time       `msgpack:"created_at"`
}

// HasRelevance reports whether rt is already recorded.
func (p *PersonalRelationProps) HasRelevance(rt RelevanceType) bool {
	for _, r := range p.RelevanceTypes {
		if r == rt {
			return true
		}
	}

	return false
}

// AppendRelevance deduplicates relevance types on append (§4.8).
func (p *PersonalRelationProps) AppendRelevance(rt RelevanceType) {
	if !p.HasRelevance(rt) {
		p.RelevanceTypes = append(p.RelevanceTypes, rt)
	}
}

// AppendHistory appends an event and its PCS sample; history is never
// truncated or rewritten (§3 hard invariant).
func (p *PersonalRelationProps) AppendHistory(kind string, at time.Time, pcs float64, note string) {
	p.History = append(p.History, HistoryEvent{Kind: kind, At: at, PCS: pcs, Note: note})
	p.PCSHistory = append(p.PCSHistory, PCSSample{At: at, PCS: pcs})
}

// HistorySpan returns the duration between the first and last history
// event, used by the time_factor in §4.9.
func (p *PersonalRelationProps) HistorySpan() time.Duration {
	if len(p.History) < 2 {
		return 0
	}

	return p.History[len(p.History)-1].At.Sub(p.History[0].At)
}
