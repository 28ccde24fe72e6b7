// Package config loads the read-only rule files named in spec §6:
// closed enumerations, the alias dictionary, the validation schema, and
// the static domain rulebook, plus the numeric defaults named throughout
// §4 so every threshold and weight is configuration-driven rather than
// hard-coded (§9 open question: "unify under the configuration system").
package config

import "github.com/lerian-kg/kgarbiter/pkg/mmodel"

// LabelTriple is one (head_label, tail_label, relation_type) row in the
// validation schema's allowed/forbidden tables (§4.2 stage 1).
type LabelTriple struct {
	HeadLabel    string `yaml:"head_label"`
	TailLabel    string `yaml:"tail_label"`
	RelationType string `yaml:"relation_type"`
}

// ValidationWeights are the stage-4 combined-confidence weights (§4.2).
type ValidationWeights struct {
	Student  float64 `yaml:"student"`
	Sign     float64 `yaml:"sign"`
	Semantic float64 `yaml:"semantic"`
}

// ValidationThresholds are the stage-4 admission/destination thresholds (§4.2).
type ValidationThresholds struct {
	PersonalCandidate float64 `yaml:"personal_candidate"`
	DomainCandidate   float64 `yaml:"domain_candidate"`
}

// ValidationSchema is `validation_schema` from §6.
type ValidationSchema struct {
	Allowed    []LabelTriple        `yaml:"allowed"`
	Forbidden  []LabelTriple        `yaml:"forbidden"`
	Thresholds ValidationThresholds `yaml:"thresholds"`
	Weights    ValidationWeights    `yaml:"weights"`
}

// StaticRule is one immutable economic/physical fact (§4.3, §6).
type StaticRule struct {
	RuleID      string          `yaml:"rule_id"`
	Head        string          `yaml:"head"`
	Tail        string          `yaml:"tail"`
	Polarity    mmodel.Polarity `yaml:"polarity"`
	Relation    string          `yaml:"relation"`
	Certainty   float64         `yaml:"certainty"`
	Description string          `yaml:"description"`
}

// SignPatterns are the lexical cue lists the pattern oracle uses (§4.2 stage 2).
type SignPatterns struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
	Inverse  []string `yaml:"inverse"`
}

// SemanticPatterns are the lexical cue lists the semantic heuristics use (§4.2 stage 3).
type SemanticPatterns struct {
	Exaggeration           []string `yaml:"exaggeration"`
	CorrelationAsCausation []string `yaml:"correlation_as_causation"`
	WeakEvidence           []string `yaml:"weak_evidence"`
}

// StaticDomain is `static_domain` from §6.
type StaticDomain struct {
	Rules            []StaticRule     `yaml:"static_rules"`
	SignPatterns     SignPatterns     `yaml:"sign_patterns"`
	SemanticPatterns SemanticPatterns `yaml:"semantic_patterns"`
}

// RuleKey returns the canonical (head,tail) lookup key for the static guard.
func (r StaticRule) RuleKey() [2]string { return [2]string{r.Head, r.Tail} }

// IntakeTuning holds the C3 intake drop rules (§4.3).
type IntakeTuning struct {
	MinFragmentLength int      `yaml:"min_fragment_length"`
	OpinionMarkers    []string `yaml:"opinion_markers"`
}

// DynamicUpdateTuning holds the C4 decay/strengthen/weaken defaults (§4.4).
type DynamicUpdateTuning struct {
	DecayDays         int     `yaml:"decay_days"`
	DecayRate         float64 `yaml:"decay_rate"`
	ConfIncreaseRate  float64 `yaml:"conf_increase_rate"`
	ConfDecreaseRate  float64 `yaml:"conf_decrease_rate"`
	InitialDomainConf float64 `yaml:"initial_domain_conf"`
}

// ConflictTuning holds the C5 thresholds (§4.5).
type ConflictTuning struct {
	MinEvidenceRatio float64 `yaml:"min_evidence_ratio"`
	PathDepthLimit   int     `yaml:"path_depth_limit"`
	DriftConfFloor   float64 `yaml:"drift_conf_floor"`
}

// DriftWeights holds the C6 sub-score weights and thresholds (§4.6).
type DriftWeights struct {
	Conflict       float64 `yaml:"conflict"`
	Opposite       float64 `yaml:"opposite"`
	Decay          float64 `yaml:"decay"`
	Semantic       float64 `yaml:"semantic"`
	FlagThreshold  float64 `yaml:"flag_threshold"`
	QAThreshold    float64 `yaml:"qa_threshold"`
	MinTotalSample int     `yaml:"min_total_sample"`
}

// PCSWeights holds the C7 four-factor weights (§4.7).
type PCSWeights struct {
	P1 float64 `yaml:"p1"`
	P2 float64 `yaml:"p2"`
	P3 float64 `yaml:"p3"`
	P4 float64 `yaml:"p4"`
}

// PersonalPatterns are the lexical cue lists the C7 relevance classifier
// uses (§4.7).
type PersonalPatterns struct {
	Emotional  []string `yaml:"emotional"`
	Hypothesis []string `yaml:"hypothesis"`
	Inference  []string `yaml:"inference"`
	Opinion    []string `yaml:"opinion"`
}

// PromotionTuning holds the C9 drift/promotion weights and threshold (§4.9).
type PromotionTuning struct {
	PCSWeight            float64 `yaml:"pcs_weight"`
	ConsistencyWeight    float64 `yaml:"consistency_weight"`
	DomainGapWeight      float64 `yaml:"domain_gap_weight"`
	TimeWeight           float64 `yaml:"time_weight"`
	PromotionThreshold   float64 `yaml:"promotion_threshold"`
	MinOccurrenceForPromo int    `yaml:"min_occurrence_for_promotion"`
}

// ReasoningTuning holds the C10 retrieval/fusion defaults (§4.10).
type ReasoningTuning struct {
	MaxPathLength     int     `yaml:"max_path_length"`
	MaxPaths          int     `yaml:"max_paths"`
	MinDomainPaths    int     `yaml:"min_domain_paths_before_personal"`
	GoldBonus         float64 `yaml:"gold_bonus"`
	PersonalDiscount  float64 `yaml:"personal_discount_with_domain"`
	DirectionEpsilon  float64 `yaml:"direction_epsilon"`
}

// Config aggregates every sub-config the engine loads at start (§6).
type Config struct {
	EntityTypes     []string         `yaml:"entity_types"`
	RelationTypes   []string         `yaml:"relation_types"`
	AliasDictionary map[string]string `yaml:"alias_dictionary"`

	ValidationSchema ValidationSchema `yaml:"validation_schema"`
	StaticDomain     StaticDomain     `yaml:"static_domain"`

	Intake        IntakeTuning        `yaml:"intake"`
	DynamicUpdate DynamicUpdateTuning `yaml:"dynamic_update"`
	Conflict      ConflictTuning      `yaml:"conflict"`
	Drift         DriftWeights        `yaml:"drift"`
	PCS           PCSWeights          `yaml:"pcs"`
	PersonalPatterns PersonalPatterns `yaml:"personal_patterns"`
	Promotion     PromotionTuning     `yaml:"promotion"`
	Reasoning     ReasoningTuning     `yaml:"reasoning"`
}

// StaticRuleIndex is a precomputed (head,tail) -> rule lookup built once
// at load time (§4.3 "precomputed map").
type StaticRuleIndex map[[2]string]StaticRule

// BuildStaticRuleIndex precomputes the static guard's lookup table.
func (c *Config) BuildStaticRuleIndex() StaticRuleIndex {
	idx := make(StaticRuleIndex, len(c.StaticDomain.Rules))
	for _, r := range c.StaticDomain.Rules {
		idx[r.RuleKey()] = r
	}

	return idx
}
