package mmodel

// RejectionCode is a machine-readable reason a raw edge was dropped (§4.2).
type RejectionCode string

const (
	RejectMissingField        RejectionCode = "MISSING_FIELD"
	RejectUnknownRelationType RejectionCode = "UNKNOWN_RELATION_TYPE"
	RejectSelfLoop            RejectionCode = "SELF_LOOP"
	RejectForbiddenLabelPair  RejectionCode = "FORBIDDEN_LABEL_PAIR"
	RejectSignTag             RejectionCode = "SIGN_TAG_NOT_ADMITTED"
	RejectSemanticTag         RejectionCode = "SEMANTIC_TAG_NOT_ADMITTED"
	RejectBelowThreshold      RejectionCode = "COMBINED_BELOW_THRESHOLD"
)

// SchemaResult is the outcome of validation stage 1 (§4.2).
type SchemaResult struct {
	Valid   bool
	Code    RejectionCode
	Reason  string
}

// SignResult is the outcome of validation stage 2 (§4.2).
type SignResult struct {
	Tag      SignTag
	Polarity Polarity
}

// SemanticResult is the outcome of validation stage 3 (§4.2).
type SemanticResult struct {
	Tag                  SemanticTag
	HasExaggeration      bool
	CorrelationAsCausation bool
	WeakEvidence         bool
	DomainConflict       bool
}

// ValidationResult is the single output of the four-stage C2 pipeline.
type ValidationResult struct {
	Schema        SchemaResult
	Sign          SignResult
	Semantic      SemanticResult
	Combined      float64
	Destination   Destination
	Rejections    []RejectionCode
	StaticConflict bool
}

// Admitted reports whether the edge passed all four admission rules (§4.2).
func (v ValidationResult) Admitted() bool {
	return v.Destination == DestinationDomainCandidate || v.Destination == DestinationPersonalCandidate
}

// DomainCandidate is the normalised form of an admitted edge routed toward
// the Domain KG (§4.3).
type DomainCandidate struct {
	Key           RelationKey
	Polarity      Polarity
	// AssertedPolarity is what the edge itself claims, sign-detector result
	// over student guess (§4.3 "sign/student" precedence), before any
	// static rule override. StaticGuard compares this against the rule to
	// detect disagreement; Polarity may already equal the rule's polarity
	// by the time a candidate reaches StaticGuard.
	AssertedPolarity Polarity
	SemanticTag   SemanticTag
	StudentConf   float64
	FragmentID    string
	EvidenceSource string // "extraction" | "personal_promotion"
}

// PersonalCandidate is the normalised form of an edge routed toward the
// Personal KG, either directly from C2 or rejected by C3/C5 (§4.7).
type PersonalCandidate struct {
	Key           RelationKey
	UserID        string
	Polarity      Polarity
	SemanticTag   SemanticTag
	StudentConf   float64
	FragmentText  string
	FragmentID    string
	SourceType    SourceType
	RelevanceType RelevanceType
}

// ChangeRecord captures one mutating repository call inside a transaction,
// with enough before/after state to invert it (§3, §4.1).
type ChangeRecord struct {
	Operation   ChangeOperation
	EntityID    string
	RelKey      *RelationKey
	BeforeState []byte // msgpack snapshot, nil if the row did not exist
	AfterState  []byte // msgpack snapshot, nil if the row was deleted
}
