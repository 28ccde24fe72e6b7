package mmodel

import "time"

// RetrievedEdge is one edge surfaced by C10's retrieval stage, carrying
// whatever a Domain or Personal row contributes to fusion (§4.10).
type RetrievedEdge struct {
	RelationID    string
	HeadID        string
	TailID        string
	RelType       string
	Sign          Polarity
	DomainConf    float64
	PCSScore      float64
	PersonalWeight float64
	EvidenceCount int
	SemanticTags  []SemanticTag
	DecayApplied  bool
	Gold          bool
	Source        EvidenceSource
	HasDomainAlso bool // personal edge whose key also exists in Domain (conflict case)
	LastUpdate    time.Time
}

// Path is a sequence of retrieved edges from a query's head entity to its
// tail entity.
type Path struct {
	Edges  []RetrievedEdge
	Nodes  []string
	Weight float64
	Sign   Polarity // PolarityUnknown marks a dropped/undefined-sign path
}

// ConfidenceBand buckets a numeric confidence for natural-language rendering.
type ConfidenceBand string

const (
	BandVeryLow  ConfidenceBand = "very-low"
	BandLow      ConfidenceBand = "low"
	BandMedium   ConfidenceBand = "medium"
	BandHigh     ConfidenceBand = "high"
	BandVeryHigh ConfidenceBand = "very-high"
)

// BandForConfidence maps a [0,1] confidence to a band (§4.10 "Conclude").
func BandForConfidence(c float64) ConfidenceBand {
	switch {
	case c < 0.2:
		return BandVeryLow
	case c < 0.4:
		return BandLow
	case c < 0.6:
		return BandMedium
	case c < 0.8:
		return BandHigh
	default:
		return BandVeryHigh
	}
}

// Conclusion is the final answer returned by the Query API (§6, §4.10).
type Conclusion struct {
	Text             string
	Direction        Direction
	Confidence       float64
	Band             ConfidenceBand
	StrongestPath    *Path
	EvidenceRatio    float64
	PathsUsed        int
	ConflictingPaths int
	PositiveEvidence float64
	NegativeEvidence float64
}
