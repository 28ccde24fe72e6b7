package mmodel

// RawEdge is the input to the Validation Arbiter (C2). Head and tail are
// already-resolved canonical entity IDs; the extractor (out of scope, §1)
// is responsible for resolution.
type RawEdge struct {
	HeadID         string       `msgpack:"head_id"`
	TailID         string       `msgpack:"tail_id"`
	RelationType   RelationType `msgpack:"relation_type"`
	PolarityGuess  Polarity     `msgpack:"polarity_guess"`
	StudentConf    float64      `msgpack:"student_conf"`
	FragmentText   string       `msgpack:"fragment_text"`
	FragmentID     string       `msgpack:"fragment_id"`
	HeadLabel      string       `msgpack:"head_label"`
	TailLabel      string       `msgpack:"tail_label"`
}

// SelfLoop reports whether the edge's head and tail are the same entity,
// which is always a schema failure (§3, §8).
func (e RawEdge) SelfLoop() bool {
	return e.HeadID != "" && e.HeadID == e.TailID
}
