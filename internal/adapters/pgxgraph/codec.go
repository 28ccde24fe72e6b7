package pgxgraph

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lerian-kg/kgarbiter/internal/graph"
)

// Rows store props msgpack-encoded, the same round-trip convention the
// in-memory adapter's ChangeRecord snapshots use, so a struct-typed
// props value (e.g. mmodel.DomainRelationProps) decodes back out as
// map[string]any exactly like a rolled-back in-memory relation does —
// domainkg/personalkg's codecs already handle that shape.

func encodeProps(props map[string]any) ([]byte, error) {
	return msgpack.Marshal(props)
}

func decodeProps(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := msgpack.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	return m, nil
}

func entityRow(id string, labels []string, props map[string]any) (*graph.Entity, []byte, error) {
	b, err := encodeProps(props)
	if err != nil {
		return nil, nil, err
	}

	return &graph.Entity{ID: id, Labels: labels, Props: props}, b, nil
}

func relationRow(headID, relType, tailID string, props map[string]any) (*graph.Relation, []byte, error) {
	b, err := encodeProps(props)
	if err != nil {
		return nil, nil, err
	}

	return &graph.Relation{HeadID: headID, RelType: relType, TailID: tailID, Props: props}, b, nil
}

// snapshotEntity/snapshotRelation encode a row for ChangeRecord
// before/after state, mirroring memgraph's snapshot.go convention so the
// two backends' Changes() output is shaped the same way.

func snapshotEntity(e *graph.Entity) []byte {
	if e == nil {
		return nil
	}

	b, err := msgpack.Marshal(e)
	if err != nil {
		panic(err)
	}

	return b
}

func snapshotRelation(r *graph.Relation) []byte {
	if r == nil {
		return nil
	}

	b, err := msgpack.Marshal(r)
	if err != nil {
		panic(err)
	}

	return b
}
