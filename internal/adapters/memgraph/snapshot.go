package memgraph

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/lerian-kg/kgarbiter/internal/graph"
)

// entitySnapshot/relationSnapshot encode rows for ChangeRecord
// before/after state so Rollback can reconstruct a prior row without a
// reflection-based deep copy (§3, §9).

func encodeEntity(e *graph.Entity) []byte {
	if e == nil {
		return nil
	}

	b, err := msgpack.Marshal(e)
	if err != nil {
		// Props are expected to be msgpack-safe (primitives, strings,
		// slices/maps thereof); a marshal failure here means a caller put
		// an unsupported value in props, not a transient storage fault.
		panic(err)
	}

	return b
}

func decodeEntity(b []byte) *graph.Entity {
	if b == nil {
		return nil
	}

	var e graph.Entity
	if err := msgpack.Unmarshal(b, &e); err != nil {
		panic(err)
	}

	return &e
}

func encodeRelation(r *graph.Relation) []byte {
	if r == nil {
		return nil
	}

	b, err := msgpack.Marshal(r)
	if err != nil {
		panic(err)
	}

	return b
}

func decodeRelation(b []byte) *graph.Relation {
	if b == nil {
		return nil
	}

	var r graph.Relation
	if err := msgpack.Unmarshal(b, &r); err != nil {
		panic(err)
	}

	return &r
}
