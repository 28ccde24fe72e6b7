package mmodel

import "fmt"

// Entity is the shared shape for both Domain and Personal entities: a
// canonical identifier, a display name, and a label set (§3).
type Entity struct {
	ID     string         `msgpack:"id"`
	Name   string         `msgpack:"name"`
	Labels []string       `msgpack:"labels"`
	Props  map[string]any `msgpack:"props"`
}

// HasLabel reports whether the entity carries the given label.
func (e *Entity) HasLabel(label string) bool {
	if e == nil {
		return false
	}

	for _, l := range e.Labels {
		if l == label {
			return true
		}
	}

	return false
}

// RelationKey identifies a Domain or Personal relation row. Relations are
// namespaced by RelType's prefix (e.g. "domain:Affect") and keyed by the
// triple (head, tail, relation type) per §3.
type RelationKey struct {
	HeadID string
	TailID string
	RelType string
}

// String renders the key as "head-[relType]->tail" for logs and errors.
func (k RelationKey) String() string {
	return fmt.Sprintf("%s-[%s]->%s", k.HeadID, k.RelType, k.TailID)
}

// NamespacedType prefixes a bare relation type with its KG namespace, e.g.
// "domain:Affect" or "personal:Cause" (§3).
func NamespacedType(ns Namespace, relType string) string {
	return string(ns) + ":" + relType
}
