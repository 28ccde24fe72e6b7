package pgxgraph

import (
	"context"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/pkg/merrors"
	"github.com/lerian-kg/kgarbiter/pkg/mmodel"
)

// querier is the subset of pgxpool.Pool and pgx.Tx that the query
// builders below need, so the same functions serve both the
// non-transactional Repository and the transactional Transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func upsertEntity(ctx context.Context, q querier, id string, labels []string, props map[string]any) (*graph.Entity, error) {
	if id == "" {
		return nil, merrors.NewStorageError("UpsertEntity", errInvalidID)
	}

	mergedLabels, mergedProps := labels, props

	if existing, ok := getEntity(ctx, q, id); ok {
		mergedLabels = mergeLabels(existing.Labels, labels)
		mergedProps = mergeProps(existing.Props, props)
	}

	entity, raw, err := entityRow(id, mergedLabels, mergedProps)
	if err != nil {
		return nil, merrors.NewStorageError("UpsertEntity", err)
	}

	query, args, err := sq.Insert("kg_entities").
		Columns("id", "labels", "props").
		Values(id, mergedLabels, raw).
		Suffix("ON CONFLICT (id) DO UPDATE SET labels = EXCLUDED.labels, props = EXCLUDED.props").
		ToSql()
	if err != nil {
		return nil, merrors.NewStorageError("UpsertEntity", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return nil, merrors.NewStorageError("UpsertEntity", err)
	}

	return entity, nil
}

// mergeProps shallow-merges incoming over existing, mirroring the
// memgraph adapter's upsertEntityLocked/upsertRelationLocked (§4.1:
// upserts merge props, never overwrite the whole row).
func mergeProps(existing, incoming map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(incoming))

	for k, v := range existing {
		merged[k] = v
	}

	for k, v := range incoming {
		merged[k] = v
	}

	return merged
}

// mergeLabels unions incoming into existing, matching memgraph's
// upsertEntityLocked label handling.
func mergeLabels(existing, incoming []string) []string {
	merged := append([]string(nil), existing...)

	for _, l := range incoming {
		found := false

		for _, x := range merged {
			if x == l {
				found = true
				break
			}
		}

		if !found {
			merged = append(merged, l)
		}
	}

	return merged
}

func upsertRelation(ctx context.Context, q querier, headID, relType, tailID string, props map[string]any) (*graph.Relation, error) {
	if headID == "" || tailID == "" || relType == "" {
		return nil, merrors.NewStorageError("UpsertRelation", errInvalidID)
	}

	mergedProps := props

	if existing, ok := getRelation(ctx, q, headID, relType, tailID); ok {
		mergedProps = mergeProps(existing.Props, props)
	}

	relation, raw, err := relationRow(headID, relType, tailID, mergedProps)
	if err != nil {
		return nil, merrors.NewStorageError("UpsertRelation", err)
	}

	query, args, err := sq.Insert("kg_relations").
		Columns("head_id", "rel_type", "tail_id", "props").
		Values(headID, relType, tailID, raw).
		Suffix("ON CONFLICT (head_id, rel_type, tail_id) DO UPDATE SET props = EXCLUDED.props").
		ToSql()
	if err != nil {
		return nil, merrors.NewStorageError("UpsertRelation", err)
	}

	if _, err := q.Exec(ctx, query, args...); err != nil {
		return nil, merrors.NewStorageError("UpsertRelation", err)
	}

	return relation, nil
}

func getEntity(ctx context.Context, q querier, id string) (*graph.Entity, bool) {
	query, args, err := sq.Select("id", "labels", "props").From("kg_entities").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, false
	}

	var (
		gotID  string
		labels []string
		raw    []byte
	)

	if err := q.QueryRow(ctx, query, args...).Scan(&gotID, &labels, &raw); err != nil {
		return nil, false
	}

	props, err := decodeProps(raw)
	if err != nil {
		return nil, false
	}

	return &graph.Entity{ID: gotID, Labels: labels, Props: props}, true
}

func getRelation(ctx context.Context, q querier, headID, relType, tailID string) (*graph.Relation, bool) {
	query, args, err := sq.Select("head_id", "rel_type", "tail_id", "props").From("kg_relations").
		Where(squirrel.Eq{"head_id": headID, "rel_type": relType, "tail_id": tailID}).ToSql()
	if err != nil {
		return nil, false
	}

	var (
		head, rt, tail string
		raw            []byte
	)

	if err := q.QueryRow(ctx, query, args...).Scan(&head, &rt, &tail, &raw); err != nil {
		return nil, false
	}

	props, err := decodeProps(raw)
	if err != nil {
		return nil, false
	}

	return &graph.Relation{HeadID: head, RelType: rt, TailID: tail, Props: props}, true
}

func getNeighbors(ctx context.Context, q querier, id string, relType string, dir mmodel.NeighborDirection) ([]*graph.Relation, error) {
	var clauses []string
	var args []any

	argN := 1
	addClause := func(column string) {
		clauses = append(clauses, column+" = $"+strconv.Itoa(argN))
		args = append(args, id)
		argN++
	}

	switch dir {
	case mmodel.DirOut:
		addClause("head_id")
	case mmodel.DirIn:
		addClause("tail_id")
	default:
		clauses = append(clauses, "(head_id = $"+strconv.Itoa(argN)+" OR tail_id = $"+strconv.Itoa(argN+1)+")")
		args = append(args, id, id)
		argN += 2
	}

	query := "SELECT head_id, rel_type, tail_id, props FROM kg_relations WHERE " + strings.Join(clauses, " AND ")

	if relType != "" {
		query += " AND rel_type = $" + strconv.Itoa(argN)
		args = append(args, relType)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, merrors.NewStorageError("GetNeighbors", err)
	}
	defer rows.Close()

	var out []*graph.Relation

	for rows.Next() {
		var head, rt, tail string
		var raw []byte

		if err := rows.Scan(&head, &rt, &tail, &raw); err != nil {
			return nil, merrors.NewStorageError("GetNeighbors", err)
		}

		props, err := decodeProps(raw)
		if err != nil {
			return nil, merrors.NewStorageError("GetNeighbors", err)
		}

		out = append(out, &graph.Relation{HeadID: head, RelType: rt, TailID: tail, Props: props})
	}

	return out, rows.Err()
}

func getAllEntities(ctx context.Context, q querier) []*graph.Entity {
	rows, err := q.Query(ctx, "SELECT id, labels, props FROM kg_entities")
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*graph.Entity

	for rows.Next() {
		var id string
		var labels []string
		var raw []byte

		if err := rows.Scan(&id, &labels, &raw); err != nil {
			continue
		}

		props, err := decodeProps(raw)
		if err != nil {
			continue
		}

		out = append(out, &graph.Entity{ID: id, Labels: labels, Props: props})
	}

	return out
}

func getAllRelations(ctx context.Context, q querier) []*graph.Relation {
	rows, err := q.Query(ctx, "SELECT head_id, rel_type, tail_id, props FROM kg_relations")
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []*graph.Relation

	for rows.Next() {
		var head, rt, tail string
		var raw []byte

		if err := rows.Scan(&head, &rt, &tail, &raw); err != nil {
			continue
		}

		props, err := decodeProps(raw)
		if err != nil {
			continue
		}

		out = append(out, &graph.Relation{HeadID: head, RelType: rt, TailID: tail, Props: props})
	}

	return out
}

func deleteEntity(ctx context.Context, q querier, id string) ([]*graph.Relation, error) {
	cascaded, err := getNeighbors(ctx, q, id, "", mmodel.DirBoth)
	if err != nil {
		return nil, err
	}

	if _, err := q.Exec(ctx, "DELETE FROM kg_relations WHERE head_id = $1 OR tail_id = $1", id); err != nil {
		return nil, merrors.NewStorageError("DeleteEntity", err)
	}

	if _, err := q.Exec(ctx, "DELETE FROM kg_entities WHERE id = $1", id); err != nil {
		return nil, merrors.NewStorageError("DeleteEntity", err)
	}

	return cascaded, nil
}

func deleteRelation(ctx context.Context, q querier, headID, relType, tailID string) error {
	_, err := q.Exec(ctx, "DELETE FROM kg_relations WHERE head_id = $1 AND rel_type = $2 AND tail_id = $3", headID, relType, tailID)
	if err != nil {
		return merrors.NewStorageError("DeleteRelation", err)
	}

	return nil
}

func clearAll(ctx context.Context, q querier) {
	_, _ = q.Exec(ctx, "TRUNCATE kg_relations, kg_entities")
}

func countEntities(ctx context.Context, q querier) int {
	var n int
	_ = q.QueryRow(ctx, "SELECT count(*) FROM kg_entities").Scan(&n)

	return n
}

func countRelations(ctx context.Context, q querier) int {
	var n int
	_ = q.QueryRow(ctx, "SELECT count(*) FROM kg_relations").Scan(&n)

	return n
}

var errInvalidID = storageErr("id must not be empty")

type storageErr string

func (e storageErr) Error() string { return string(e) }
