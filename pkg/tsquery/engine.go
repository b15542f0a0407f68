package tsquery

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/tokenstream/pkg/tsindex"
	"github.com/ssargent/tokenstream/pkg/tsstore"
)

// TokenQueryEngine executes FieldQuery conditions against a tsindex
// IndexManager's secondary indexes, fetching matching records from a
// tsstore.KVStore keyed by their ksuid.KSUID primary key.
type TokenQueryEngine struct {
	indexManager *tsindex.IndexManager
	kvStore      *tsstore.KVStore
	fieldTokens  map[string]uint64
}

// NewTokenQueryEngine creates a query engine over indexManager and
// kvStore. fieldTokens maps each queryable FieldQuery.Field name to the
// token its secondary index is keyed by.
func NewTokenQueryEngine(indexManager *tsindex.IndexManager, kvStore *tsstore.KVStore, fieldTokens map[string]uint64) *TokenQueryEngine {
	return &TokenQueryEngine{
		indexManager: indexManager,
		kvStore:      kvStore,
		fieldTokens:  fieldTokens,
	}
}

func (qe *TokenQueryEngine) indexFor(field string) (*tsindex.FieldIndex, error) {
	token, ok := qe.fieldTokens[field]
	if !ok {
		return nil, fmt.Errorf("tsquery: field %q has no registered token", field)
	}
	return qe.indexManager.GetOrCreate(token, field), nil
}

// ExecuteQuery runs a single field condition.
func (qe *TokenQueryEngine) ExecuteQuery(ctx context.Context, query FieldQuery, extractor FieldExtractor) (QueryIterator, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	idx, err := qe.indexFor(query.Field)
	if err != nil {
		return nil, err
	}

	var ids []ksuid.KSUID
	switch query.Operator {
	case "=":
		ids = idx.Search(query.Value)
	case ">", ">=":
		ids = idx.Range(query.Value, nil)
	case "<", "<=":
		ids = idx.Range(nil, query.Value)
	default:
		return nil, fmt.Errorf("unsupported operator: %s", query.Operator)
	}

	// Range bounds are inclusive; strict operators drop records equal to the bound.
	if query.Operator == ">" || query.Operator == "<" {
		equal := make(map[ksuid.KSUID]bool)
		for _, id := range idx.Search(query.Value) {
			equal[id] = true
		}
		kept := ids[:0]
		for _, id := range ids {
			if !equal[id] {
				kept = append(kept, id)
			}
		}
		ids = kept
	}

	return &tokenIterator{results: qe.fetchAll(ids)}, nil
}

// ExecuteRangeQuery runs a two-sided range condition between startQuery and
// endQuery, which must name the same field.
func (qe *TokenQueryEngine) ExecuteRangeQuery(ctx context.Context, startQuery, endQuery FieldQuery, extractor FieldExtractor) (QueryIterator, error) {
	if err := startQuery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid start query: %w", err)
	}
	if err := endQuery.Validate(); err != nil {
		return nil, fmt.Errorf("invalid end query: %w", err)
	}
	if startQuery.Field != endQuery.Field {
		return nil, fmt.Errorf("range query fields must match: %s != %s", startQuery.Field, endQuery.Field)
	}

	idx, err := qe.indexFor(startQuery.Field)
	if err != nil {
		return nil, err
	}

	ids := idx.Range(startQuery.Value, endQuery.Value)
	return &tokenIterator{results: qe.fetchAll(ids)}, nil
}

// fetchAll resolves each indexed KSUID to its stored record, silently
// skipping any that no longer exist (deleted since the index entry was
// made) the same way the teacher's query engine does.
func (qe *TokenQueryEngine) fetchAll(ids []ksuid.KSUID) []QueryResult {
	results := make([]QueryResult, 0, len(ids))
	for _, id := range ids {
		key := id.Bytes()
		value, err := qe.kvStore.Get(key)
		if err != nil {
			continue
		}
		results = append(results, QueryResult{Key: key, Value: value})
	}
	return results
}

type tokenIterator struct {
	results []QueryResult
	index   int
}

func (it *tokenIterator) Next() bool {
	if it.index < len(it.results) {
		it.index++
		return true
	}
	return false
}

func (it *tokenIterator) Result() QueryResult {
	if it.index > 0 && it.index <= len(it.results) {
		return it.results[it.index-1]
	}
	return QueryResult{}
}

func (it *tokenIterator) Close() error { return nil }
