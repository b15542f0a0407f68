// Package tsindex provides secondary indexing over decoded TokenStream
// record fields: given a field's token and the ksuid.KSUID primary key of
// the record it belongs to, look up every record sharing a field value
// without a full log scan.
package tsindex

import (
	"fmt"
	"math"
	"sync"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/tokenstream/pkg/bptree"
)

// FieldIndex is a B+Tree-backed secondary index over one field. Multiple
// records may share a field value, so each leaf value is the slice of
// KSUIDs that currently hold it rather than a single KSUID.
type FieldIndex struct {
	fieldName string
	tree      *bptree.BPlusTree[string, []ksuid.KSUID]
	mutex     sync.RWMutex
}

// NewFieldIndex creates an index for fieldName with the given B+Tree order.
func NewFieldIndex(fieldName string, order int) *FieldIndex {
	return &FieldIndex{
		fieldName: fieldName,
		tree:      bptree.NewBPlusTree[string, []ksuid.KSUID](order),
	}
}

// serializeFieldValue renders a decoded scalar field value to a sortable
// string index key, tagging it with its type so values of different types
// never collide on the same tree key.
func serializeFieldValue(value any) string {
	switch v := value.(type) {
	case int64:
		// Flipping the sign bit maps int64 order onto uint64 order.
		return fmt.Sprintf("i:%020d", uint64(v)^(1<<63))
	case uint64:
		return fmt.Sprintf("u:%020d", v)
	case float64:
		bits := math.Float64bits(v)
		if bits>>63 == 1 {
			bits = ^bits
		} else {
			bits |= 1 << 63
		}
		return fmt.Sprintf("f:%016x", bits)
	case bool:
		return fmt.Sprintf("b:%v", v)
	case string:
		return "s:" + v
	default:
		return fmt.Sprintf("x:%v", v)
	}
}

// Insert records that id's record currently has fieldValue for this field.
func (idx *FieldIndex) Insert(fieldValue any, id ksuid.KSUID) {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	key := serializeFieldValue(fieldValue)
	existing, _ := idx.tree.Search(key)
	idx.tree.Insert(key, append(existing, id))
}

// Delete removes id from the set of records holding fieldValue, reporting
// whether it was present.
func (idx *FieldIndex) Delete(fieldValue any, id ksuid.KSUID) bool {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	key := serializeFieldValue(fieldValue)
	existing, ok := idx.tree.Search(key)
	if !ok {
		return false
	}

	for i, v := range existing {
		if v == id {
			remaining := append(existing[:i], existing[i+1:]...)
			if len(remaining) == 0 {
				return idx.tree.Delete(key)
			}
			idx.tree.Insert(key, remaining)
			return true
		}
	}
	return false
}

// Search returns every KSUID currently holding fieldValue for this field.
func (idx *FieldIndex) Search(fieldValue any) []ksuid.KSUID {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	values, _ := idx.tree.Search(serializeFieldValue(fieldValue))
	return values
}

// rangeSentinelMax sorts after every serializeFieldValue output, since all
// of them start with a lowercase ASCII type tag.
const rangeSentinelMax = "\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff\xff"

// Range returns every KSUID whose field value falls in [start, end]. A nil
// start or end means "no lower/upper bound".
func (idx *FieldIndex) Range(start, end any) []ksuid.KSUID {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	startKey := ""
	if start != nil {
		startKey = serializeFieldValue(start)
	}
	endKey := rangeSentinelMax
	if end != nil {
		endKey = serializeFieldValue(end)
	}

	var results []ksuid.KSUID
	for _, ids := range idx.tree.Range(startKey, endKey) {
		results = append(results, ids...)
	}
	return results
}

// FieldName reports which field this index covers.
func (idx *FieldIndex) FieldName() string {
	return idx.fieldName
}

// IndexManager owns one FieldIndex per indexed field token, so callers can
// maintain several secondary indexes (e.g. one per queryable field of a
// record schema) behind a single handle.
type IndexManager struct {
	indexes map[uint64]*FieldIndex
	mutex   sync.RWMutex
	order   int
}

// NewIndexManager creates an index manager whose field indexes use the
// given B+Tree order.
func NewIndexManager(order int) *IndexManager {
	return &IndexManager{
		indexes: make(map[uint64]*FieldIndex),
		order:   order,
	}
}

// GetOrCreate returns the FieldIndex for token, creating one named
// fieldName if this is the first reference to it.
func (im *IndexManager) GetOrCreate(token uint64, fieldName string) *FieldIndex {
	im.mutex.Lock()
	defer im.mutex.Unlock()

	if idx, exists := im.indexes[token]; exists {
		return idx
	}

	idx := NewFieldIndex(fieldName, im.order)
	im.indexes[token] = idx
	return idx
}

// Index returns the FieldIndex for token, if one has been created.
func (im *IndexManager) Index(token uint64) (*FieldIndex, bool) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	idx, ok := im.indexes[token]
	return idx, ok
}

// Remove deletes id from every field index that currently references it
// for the given field values, keyed the same way the caller indexed them.
func (im *IndexManager) Remove(id ksuid.KSUID, fieldValues map[uint64]any) {
	im.mutex.RLock()
	defer im.mutex.RUnlock()

	for token, value := range fieldValues {
		if idx, ok := im.indexes[token]; ok {
			idx.Delete(value, id)
		}
	}
}
