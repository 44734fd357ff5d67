package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Store with the same conditional-write and selector
// semantics as the Mongo implementation. It backs the engine tests and
// single-node development setups.
type Memory struct {
	mu  sync.RWMutex
	dbs map[string]map[string]Doc
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{dbs: make(map[string]map[string]Doc)}
}

func (m *Memory) database(db string) map[string]Doc {
	docs, ok := m.dbs[db]
	if !ok {
		docs = make(map[string]Doc)
		m.dbs[db] = docs
	}
	return docs
}

func (m *Memory) Get(ctx context.Context, db, id string) (Doc, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.database(db)[id]
	if !ok {
		return nil, &Error{Status: 404, Msg: "not_found", Err: ErrNotFound}
	}
	return cloneDoc(doc), nil
}

func (m *Memory) Put(ctx context.Context, db string, doc Doc) (PutResult, error) {
	id := doc.ID()
	if id == "" {
		return PutResult{}, &Error{Status: 400, Msg: "missing or invalid doc._id"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	docs := m.database(db)
	current, exists := docs[id]
	rev := doc.Rev()
	if rev == "" {
		if exists {
			return PutResult{}, &Error{Status: 409, Msg: "document update conflict", Err: ErrConflict}
		}
	} else {
		if !exists {
			return PutResult{}, &Error{Status: 404, Msg: "not_found", Err: ErrNotFound}
		}
		if current.Rev() != rev {
			return PutResult{}, &Error{Status: 409, Msg: "document update conflict", Err: ErrConflict}
		}
	}

	stored := cloneDoc(doc)
	newRev := newRevision(revGeneration(rev) + boolToInt(rev != ""))
	stored["_rev"] = newRev
	docs[id] = stored
	return PutResult{ID: id, Rev: newRev, OK: true}, nil
}

func (m *Memory) BulkPut(ctx context.Context, db string, docs []Doc) ([]PutResult, error) {
	results := make([]PutResult, 0, len(docs))
	for _, doc := range docs {
		res, err := m.Put(ctx, db, doc)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (m *Memory) Find(ctx context.Context, db string, q Query) (*FindResult, error) {
	return m.find(db, "", q)
}

func (m *Memory) PartitionFind(ctx context.Context, db, partitionKey string, q Query) (*FindResult, error) {
	return m.find(db, partitionKey, q)
}

func (m *Memory) find(db, partitionKey string, q Query) (*FindResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0)
	for id := range m.database(db) {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	matched := make([]Doc, 0)
	for _, id := range ids {
		doc := m.database(db)[id]
		if partitionKey != "" && PartitionOf(id) != partitionKey {
			continue
		}
		if matchSelector(doc, q.Selector) {
			matched = append(matched, doc)
		}
	}

	for i := len(q.Sort) - 1; i >= 0; i-- {
		s := q.Sort[i]
		sort.SliceStable(matched, func(a, b int) bool {
			c := compareValues(matched[a][s.Field], matched[b][s.Field])
			if s.Desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	docs := make([]Doc, 0, len(matched))
	for _, doc := range matched {
		docs = append(docs, projectDoc(doc, q.Fields))
	}
	return &FindResult{Docs: docs}, nil
}

func matchSelector(doc Doc, sel Selector) bool {
	for field, cond := range sel {
		if field == "$not" {
			if sub, ok := subSelector(cond); ok && matchSelector(doc, sub) {
				return false
			}
			continue
		}
		if ops, ok := subSelector(cond); ok {
			if !matchOps(doc[field], ops) {
				return false
			}
			continue
		}
		if compareValues(doc[field], cond) != 0 {
			return false
		}
	}
	return true
}

func matchOps(value interface{}, ops map[string]interface{}) bool {
	for op, operand := range ops {
		switch op {
		case "$gte":
			if compareValues(value, operand) < 0 {
				return false
			}
		case "$ne":
			if compareValues(value, operand) == 0 {
				return false
			}
		case "$in":
			list, ok := operand.([]interface{})
			if !ok {
				if strs, okStr := operand.([]string); okStr {
					list = make([]interface{}, len(strs))
					for i, s := range strs {
						list[i] = s
					}
				} else {
					return false
				}
			}
			found := false
			for _, candidate := range list {
				if compareValues(value, candidate) == 0 {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders mixed JSON scalars: numbers numerically, everything
// else by equality/lexicographic string order. nil sorts first.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok2 := b.(bool); ok2 {
			if ba == bb {
				return 0
			}
			if !ba {
				return -1
			}
			return 1
		}
	}
	sa, sb := stringValue(a), stringValue(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func projectDoc(doc Doc, fields []string) Doc {
	if len(fields) == 0 {
		return cloneDoc(doc)
	}
	out := make(Doc, len(fields))
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

func cloneDoc(doc Doc) Doc {
	out := make(Doc, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
