package dialog

import (
	"context"

	"chatlearn/internal/store"
)

// Thin wrappers so handlers deal only in normalized errors.

func (e *Engine) getDoc(ctx context.Context, db, id string) (store.Doc, *ErrResult) {
	doc, err := e.store.Get(ctx, db, id)
	if err != nil {
		return nil, errFromStore(err)
	}
	return doc, nil
}

func (e *Engine) putDoc(ctx context.Context, db string, doc store.Doc) (store.PutResult, *ErrResult) {
	res, err := e.store.Put(ctx, db, doc)
	if err != nil {
		return store.PutResult{}, errFromStore(err)
	}
	return res, nil
}

func (e *Engine) bulkPut(ctx context.Context, db string, docs []store.Doc) ([]store.PutResult, *ErrResult) {
	res, err := e.store.BulkPut(ctx, db, docs)
	if err != nil {
		return nil, errFromStore(err)
	}
	return res, nil
}

func (e *Engine) findDocs(ctx context.Context, db string, q store.Query) (*store.FindResult, *ErrResult) {
	res, err := e.store.Find(ctx, db, q)
	if err != nil {
		return nil, errFromStore(err)
	}
	return res, nil
}

func (e *Engine) partitionFind(ctx context.Context, db, partitionKey string, q store.Query) (*store.FindResult, *ErrResult) {
	res, err := e.store.PartitionFind(ctx, db, partitionKey, q)
	if err != nil {
		return nil, errFromStore(err)
	}
	return res, nil
}

// validateDocForUpdate guards the client-supplied document of an update
// action: it must carry its id and current revision, and any timestamp
// fields must be numeric milliseconds, not strings.
func validateDocForUpdate(doc map[string]interface{}) (bool, string) {
	if len(doc) == 0 {
		return false, "missing or invalid doc object"
	}
	if s, _ := doc["_id"].(string); s == "" {
		return false, "missing or invalid doc._id"
	}
	if s, _ := doc["_rev"].(string); s == "" {
		return false, "missing or invalid doc._rev"
	}
	if _, isString := doc["createdAt"].(string); isString {
		return false, "createdAt should be 13-digit numbers representing milliseconds timestamp"
	}
	if _, isString := doc["updatedAt"].(string); isString {
		return false, "updatedAt should be 13-digit numbers representing milliseconds timestamp"
	}
	if v, present := doc["completedAt"]; present && v != nil {
		if _, ok := numberValue(v); !ok {
			return false, "completedAt should be 13-digit numbers representing milliseconds timestamp"
		}
	}
	return true, ""
}
