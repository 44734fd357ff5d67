package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Doc is a schemaless document. "_id" and "_rev" are reserved: "_id" carries
// the partition key as the prefix before the first ':' and "_rev" is the
// optimistic-concurrency revision token.
type Doc map[string]interface{}

// ID returns the document id, or "" when unset.
func (d Doc) ID() string {
	s, _ := d["_id"].(string)
	return s
}

// Rev returns the revision token, or "" when the document was never stored.
func (d Doc) Rev() string {
	s, _ := d["_rev"].(string)
	return s
}

// PartitionOf extracts the partition key of a document id, the prefix before
// the first ':'.
func PartitionOf(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[:i]
	}
	return id
}

// Selector is a Cloudant-style declarative query filter. A plain value means
// equality; a nested map holds one of the supported operators ($gte, $ne,
// $in); the special key "$not" negates an equality sub-selector.
type Selector map[string]interface{}

// subSelector unwraps a nested condition written either as a Selector or as
// a plain map.
func subSelector(cond interface{}) (map[string]interface{}, bool) {
	switch m := cond.(type) {
	case Selector:
		return m, true
	case map[string]interface{}:
		return m, true
	}
	return nil, false
}

// SortField orders a result set on one document field.
type SortField struct {
	Field string
	Desc  bool
}

// Query bundles the optional find modifiers. A zero Limit means unlimited;
// empty Fields means full documents.
type Query struct {
	Selector Selector
	Sort     []SortField
	Limit    int
	Fields   []string
}

// PutResult mirrors a document-write acknowledgement.
type PutResult struct {
	ID  string `json:"id"`
	Rev string `json:"rev"`
	OK  bool   `json:"ok"`
}

// FindResult wraps the matched documents.
type FindResult struct {
	Docs []Doc `json:"docs"`
}

var (
	// ErrNotFound reports a document id with no stored document.
	ErrNotFound = errors.New("document not found")
	// ErrConflict reports a write whose revision token is not current.
	ErrConflict = errors.New("document update conflict")
)

// Error carries the HTTP-equivalent status of a failed store call so the
// caller can forward it without inspecting backend-specific error types.
type Error struct {
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// StatusOf returns the HTTP-equivalent status of a store error, or 0 when
// the error carries none.
func StatusOf(err error) int {
	var se *Error
	if errors.As(err, &se) {
		return se.Status
	}
	if errors.Is(err, ErrNotFound) {
		return 404
	}
	if errors.Is(err, ErrConflict) {
		return 409
	}
	return 0
}

// Store is a partitioned document database. Databases are addressed by name;
// documents by id within a database. Writes are conditional on the revision
// token: a Put with a stale or missing "_rev" against an existing document
// fails with ErrConflict rather than overwriting.
type Store interface {
	// Get fetches one document by id. Absent documents yield ErrNotFound.
	Get(ctx context.Context, db, id string) (Doc, error)
	// Put inserts a new document (no "_rev") or replaces an existing one
	// (current "_rev" required). The stored document receives a fresh
	// revision token, reported in the result.
	Put(ctx context.Context, db string, doc Doc) (PutResult, error)
	// BulkPut applies Put to each document, stopping at the first failure.
	BulkPut(ctx context.Context, db string, docs []Doc) ([]PutResult, error)
	// Find runs a selector query across the whole database.
	Find(ctx context.Context, db string, q Query) (*FindResult, error)
	// PartitionFind runs a selector query scoped to one partition.
	PartitionFind(ctx context.Context, db, partitionKey string, q Query) (*FindResult, error)
}
