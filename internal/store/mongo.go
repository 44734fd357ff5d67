package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo implements Store on a MongoDB database. Each logical database maps
// to one collection; the partition key is materialized into a "pkey" field
// at write time and indexed so partition-scoped finds stay selective.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// MongoConfig holds the connection settings for a Mongo store.
type MongoConfig struct {
	URI      string
	Database string
}

// NewMongo connects, pings, and prepares the partition indexes for the given
// collections.
func NewMongo(ctx context.Context, cfg MongoConfig, collections ...string) (*Mongo, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "chatlearn"
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	m := &Mongo{client: client, db: client.Database(cfg.Database)}
	for _, name := range collections {
		if err := m.initIndexes(ctx, name); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return m, nil
}

func (m *Mongo) initIndexes(ctx context.Context, collection string) error {
	_, err := m.db.Collection(collection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "pkey", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "docType", Value: 1}}},
	})
	return err
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Get(ctx context.Context, db, id string) (Doc, error) {
	var raw bson.M
	err := m.db.Collection(db).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err == mongo.ErrNoDocuments {
		return nil, &Error{Status: 404, Msg: "not_found", Err: ErrNotFound}
	}
	if err != nil {
		return nil, &Error{Status: 500, Msg: "get failed", Err: err}
	}
	return fromMongoDoc(raw), nil
}

func (m *Mongo) Put(ctx context.Context, db string, doc Doc) (PutResult, error) {
	id := doc.ID()
	if id == "" {
		return PutResult{}, &Error{Status: 400, Msg: "missing or invalid doc._id"}
	}
	stored := toMongoDoc(doc)

	rev := doc.Rev()
	if rev == "" {
		newRev := newRevision(1)
		stored["_rev"] = newRev
		if _, err := m.db.Collection(db).InsertOne(ctx, stored); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return PutResult{}, &Error{Status: 409, Msg: "document update conflict", Err: ErrConflict}
			}
			return PutResult{}, &Error{Status: 500, Msg: "insert failed", Err: err}
		}
		return PutResult{ID: id, Rev: newRev, OK: true}, nil
	}

	newRev := newRevision(revGeneration(rev) + 1)
	stored["_rev"] = newRev
	res, err := m.db.Collection(db).ReplaceOne(ctx, bson.M{"_id": id, "_rev": rev}, stored)
	if err != nil {
		return PutResult{}, &Error{Status: 500, Msg: "replace failed", Err: err}
	}
	if res.MatchedCount == 0 {
		n, err := m.db.Collection(db).CountDocuments(ctx, bson.M{"_id": id})
		if err == nil && n == 0 {
			return PutResult{}, &Error{Status: 404, Msg: "not_found", Err: ErrNotFound}
		}
		return PutResult{}, &Error{Status: 409, Msg: "document update conflict", Err: ErrConflict}
	}
	return PutResult{ID: id, Rev: newRev, OK: true}, nil
}

func (m *Mongo) BulkPut(ctx context.Context, db string, docs []Doc) ([]PutResult, error) {
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

func (m *Mongo) Find(ctx context.Context, db string, q Query) (*FindResult, error) {
	return m.find(ctx, db, selectorToFilter(q.Selector), q)
}

func (m *Mongo) PartitionFind(ctx context.Context, db, partitionKey string, q Query) (*FindResult, error) {
	filter := selectorToFilter(q.Selector)
	filter["pkey"] = partitionKey
	return m.find(ctx, db, filter, q)
}

func (m *Mongo) find(ctx context.Context, db string, filter bson.M, q Query) (*FindResult, error) {
	opts := options.Find()
	if len(q.Sort) > 0 {
		sort := bson.D{}
		for _, s := range q.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		opts.SetSort(sort)
	}
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	if len(q.Fields) > 0 {
		projection := bson.M{}
		withID := false
		for _, f := range q.Fields {
			projection[f] = 1
			if f == "_id" {
				withID = true
			}
		}
		if !withID {
			projection["_id"] = 0
		}
		opts.SetProjection(projection)
	}

	cursor, err := m.db.Collection(db).Find(ctx, filter, opts)
	if err != nil {
		return nil, &Error{Status: 500, Msg: "find failed", Err: err}
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, &Error{Status: 500, Msg: "find failed", Err: err}
	}
	docs := make([]Doc, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, fromMongoDoc(r))
	}
	return &FindResult{Docs: docs}, nil
}

// selectorToFilter maps the Cloudant-style selector onto a Mongo filter.
// $gte, $ne and $in pass through; "$not": {field: v} becomes field != v.
func selectorToFilter(sel Selector) bson.M {
	filter := bson.M{}
	for field, cond := range sel {
		if field == "$not" {
			if sub, ok := subSelector(cond); ok {
				for f, v := range sub {
					filter[f] = bson.M{"$ne": v}
				}
			}
			continue
		}
		if ops, ok := subSelector(cond); ok {
			filter[field] = bson.M(ops)
			continue
		}
		filter[field] = cond
	}
	return filter
}

func toMongoDoc(doc Doc) bson.M {
	stored := bson.M{}
	for k, v := range doc {
		stored[k] = v
	}
	stored["pkey"] = PartitionOf(doc.ID())
	return stored
}

func fromMongoDoc(raw bson.M) Doc {
	delete(raw, "pkey")
	return Doc(raw)
}

func newRevision(generation int) string {
	return fmt.Sprintf("%d-%s", generation, strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

func revGeneration(rev string) int {
	i := strings.IndexByte(rev, '-')
	if i <= 0 {
		return 1
	}
	n, err := strconv.Atoi(rev[:i])
	if err != nil {
		return 1
	}
	return n
}
