package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"potterdex/internal/character/filter"
	"potterdex/internal/character/models"
	"potterdex/pkg/platform/sentinel"
)

const tracerName = "potterdex/internal/character/store"

// MongoStore persists characters in a single MongoDB collection. It holds the
// shared database handle; the driver's pool makes every call safe to issue
// concurrently.
type MongoStore struct {
	db         *mongo.Database
	collection string
	tracer     trace.Tracer
}

// NewMongoStore constructs a MongoDB-backed character store.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{
		db:         db,
		collection: collection,
		tracer:     otel.Tracer(tracerName),
	}
}

func (s *MongoStore) coll() *mongo.Collection {
	return s.db.Collection(s.collection)
}

// Replace drops the collection if present, recreates it and bulk inserts
// records. Not transactional: a failed insert leaves whatever was written.
func (s *MongoStore) Replace(ctx context.Context, records []models.Character) (n int, err error) {
	ctx, span := s.startSpan(ctx, "replace", attribute.Int("potterdex.records", len(records)))
	defer func() { endSpan(span, err) }()

	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: s.collection}})
	if err != nil {
		return 0, unavailable("list collections", err)
	}
	if len(names) > 0 {
		if err := s.coll().Drop(ctx); err != nil {
			return 0, unavailable("drop collection", err)
		}
	}
	if err := s.db.CreateCollection(ctx, s.collection); err != nil {
		return 0, unavailable("create collection", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(records))
	for i := range records {
		rec := records[i]
		rec.ID = primitive.NilObjectID
		docs[i] = rec
	}
	res, err := s.coll().InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		inserted := 0
		if res != nil {
			inserted = len(res.InsertedIDs)
		}
		return inserted, unavailable("insert seed records", err)
	}
	return len(res.InsertedIDs), nil
}

// FindAll returns every record in store-native order.
func (s *MongoStore) FindAll(ctx context.Context) (out []models.Character, err error) {
	ctx, span := s.startSpan(ctx, "find_all")
	defer func() { endSpan(span, err) }()

	return s.find(ctx, bson.D{})
}

// Find returns the records matching the predicate selected by code.
func (s *MongoStore) Find(ctx context.Context, code filter.Code) (out []models.Character, err error) {
	ctx, span := s.startSpan(ctx, "find", attribute.Int("potterdex.filter_code", int(code)))
	defer func() { endSpan(span, err) }()

	return s.find(ctx, code.Query())
}

func (s *MongoStore) find(ctx context.Context, query bson.D) ([]models.Character, error) {
	cur, err := s.coll().Find(ctx, query)
	if err != nil {
		return nil, unavailable("find characters", err)
	}
	out := make([]models.Character, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, unavailable("decode characters", err)
	}
	return out, nil
}

// Insert stores c as-is and returns it with the store-assigned identifier.
func (s *MongoStore) Insert(ctx context.Context, c models.Character) (_ models.Character, err error) {
	ctx, span := s.startSpan(ctx, "insert")
	defer func() { endSpan(span, err) }()

	c.ID = primitive.NewObjectID()
	if _, err := s.coll().InsertOne(ctx, c); err != nil {
		return models.Character{}, unavailable("insert character", err)
	}
	return c, nil
}

// Delete removes the record with the given hex identifier. It reports whether
// a record was removed; a missing record is not an error.
func (s *MongoStore) Delete(ctx context.Context, id string) (deleted bool, err error) {
	ctx, span := s.startSpan(ctx, "delete", attribute.String("potterdex.id", id))
	defer func() { endSpan(span, err) }()

	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	res, err := s.coll().DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, unavailable("delete character", err)
	}
	return res.DeletedCount > 0, nil
}

// Count returns the number of records in the collection.
func (s *MongoStore) Count(ctx context.Context) (n int64, err error) {
	ctx, span := s.startSpan(ctx, "count")
	defer func() { endSpan(span, err) }()

	n, err = s.coll().CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, unavailable("count characters", err)
	}
	return n, nil
}

func (s *MongoStore) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("db.system", "mongodb"),
		attribute.String("db.name", s.db.Name()),
		attribute.String("db.collection.name", s.collection),
		attribute.String("db.operation.name", op),
	)
	return s.tracer.Start(ctx, "character.store."+op, trace.WithAttributes(attrs...), trace.WithSpanKind(trace.SpanKindClient))
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, sentinel.ErrInvalidID) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", sentinel.ErrInvalidID, id)
	}
	return oid, nil
}
