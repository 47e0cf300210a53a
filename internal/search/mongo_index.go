package search

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"orders-service/internal/model"
	"orders-service/internal/service"
)

// MongoOrderIndex keeps a denormalized copy of orders in a document
// collection for flexible querying. It is advisory: the write path treats it
// as best effort, the query facade treats its failures as hard errors.
type MongoOrderIndex struct {
	col     *mongo.Collection
	timeout time.Duration
}

func NewMongoOrderIndex(db *mongo.Database, timeout time.Duration) *MongoOrderIndex {
	return &MongoOrderIndex{col: db.Collection("orders"), timeout: timeout}
}

// Index writes the whole document for a freshly created order, replacing any
// stale copy under the same id.
func (m *MongoOrderIndex) Index(ctx context.Context, doc model.OrderDocument) error {
	ctx, cancel := m.scope(ctx)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

// Upsert merges the order into the existing document, creating it if absent.
func (m *MongoOrderIndex) Upsert(ctx context.Context, doc model.OrderDocument) error {
	ctx, cancel := m.scope(ctx)
	defer cancel()

	filter := bson.M{"_id": doc.ID}
	update := bson.M{"$set": bson.M{model.DocField: doc.Order}}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoOrderIndex) Search(ctx context.Context, q model.SearchQuery) ([]model.OrderDocument, error) {
	ctx, cancel := m.scope(ctx)
	defer cancel()

	cur, err := m.col.Find(ctx, filterFor(q))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.OrderDocument
	for cur.Next(ctx) {
		var d model.OrderDocument
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, cur.Err()
}

// scope bounds every collection call so a slow index cannot stall the
// caller indefinitely.
func (m *MongoOrderIndex) scope(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

// filterFor translates the neutral query into a Mongo filter. Term clauses
// compare exactly, Match clauses compare as case-insensitive text, range
// clauses on the same field merge into one inclusive interval.
func filterFor(q model.SearchQuery) bson.M {
	filter := bson.M{}
	for _, c := range q.Must {
		switch c.Kind {
		case model.ClauseTerm:
			filter[c.Field] = c.Value
		case model.ClauseMatch:
			filter[c.Field] = primitive.Regex{
				Pattern: "^" + regexp.QuoteMeta(fmt.Sprint(c.Value)) + "$",
				Options: "i",
			}
		case model.ClauseRangeFrom:
			mergeRange(filter, c.Field, "$gte", c.Value)
		case model.ClauseRangeTo:
			mergeRange(filter, c.Field, "$lte", c.Value)
		}
	}
	return filter
}

func mergeRange(filter bson.M, field, op string, v any) {
	bounds, ok := filter[field].(bson.M)
	if !ok {
		bounds = bson.M{}
		filter[field] = bounds
	}
	bounds[op] = v
}

var _ service.SearchIndexer = (*MongoOrderIndex)(nil)
