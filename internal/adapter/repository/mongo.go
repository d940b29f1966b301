package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"jobfolio/internal/domain"
)

// PortfoliosCollection is the collection the generation backend writes.
const PortfoliosCollection = "portfolios"

// MongoRepo reads and writes the backend's own portfolios collection. Ids
// are ObjectID hex strings; the document fields sit at the top level next
// to user_id.
type MongoRepo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoRepo(ctx context.Context, uri, database string) (*MongoRepo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoRepo{client: client, coll: client.Database(database).Collection(PortfoliosCollection)}, nil
}

func (r *MongoRepo) Get(ctx context.Context, id string) (*domain.Portfolio, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	var m bson.M
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find portfolio %s: %w", id, err)
	}

	p := &domain.Portfolio{CreatedAt: oid.Timestamp()}
	if s, ok := m["user_id"].(string); ok {
		p.UserID = s
	}
	delete(m, "_id")
	delete(m, "user_id")
	if p.Document, err = plainDocument(m); err != nil {
		return nil, err
	}
	p.UpdatedAt = p.CreatedAt
	return p, nil
}

func (r *MongoRepo) Fetch(ctx context.Context, id string) (map[string]interface{}, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Document, nil
}

func (r *MongoRepo) Save(ctx context.Context, id string, doc map[string]interface{}) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	set := bson.M{}
	for k, v := range doc {
		if k == "_id" || k == "user_id" {
			continue
		}
		set[k] = v
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update portfolio %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (r *MongoRepo) Create(ctx context.Context, doc map[string]interface{}) (string, error) {
	return r.CreateFor(ctx, "", doc)
}

func (r *MongoRepo) CreateFor(ctx context.Context, userID string, doc map[string]interface{}) (string, error) {
	rec := bson.M{"user_id": userID}
	for k, v := range doc {
		if k == "_id" || k == "user_id" {
			continue
		}
		rec[k] = v
	}
	res, err := r.coll.InsertOne(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("insert portfolio: %w", err)
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert portfolio: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// plainDocument turns decoded BSON into the plain JSON shapes the
// normalizer reads. Nested documents may come back as bson.D, which the
// relaxed extended JSON writer renders as objects.
func plainDocument(m bson.M) (map[string]interface{}, error) {
	b, err := bson.MarshalExtJSON(m, false, false)
	if err != nil {
		return nil, fmt.Errorf("encode portfolio document: %w", err)
	}
	return decodeDocument(b)
}
