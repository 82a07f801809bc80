package spool

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is the MongoDB collection notifications are stored in.
const DefaultCollection = "notifications"

// MongoStore implements Store on a MongoDB collection. RunTx uses session
// transactions, which need a replica set; conflicting transactions are
// retried by the driver. BSON dates keep millisecond precision, so stored
// times are truncated to the millisecond.
type MongoStore struct {
	coll *mongo.Collection
}

type mongoDocument struct {
	ID          string     `bson:"_id"`
	CreatedAt   time.Time  `bson:"created_at"`
	PickedAt    *time.Time `bson:"picked_at,omitempty"`
	PickedUntil time.Time  `bson:"picked_until"`
	AckedAt     *time.Time `bson:"acked_at,omitempty"`
	Message     string     `bson:"message"`
}

// NewMongoStore creates a store on the named collection of db. An empty
// name selects DefaultCollection.
func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{coll: db.Collection(collection)}
}

// Init creates the indexes used by Unpicked and Wipe.
func (s *MongoStore) Init(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "picked_until", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	return err
}

type mongoTx struct {
	coll *mongo.Collection
	id   string
}

func (t *mongoTx) Get(ctx context.Context) (Document, bool, error) {
	var doc mongoDocument
	err := t.coll.FindOne(ctx, bson.D{{Key: "_id", Value: t.id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, false, nil
	}
	if err != nil {
		return Document{}, false, err
	}
	return normalize(Document{
		ID:          doc.ID,
		CreatedAt:   doc.CreatedAt,
		PickedAt:    doc.PickedAt,
		PickedUntil: doc.PickedUntil,
		AckedAt:     doc.AckedAt,
		Message:     doc.Message,
	}), true, nil
}

func (t *mongoTx) Create(ctx context.Context, doc Document) error {
	_, err := t.coll.InsertOne(ctx, mongoDocument{
		ID:          t.id,
		CreatedAt:   doc.CreatedAt,
		PickedAt:    doc.PickedAt,
		PickedUntil: doc.PickedUntil,
		AckedAt:     doc.AckedAt,
		Message:     doc.Message,
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrExists
	}
	return err
}

func (t *mongoTx) Update(ctx context.Context, p Patch) error {
	return mongoApply(ctx, t.coll, t.id, p)
}

func mongoApply(ctx context.Context, coll *mongo.Collection, id string, p Patch) error {
	set := bson.D{}
	if p.PickedAt != nil {
		set = append(set, bson.E{Key: "picked_at", Value: *p.PickedAt})
	}
	if p.PickedUntil != nil {
		set = append(set, bson.E{Key: "picked_until", Value: *p.PickedUntil})
	}
	if p.AckedAt != nil {
		set = append(set, bson.E{Key: "acked_at", Value: *p.AckedAt})
	}
	if len(set) == 0 {
		return nil
	}

	res, err := coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RunTx implements Store
func (s *MongoStore) RunTx(ctx context.Context, id string, fn func(ctx context.Context, tx Tx) error) error {
	session, err := s.coll.Database().Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(context.WithoutCancel(ctx))

	_, err = session.WithTransaction(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx, &mongoTx{coll: s.coll, id: id})
	})
	return err
}

// Update implements Store
func (s *MongoStore) Update(ctx context.Context, id string, p Patch) error {
	return mongoApply(ctx, s.coll, id, p)
}

// Delete implements Store
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return err
}

// DeleteCreatedUntil implements Store
func (s *MongoStore) DeleteCreatedUntil(ctx context.Context, until time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.D{{Key: "created_at", Value: bson.D{{Key: "$lte", Value: until}}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ScanPickedBefore implements Store, paging on _id.
func (s *MongoStore) ScanPickedBefore(ctx context.Context, at time.Time, pageSize int) iter.Seq2[string, error] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(yield func(string, error) bool) {
		after := ""
		for {
			page, err := s.page(ctx, at, after, pageSize)
			if err != nil {
				yield("", err)
				return
			}
			for _, id := range page {
				if !yield(id, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			after = page[len(page)-1]
		}
	}
}

func (s *MongoStore) page(ctx context.Context, at time.Time, after string, size int) ([]string, error) {
	filter := bson.D{
		{Key: "picked_until", Value: bson.D{{Key: "$lt", Value: at}}},
		{Key: "_id", Value: bson.D{{Key: "$gt", Value: after}}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetLimit(int64(size)).
		SetProjection(bson.D{{Key: "_id", Value: 1}})

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
