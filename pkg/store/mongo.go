package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/roadnet/pkg/errors"
	"github.com/matzehuels/roadnet/pkg/geo"
)

// Defaults for MongoOptions.
const (
	DefaultDatabase   = "roadnet"
	DefaultCollection = "runs"
	connectTimeout    = 10 * time.Second
)

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps runs in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// runDocument is the BSON form of a Run.
type runDocument struct {
	ID          string    `bson:"_id"`
	Bounds      bboxDoc   `bson:"bbox"`
	CreatedAt   time.Time `bson:"created_at"`
	GraphHash   string    `bson:"graph_hash"`
	Component   string    `bson:"component"`
	Root        string    `bson:"root,omitempty"`
	Parallel    string    `bson:"parallel"`
	MaxDistance float64   `bson:"max_distance"`
	Summary     Summary   `bson:"summary"`
	Graph       []byte    `bson:"graph,omitempty"`
}

type bboxDoc struct {
	MinLon float64 `bson:"min_lon"`
	MinLat float64 `bson:"min_lat"`
	MaxLon float64 `bson:"max_lon"`
	MaxLat float64 `bson:"max_lat"`
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the created_at index exists.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, r *Run) error {
	_, err := s.coll.InsertOne(ctx, toDocument(r))
	if mongo.IsDuplicateKeyError(err) {
		return duplicate(r.ID)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save run %s", r.ID)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	var doc runDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "get run %s", id)
	}
	return doc.run()
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "graph", Value: 0}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}
	var docs []runDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list runs")
	}

	out := make([]*Run, 0, len(docs))
	for _, d := range docs {
		r, err := d.run()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func toDocument(r *Run) runDocument {
	return runDocument{
		ID: r.ID.String(),
		Bounds: bboxDoc{
			MinLon: r.Bounds.MinLon,
			MinLat: r.Bounds.MinLat,
			MaxLon: r.Bounds.MaxLon,
			MaxLat: r.Bounds.MaxLat,
		},
		CreatedAt:   r.CreatedAt,
		GraphHash:   r.GraphHash,
		Component:   r.Component,
		Root:        r.Root,
		Parallel:    r.Parallel,
		MaxDistance: r.MaxDistance,
		Summary:     r.Summary,
		Graph:       r.Graph,
	}
}

func (d runDocument) run() (*Run, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stored run has invalid id %q", d.ID)
	}
	return &Run{
		ID: id,
		Bounds: geo.Bounds{
			MinLon: d.Bounds.MinLon,
			MinLat: d.Bounds.MinLat,
			MaxLon: d.Bounds.MaxLon,
			MaxLat: d.Bounds.MaxLat,
		},
		CreatedAt:   d.CreatedAt.UTC(),
		GraphHash:   d.GraphHash,
		Component:   d.Component,
		Root:        d.Root,
		Parallel:    d.Parallel,
		MaxDistance: d.MaxDistance,
		Summary:     d.Summary,
		Graph:       d.Graph,
	}, nil
}
