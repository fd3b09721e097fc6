package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/diagnosis/wedding-rsvp/internal/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

type mongoRSVPRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewMongoRSVPRepository(db *mongo.Database, collection string, timeout time.Duration) RSVPRepository {
	return &mongoRSVPRepository{
		coll:    db.Collection(collection),
		timeout: timeout,
	}
}

// EnsureMongoIndexes creates the descending timestamp index the list query sorts on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database, collection string) error {
	_, err := db.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("timestamp_desc"),
	})
	if err != nil {
		return fmt.Errorf("create timestamp index: %w", err)
	}
	return nil
}

func (r *mongoRSVPRepository) Insert(ctx context.Context, rsvp *domain.RSVP) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, rsvp); err != nil {
		return fmt.Errorf("insert rsvp: %w", err)
	}
	return nil
}

func (r *mongoRSVPRepository) ListRecent(ctx context.Context, limit int) ([]domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.D{}, recentFindOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("find rsvps: %w", err)
	}

	out := make([]domain.RSVP, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode rsvps: %w", err)
	}
	return out, nil
}

// recentFindOptions sorts newest first, caps at limit and drops _id so
// documents decode straight into domain.RSVP.
func recentFindOptions(limit int) *options.FindOptionsBuilder {
	return options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.D{{Key: "_id", Value: 0}})
}

func (r *mongoRSVPRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
