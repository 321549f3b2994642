package fileindex

import (
	"context"
	"errors"

	"eegdash/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("recording not found")

type RecordingRepository interface {
	Save(ctx context.Context, rec *Recording) error
	Get(ctx context.Context, id string) (*Recording, error)
	Count(ctx context.Context, id string) (int64, error)
	List(ctx context.Context) ([]*Recording, error)
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}

type RecordingRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRecordingRepository(mongodb *database.MongodbDB) RecordingRepository {
	return &RecordingRepositoryImpl{
		Collection: mongodb.DB.Collection("eeg_files"),
	}
}

func (r *RecordingRepositoryImpl) Save(ctx context.Context, rec *Recording) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, rec)
	return err
}

func (r *RecordingRepositoryImpl) Get(ctx context.Context, id string) (*Recording, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var rec Recording
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Count is an existence check; malformed ids count as zero
func (r *RecordingRepositoryImpl) Count(ctx context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	return r.Collection.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
}

func (r *RecordingRepositoryImpl) List(ctx context.Context) ([]*Recording, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploaded_at", Value: -1}})
	cursor, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var recs []*Recording
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *RecordingRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RecordingRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "uploaded_at", Value: -1}},
			Options: options.Index().SetName("idx_uploaded_at"),
		},
		{
			Keys:    bson.D{{Key: "path", Value: 1}},
			Options: options.Index().SetName("idx_path"),
		},
	}
	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}
