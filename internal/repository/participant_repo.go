package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fathima-sithara/chatroom-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoParticipantRepo struct {
	col *mongo.Collection
}

func NewMongoParticipantRepo(db *mongo.Database, collection string) ParticipantRepository {
	return &mongoParticipantRepo{col: db.Collection(collection)}
}

// EnsureIndexes enforces one document per name.
func (r *mongoParticipantRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_name"),
	})
	if err != nil {
		return fmt.Errorf("create participants index: %w", err)
	}
	return nil
}

func (r *mongoParticipantRepo) Create(ctx context.Context, p *models.Participant) error {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateParticipant
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = id
	}
	return nil
}

func (r *mongoParticipantRepo) FindByName(ctx context.Context, name string) (*models.Participant, error) {
	var p models.Participant
	err := r.col.FindOne(ctx, bson.M{"name": name}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *mongoParticipantRepo) List(ctx context.Context) ([]models.Participant, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoParticipantRepo) Touch(ctx context.Context, name string, at int64) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"name": name}, bson.M{"$set": bson.M{"lastStatus": at}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *mongoParticipantRepo) FindInactive(ctx context.Context, threshold int64) ([]models.Participant, error) {
	return r.find(ctx, bson.M{"lastStatus": bson.M{"$lte": threshold}})
}

// DeleteInactive removes name only if it is still stale, so a heartbeat that
// lands between detection and removal wins.
func (r *mongoParticipantRepo) DeleteInactive(ctx context.Context, name string, threshold int64) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"name": name, "lastStatus": bson.M{"$lte": threshold}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

func (r *mongoParticipantRepo) Delete(ctx context.Context, name string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"name": name})
	return err
}

func (r *mongoParticipantRepo) find(ctx context.Context, filter bson.M) ([]models.Participant, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := []models.Participant{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
