package repository

import (
	"context"

	"github.com/fathima-sithara/chatroom-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoMessageRepo struct {
	col *mongo.Collection
}

func NewMongoMessageRepo(db *mongo.Database, collection string) MessageRepository {
	return &mongoMessageRepo{col: db.Collection(collection)}
}

// VisibilityFilter mirrors models.Message.VisibleTo as a query document.
func VisibilityFilter(viewer string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"from": viewer},
		bson.M{"to": viewer},
		bson.M{"to": models.BroadcastTarget},
		bson.M{"type": models.TypeMessage},
	}}
}

func (r *mongoMessageRepo) Insert(ctx context.Context, m *models.Message) error {
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = id
	}
	return nil
}

func (r *mongoMessageRepo) ListVisible(ctx context.Context, viewer string, limit int64) ([]models.Message, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, VisibilityFilter(viewer), opts)
	if err != nil {
		return nil, err
	}
	out := []models.Message{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
