package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/mossy-p/socio-relay/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Users struct {
	coll *mongo.Collection
}

// Create inserts user and sets its ID. A taken email or username yields
// ErrDuplicate.
func (u *Users) Create(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	res, err := u.coll.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("insert user: %w", mapError(err))
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (u *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return u.findOne(ctx, bson.M{"email": email})
}

func (u *Users) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return u.findOne(ctx, bson.M{"_id": oid})
}

func (u *Users) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := u.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapError(err)
	}
	return &user, nil
}
