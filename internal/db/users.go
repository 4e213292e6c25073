package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleetflow/internal/models"
)

// UserCollection defines the user store operations the auth handlers
// depend on.
type UserCollection interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// InsertUser inserts a new user.
func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()
	res, err := s.db.Collection(colUsers).InsertOne(ctx, user)
	if err != nil {
		return err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindUserByID finds a user by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID("user", id)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, wrapNotFound(err, "user", id)
	}
	return &user, nil
}

// FindUserByEmail finds a user by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, wrapNotFound(err, "user", email)
	}
	return &user, nil
}
