package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumichat/otp-api/internal/domain"
)

// UserRepo stores users in a collection with a unique index on email.
type UserRepo struct {
	coll *mongo.Collection
}

func NewUserRepo(coll *mongo.Collection) *UserRepo {
	return &UserRepo{coll: coll}
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts u. The unique email index turns a duplicate into domain.ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("email %s: %w", u.Email, domain.ErrConflict)
	}
	return err
}
