package mongo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/lumichat/otp-api/internal/domain"
)

func TestUserRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by email not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "lumichat.users", mtest.FirstBatch))

		_, err := NewUserRepo(mt.Coll).GetByEmail(context.Background(), "a@b.com")

		assert.True(mt, errors.Is(err, domain.ErrNotFound))
	})

	mt.Run("get by email found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "lumichat.users", mtest.FirstBatch, bson.D{
			{Key: "user_id", Value: "u1"},
			{Key: "name", Value: "Alice"},
			{Key: "email", Value: "a@b.com"},
			{Key: "password", Value: "pw"},
		}))

		u, err := NewUserRepo(mt.Coll).GetByEmail(context.Background(), "a@b.com")

		require.NoError(mt, err)
		assert.Equal(mt, "u1", u.UserID)
		assert.Equal(mt, "Alice", u.Name)
		assert.Equal(mt, "pw", u.Password)
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		err := NewUserRepo(mt.Coll).Create(context.Background(), &domain.User{UserID: "u1", Email: "a@b.com"})

		assert.NoError(mt, err)
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: lumichat.users index: email_unique",
		}))

		err := NewUserRepo(mt.Coll).Create(context.Background(), &domain.User{UserID: "u1", Email: "a@b.com"})

		assert.True(mt, errors.Is(err, domain.ErrConflict))
	})
}
