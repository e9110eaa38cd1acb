package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/lumichat/otp-api/internal/config"
	"github.com/lumichat/otp-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func tablesFixture() config.DynamoTables {
	return config.DynamoTables{Users: "users", OTPCodes: "otp_codes"}
}

func TestUserRepo_GetByEmail_NotFound(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := NewUserRepo(api, "users").GetByEmail(context.Background(), "a@b.com")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUserRepo_GetByEmail_Found(t *testing.T) {
	want := domain.User{UserID: "u1", Name: "Alice", Email: "a@b.com", Password: "pw", CreatedAt: time.Unix(0, 0).UTC()}
	item, err := attributevalue.MarshalMap(want)
	require.NoError(t, err)
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return *in.TableName == "users" && *in.ConsistentRead
	})).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	got, err := NewUserRepo(api, "users").GetByEmail(context.Background(), "a@b.com")

	require.NoError(t, err)
	assert.Equal(t, want, *got)
}

func TestUserRepo_Create_IsConditional(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return *in.ConditionExpression == "attribute_not_exists(#k)" && in.ExpressionAttributeNames["#k"] == "email"
	})).Return(nil)

	err := NewUserRepo(api, "users").Create(context.Background(), &domain.User{Email: "a@b.com"})

	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestUserRepo_Create_ConflictOnExistingEmail(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.Anything).Return(conditionFailed())

	err := NewUserRepo(api, "users").Create(context.Background(), &domain.User{Email: "a@b.com"})

	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUserRepo_Create_PassesThroughOtherErrors(t *testing.T) {
	api := &mockAPI{}
	api.On("PutItem", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	err := NewUserRepo(api, "users").Create(context.Background(), &domain.User{Email: "a@b.com"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, "throttled", err.Error())
}
