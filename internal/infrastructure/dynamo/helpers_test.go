package dynamo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- mock ---

type mockAPI struct{ mock.Mock }

func (m *mockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	return &dynamodb.PutItemOutput{}, args.Error(0)
}
func (m *mockAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	return &dynamodb.DeleteItemOutput{}, args.Error(0)
}
func (m *mockAPI) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, in)
	return &dynamodb.CreateTableOutput{}, args.Error(0)
}
func (m *mockAPI) UpdateTimeToLive(ctx context.Context, in *dynamodb.UpdateTimeToLiveInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateTimeToLiveOutput, error) {
	args := m.Called(ctx, in)
	return &dynamodb.UpdateTimeToLiveOutput{}, args.Error(0)
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
}

func strPtr(s string) *string { return &s }

// --- helper tests ---

func TestStrKey(t *testing.T) {
	key := strKey("email", "a@b.com")
	v, ok := key["email"].(*types.AttributeValueMemberS)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", v.Value)
}

func TestNotExists(t *testing.T) {
	expr, names := notExists("email")
	assert.Equal(t, "attribute_not_exists(#k)", expr)
	assert.Equal(t, map[string]string{"#k": "email"}, names)
}

func TestIsConditionFailed(t *testing.T) {
	assert.True(t, isConditionFailed(conditionFailed()))
	assert.True(t, isConditionFailed(fmt.Errorf("put: %w", conditionFailed())))
	assert.False(t, isConditionFailed(errors.New("throttled")))
	assert.False(t, isConditionFailed(nil))
}

func TestBootstrap_CodesTableOnlyWhenRequested(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateTable", mock.Anything, mock.MatchedBy(func(in *dynamodb.CreateTableInput) bool {
		return *in.TableName == "users"
	})).Return(&types.ResourceInUseException{}).Once()

	Bootstrap(context.Background(), api, tablesFixture(), false)

	api.AssertExpectations(t)
	api.AssertNotCalled(t, "UpdateTimeToLive", mock.Anything, mock.Anything)
}

func TestBootstrap_StrictCreatesCodesTableWithTTL(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateTable", mock.Anything, mock.Anything).Return(nil).Twice()
	api.On("UpdateTimeToLive", mock.Anything, mock.MatchedBy(func(in *dynamodb.UpdateTimeToLiveInput) bool {
		return *in.TableName == "otp_codes" && *in.TimeToLiveSpecification.AttributeName == "expires_at"
	})).Return(nil).Once()

	Bootstrap(context.Background(), api, tablesFixture(), true)

	api.AssertExpectations(t)
}
