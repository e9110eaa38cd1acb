package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lumichat/otp-api/internal/domain"
)

// OTPCodeRepo manages issued codes for strict verification.
// PK: email. Items expire through the expires_at TTL attribute.
type OTPCodeRepo struct {
	client    API
	tableName string
}

func NewOTPCodeRepo(client API, tableName string) *OTPCodeRepo {
	return &OTPCodeRepo{client: client, tableName: tableName}
}

// Put replaces any previous code issued to the same email.
func (r *OTPCodeRepo) Put(ctx context.Context, rec *domain.OTPRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OTPCodeRepo) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrEmail, email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// RecordAttempt spends one guess on the record and returns the new count. The
// increment is conditional on the record existing with fewer than max attempts;
// otherwise it returns domain.ErrNotFound or domain.ErrTooManyAttempts.
func (r *OTPCodeRepo) RecordAttempt(ctx context.Context, email string, max int) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(attrEmail, email),
		UpdateExpression:    aws.String("ADD #a :one"),
		ConditionExpression: aws.String("attribute_exists(#k) AND #a < :max"),
		ExpressionAttributeNames: map[string]string{
			"#a": attrAttempts,
			"#k": attrEmail,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":max": &types.AttributeValueMemberN{Value: strconv.Itoa(max)},
		},
		ReturnValues:                        types.ReturnValueUpdatedNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		if len(ccf.Item) == 0 {
			return 0, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("otp for %s: %w", email, domain.ErrTooManyAttempts)
	}
	if err != nil {
		return 0, err
	}

	var updated struct {
		Attempts int `dynamodbav:"attempts"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return 0, fmt.Errorf("unmarshal otp attempts: %w", err)
	}
	return updated.Attempts, nil
}

// Delete removes the record, reporting domain.ErrNotFound when it was already gone.
func (r *OTPCodeRepo) Delete(ctx context.Context, email string) error {
	cond, names := exists(attrEmail)
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(attrEmail, email),
		ConditionExpression:      aws.String(cond),
		ExpressionAttributeNames: names,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return err
}
