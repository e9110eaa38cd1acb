package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lumichat/otp-api/internal/config"
)

// Bootstrap creates the users table, and the OTP code table when withCodes is set,
// if they don't already exist. Safe to call on every startup.
func Bootstrap(ctx context.Context, client API, tables config.DynamoTables, withCodes bool) {
	createTable(ctx, client, emailKeyedTable(tables.Users))

	if withCodes {
		createTable(ctx, client, emailKeyedTable(tables.OTPCodes))
		enableTTL(ctx, client, tables.OTPCodes, attrExpiresAt)
	}
}

// emailKeyedTable describes a pay-per-request table whose hash key is the email.
func emailKeyedTable(name string) *dynamodb.CreateTableInput {
	return &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(attrEmail), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(attrEmail), KeyType: types.KeyTypeHash},
		},
	}
}

func createTable(ctx context.Context, client API, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException: the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
	} else {
		slog.Info("created table", "table", *input.TableName)
	}
}

func enableTTL(ctx context.Context, client API, tableName, ttlAttr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(ttlAttr),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", tableName, "err", err)
	}
}
