package dynamo

import (
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB attribute names used in key and condition expressions.
const (
	attrEmail     = "email"
	attrAttempts  = "attempts"
	attrExpiresAt = "expires_at"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// notExists is a condition expression that only holds when no item with the
// same hash key is stored.
func notExists(attr string) (string, map[string]string) {
	return "attribute_not_exists(#k)", map[string]string{"#k": attr}
}

// exists is a condition expression that only holds when the item is stored.
func exists(attr string) (string, map[string]string) {
	return "attribute_exists(#k)", map[string]string{"#k": attr}
}

// isConditionFailed reports whether err is a failed ConditionExpression.
func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
