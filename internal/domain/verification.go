package domain

import "time"

// OTPRecord is an issued code kept for strict verification.
// PK: email. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OTPRecord struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	Attempts  int    `json:"attempts" dynamodbav:"attempts"`
}

// Expired reports whether the record is past its expiry at now.
func (r *OTPRecord) Expired(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}
