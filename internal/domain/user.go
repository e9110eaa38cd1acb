package domain

import "time"

// User is a registered account. The email is the store key and the password is
// kept exactly as submitted.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id" bson:"user_id" db:"id"`
	Name      string    `json:"name" dynamodbav:"name" bson:"name" db:"name"`
	Email     string    `json:"email" dynamodbav:"email" bson:"email" db:"email"`
	Password  string    `json:"password" dynamodbav:"password" bson:"password" db:"password"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at" bson:"created_at" db:"created_at"`
}
