package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumichat/otp-api/internal/domain"
)

const (
	fieldCode      = "code"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"
)

// OTPCodeStore keeps one hash per email; Redis expires the key at the record's expiry.
type OTPCodeStore struct {
	client *redis.Client
	prefix string
}

func NewOTPCodeStore(client *redis.Client) *OTPCodeStore {
	return &OTPCodeStore{client: client, prefix: "otp"}
}

func (s *OTPCodeStore) key(email string) string {
	return fmt.Sprintf("%s:%s", s.prefix, email)
}

// Put replaces any previous code issued to the same email.
func (s *OTPCodeStore) Put(ctx context.Context, rec *domain.OTPRecord) error {
	key := s.key(rec.Email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			fieldCode, rec.Code,
			fieldExpiresAt, rec.ExpiresAt,
			fieldAttempts, rec.Attempts,
		)
		pipe.ExpireAt(ctx, key, time.Unix(rec.ExpiresAt, 0))
		return nil
	})
	return err
}

func (s *OTPCodeStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	vals, err := s.client.HGetAll(ctx, s.key(email)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return decodeRecord(email, vals)
}

// recordAttempt increments the attempt counter only while the hash exists and is
// below ARGV[1]; -1 means no record, -2 means the limit was already reached.
var recordAttempt = redis.NewScript(`
local n = redis.call('HGET', KEYS[1], 'attempts')
if not n then
	if redis.call('EXISTS', KEYS[1]) == 0 then return -1 end
	n = 0
end
if tonumber(n) >= tonumber(ARGV[1]) then return -2 end
return redis.call('HINCRBY', KEYS[1], 'attempts', 1)
`)

// RecordAttempt spends one guess on the record and returns the new count. It
// returns domain.ErrNotFound when the key is gone and domain.ErrTooManyAttempts
// once max guesses have been spent. The key's expiry is left untouched.
func (s *OTPCodeStore) RecordAttempt(ctx context.Context, email string, max int) (int, error) {
	n, err := recordAttempt.Run(ctx, s.client, []string{s.key(email)}, max).Int()
	if err != nil {
		return 0, fmt.Errorf("record otp attempt: %w", err)
	}
	switch n {
	case -1:
		return 0, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	case -2:
		return 0, fmt.Errorf("otp for %s: %w", email, domain.ErrTooManyAttempts)
	}
	return n, nil
}

// Delete removes the record, reporting domain.ErrNotFound when it was already gone.
func (s *OTPCodeStore) Delete(ctx context.Context, email string) error {
	n, err := s.client.Del(ctx, s.key(email)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	return nil
}

func decodeRecord(email string, vals map[string]string) (*domain.OTPRecord, error) {
	rec := &domain.OTPRecord{Email: email, Code: vals[fieldCode]}
	var err error
	if rec.ExpiresAt, err = strconv.ParseInt(vals[fieldExpiresAt], 10, 64); err != nil {
		return nil, fmt.Errorf("decode otp expiry: %w", err)
	}
	if v, ok := vals[fieldAttempts]; ok {
		if rec.Attempts, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("decode otp attempts: %w", err)
		}
	}
	return rec, nil
}
