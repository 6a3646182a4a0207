package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "carrent:reset:"

// Store keeps codes, issue history and reset tokens in Redis.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func codeKey(userID string) string    { return keyPrefix + "code:" + userID }
func issuedKey(subject string) string { return keyPrefix + "issued:" + subject }
func tokenKey(tokenHash string) string {
	return keyPrefix + "token:" + tokenHash
}

// allowScript is a sliding window over a sorted set of issue times.
// It only records the issue when it is allowed.
var allowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= limit then
	redis.call('PEXPIRE', key, window)
	return {0, count}
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return {1, count + 1}
`)

// Allow records one issue for subject unless limit issues already happened within window.
func (s *Store) Allow(ctx context.Context, subject string, now time.Time, window time.Duration, limit int) (bool, error) {
	res, err := allowScript.Run(ctx, s.client, []string{issuedKey(subject)},
		now.UnixMilli(), window.Milliseconds(), limit, uuid.NewString()).Int64Slice()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return false, fmt.Errorf("unexpected rate limit reply: %v", res)
	}
	return res[0] == 1, nil
}

// SaveCode replaces any outstanding code for the user.
// The key outlives expiresAt so a late attempt is told the code expired rather than missing.
func (s *Store) SaveCode(ctx context.Context, userID, codeHash string, expiresAt time.Time, ttl time.Duration) error {
	key := codeKey(userID)
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"hash":       codeHash,
		"attempts":   0,
		"expires_at": expiresAt.UnixMilli(),
		"verified":   0,
	})
	pipe.PExpire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save verification code failed: %w", err)
	}
	return nil
}

// verifyScript checks expiry, then attempts, then the code, in that order.
// Only a wrong code increments attempts.
var verifyScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local max = tonumber(ARGV[2])
local hash = ARGV[3]

if redis.call('EXISTS', key) == 0 then
	return 0
end
if redis.call('HGET', key, 'verified') == '1' then
	return 0
end
if now > tonumber(redis.call('HGET', key, 'expires_at')) then
	return -1
end
if tonumber(redis.call('HGET', key, 'attempts')) >= max then
	return -2
end
if redis.call('HGET', key, 'hash') ~= hash then
	redis.call('HINCRBY', key, 'attempts', 1)
	return -3
end

redis.call('HSET', key, 'verified', 1)
return 1
`)

func (s *Store) VerifyCode(ctx context.Context, userID, codeHash string, now time.Time, maxAttempts int) (codeState, error) {
	res, err := verifyScript.Run(ctx, s.client, []string{codeKey(userID)}, now.UnixMilli(), maxAttempts, codeHash).Int64()
	if err != nil {
		return codeMissing, fmt.Errorf("verify code failed: %w", err)
	}
	return codeState(res), nil
}

// Attempts returns the stored wrong-attempt counter, zero when there is no code.
func (s *Store) Attempts(ctx context.Context, userID string) (int, error) {
	n, err := s.client.HGet(ctx, codeKey(userID), "attempts").Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *Store) DeleteCode(ctx context.Context, userID string) error {
	return s.client.Del(ctx, codeKey(userID)).Err()
}

func (s *Store) SaveToken(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(tokenHash), userID, ttl).Err(); err != nil {
		return fmt.Errorf("save reset token failed: %w", err)
	}
	return nil
}

// ConsumeToken returns the token's user and deletes it in one step.
// An empty user ID means the token is unknown, used or expired.
func (s *Store) ConsumeToken(ctx context.Context, tokenHash string) (string, error) {
	userID, err := s.client.GetDel(ctx, tokenKey(tokenHash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("consume reset token failed: %w", err)
	}
	return userID, nil
}
