package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable wraps Redis transport failures.
var ErrStoreUnavailable = errors.New("session store unavailable")

// ErrTokenExists is returned when an insert collides with a live token.
var ErrTokenExists = errors.New("session token already exists")

// ErrSessionCorrupt is returned when a stored session blob cannot be decoded.
var ErrSessionCorrupt = errors.New("session blob corrupt")

const sweepBatchSize = 512

const deleteSessionScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  redis.call("ZREM", KEYS[2], ARGV[1])
  return 0
end

local admin_len = string.byte(data, 2)
if admin_len and #data >= 2 + admin_len then
  local admin_id = string.sub(data, 3, 2 + admin_len)
  redis.call("SREM", ARGV[2] .. admin_id, ARGV[1])
end

redis.call("DEL", KEYS[1])
redis.call("ZREM", KEYS[2], ARGV[1])
return 1
`

var deleteSessionLua = redis.NewScript(deleteSessionScript)

const updateSessionScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
redis.call("ZADD", KEYS[2], ARGV[3], ARGV[4])
return 1
`

var updateSessionLua = redis.NewScript(updateSessionScript)

const sweepExpiredScript = `
local tokens = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", ARGV[1], "LIMIT", 0, tonumber(ARGV[2]))
local removed = 0

for _, token in ipairs(tokens) do
  local token_key = ARGV[3] .. token
  local data = redis.call("GET", token_key)
  if data then
    local admin_len = string.byte(data, 2)
    if admin_len and #data >= 2 + admin_len then
      local admin_id = string.sub(data, 3, 2 + admin_len)
      redis.call("SREM", ARGV[4] .. admin_id, token)
    end
    redis.call("DEL", token_key)
    removed = removed + 1
  end
  redis.call("ZREM", KEYS[1], token)
end

return {#tokens, removed}
`

var sweepExpiredLua = redis.NewScript(sweepExpiredScript)

// Store is the Redis-backed session store. It keeps one string per token,
// a ZSET of tokens scored by expiry, and one SET of tokens per admin.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) tokenKey(token string) string {
	return s.prefix + ":tok:" + token
}

func (s *Store) tokenKeyPrefix() string {
	return s.prefix + ":tok:"
}

func (s *Store) expiryKey() string {
	return s.prefix + ":exp"
}

func (s *Store) adminKey(adminID string) string {
	return s.prefix + ":adm:" + adminID
}

func (s *Store) adminKeyPrefix() string {
	return s.prefix + ":adm:"
}

// Insert persists a new session. The token key is claimed with SET NX so a
// colliding token is rejected with [ErrTokenExists] instead of overwriting
// the existing session.
func (s *Store) Insert(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	ok, err := s.redis.SetNX(ctx, s.tokenKey(sess.Token), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrTokenExists
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, s.expiryKey(), redis.Z{Score: float64(sess.ExpiresAt), Member: sess.Token})
		pipe.SAdd(ctx, s.adminKey(sess.AdminID), sess.Token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// Get fetches a session by token without mutating TTL or any other Redis
// state. Missing tokens surface as redis.Nil.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.redis.Get(ctx, s.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	sess.Token = token

	return sess, nil
}

// Update rewrites an existing session blob and its expiry index entry.
// Used by refresh, where ExpiresAt moves forward. The rewrite happens only
// while the token key still exists, so an interleaved revoke always wins;
// a token deleted since it was read surfaces as redis.Nil.
func (s *Store) Update(ctx context.Context, sess *Session, ttl time.Duration) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}

	written, err := updateSessionLua.Run(
		ctx,
		s.redis,
		[]string{s.tokenKey(sess.Token), s.expiryKey()},
		data,
		ttl.Milliseconds(),
		sess.ExpiresAt,
		sess.Token,
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if written == 0 {
		return redis.Nil
	}

	return nil
}

// Delete removes a session and its index entries. Deleting a token that no
// longer exists is a no-op, so the call is safe to repeat.
func (s *Store) Delete(ctx context.Context, token string) error {
	_, err := deleteSessionLua.Run(
		ctx,
		s.redis,
		[]string{s.tokenKey(token), s.expiryKey()},
		token,
		s.adminKeyPrefix(),
	).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

// DeleteAllForAdmin removes every tracked session for one admin.
func (s *Store) DeleteAllForAdmin(ctx context.Context, adminID string) (int, error) {
	tokens, err := s.redis.SMembers(ctx, s.adminKey(adminID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	for _, token := range tokens {
		if err := s.Delete(ctx, token); err != nil {
			return 0, err
		}
	}

	if err := s.redis.Del(ctx, s.adminKey(adminID)).Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return len(tokens), nil
}

// DeleteExpired removes sessions whose expiry is at or before cutoff
// (Unix seconds), batching through the expiry index until it is drained.
// Returns the number of sessions removed.
func (s *Store) DeleteExpired(ctx context.Context, cutoff int64) (int, error) {
	var total int

	for {
		result, err := sweepExpiredLua.Run(
			ctx,
			s.redis,
			[]string{s.expiryKey()},
			cutoff,
			sweepBatchSize,
			s.tokenKeyPrefix(),
			s.adminKeyPrefix(),
		).Int64Slice()
		if err != nil {
			return total, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if len(result) != 2 {
			return total, fmt.Errorf("%w: invalid sweep script response", ErrStoreUnavailable)
		}

		scanned, removed := result[0], result[1]
		total += int(removed)
		if scanned < sweepBatchSize {
			return total, nil
		}
	}
}

// CountForAdmin returns the number of tracked tokens for one admin.
func (s *Store) CountForAdmin(ctx context.Context, adminID string) (int, error) {
	count, err := s.redis.SCard(ctx, s.adminKey(adminID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return int(count), nil
}

// TokensForAdmin returns the tracked tokens for one admin.
func (s *Store) TokensForAdmin(ctx context.Context, adminID string) ([]string, error) {
	tokens, err := s.redis.SMembers(ctx, s.adminKey(adminID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return tokens, nil
}

// ActiveCount returns the size of the expiry index, which tracks every
// live session regardless of owner. Expired-but-unswept entries are
// included; the sweeper keeps the drift bounded.
func (s *Store) ActiveCount(ctx context.Context) (int, error) {
	count, err := s.redis.ZCard(ctx, s.expiryKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return int(count), nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
