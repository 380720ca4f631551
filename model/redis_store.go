package model

import (
	"context"
	"fmt"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/go-redis/redis/v8"
)

// decrementWithFloor atomically consumes up to ARGV[2] points from a hash
// field, never driving it below zero, and returns the balance before the
// decrement. Running it server-side closes the read-modify-write race between
// concurrent requests for the same account.
var decrementWithFloor = redis.NewScript(`
local balance = tonumber(redis.call('HGET', KEYS[1], ARGV[1]) or "0")
if balance <= 0 then
    return 0
end
local dec = tonumber(ARGV[2])
if dec > balance then
    dec = balance
end
redis.call('HINCRBY', KEYS[1], ARGV[1], -dec)
return balance
`)

// extendExpiry stacks ARGV[1] seconds onto the key's remaining TTL. A missing
// or persistent key counts as zero remaining, so a fresh purchase starts from
// now.
var extendExpiry = redis.NewScript(`
local ttl = redis.call('TTL', KEYS[1])
if ttl < 0 then
    ttl = 0
end
redis.call('SET', KEYS[1], '1', 'EX', ttl + tonumber(ARGV[1]))
return ttl + tonumber(ARGV[1])
`)

const secondsPerDay = 86400

// RedisStore keeps entitlements in Redis: a points hash, a tier hash, and one
// TTL-bearing key per day pass. All mutations are single atomic commands or
// scripts.
type RedisStore struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisStore(rdb redis.Cmdable, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) pointsKey() string {
	return s.prefix + ":points"
}

func (s *RedisStore) tierKey() string {
	return s.prefix + ":tier"
}

func (s *RedisStore) passKey(accountId string, kind ChargeKind) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, accountId)
}

func (s *RedisStore) ReadSnapshot(ctx context.Context, accountId string) (EntitlementSnapshot, error) {
	snapshot := EntitlementSnapshot{AccountId: accountId}

	pipe := s.rdb.Pipeline()
	pointsCmd := pipe.HGet(ctx, s.pointsKey(), accountId)
	tierCmd := pipe.HGet(ctx, s.tierKey(), accountId)
	daysCmd := pipe.TTL(ctx, s.passKey(accountId, ChargeKindStandardDays))
	plusCmd := pipe.TTL(ctx, s.passKey(accountId, ChargeKindPlusDays))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return snapshot, errors.Wrapf(err, "read entitlement snapshot for %s", accountId)
	}

	if points, err := pointsCmd.Int64(); err == nil {
		snapshot.Points = points
	}
	if tier, err := tierCmd.Int(); err == nil {
		snapshot.Tier = tier
	}
	snapshot.StandardDays = ceilDays(daysCmd.Val())
	snapshot.PlusDays = ceilDays(plusCmd.Val())
	return snapshot.Normalize(), nil
}

func (s *RedisStore) ApplyCharge(ctx context.Context, plan ChargePlan) (int64, error) {
	if plan.Kind != ChargeKindPoints {
		// Day passes are consumed by time, not by this call.
		snapshot, err := s.ReadSnapshot(ctx, plan.AccountId)
		if err != nil {
			return 0, err
		}
		return snapshot.Points, nil
	}

	previous, err := decrementWithFloor.Run(ctx, s.rdb,
		[]string{s.pointsKey()}, plan.AccountId, plan.Amount).Int64()
	if err != nil {
		return 0, errors.Wrapf(err, "decrement points for %s", plan.AccountId)
	}
	return previous, nil
}

func (s *RedisStore) ExtendPass(ctx context.Context, accountId string, kind ChargeKind, days int) error {
	if kind != ChargeKindStandardDays && kind != ChargeKindPlusDays {
		return errors.Errorf("charge kind %q is not a day pass", kind)
	}
	if days <= 0 {
		return errors.Errorf("pass extension must be positive, got %d", days)
	}
	err := extendExpiry.Run(ctx, s.rdb,
		[]string{s.passKey(accountId, kind)}, days*secondsPerDay).Err()
	if err != nil {
		return errors.Wrapf(err, "extend %s pass for %s", kind, accountId)
	}
	return nil
}

func (s *RedisStore) GrantPoints(ctx context.Context, accountId string, points int64) error {
	if err := s.rdb.HIncrBy(ctx, s.pointsKey(), accountId, points).Err(); err != nil {
		return errors.Wrapf(err, "grant points to %s", accountId)
	}
	if err := s.rdb.HSet(ctx, s.tierKey(), accountId, TierPaid).Err(); err != nil {
		return errors.Wrapf(err, "set tier for %s", accountId)
	}
	return nil
}

// ceilDays converts a remaining TTL to whole days, rounding up so a pass with
// any time left still counts as one day. Negative TTLs (missing key, no
// expiry) count as zero.
func ceilDays(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	seconds := int64(ttl / time.Second)
	if ttl%time.Second != 0 {
		seconds++
	}
	return (seconds + secondsPerDay - 1) / secondsPerDay
}
