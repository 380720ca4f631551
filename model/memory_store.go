package model

import (
	"context"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
)

// MemoryStore mirrors the Redis store contract for deployments without Redis
// and for tests. The mutex stands in for Redis's single-threaded command
// execution: every mutation is atomic with respect to concurrent requests.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*memoryAccount
	// now is swappable so expiry behavior stays testable.
	now func() time.Time
}

type memoryAccount struct {
	points     int64
	tier       int
	standardAt time.Time
	plusAt     time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*memoryAccount),
		now:      time.Now,
	}
}

func (s *MemoryStore) account(accountId string) *memoryAccount {
	acct, ok := s.accounts[accountId]
	if !ok {
		acct = &memoryAccount{}
		s.accounts[accountId] = acct
	}
	return acct
}

func (s *MemoryStore) ReadSnapshot(_ context.Context, accountId string) (EntitlementSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := EntitlementSnapshot{AccountId: accountId}
	acct, ok := s.accounts[accountId]
	if !ok {
		return snapshot, nil
	}
	now := s.now()
	snapshot.Points = acct.points
	snapshot.Tier = acct.tier
	snapshot.StandardDays = ceilDays(acct.standardAt.Sub(now))
	snapshot.PlusDays = ceilDays(acct.plusAt.Sub(now))
	return snapshot.Normalize(), nil
}

func (s *MemoryStore) ApplyCharge(_ context.Context, plan ChargePlan) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[plan.AccountId]
	if !ok {
		return 0, nil
	}
	if plan.Kind != ChargeKindPoints {
		return acct.points, nil
	}
	previous := acct.points
	if previous <= 0 {
		return 0, nil
	}
	dec := plan.Amount
	if dec > previous {
		dec = previous
	}
	acct.points -= dec
	return previous, nil
}

func (s *MemoryStore) ExtendPass(_ context.Context, accountId string, kind ChargeKind, days int) error {
	if kind != ChargeKindStandardDays && kind != ChargeKindPlusDays {
		return errors.Errorf("charge kind %q is not a day pass", kind)
	}
	if days <= 0 {
		return errors.Errorf("pass extension must be positive, got %d", days)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.account(accountId)
	now := s.now()
	extension := time.Duration(days) * 24 * time.Hour
	switch kind {
	case ChargeKindStandardDays:
		acct.standardAt = stackExpiry(acct.standardAt, now, extension)
	case ChargeKindPlusDays:
		acct.plusAt = stackExpiry(acct.plusAt, now, extension)
	}
	return nil
}

func (s *MemoryStore) GrantPoints(_ context.Context, accountId string, points int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := s.account(accountId)
	acct.points += points
	acct.tier = TierPaid
	return nil
}

// stackExpiry extends from the current remaining time when the pass is still
// live, from now when it has lapsed.
func stackExpiry(current, now time.Time, extension time.Duration) time.Time {
	if current.After(now) {
		return current.Add(extension)
	}
	return now.Add(extension)
}
