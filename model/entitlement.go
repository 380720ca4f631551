package model

import (
	"context"

	"github.com/chatpp/relay/common"
	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/common/logger"
)

// ChargeKind names the entitlement counter a charge plan consumes. Wire names
// match the historical calctype values.
type ChargeKind string

const (
	ChargeKindPoints       ChargeKind = "points"
	ChargeKindStandardDays ChargeKind = "days"
	ChargeKindPlusDays     ChargeKind = "daysplus"
)

// Account tiers, ascending by privilege.
const (
	TierGuest = 0
	TierPaid  = 3
)

// EntitlementSnapshot is a point-in-time view of one account's remaining
// quota. It is read fresh per request; day counts are derived from key TTLs
// (remaining whole days = ceil(secondsRemaining / 86400)).
type EntitlementSnapshot struct {
	AccountId    string `json:"-"`
	Tier         int    `json:"usertype"`
	Points       int64  `json:"points"`
	StandardDays int64  `json:"days"`
	PlusDays     int64  `json:"daysplus"`
}

// Normalize clamps invalid (negative) counters to zero so a damaged record
// reads as exhausted quota instead of poisoning the evaluator.
func (s EntitlementSnapshot) Normalize() EntitlementSnapshot {
	if s.Points < 0 {
		s.Points = 0
	}
	if s.StandardDays < 0 {
		s.StandardDays = 0
	}
	if s.PlusDays < 0 {
		s.PlusDays = 0
	}
	return s
}

// ChargePlan is the quota evaluator's verdict on how to bill one accepted
// request. It is applied at most once, after the first successful upstream
// byte.
type ChargePlan struct {
	AccountId string
	Kind      ChargeKind
	Amount    int64
}

// EntitlementStore is the only shared mutable resource of the relay. Both
// mutations must be single atomic store operations; concurrent requests for
// one account coordinate exclusively through them.
type EntitlementStore interface {
	// ReadSnapshot returns the account's current entitlements; unknown
	// accounts yield an all-zero snapshot, never an error.
	ReadSnapshot(ctx context.Context, accountId string) (EntitlementSnapshot, error)
	// ApplyCharge consumes the planned quota. For the points kind it
	// atomically decrements the balance floored at zero and returns the
	// balance before the decrement; day kinds are consumed by elapsed time
	// and return the current balance unchanged.
	ApplyCharge(ctx context.Context, plan ChargePlan) (previousPoints int64, err error)
	// ExtendPass lengthens a day pass by whole days, stacking on the current
	// remaining TTL so a new purchase never shortens an existing pass.
	ExtendPass(ctx context.Context, accountId string, kind ChargeKind, days int) error
	// GrantPoints atomically adds points and marks the account as paid tier.
	GrantPoints(ctx context.Context, accountId string, points int64) error
}

// Store is the process-wide entitlement store, selected by InitStore.
var Store EntitlementStore

// InitStore binds the entitlement store to Redis when available, otherwise to
// the in-process fallback suitable only for single-instance deployments.
func InitStore() {
	if common.IsRedisEnabled() {
		Store = NewRedisStore(common.RDB, config.EntitlementKeyPrefix)
		logger.Logger.Info("entitlement store backed by Redis")
		return
	}
	Store = NewMemoryStore()
	logger.Logger.Warn("entitlement store running in-process; balances reset on restart")
}
