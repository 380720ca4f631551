package quota

import (
	"strings"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/model"
)

// Deny reasons. Responses to callers stay generic; these feed logs and tests.
const (
	ReasonInsufficientPremium = "insufficient premium entitlement"
	ReasonQuotaExhausted      = "quota exhausted"
)

// Decision is the quota evaluator's verdict for one request.
type Decision struct {
	Allow  bool
	Reason string
	Plan   model.ChargePlan
}

func allow(accountId string, kind model.ChargeKind, amount int64) Decision {
	return Decision{
		Allow: true,
		Plan:  model.ChargePlan{AccountId: accountId, Kind: kind, Amount: amount},
	}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Evaluate decides whether a request may proceed and how to bill it. Pure and
// total: it never errors, and invalid snapshots read as exhausted quota.
//
// Precedence is fixed; the first matching rule wins. Day passes go first
// because they are already paid for and expire by calendar time, so they
// should be exhausted before any point is spent. Premium models never run on
// a plain standard-day pass: their compute cost is materially higher, so they
// require a plus pass or points.
func Evaluate(snapshot model.EntitlementSnapshot, premium bool) Decision {
	snapshot = snapshot.Normalize()

	if snapshot.PlusDays > 0 {
		// The pass is consumed by its own expiry; no explicit debit.
		return allow(snapshot.AccountId, model.ChargeKindPlusDays, 0)
	}
	if premium {
		if snapshot.Points > 0 {
			return allow(snapshot.AccountId, model.ChargeKindPoints, config.PremiumDecrement)
		}
		return deny(ReasonInsufficientPremium)
	}
	if snapshot.StandardDays > 0 {
		return allow(snapshot.AccountId, model.ChargeKindStandardDays, 0)
	}
	if snapshot.Points > 0 {
		return allow(snapshot.AccountId, model.ChargeKindPoints, config.StandardDecrement)
	}
	return deny(ReasonQuotaExhausted)
}

// IsPremiumModel reports whether a model identifier belongs to the premium
// tier, by configured prefix.
func IsPremiumModel(modelName string) bool {
	for _, prefix := range config.PremiumModelPrefixes {
		if strings.HasPrefix(modelName, prefix) {
			return true
		}
	}
	return false
}
