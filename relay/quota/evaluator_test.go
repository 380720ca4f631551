package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatpp/relay/common/config"
	"github.com/chatpp/relay/model"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		snapshot   model.EntitlementSnapshot
		premium    bool
		wantAllow  bool
		wantKind   model.ChargeKind
		wantAmount int64
		wantReason string
	}{
		{
			name:      "plus pass wins over everything",
			snapshot:  model.EntitlementSnapshot{AccountId: "a", Points: 50, StandardDays: 3, PlusDays: 1},
			premium:   true,
			wantAllow: true,
			wantKind:  model.ChargeKindPlusDays,
		},
		{
			name:       "premium spends points when no plus pass",
			snapshot:   model.EntitlementSnapshot{AccountId: "a", Points: 50, StandardDays: 3},
			premium:    true,
			wantAllow:  true,
			wantKind:   model.ChargeKindPoints,
			wantAmount: config.PremiumDecrement,
		},
		{
			name:       "premium never rides a standard pass",
			snapshot:   model.EntitlementSnapshot{AccountId: "a", StandardDays: 7},
			premium:    true,
			wantReason: ReasonInsufficientPremium,
		},
		{
			name:      "standard pass before points",
			snapshot:  model.EntitlementSnapshot{AccountId: "a", Points: 50, StandardDays: 3},
			wantAllow: true,
			wantKind:  model.ChargeKindStandardDays,
		},
		{
			name:       "standard falls back to points",
			snapshot:   model.EntitlementSnapshot{AccountId: "a", Points: 1},
			wantAllow:  true,
			wantKind:   model.ChargeKindPoints,
			wantAmount: config.StandardDecrement,
		},
		{
			name:       "single point admits a premium request",
			snapshot:   model.EntitlementSnapshot{AccountId: "a", Points: 1},
			premium:    true,
			wantAllow:  true,
			wantKind:   model.ChargeKindPoints,
			wantAmount: config.PremiumDecrement,
		},
		{
			name:       "empty account is denied",
			snapshot:   model.EntitlementSnapshot{AccountId: "a"},
			wantReason: ReasonQuotaExhausted,
		},
		{
			name:       "negative counters read as exhausted",
			snapshot:   model.EntitlementSnapshot{AccountId: "a", Points: -5, StandardDays: -1, PlusDays: -1},
			wantReason: ReasonQuotaExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.snapshot, tt.premium)
			require.Equal(t, tt.wantAllow, got.Allow)
			if !tt.wantAllow {
				assert.Equal(t, tt.wantReason, got.Reason)
				return
			}
			assert.Equal(t, tt.snapshot.AccountId, got.Plan.AccountId)
			assert.Equal(t, tt.wantKind, got.Plan.Kind)
			assert.Equal(t, tt.wantAmount, got.Plan.Amount)
		})
	}
}

func TestEvaluateDayPassesCostNoPoints(t *testing.T) {
	got := Evaluate(model.EntitlementSnapshot{AccountId: "a", PlusDays: 2}, true)
	require.True(t, got.Allow)
	assert.Zero(t, got.Plan.Amount)

	got = Evaluate(model.EntitlementSnapshot{AccountId: "a", StandardDays: 2}, false)
	require.True(t, got.Allow)
	assert.Zero(t, got.Plan.Amount)
}

func TestIsPremiumModel(t *testing.T) {
	assert.True(t, IsPremiumModel("gpt-4"))
	assert.True(t, IsPremiumModel("gpt-4-vision-preview"))
	assert.False(t, IsPremiumModel("gpt-3.5-turbo"))
	assert.False(t, IsPremiumModel("claude-3-haiku"))
	assert.False(t, IsPremiumModel(""))
}
