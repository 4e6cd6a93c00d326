package parameters

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPatch_Apply(t *testing.T) {
	active := true
	limit := decimal.RequireFromString("0.25")
	rate := decimal.RequireFromString("0.07")
	current := Parameters{
		IsCashbackActive: false,
		RedemptionLimit:  decimal.RequireFromString("0.10"),
		ReturnRate:       decimal.RequireFromString("0.05"),
	}

	tests := []struct {
		name  string
		patch Patch
		want  Parameters
	}{
		{"empty patch", Patch{}, current},
		{
			"switch only",
			Patch{IsCashbackActive: &active},
			Parameters{true, current.RedemptionLimit, current.ReturnRate},
		},
		{
			"all fields",
			Patch{IsCashbackActive: &active, RedemptionLimit: &limit, ReturnRate: &rate},
			Parameters{true, limit, rate},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.Apply(current)
			assert.Equal(t, tt.want.IsCashbackActive, got.IsCashbackActive)
			assert.True(t, tt.want.RedemptionLimit.Equal(got.RedemptionLimit))
			assert.True(t, tt.want.ReturnRate.Equal(got.ReturnRate))
		})
	}
	assert.True(t, Patch{}.IsEmpty())
	assert.False(t, Patch{ReturnRate: &rate}.IsEmpty())
}
