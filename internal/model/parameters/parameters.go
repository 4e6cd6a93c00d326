package parameters

import "github.com/shopspring/decimal"

// Parameters is the global cashback configuration.
// RedemptionLimit and ReturnRate are fractions, 0.05 means 5%.
type Parameters struct {
	IsCashbackActive bool            `json:"is_cashback_active"`
	RedemptionLimit  decimal.Decimal `json:"cashback_redemption_limit"`
	ReturnRate       decimal.Decimal `json:"cashback_return_rate"`
}

type Patch struct {
	IsCashbackActive *bool            `json:"is_cashback_active,omitempty"`
	RedemptionLimit  *decimal.Decimal `json:"cashback_redemption_limit,omitempty"`
	ReturnRate       *decimal.Decimal `json:"cashback_return_rate,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.IsCashbackActive == nil && p.RedemptionLimit == nil && p.ReturnRate == nil
}

func (p Patch) Apply(current Parameters) Parameters {
	if p.IsCashbackActive != nil {
		current.IsCashbackActive = *p.IsCashbackActive
	}
	if p.RedemptionLimit != nil {
		current.RedemptionLimit = *p.RedemptionLimit
	}
	if p.ReturnRate != nil {
		current.ReturnRate = *p.ReturnRate
	}
	return current
}
