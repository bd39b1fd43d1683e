package model

// FirmLimits are the money limits a prop firm applies to one account type.
type FirmLimits struct {
	MaxDailyLoss float64 `json:"max_daily_loss"`
	MaxTotalLoss float64 `json:"max_total_loss"`
	ProfitTarget float64 `json:"profit_target"`
}

// PropFirm is referenced from Account by name, not id. Renaming a firm
// orphans the accounts that point at the old name.
type PropFirm struct {
	ID             ID                    `json:"id"`
	Name           string                `json:"name"`
	AccountTypes   []string              `json:"account_types,omitempty"`
	Limits         map[string]FirmLimits `json:"limits,omitempty"`
	PayoutSplit    float64               `json:"payout_split"`
	MinTradingDays int                   `json:"min_trading_days,omitempty"`
	PayoutSchedule string                `json:"payout_schedule,omitempty"`
	MinPayout      float64               `json:"min_payout,omitempty"`
	Features       []string              `json:"features,omitempty"`
	Notes          string                `json:"notes,omitempty"`
	CreatedAt      Timestamp             `json:"created_at"`

	// Percent-of-size limits written by older versions.
	MaxDailyLossPct float64 `json:"max_daily_loss,omitempty"`
	MaxDrawdownPct  float64 `json:"max_drawdown,omitempty"`
}

// LimitsFor returns the limits for an account type. When the firm has no
// explicit entry it derives them from the legacy percentage fields.
func (f PropFirm) LimitsFor(accountType string, accountSize float64) (FirmLimits, bool) {
	if l, ok := f.Limits[accountType]; ok {
		return l, true
	}
	if f.MaxDailyLossPct == 0 && f.MaxDrawdownPct == 0 {
		return FirmLimits{}, false
	}
	return FirmLimits{
		MaxDailyLoss: accountSize * f.MaxDailyLossPct / 100,
		MaxTotalLoss: accountSize * f.MaxDrawdownPct / 100,
	}, true
}
