package model

// SizePolicy is the position size allowed for a grade, as a percentage of
// the daily drawdown.
type SizePolicy struct {
	DrawdownPct float64 `json:"drawdown_pct"`
	Label       string  `json:"label"`
}

// Settings is the singleton configuration record.
type Settings struct {
	DebtAmount float64 `json:"debt_amount"`
	DebtName   string  `json:"debt_name"`
	GoalAmount float64 `json:"goal_amount"`

	RuleSet

	PositionSizing map[Grade]SizePolicy `json:"position_sizing"`
	Enforcement    string               `json:"enforcement_level,omitempty"`
}

// DefaultSizing is the position-sizing table of a fresh install.
func DefaultSizing() map[Grade]SizePolicy {
	return map[Grade]SizePolicy{
		GradeA: {DrawdownPct: 50, Label: "Full Size"},
		GradeB: {DrawdownPct: 30, Label: "Reduced"},
		GradeC: {DrawdownPct: 15, Label: "Minimum"},
		GradeF: {DrawdownPct: 0, Label: "NO TRADE"},
	}
}

// DefaultSettings mirrors a fresh install: a unified rule model with no
// rules yet and soft enforcement.
func DefaultSettings() Settings {
	return Settings{
		DebtAmount: 5000,
		DebtName:   "Trading Loan",
		GoalAmount: 1000000,
		RuleSet: RuleSet{
			Mode:       ModeUnified,
			Thresholds: map[string]float64{"A": 80, "B": 50, "C": 0},
		},
		PositionSizing: DefaultSizing(),
		Enforcement:    "soft",
	}
}
