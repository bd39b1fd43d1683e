package model

// Trade is one logged trade. PnLNet is the amount applied to the owning
// account's balance; editing or deleting a trade adjusts the balance by the
// change in PnLNet.
type Trade struct {
	ID        ID     `json:"id"`
	Date      string `json:"date"`
	EntryTime string `json:"entry_time,omitempty"`
	ExitTime  string `json:"exit_time,omitempty"`

	AccountID  ID     `json:"account_id"`
	Account    string `json:"account,omitempty"`
	PlaybookID ID     `json:"playbook_id,omitempty"`
	Playbook   string `json:"playbook"`

	Symbol       string    `json:"symbol"`
	Direction    Direction `json:"direction"`
	PositionSize float64   `json:"position_size"`
	EntryPrice   float64   `json:"entry_price,omitempty"`
	ExitPrice    float64   `json:"exit_price,omitempty"`
	StopLoss     float64   `json:"stop_loss,omitempty"`
	TakeProfit   float64   `json:"take_profit,omitempty"`
	PointValue   float64   `json:"point_value,omitempty"`

	PnLGross   float64 `json:"pnl_gross"`
	Commission float64 `json:"commission"`
	PnLNet     float64 `json:"pnl_net"`

	Grade     Grade  `json:"grade"`
	Grading   string `json:"grading,omitempty"`
	SizeLabel string `json:"size_label,omitempty"`

	MustHaveCompliance map[string]bool `json:"must_have_compliance,omitempty"`
	RuleCompliance     map[string]bool `json:"rule_compliance,omitempty"`

	// Per-tier maps written by older versions of the live grader.
	ACompliance map[string]bool `json:"a_compliance,omitempty"`
	BCompliance map[string]bool `json:"b_compliance,omitempty"`
	CCompliance map[string]bool `json:"c_compliance,omitempty"`

	EmotionalState int    `json:"emotional_state,omitempty"`
	SetupQuality   int    `json:"setup_quality,omitempty"`
	WouldRepeat    bool   `json:"would_repeat"`
	FollowedRules  bool   `json:"followed_rules"`
	WasPlanned     bool   `json:"was_planned,omitempty"`
	ScreenshotURL  string `json:"screenshot_url,omitempty"`
	Notes          string `json:"notes,omitempty"`

	Timestamp Timestamp `json:"timestamp"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Compliance returns the recorded must-have and rule checkmarks, folding in
// the per-tier maps of older records.
func (t Trade) Compliance() (mustHave, rules map[string]bool) {
	mustHave = make(map[string]bool, len(t.MustHaveCompliance))
	for k, v := range t.MustHaveCompliance {
		mustHave[k] = v
	}
	rules = make(map[string]bool)
	for _, m := range []map[string]bool{t.CCompliance, t.BCompliance, t.ACompliance, t.RuleCompliance} {
		for k, v := range m {
			rules[k] = v
		}
	}
	return mustHave, rules
}

// Win reports a strictly positive net result.
func (t Trade) Win() bool { return t.PnLNet > 0 }
