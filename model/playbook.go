package model

// Playbook is a named strategy and the rules its trades are graded by.
type Playbook struct {
	ID            ID       `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Timeframes    []string `json:"timeframes,omitempty"`
	Markets       []string `json:"markets,omitempty"`
	WinRateTarget float64  `json:"win_rate_target,omitempty"`
	RiskReward    string   `json:"risk_reward,omitempty"`
	EntryCriteria string   `json:"entry_criteria,omitempty"`
	ExitCriteria  string   `json:"exit_criteria,omitempty"`

	RuleSet

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// Matches reports whether ref names this playbook by id or by name.
func (p Playbook) Matches(ref string) bool {
	if ref == "" {
		return false
	}
	return string(p.ID) == ref || p.Name == ref
}
