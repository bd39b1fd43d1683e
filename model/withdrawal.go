package model

import "strings"

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

func ParseWithdrawalStatus(s string) (WithdrawalStatus, error) {
	switch st := WithdrawalStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case WithdrawalPending, WithdrawalApproved, WithdrawalPaid, WithdrawalRejected:
		return st, nil
	}
	return "", Invalid("status", "unknown withdrawal status %q", s)
}

// Allocations splits a withdrawal across where the money went.
type Allocations struct {
	Debt         float64 `json:"debt"`
	Reinvestment float64 `json:"reinvestment"`
	Savings      float64 `json:"savings"`
	Personal     float64 `json:"personal"`
}

// Withdrawal is a payout taken from an account.
type Withdrawal struct {
	ID              ID               `json:"id"`
	AccountID       ID               `json:"account_id"`
	Account         string           `json:"account,omitempty"`
	Amount          float64          `json:"amount"`
	Date            string           `json:"date"`
	Status          WithdrawalStatus `json:"status"`
	Allocation      string           `json:"allocation,omitempty"`
	Allocations     *Allocations     `json:"allocations,omitempty"`
	ReinvestDetails string           `json:"reinvest_details,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Timestamp       Timestamp        `json:"timestamp"`
	UpdatedAt       Timestamp        `json:"updated_at"`
}

// Deducts reports whether the withdrawal is currently taken out of the
// account balance. Only paid withdrawals are.
func (w Withdrawal) Deducts() bool { return w.Status == WithdrawalPaid }

// Deduction is the amount currently removed from the account balance.
func (w Withdrawal) Deduction() float64 {
	if w.Deducts() {
		return w.Amount
	}
	return 0
}

// Breakdown returns the allocation split, mapping a legacy single category
// onto the four buckets.
func (w Withdrawal) Breakdown() Allocations {
	if w.Allocations != nil {
		return *w.Allocations
	}
	var a Allocations
	switch c := strings.ToLower(w.Allocation); {
	case strings.Contains(c, "debt"), strings.Contains(c, "loan"):
		a.Debt = w.Amount
	case strings.Contains(c, "reinvest"):
		a.Reinvestment = w.Amount
	case strings.Contains(c, "saving"):
		a.Savings = w.Amount
	default:
		a.Personal = w.Amount
	}
	return a
}
