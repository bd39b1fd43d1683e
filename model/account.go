package model

import (
	"fmt"
	"strings"
)

type AccountStatus string

const (
	StatusEvaluation    AccountStatus = "evaluation"
	StatusFunded        AccountStatus = "funded"
	StatusBlown         AccountStatus = "blown"
	StatusFailed        AccountStatus = "failed"
	StatusPassed        AccountStatus = "passed"
	StatusPayoutPending AccountStatus = "payout_pending"
	StatusInactive      AccountStatus = "inactive"
)

var AccountStatuses = []AccountStatus{
	StatusEvaluation, StatusFunded, StatusBlown, StatusFailed,
	StatusPassed, StatusPayoutPending, StatusInactive,
}

func ParseAccountStatus(s string) (AccountStatus, error) {
	st := AccountStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range AccountStatuses {
		if st == v {
			return st, nil
		}
	}
	return "", Invalid("status", "unknown account status %q", s)
}

// Account is a prop-firm trading account. CurrentBalance is maintained by
// the ledgers; InitialBalance is the baseline the balance invariant is
// measured from.
type Account struct {
	ID             ID            `json:"id"`
	PropFirm       string        `json:"prop_firm"`
	AccountType    string        `json:"account_type"`
	AccountSize    float64       `json:"account_size"`
	AccountNumber  string        `json:"account_number"`
	InitialBalance *float64      `json:"initial_balance,omitempty"`
	CurrentBalance *float64      `json:"current_balance,omitempty"`
	Status         AccountStatus `json:"status"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      Timestamp     `json:"created_at"`
	UpdatedAt      Timestamp     `json:"updated_at"`
}

// Balance is the running balance, falling back to the account size for
// records written before balances were tracked.
func (a Account) Balance() float64 {
	if a.CurrentBalance != nil {
		return *a.CurrentBalance
	}
	return a.AccountSize
}

// Baseline is the balance the account started from.
func (a Account) Baseline() float64 {
	if a.InitialBalance != nil {
		return *a.InitialBalance
	}
	return a.AccountSize
}

func (a *Account) SetBalance(v float64) { a.CurrentBalance = &v }

func (a *Account) SetBaseline(v float64) { a.InitialBalance = &v }

// Active accounts can take new trades.
func (a Account) Active() bool {
	return a.Status == StatusEvaluation || a.Status == StatusFunded
}

// Matches reports whether ref names this account by id or account number.
func (a Account) Matches(ref string) bool {
	if ref == "" {
		return false
	}
	return string(a.ID) == ref || a.AccountNumber == ref
}

func (a Account) Label() string {
	num := a.AccountNumber
	if num == "" {
		num = "N/A"
	}
	return fmt.Sprintf("%s - $%.0f (%s)", a.PropFirm, a.AccountSize, num)
}
