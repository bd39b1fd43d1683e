package analytics

import (
	"math"

	"github.com/rustyeddy/propjournal/model"
)

// WithdrawalSummary tracks payouts against the money goals in settings.
type WithdrawalSummary struct {
	Count         int
	Paid          float64
	Pending       float64 // pending or approved
	Debt          float64
	Reinvested    float64
	Saved         float64
	Personal      float64
	DebtRemaining float64
	GoalProgress  float64 // percent of the goal paid out
}

// SummarizeWithdrawals totals paid withdrawals by allocation. Legacy
// single-category withdrawals are mapped onto the four allocations.
func SummarizeWithdrawals(ws []model.Withdrawal, st model.Settings) WithdrawalSummary {
	s := WithdrawalSummary{Count: len(ws)}
	for _, w := range ws {
		switch w.Status {
		case model.WithdrawalPaid:
			s.Paid += w.Amount
			b := w.Breakdown()
			s.Debt += b.Debt
			s.Reinvested += b.Reinvestment
			s.Saved += b.Savings
			s.Personal += b.Personal
		case model.WithdrawalPending, model.WithdrawalApproved:
			s.Pending += w.Amount
		}
	}
	s.DebtRemaining = math.Max(0, st.DebtAmount-s.Debt)
	if st.GoalAmount > 0 {
		s.GoalProgress = s.Paid / st.GoalAmount * 100
	}
	return s
}
