// Package risk checks accounts against prop-firm limits and sizes positions
// from the drawdown budget.
package risk

import (
	"fmt"

	"github.com/rustyeddy/propjournal/model"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	DailyRemaining float64 // loss still allowed today, 0 when unlimited
	TotalRemaining float64 // loss still allowed overall, 0 when unlimited
	ToTarget       float64 // profit still needed, 0 when no target
	TargetReached  bool
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// EvaluateAccount applies a firm's limits to an account. A zero limit is
// not enforced.
func EvaluateAccount(l model.FirmLimits, st AccountState) Decision {
	d := Decision{Allowed: true}

	if l.MaxDailyLoss > 0 {
		d.DailyRemaining = l.MaxDailyLoss + st.DayPnL
		if st.DayPnL <= -l.MaxDailyLoss {
			d.add("DAILY_LOSS_LIMIT",
				fmt.Sprintf("day P&L %.2f reached daily loss limit %.2f", st.DayPnL, -l.MaxDailyLoss))
			d.DailyRemaining = 0
		}
	}

	if l.MaxTotalLoss > 0 {
		drawdown := st.Start - st.Balance
		d.TotalRemaining = l.MaxTotalLoss - drawdown
		if drawdown >= l.MaxTotalLoss {
			d.add("TOTAL_LOSS_LIMIT",
				fmt.Sprintf("drawdown %.2f reached total loss limit %.2f", drawdown, l.MaxTotalLoss))
			d.TotalRemaining = 0
		}
	}

	if l.ProfitTarget > 0 {
		profit := st.Balance - st.Start
		if profit >= l.ProfitTarget {
			d.TargetReached = true
		} else {
			d.ToTarget = l.ProfitTarget - profit
		}
	}
	return d
}
