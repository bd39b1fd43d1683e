package analytics

import (
	"fmt"
	"math"

	"github.com/rustyeddy/propjournal/model"
)

type Dashboard struct {
	Overall     Overall
	Grades      []Group
	Playbooks   []Group
	Accounts    []Group
	Emotions    []Group
	Curve       []Point
	Withdrawals WithdrawalSummary
	Insights    []string
}

// Build computes every dashboard section for the trades f selects.
func Build(trades []model.Trade, ws []model.Withdrawal, st model.Settings, f Filter) Dashboard {
	trades = f.Apply(trades)
	return Dashboard{
		Overall:     Summarize(trades),
		Grades:      ByGrade(trades),
		Playbooks:   ByPlaybook(trades),
		Accounts:    ByAccount(trades),
		Emotions:    ByEmotion(trades),
		Curve:       EquityCurve(trades),
		Withdrawals: SummarizeWithdrawals(ws, st),
		Insights:    Insights(trades),
	}
}

// violationShare is the share of F trades past which a warning is raised.
const violationShare = 0.2

// Insights are short observations about discipline and results.
func Insights(trades []model.Trade) []string {
	if len(trades) == 0 {
		return nil
	}
	var out []string

	var aPnL, fPnL float64
	fCount := 0
	for _, t := range trades {
		switch t.Grade {
		case model.GradeA:
			aPnL += t.PnLNet
		case model.GradeF:
			fPnL += t.PnLNet
			fCount++
		}
	}
	switch {
	case aPnL > 0 && fPnL < 0:
		out = append(out, fmt.Sprintf("A-grade setups made $%.2f while rule violations (F) cost $%.2f. Stick to A/B setups.", aPnL, math.Abs(fPnL)))
	case float64(fCount) > float64(len(trades))*violationShare:
		out = append(out, fmt.Sprintf("%.0f%% of trades are rule violations. Wait for proper setups.", pct(fCount, len(trades))))
	}

	var calm, emotional float64
	var haveCalm, haveEmotional bool
	for _, t := range trades {
		switch EmotionBucket(t.EmotionalState) {
		case Calm:
			calm += t.PnLNet
			haveCalm = true
		case Emotional:
			emotional += t.PnLNet
			haveEmotional = true
		}
	}
	if haveCalm && haveEmotional {
		if calm > emotional {
			out = append(out, fmt.Sprintf("Calm trading made $%.2f more than emotional trading. Stick to the check-in rules.", calm-emotional))
		} else {
			out = append(out, "Consider only trading when emotional state is 5 or below.")
		}
	}
	return out
}
