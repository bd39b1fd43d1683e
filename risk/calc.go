package risk

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/propjournal/model"
)

// Sizing is the position a grade allows.
type Sizing struct {
	Label     string
	Pct       float64
	Dollars   float64
	Contracts int64
}

// SizeFor spends pct percent of the daily drawdown budget and converts it to
// whole contracts at riskPerContract dollars each.
func SizeFor(dailyDrawdown, riskPerContract, pct float64) Sizing {
	dollars := decimal.NewFromFloat(dailyDrawdown).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100))

	s := Sizing{Pct: pct, Dollars: dollars.InexactFloat64()}
	if riskPerContract > 0 {
		s.Contracts = dollars.Div(decimal.NewFromFloat(riskPerContract)).Floor().IntPart()
	}
	return s
}

// SizeForPolicy is SizeFor with the percentage and label of a size policy.
func SizeForPolicy(p model.SizePolicy, dailyDrawdown, riskPerContract float64) Sizing {
	s := SizeFor(dailyDrawdown, riskPerContract, p.DrawdownPct)
	s.Label = p.Label
	return s
}

// RiskPerContract is the dollar loss of one contract stopped out.
func RiskPerContract(entry, stop, pointValue float64) float64 {
	return math.Abs(entry-stop) * pointValue
}

// RR is the reward to risk ratio of a planned trade.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return 0
	}
	return math.Abs(takeProfit-entry) / risk
}
