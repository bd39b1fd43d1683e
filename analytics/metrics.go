// Package analytics computes the performance dashboard over logged trades
// and withdrawals.
package analytics

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/rustyeddy/propjournal/model"
)

// Filter narrows the trades a dashboard covers. Empty fields match
// everything; From and To are inclusive YYYY-MM-DD dates.
type Filter struct {
	From      string
	To        string
	AccountID string
	Playbook  string
}

func (f Filter) Apply(trades []model.Trade) []model.Trade {
	var out []model.Trade
	for _, t := range trades {
		if f.From != "" && t.Date < f.From {
			continue
		}
		if f.To != "" && t.Date > f.To {
			continue
		}
		if f.AccountID != "" && string(t.AccountID) != f.AccountID {
			continue
		}
		if f.Playbook != "" && t.Playbook != f.Playbook && string(t.PlaybookID) != f.Playbook {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Overall are the headline numbers.
type Overall struct {
	Trades       int
	Wins         int
	Losses       int
	TotalPnL     float64
	WinRate      float64 // percent
	AvgWin       float64
	AvgLoss      float64 // negative
	ProfitFactor float64 // 0 when there are no losses
	ABRate       float64 // percent of trades graded A or B
	StdDev       float64
	MaxDrawdown  float64 // largest peak-to-trough drop of cumulative P&L
}

func pnls(trades []model.Trade) stats.Float64Data {
	out := make(stats.Float64Data, 0, len(trades))
	for _, t := range trades {
		out = append(out, t.PnLNet)
	}
	return out
}

func pct(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of) * 100
}

func abSetup(t model.Trade) bool { return t.Grade == model.GradeA || t.Grade == model.GradeB }

func Summarize(trades []model.Trade) Overall {
	o := Overall{Trades: len(trades)}
	if len(trades) == 0 {
		return o
	}

	var wins, losses stats.Float64Data
	ab := 0
	for _, t := range trades {
		switch {
		case t.PnLNet > 0:
			wins = append(wins, t.PnLNet)
		case t.PnLNet < 0:
			losses = append(losses, t.PnLNet)
		}
		if abSetup(t) {
			ab++
		}
	}
	o.Wins, o.Losses = len(wins), len(losses)
	o.TotalPnL, _ = pnls(trades).Sum()
	o.WinRate = pct(o.Wins, o.Trades)
	o.ABRate = pct(ab, o.Trades)
	if len(wins) > 0 {
		o.AvgWin, _ = wins.Mean()
	}
	if len(losses) > 0 {
		o.AvgLoss, _ = losses.Mean()
		won, _ := wins.Sum()
		lost, _ := losses.Sum()
		if lost != 0 {
			o.ProfitFactor = math.Abs(won / lost)
		}
	}
	o.StdDev, _ = pnls(trades).StandardDeviation()
	o.MaxDrawdown = MaxDrawdown(EquityCurve(trades))
	return o
}

// Group is the performance of one slice of trades.
type Group struct {
	Key      string
	Trades   int
	Wins     int
	PnL      float64
	WinRate  float64
	AvgPnL   float64
	Share    float64 // percent of all trades
	ABSetups int
}

func group(key string, trades []model.Trade, total int) Group {
	g := Group{Key: key, Trades: len(trades)}
	for _, t := range trades {
		if t.Win() {
			g.Wins++
		}
		if abSetup(t) {
			g.ABSetups++
		}
	}
	g.PnL, _ = pnls(trades).Sum()
	g.WinRate = pct(g.Wins, g.Trades)
	g.AvgPnL, _ = pnls(trades).Mean()
	g.Share = pct(g.Trades, total)
	return g
}

// groupBy splits trades by key, keeping keys in the given order or sorted
// when order is nil. Empty groups are left out.
func groupBy(trades []model.Trade, key func(model.Trade) string, order []string) []Group {
	buckets := map[string][]model.Trade{}
	for _, t := range trades {
		k := key(t)
		buckets[k] = append(buckets[k], t)
	}
	if order == nil {
		for k := range buckets {
			order = append(order, k)
		}
		sort.Strings(order)
	}
	var out []Group
	for _, k := range order {
		if ts := buckets[k]; len(ts) > 0 {
			out = append(out, group(k, ts, len(trades)))
		}
	}
	return out
}

func ByGrade(trades []model.Trade) []Group {
	order := make([]string, 0, len(model.Grades))
	for _, g := range model.Grades {
		order = append(order, string(g))
	}
	return groupBy(trades, func(t model.Trade) string { return string(t.Grade) }, order)
}

func ByPlaybook(trades []model.Trade) []Group {
	return groupBy(trades, func(t model.Trade) string {
		if t.Playbook == "" {
			return "Unknown"
		}
		return t.Playbook
	}, nil)
}

// ByAccount groups by the account label recorded on the trade, falling
// back to the account id.
func ByAccount(trades []model.Trade) []Group {
	return groupBy(trades, func(t model.Trade) string {
		if t.Account != "" {
			return t.Account
		}
		return string(t.AccountID)
	}, nil)
}

const (
	Calm      = "1-3 (Calm)"
	Neutral   = "4-6 (Neutral)"
	Emotional = "7-10 (Emotional)"
)

// EmotionBucket places an emotional-state rating. Unrated trades count as
// neutral.
func EmotionBucket(rating int) string {
	switch {
	case rating == 0:
		return Neutral
	case rating <= 3:
		return Calm
	case rating <= 6:
		return Neutral
	}
	return Emotional
}

func ByEmotion(trades []model.Trade) []Group {
	return groupBy(trades, func(t model.Trade) string { return EmotionBucket(t.EmotionalState) },
		[]string{Calm, Neutral, Emotional})
}

// Point is one step of the equity curve.
type Point struct {
	N      int
	Date   string
	Grade  model.Grade
	PnL    float64
	Equity float64 // cumulative P&L
}

// EquityCurve orders trades by date and entry time and accumulates their
// net P&L.
func EquityCurve(trades []model.Trade) []Point {
	sorted := append([]model.Trade(nil), trades...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.EntryTime != b.EntryTime {
			return a.EntryTime < b.EntryTime
		}
		return a.Timestamp.Before(b.Timestamp.Time)
	})

	out := make([]Point, 0, len(sorted))
	running := 0.0
	for i, t := range sorted {
		running += t.PnLNet
		out = append(out, Point{N: i + 1, Date: t.Date, Grade: t.Grade, PnL: t.PnLNet, Equity: running})
	}
	return out
}

// MaxDrawdown is the largest drop from a running peak, starting from zero.
func MaxDrawdown(curve []Point) float64 {
	peak, dd := 0.0, 0.0
	for _, p := range curve {
		peak = math.Max(peak, p.Equity)
		dd = math.Max(dd, peak-p.Equity)
	}
	return dd
}
