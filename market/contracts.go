// Package market holds futures contract metadata used for price-based P&L.
package market

import "strings"

type Contract struct {
	Symbol     string
	Name       string
	PointValue float64 // dollars per 1.0 price move per contract
	TickSize   float64
}

var Contracts = map[string]Contract{
	"ES":  {Symbol: "ES", Name: "E-mini S&P 500", PointValue: 50, TickSize: 0.25},
	"MES": {Symbol: "MES", Name: "Micro E-mini S&P 500", PointValue: 5, TickSize: 0.25},
	"NQ":  {Symbol: "NQ", Name: "E-mini Nasdaq-100", PointValue: 20, TickSize: 0.25},
	"MNQ": {Symbol: "MNQ", Name: "Micro E-mini Nasdaq-100", PointValue: 2, TickSize: 0.25},
	"YM":  {Symbol: "YM", Name: "E-mini Dow", PointValue: 5, TickSize: 1},
	"MYM": {Symbol: "MYM", Name: "Micro E-mini Dow", PointValue: 0.5, TickSize: 1},
	"RTY": {Symbol: "RTY", Name: "E-mini Russell 2000", PointValue: 50, TickSize: 0.1},
	"M2K": {Symbol: "M2K", Name: "Micro E-mini Russell 2000", PointValue: 5, TickSize: 0.1},
	"CL":  {Symbol: "CL", Name: "Crude Oil", PointValue: 1000, TickSize: 0.01},
	"GC":  {Symbol: "GC", Name: "Gold", PointValue: 100, TickSize: 0.1},
}

// Lookup finds a contract by root symbol. Dated symbols such as "MESZ4"
// resolve to the longest matching root.
func Lookup(symbol string) (Contract, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if c, ok := Contracts[s]; ok {
		return c, true
	}
	var best Contract
	for root, c := range Contracts {
		if strings.HasPrefix(s, root) && len(root) > len(best.Symbol) {
			best = c
		}
	}
	return best, best.Symbol != ""
}

// PnL is the gross result of moving qty contracts from entry to exit. sign
// is +1 for long and -1 for short.
func (c Contract) PnL(sign, entry, exit, qty float64) float64 {
	return (exit - entry) * c.PointValue * qty * sign
}

// Ticks converts a price distance to ticks.
func (c Contract) Ticks(distance float64) float64 {
	if c.TickSize == 0 {
		return 0
	}
	return distance / c.TickSize
}
