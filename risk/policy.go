package risk

import "github.com/rustyeddy/propjournal/model"

// AccountState is what the limit checks need to know about an account.
type AccountState struct {
	Start   float64 // balance the firm measures drawdown and target from
	Balance float64
	DayPnL  float64 // net P&L of today's trades
}

// StateOf derives the state of acct from its trades on day.
func StateOf(acct model.Account, trades []model.Trade, day string) AccountState {
	st := AccountState{Start: acct.AccountSize, Balance: acct.Balance()}
	if st.Start <= 0 {
		st.Start = acct.Baseline()
	}
	for _, t := range trades {
		if t.Date == day && acct.Matches(string(t.AccountID)) {
			st.DayPnL += t.PnLNet
		}
	}
	return st
}
