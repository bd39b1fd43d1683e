package ledger

import (
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/propjournal/grade"
	"github.com/rustyeddy/propjournal/market"
	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/rules"
)

// TradeFields are the user-entered values of a trade. Gross P&L is taken
// from PnLGross when set, otherwise from the entry and exit prices.
type TradeFields struct {
	Date      string
	EntryTime string
	ExitTime  string

	Symbol       string
	Direction    string
	PositionSize float64
	EntryPrice   float64
	ExitPrice    float64
	StopLoss     float64
	TakeProfit   float64
	PointValue   float64

	PnLGross   *float64
	Commission float64

	EmotionalState int
	SetupQuality   int
	WouldRepeat    bool
	FollowedRules  bool
	WasPlanned     bool
	ScreenshotURL  string
	Notes          string
}

// pnl validates the fields and returns gross and net P&L and the point value
// used, if any. Commission is always subtracted.
func (f TradeFields) pnl() (gross, net, pointValue float64, err error) {
	if !finite(f.PositionSize, f.EntryPrice, f.ExitPrice, f.StopLoss, f.TakeProfit, f.PointValue, f.Commission) {
		return 0, 0, 0, model.Invalid("trade", "numeric fields must be finite")
	}
	switch {
	case f.PnLGross != nil:
		gross = *f.PnLGross
	case f.EntryPrice != 0 || f.ExitPrice != 0:
		if f.PositionSize <= 0 {
			return 0, 0, 0, model.Invalid("position_size", "must be positive to derive P&L from prices")
		}
		pointValue = f.PointValue
		if pointValue == 0 {
			c, ok := market.Lookup(f.Symbol)
			if !ok {
				return 0, 0, 0, model.Invalid("point_value", "unknown symbol %q, give a point value or gross P&L", f.Symbol)
			}
			pointValue = c.PointValue
		}
		dir, _ := model.ParseDirection(f.Direction)
		gross = market.Contract{PointValue: pointValue}.PnL(dir.Sign(), f.EntryPrice, f.ExitPrice, f.PositionSize)
	default:
		return 0, 0, 0, model.Invalid("pnl_gross", "gross P&L or entry and exit prices are required")
	}
	net = gross - f.Commission
	if !finite(gross, net) {
		return 0, 0, 0, model.Invalid("pnl_gross", "P&L must be finite")
	}
	return gross, net, pointValue, nil
}

func (f TradeFields) validate() (model.Direction, error) {
	dir, err := model.ParseDirection(f.Direction)
	if err != nil {
		return "", err
	}
	if f.PositionSize < 0 {
		return "", model.Invalid("position_size", "must not be negative")
	}
	for field, v := range map[string]int{"emotional_state": f.EmotionalState, "setup_quality": f.SetupQuality} {
		if v != 0 && (v < 1 || v > 10) {
			return "", model.Invalid(field, "%d is outside 1-10", v)
		}
	}
	if f.Date != "" {
		if err := checkDate("date", f.Date); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// TradeLedger logs, edits and deletes trades.
type TradeLedger struct {
	book
}

func NewTradeLedger(st Store, log *logrus.Entry) *TradeLedger {
	return &TradeLedger{book: newBook(st, log, "trades")}
}

// ruleModel picks the rules a trade is graded by: the playbook's when it
// has any, otherwise the settings rule set.
func ruleModel(pb *model.Playbook, st model.Settings) rules.Model {
	if pb != nil && !pb.RuleSet.Empty() {
		return rules.Normalize(pb.RuleSet)
	}
	return rules.Normalize(st.RuleSet)
}

func findPlaybook(pbs []model.Playbook, refs ...string) *model.Playbook {
	for _, ref := range refs {
		for i := range pbs {
			if pbs[i].Matches(ref) {
				return &pbs[i]
			}
		}
	}
	return nil
}

func copyChecks(m map[string]bool) map[string]bool {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Model returns the rule model a trade logged with playbookRef is graded
// by. An empty ref selects the settings rule set.
func (l *TradeLedger) Model(playbookRef string) (rules.Model, error) {
	st, err := l.st.Settings()
	if err != nil {
		return rules.Model{}, err
	}
	if playbookRef == "" {
		return ruleModel(nil, st), nil
	}
	pbs, err := l.st.Playbooks()
	if err != nil {
		return rules.Model{}, err
	}
	pb := findPlaybook(pbs, playbookRef)
	if pb == nil {
		return rules.Model{}, model.NotFound("playbook", playbookRef)
	}
	return ruleModel(pb, st), nil
}

func (l *TradeLedger) grade(pb *model.Playbook, c grade.Checks) (grade.Result, error) {
	st, err := l.st.Settings()
	if err != nil {
		return grade.Result{}, err
	}
	g := grade.New(st.PositionSizing, l.log)
	return g.Evaluate(ruleModel(pb, st), c), nil
}

func fill(t *model.Trade, f TradeFields, dir model.Direction, gross, net, pv float64, res grade.Result, c grade.Checks) {
	t.Date = f.Date
	t.EntryTime = f.EntryTime
	t.ExitTime = f.ExitTime
	t.Symbol = f.Symbol
	t.Direction = dir
	t.PositionSize = f.PositionSize
	t.EntryPrice = f.EntryPrice
	t.ExitPrice = f.ExitPrice
	t.StopLoss = f.StopLoss
	t.TakeProfit = f.TakeProfit
	t.PointValue = pv
	t.PnLGross = gross
	t.Commission = f.Commission
	t.PnLNet = net
	t.Grade = res.Grade
	t.Grading = res.Strategy
	t.SizeLabel = res.SizeLabel()
	t.MustHaveCompliance = copyChecks(c.MustHave)
	t.RuleCompliance = copyChecks(c.Rules)
	t.ACompliance, t.BCompliance, t.CCompliance = nil, nil, nil
	t.EmotionalState = f.EmotionalState
	t.SetupQuality = f.SetupQuality
	t.WouldRepeat = f.WouldRepeat
	t.FollowedRules = f.FollowedRules
	t.WasPlanned = f.WasPlanned
	t.ScreenshotURL = f.ScreenshotURL
	t.Notes = f.Notes
}

// LogTrade grades and records a trade and adds its net P&L to the account.
// An empty playbookID grades against the settings rule set.
func (l *TradeLedger) LogTrade(accountID, playbookID string, f TradeFields, c grade.Checks) (model.Trade, error) {
	dir, err := f.validate()
	if err != nil {
		return model.Trade{}, err
	}
	if f.Date == "" {
		f.Date = l.today()
	}
	gross, net, pv, err := f.pnl()
	if err != nil {
		return model.Trade{}, err
	}

	accts, err := l.st.Accounts()
	if err != nil {
		return model.Trade{}, err
	}
	ai := findAccount(accts, accountID)
	if ai < 0 {
		return model.Trade{}, model.NotFound("account", accountID)
	}

	var pb *model.Playbook
	if playbookID != "" {
		pbs, err := l.st.Playbooks()
		if err != nil {
			return model.Trade{}, err
		}
		if pb = findPlaybook(pbs, playbookID); pb == nil {
			return model.Trade{}, model.NotFound("playbook", playbookID)
		}
	}

	res, err := l.grade(pb, c)
	if err != nil {
		return model.Trade{}, err
	}

	trades, err := l.st.Trades()
	if err != nil {
		return model.Trade{}, err
	}

	acct := &accts[ai]
	t := model.Trade{
		ID:        model.ID(l.newID()),
		AccountID: acct.ID,
		Account:   acct.Label(),
		Timestamp: l.stamp(),
	}
	if pb != nil {
		t.PlaybookID, t.Playbook = pb.ID, pb.Name
	}
	fill(&t, f, dir, gross, net, pv, res, c)

	l.apply(acct, t.PnLNet, "trade logged")
	err = l.commit(
		func() error { return l.st.SaveTrades(append(trades, t)) },
		func() error { return l.st.SaveTrades(trades) },
		l.saveAccounts(accts, true),
	)
	if err != nil {
		return model.Trade{}, err
	}

	l.log.WithFields(logrus.Fields{"trade": t.ID, "account": acct.ID, "grade": t.Grade, "pnl_net": t.PnLNet}).
		Info("trade logged")
	return t, nil
}

// EditTrade replaces a trade's fields, regrades it and moves the account
// balance by the change in net P&L. A nil c keeps the recorded checkmarks.
func (l *TradeLedger) EditTrade(tradeID string, f TradeFields, c *grade.Checks) (model.Trade, error) {
	dir, err := f.validate()
	if err != nil {
		return model.Trade{}, err
	}
	gross, net, pv, err := f.pnl()
	if err != nil {
		return model.Trade{}, err
	}

	trades, err := l.st.Trades()
	if err != nil {
		return model.Trade{}, err
	}
	ti := findTrade(trades, tradeID)
	if ti < 0 {
		return model.Trade{}, model.NotFound("trade", tradeID)
	}
	t := trades[ti]
	if f.Date == "" {
		f.Date = t.Date
	}

	checks := grade.Checks{}
	if c != nil {
		checks = *c
	} else {
		checks.MustHave, checks.Rules = t.Compliance()
	}

	pbs, err := l.st.Playbooks()
	if err != nil {
		return model.Trade{}, err
	}
	pb := findPlaybook(pbs, string(t.PlaybookID), t.Playbook)
	if pb == nil && (t.PlaybookID != "" || t.Playbook != "") {
		l.log.WithFields(logrus.Fields{"trade": t.ID, "playbook": t.Playbook}).
			Warn("playbook no longer exists, grading against settings rules")
	}
	res, err := l.grade(pb, checks)
	if err != nil {
		return model.Trade{}, err
	}

	accts, err := l.st.Accounts()
	if err != nil {
		return model.Trade{}, err
	}

	prev := slices.Clone(trades)
	old := t.PnLNet
	fill(&t, f, dir, gross, net, pv, res, checks)
	t.UpdatedAt = l.stamp()
	trades[ti] = t

	saveAccts := l.adjustFor(accts, string(t.AccountID), t.PnLNet-old, "trade edited")
	err = l.commit(
		func() error { return l.st.SaveTrades(trades) },
		func() error { return l.st.SaveTrades(prev) },
		l.saveAccounts(accts, saveAccts),
	)
	if err != nil {
		return model.Trade{}, err
	}
	return t, nil
}

// DeleteTrade removes a trade and subtracts its recorded net P&L from the
// account.
func (l *TradeLedger) DeleteTrade(tradeID string) (model.Trade, error) {
	trades, err := l.st.Trades()
	if err != nil {
		return model.Trade{}, err
	}
	ti := findTrade(trades, tradeID)
	if ti < 0 {
		return model.Trade{}, model.NotFound("trade", tradeID)
	}
	t := trades[ti]

	accts, err := l.st.Accounts()
	if err != nil {
		return model.Trade{}, err
	}
	saveAccts := l.adjustFor(accts, string(t.AccountID), -t.PnLNet, "trade deleted")

	prev := slices.Clone(trades)
	trades = append(trades[:ti], trades[ti+1:]...)
	err = l.commit(
		func() error { return l.st.SaveTrades(trades) },
		func() error { return l.st.SaveTrades(prev) },
		l.saveAccounts(accts, saveAccts),
	)
	if err != nil {
		return model.Trade{}, err
	}
	l.log.WithFields(logrus.Fields{"trade": t.ID, "account": t.AccountID}).Info("trade deleted")
	return t, nil
}

// Trade returns one trade.
func (l *TradeLedger) Trade(tradeID string) (model.Trade, error) {
	trades, err := l.st.Trades()
	if err != nil {
		return model.Trade{}, err
	}
	ti := findTrade(trades, tradeID)
	if ti < 0 {
		return model.Trade{}, model.NotFound("trade", tradeID)
	}
	return trades[ti], nil
}

// Fields returns the editable values of a recorded trade.
func Fields(t model.Trade) TradeFields {
	gross := t.PnLGross
	return TradeFields{
		Date:           t.Date,
		EntryTime:      t.EntryTime,
		ExitTime:       t.ExitTime,
		Symbol:         t.Symbol,
		Direction:      string(t.Direction),
		PositionSize:   t.PositionSize,
		EntryPrice:     t.EntryPrice,
		ExitPrice:      t.ExitPrice,
		StopLoss:       t.StopLoss,
		TakeProfit:     t.TakeProfit,
		PointValue:     t.PointValue,
		PnLGross:       &gross,
		Commission:     t.Commission,
		EmotionalState: t.EmotionalState,
		SetupQuality:   t.SetupQuality,
		WouldRepeat:    t.WouldRepeat,
		FollowedRules:  t.FollowedRules,
		WasPlanned:     t.WasPlanned,
		ScreenshotURL:  t.ScreenshotURL,
		Notes:          t.Notes,
	}
}

func findTrade(trades []model.Trade, ref string) int {
	for i := range trades {
		if string(trades[i].ID) == ref {
			return i
		}
	}
	return -1
}

// adjustFor applies delta to the referenced account and reports whether
// accounts need saving. A missing account is logged and skipped so the
// record itself can still be changed.
func (b book) adjustFor(accts []model.Account, ref string, delta float64, reason string) bool {
	ai := findAccount(accts, ref)
	if ai < 0 {
		b.log.WithFields(logrus.Fields{"account": ref, "reason": reason}).
			Warn("account not found, balance not adjusted")
		return false
	}
	b.apply(&accts[ai], delta, reason)
	return true
}
