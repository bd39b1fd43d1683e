package ledger

import (
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/propjournal/model"
)

// AccountFields open a new account. FundedBalance overrides the account
// size as the starting balance.
type AccountFields struct {
	PropFirm      string
	AccountType   string
	AccountSize   float64
	AccountNumber string
	FundedBalance *float64
	Status        string
	Notes         string
}

// Accounts opens accounts and handles their out-of-band balance changes.
type Accounts struct {
	book
}

func NewAccounts(st Store, log *logrus.Entry) *Accounts {
	return &Accounts{book: newBook(st, log, "accounts")}
}

// Open creates an account. When any prop firms are configured the firm must
// be one of them; accounts refer to firms by name.
func (l *Accounts) Open(f AccountFields) (model.Account, error) {
	if !finite(f.AccountSize) || f.AccountSize <= 0 {
		return model.Account{}, model.Invalid("account_size", "must be a positive number")
	}
	if strings.TrimSpace(f.PropFirm) == "" {
		return model.Account{}, model.Invalid("prop_firm", "is required")
	}
	status := model.StatusEvaluation
	if f.Status != "" {
		var err error
		if status, err = model.ParseAccountStatus(f.Status); err != nil {
			return model.Account{}, err
		}
	}
	balance := f.AccountSize
	if f.FundedBalance != nil {
		if !finite(*f.FundedBalance) {
			return model.Account{}, model.Invalid("current_balance", "must be finite")
		}
		balance = *f.FundedBalance
	}

	firms, err := l.st.PropFirms()
	if err != nil {
		return model.Account{}, err
	}
	if len(firms) > 0 {
		found := false
		for _, firm := range firms {
			if strings.EqualFold(firm.Name, f.PropFirm) {
				f.PropFirm, found = firm.Name, true
				break
			}
		}
		if !found {
			return model.Account{}, model.NotFound("prop firm", f.PropFirm)
		}
	}

	accts, err := l.st.Accounts()
	if err != nil {
		return model.Account{}, err
	}
	now := l.stamp()
	a := model.Account{
		ID:            model.ID(l.newID()),
		PropFirm:      f.PropFirm,
		AccountType:   f.AccountType,
		AccountSize:   f.AccountSize,
		AccountNumber: f.AccountNumber,
		Status:        status,
		Notes:         f.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	a.SetBaseline(balance)
	a.SetBalance(balance)

	if err := l.st.SaveAccounts(append(accts, a)); err != nil {
		return model.Account{}, err
	}
	l.log.WithFields(logrus.Fields{"account": a.ID, "firm": a.PropFirm, "balance": balance}).Info("account opened")
	return a, nil
}

// Account finds an account by id or account number.
func (l *Accounts) Account(ref string) (model.Account, error) {
	accts, err := l.st.Accounts()
	if err != nil {
		return model.Account{}, err
	}
	ai := findAccount(accts, ref)
	if ai < 0 {
		return model.Account{}, model.NotFound("account", ref)
	}
	return accts[ai], nil
}

func (l *Accounts) update(ref string, mutate func(*model.Account) error) (model.Account, error) {
	accts, err := l.st.Accounts()
	if err != nil {
		return model.Account{}, err
	}
	ai := findAccount(accts, ref)
	if ai < 0 {
		return model.Account{}, model.NotFound("account", ref)
	}
	if err := mutate(&accts[ai]); err != nil {
		return model.Account{}, err
	}
	accts[ai].UpdatedAt = l.stamp()
	if err := l.st.SaveAccounts(accts); err != nil {
		return model.Account{}, err
	}
	return accts[ai], nil
}

// SetStatus changes an account's lifecycle status.
func (l *Accounts) SetStatus(ref, status string) (model.Account, error) {
	st, err := model.ParseAccountStatus(status)
	if err != nil {
		return model.Account{}, err
	}
	return l.update(ref, func(a *model.Account) error {
		a.Status = st
		return nil
	})
}

// effect is the net change the ledgers have made to an account: trade P&L
// less paid withdrawals.
func (l *Accounts) effect(a model.Account) (trades, withdrawals float64, err error) {
	ts, err := l.st.Trades()
	if err != nil {
		return 0, 0, err
	}
	for _, t := range ts {
		if a.Matches(string(t.AccountID)) {
			trades += t.PnLNet
		}
	}
	ws, err := l.st.Withdrawals()
	if err != nil {
		return 0, 0, err
	}
	for _, w := range ws {
		if a.Matches(string(w.AccountID)) {
			withdrawals += w.Deduction()
		}
	}
	return trades, withdrawals, nil
}

// AdjustBalance overrides the balance by hand. The baseline is rewritten so
// the recorded trades and withdrawals still account for the difference
// between baseline and balance.
func (l *Accounts) AdjustBalance(ref string, balance float64) (model.Account, error) {
	if !finite(balance) {
		return model.Account{}, model.Invalid("current_balance", "must be finite")
	}
	acct, err := l.Account(ref)
	if err != nil {
		return model.Account{}, err
	}
	tp, wd, err := l.effect(acct)
	if err != nil {
		return model.Account{}, err
	}
	a, err := l.update(ref, func(a *model.Account) error {
		a.SetBalance(balance)
		a.SetBaseline(balance - (tp - wd))
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	l.log.WithFields(logrus.Fields{"account": a.ID, "balance": balance, "baseline": a.Baseline()}).
		Info("balance adjusted by hand")
	return a, nil
}

// Reconciliation compares an account's balance with what its records imply.
type Reconciliation struct {
	Account     model.Account
	Baseline    float64
	TradePnL    float64
	Withdrawals float64
	Expected    float64
	Actual      float64
	Drift       float64
}

// driftTolerance absorbs float accumulation error.
const driftTolerance = 1e-6

func (r Reconciliation) OK() bool { return math.Abs(r.Drift) <= driftTolerance }

// Reconcile checks one account.
func (l *Accounts) Reconcile(ref string) (Reconciliation, error) {
	acct, err := l.Account(ref)
	if err != nil {
		return Reconciliation{}, err
	}
	return l.reconcile(acct)
}

func (l *Accounts) reconcile(acct model.Account) (Reconciliation, error) {
	tp, wd, err := l.effect(acct)
	if err != nil {
		return Reconciliation{}, err
	}
	r := Reconciliation{
		Account:     acct,
		Baseline:    acct.Baseline(),
		TradePnL:    tp,
		Withdrawals: wd,
		Actual:      acct.Balance(),
	}
	r.Expected = r.Baseline + tp - wd
	r.Drift = r.Actual - r.Expected
	if !r.OK() {
		l.log.WithFields(logrus.Fields{"account": acct.ID, "drift": r.Drift}).Warn("balance drift")
	}
	return r, nil
}

// ReconcileAll checks every account.
func (l *Accounts) ReconcileAll() ([]Reconciliation, error) {
	accts, err := l.st.Accounts()
	if err != nil {
		return nil, err
	}
	out := make([]Reconciliation, 0, len(accts))
	for _, a := range accts {
		r, err := l.reconcile(a)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
