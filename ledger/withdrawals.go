package ledger

import (
	"slices"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/propjournal/model"
)

// WithdrawalFields are the user-entered values of a withdrawal. Status
// defaults to paid.
type WithdrawalFields struct {
	Amount          float64
	Date            string
	Status          string
	Allocation      string
	Allocations     *model.Allocations
	ReinvestDetails string
	Notes           string
}

func (f WithdrawalFields) validate() (model.WithdrawalStatus, error) {
	if !finite(f.Amount) || f.Amount <= 0 {
		return "", model.Invalid("amount", "must be a positive number")
	}
	status := model.WithdrawalPaid
	if f.Status != "" {
		var err error
		if status, err = model.ParseWithdrawalStatus(f.Status); err != nil {
			return "", err
		}
	}
	if f.Date != "" {
		if err := checkDate("date", f.Date); err != nil {
			return "", err
		}
	}
	if f.Allocations != nil {
		if err := checkAllocations(f.Amount, *f.Allocations); err != nil {
			return "", err
		}
	}
	return status, nil
}

// checkAllocations requires the parts to add up to the amount exactly.
func checkAllocations(amount float64, a model.Allocations) error {
	parts := []float64{a.Debt, a.Reinvestment, a.Savings, a.Personal}
	if !finite(parts...) {
		return model.Invalid("allocations", "parts must be finite")
	}
	sum := decimal.Zero
	for _, p := range parts {
		if p < 0 {
			return model.Invalid("allocations", "parts must not be negative")
		}
		sum = sum.Add(decimal.NewFromFloat(p))
	}
	total := decimal.NewFromFloat(amount)
	if !sum.Equal(total) {
		return model.Invalid("allocations", "parts add up to %s, want %s", sum.StringFixed(2), total.StringFixed(2))
	}
	return nil
}

// WithdrawalLedger records payouts. Only paid withdrawals are deducted from
// the account balance.
type WithdrawalLedger struct {
	book
}

func NewWithdrawalLedger(st Store, log *logrus.Entry) *WithdrawalLedger {
	return &WithdrawalLedger{book: newBook(st, log, "withdrawals")}
}

func findWithdrawal(ws []model.Withdrawal, ref string) int {
	for i := range ws {
		if string(ws[i].ID) == ref {
			return i
		}
	}
	return -1
}

// fill copies f onto w. A stored breakdown survives an edit that supplies
// none as long as the amount is unchanged.
func (f WithdrawalFields) fill(w *model.Withdrawal, status model.WithdrawalStatus) {
	switch {
	case f.Allocations != nil:
		a := *f.Allocations
		w.Allocations = &a
	case f.Amount != w.Amount:
		w.Allocations = nil
	}
	w.Amount = f.Amount
	w.Date = f.Date
	w.Status = status
	w.Allocation = f.Allocation
	w.ReinvestDetails = f.ReinvestDetails
	w.Notes = f.Notes
}

// Record adds a withdrawal against an account.
func (l *WithdrawalLedger) Record(accountID string, f WithdrawalFields) (model.Withdrawal, error) {
	status, err := f.validate()
	if err != nil {
		return model.Withdrawal{}, err
	}
	if f.Date == "" {
		f.Date = l.today()
	}

	accts, err := l.st.Accounts()
	if err != nil {
		return model.Withdrawal{}, err
	}
	ai := findAccount(accts, accountID)
	if ai < 0 {
		return model.Withdrawal{}, model.NotFound("account", accountID)
	}
	ws, err := l.st.Withdrawals()
	if err != nil {
		return model.Withdrawal{}, err
	}

	acct := &accts[ai]
	w := model.Withdrawal{
		ID:        model.ID(l.newID()),
		AccountID: acct.ID,
		Account:   acct.Label(),
		Timestamp: l.stamp(),
	}
	f.fill(&w, status)

	l.apply(acct, -w.Deduction(), "withdrawal recorded")
	err = l.commit(
		func() error { return l.st.SaveWithdrawals(append(ws, w)) },
		func() error { return l.st.SaveWithdrawals(ws) },
		l.saveAccounts(accts, true),
	)
	if err != nil {
		return model.Withdrawal{}, err
	}
	l.log.WithFields(logrus.Fields{"withdrawal": w.ID, "account": acct.ID, "amount": w.Amount, "status": w.Status}).
		Info("withdrawal recorded")
	return w, nil
}

// Edit replaces a withdrawal's fields, reversing its prior deduction before
// applying the new one. Allocations left nil keep the stored breakdown unless
// the amount changes.
func (l *WithdrawalLedger) Edit(withdrawalID string, f WithdrawalFields) (model.Withdrawal, error) {
	status, err := f.validate()
	if err != nil {
		return model.Withdrawal{}, err
	}
	return l.update(withdrawalID, func(w *model.Withdrawal) {
		if f.Date == "" {
			f.Date = w.Date
		}
		f.fill(w, status)
	})
}

// SetStatus moves a withdrawal through pending, approved, paid or rejected.
func (l *WithdrawalLedger) SetStatus(withdrawalID, status string) (model.Withdrawal, error) {
	st, err := model.ParseWithdrawalStatus(status)
	if err != nil {
		return model.Withdrawal{}, err
	}
	return l.update(withdrawalID, func(w *model.Withdrawal) { w.Status = st })
}

func (l *WithdrawalLedger) update(withdrawalID string, mutate func(*model.Withdrawal)) (model.Withdrawal, error) {
	ws, err := l.st.Withdrawals()
	if err != nil {
		return model.Withdrawal{}, err
	}
	wi := findWithdrawal(ws, withdrawalID)
	if wi < 0 {
		return model.Withdrawal{}, model.NotFound("withdrawal", withdrawalID)
	}
	accts, err := l.st.Accounts()
	if err != nil {
		return model.Withdrawal{}, err
	}

	prev := slices.Clone(ws)
	w := ws[wi]
	before := w.Deduction()
	mutate(&w)
	w.UpdatedAt = l.stamp()
	ws[wi] = w

	saveAccts := l.adjustFor(accts, string(w.AccountID), before-w.Deduction(), "withdrawal updated")
	err = l.commit(
		func() error { return l.st.SaveWithdrawals(ws) },
		func() error { return l.st.SaveWithdrawals(prev) },
		l.saveAccounts(accts, saveAccts),
	)
	if err != nil {
		return model.Withdrawal{}, err
	}
	return w, nil
}

// Delete removes a withdrawal and gives back whatever it had deducted.
func (l *WithdrawalLedger) Delete(withdrawalID string) (model.Withdrawal, error) {
	ws, err := l.st.Withdrawals()
	if err != nil {
		return model.Withdrawal{}, err
	}
	wi := findWithdrawal(ws, withdrawalID)
	if wi < 0 {
		return model.Withdrawal{}, model.NotFound("withdrawal", withdrawalID)
	}
	w := ws[wi]

	accts, err := l.st.Accounts()
	if err != nil {
		return model.Withdrawal{}, err
	}
	saveAccts := l.adjustFor(accts, string(w.AccountID), w.Deduction(), "withdrawal deleted")

	prev := slices.Clone(ws)
	ws = append(ws[:wi], ws[wi+1:]...)
	err = l.commit(
		func() error { return l.st.SaveWithdrawals(ws) },
		func() error { return l.st.SaveWithdrawals(prev) },
		l.saveAccounts(accts, saveAccts),
	)
	if err != nil {
		return model.Withdrawal{}, err
	}
	return w, nil
}
