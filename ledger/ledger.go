// Package ledger keeps account balances in step with the trades and
// withdrawals recorded against them.
//
// For every account the running balance equals its baseline plus the net
// P&L of its trades minus its paid withdrawals. Each operation applies the
// change in financial effect to the balance rather than recomputing it, and
// reads then rewrites the collections it touches.
package ledger

import (
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/propjournal/internal/id"
	"github.com/rustyeddy/propjournal/internal/logging"
	"github.com/rustyeddy/propjournal/model"
)

// Store is the part of the record store the ledgers use.
type Store interface {
	Accounts() ([]model.Account, error)
	SaveAccounts([]model.Account) error
	Trades() ([]model.Trade, error)
	SaveTrades([]model.Trade) error
	Withdrawals() ([]model.Withdrawal, error)
	SaveWithdrawals([]model.Withdrawal) error
	Playbooks() ([]model.Playbook, error)
	PropFirms() ([]model.PropFirm, error)
	Settings() (model.Settings, error)
}

type book struct {
	st    Store
	log   *logrus.Entry
	now   func() time.Time
	newID func() string
}

func newBook(st Store, log *logrus.Entry, component string) book {
	return book{
		st:    st,
		log:   logging.For(log, component),
		now:   time.Now,
		newID: id.New,
	}
}

func (b book) stamp() model.Timestamp { return model.NewTimestamp(b.now()) }

func (b book) today() string { return b.now().Format(model.DateLayout) }

func findAccount(accts []model.Account, ref string) int {
	for i := range accts {
		if accts[i].Matches(ref) {
			return i
		}
	}
	return -1
}

// apply moves an account balance by delta. A non-finite delta is never
// applied; it is logged and treated as zero.
func (b book) apply(a *model.Account, delta float64, reason string) {
	fields := logrus.Fields{"account": a.ID, "delta": delta, "reason": reason}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		b.log.WithFields(fields).Error("non-finite balance adjustment, applying 0")
		return
	}
	if delta == 0 {
		return
	}
	a.SetBalance(a.Balance() + delta)
	a.UpdatedAt = b.stamp()
	fields["balance"] = a.Balance()
	b.log.WithFields(fields).Debug("balance adjusted")
}

// commit writes a record collection and then the accounts. When the account
// write fails the previous records are written back, so either both
// collections change or neither does. A nil accounts func skips the second
// write.
func (b book) commit(records, restore, accounts func() error) error {
	if err := records(); err != nil {
		return err
	}
	if accounts == nil {
		return nil
	}
	if err := accounts(); err != nil {
		if rerr := restore(); rerr != nil {
			b.log.WithError(rerr).Error("restoring records after failed account write")
		}
		return err
	}
	return nil
}

func (b book) saveAccounts(accts []model.Account, save bool) func() error {
	if !save {
		return nil
	}
	return func() error { return b.st.SaveAccounts(accts) }
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func checkDate(field, s string) error {
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return model.Invalid(field, "%q is not a YYYY-MM-DD date", s)
	}
	return nil
}
