// Package store is the record store: one named collection per entity type,
// each read and written as a whole JSON document.
//
// Every operation is a full read-modify-write of the collections it touches.
// Two writers racing on the same collection lose one write; callers are
// expected to run one operation at a time.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/propjournal/internal/logging"
	"github.com/rustyeddy/propjournal/model"
)

// Collection names a persisted collection.
type Collection string

const (
	Accounts     Collection = "accounts"
	Trades       Collection = "trades"
	Withdrawals  Collection = "withdrawals"
	Playbooks    Collection = "playbooks"
	PropFirms    Collection = "prop_firms"
	CheckIns     Collection = "psychological_checkins"
	Settings     Collection = "settings"
	DailyEntries Collection = "daily_entries"
)

// Collections lists every collection in the order they are imported.
var Collections = []Collection{
	Settings, PropFirms, Accounts, Playbooks, Trades, Withdrawals, CheckIns, DailyEntries,
}

// Store reads and writes typed collections through a Backend.
type Store struct {
	b   Backend
	log *logrus.Entry
	now func() time.Time
}

func New(b Backend, log *logrus.Entry) *Store {
	return &Store{b: b, log: logging.For(log, "store"), now: time.Now}
}

// Open builds a store for a backend kind: "json" keeps files under dir,
// "sqlite" uses the database at dbPath.
func Open(kind, dir, dbPath string, log *logrus.Entry) (*Store, error) {
	var (
		b   Backend
		err error
	)
	switch kind {
	case "", "json":
		b, err = NewFileBackend(dir)
	case "sqlite":
		b, err = NewSQLiteBackend(dbPath)
	default:
		return nil, model.Invalid("store.type", "unknown store type %q", kind)
	}
	if err != nil {
		return nil, &model.StorageError{Collection: "*", Op: "open", Err: err}
	}
	return New(b, log), nil
}

func (s *Store) Close() error { return s.b.Close() }

func load[T any](s *Store, c Collection) ([]T, error) {
	data, err := s.b.Read(string(c))
	if err != nil {
		return nil, &model.StorageError{Collection: string(c), Op: "read", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		s.log.WithFields(logrus.Fields{"collection": c, "error": err}).
			Warn("malformed collection, treating as empty")
		return nil, nil
	}
	return out, nil
}

func save[T any](s *Store, c Collection, v []T) error {
	if v == nil {
		v = []T{}
	}
	return s.write(c, v)
}

func (s *Store) write(c Collection, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &model.StorageError{Collection: string(c), Op: "encode", Err: err}
	}
	if err := s.b.Write(string(c), data); err != nil {
		return &model.StorageError{Collection: string(c), Op: "write", Err: err}
	}
	return nil
}

func (s *Store) Accounts() ([]model.Account, error) { return load[model.Account](s, Accounts) }

func (s *Store) SaveAccounts(v []model.Account) error { return save(s, Accounts, v) }

func (s *Store) Trades() ([]model.Trade, error) { return load[model.Trade](s, Trades) }

func (s *Store) SaveTrades(v []model.Trade) error { return save(s, Trades, v) }

func (s *Store) Withdrawals() ([]model.Withdrawal, error) {
	return load[model.Withdrawal](s, Withdrawals)
}

func (s *Store) SaveWithdrawals(v []model.Withdrawal) error { return save(s, Withdrawals, v) }

func (s *Store) Playbooks() ([]model.Playbook, error) { return load[model.Playbook](s, Playbooks) }

func (s *Store) SavePlaybooks(v []model.Playbook) error { return save(s, Playbooks, v) }

func (s *Store) PropFirms() ([]model.PropFirm, error) { return load[model.PropFirm](s, PropFirms) }

func (s *Store) SavePropFirms(v []model.PropFirm) error { return save(s, PropFirms, v) }

func (s *Store) CheckIns() ([]model.CheckIn, error) { return load[model.CheckIn](s, CheckIns) }

func (s *Store) SaveCheckIns(v []model.CheckIn) error { return save(s, CheckIns, v) }

func (s *Store) DailyEntries() ([]model.DailyEntry, error) {
	return load[model.DailyEntry](s, DailyEntries)
}

func (s *Store) SaveDailyEntries(v []model.DailyEntry) error { return save(s, DailyEntries, v) }

// Settings returns the singleton settings record. The document may be an
// object or a one-element list. Missing or malformed settings read as
// model.DefaultSettings.
func (s *Store) Settings() (model.Settings, error) {
	data, err := s.b.Read(string(Settings))
	if err != nil {
		return model.Settings{}, &model.StorageError{Collection: string(Settings), Op: "read", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return model.DefaultSettings(), nil
	}
	st, err := decodeSettings(data)
	if err != nil {
		s.log.WithFields(logrus.Fields{"collection": Settings, "error": err}).
			Warn("malformed settings, using defaults")
		return model.DefaultSettings(), nil
	}
	return st, nil
}

func (s *Store) SaveSettings(st model.Settings) error { return s.write(Settings, st) }

func decodeSettings(data []byte) (model.Settings, error) {
	st := model.DefaultSettings()
	// The stored rule set replaces the default one; a preset grading_mode
	// would override mode detection.
	st.RuleSet = model.RuleSet{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return st, err
		}
		switch len(list) {
		case 0:
			return model.DefaultSettings(), nil
		case 1:
			trimmed = list[0]
		default:
			return st, fmt.Errorf("settings holds %d records, want 1", len(list))
		}
	}
	// Decoding over the defaults keeps any field an older file lacks.
	if err := json.Unmarshal(trimmed, &st); err != nil {
		return model.DefaultSettings(), err
	}
	if st.RuleSet.Empty() && st.Mode == "" {
		st.RuleSet = model.DefaultSettings().RuleSet
	}
	if st.PositionSizing == nil {
		st.PositionSizing = model.DefaultSizing()
	}
	return st, nil
}
