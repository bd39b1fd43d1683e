package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/propjournal/model"
)

// Snapshot is the whole store as one document.
type Snapshot struct {
	Settings     model.Settings     `json:"settings"`
	PropFirms    []model.PropFirm   `json:"prop_firms"`
	Accounts     []model.Account    `json:"accounts"`
	Playbooks    []model.Playbook   `json:"playbooks"`
	Trades       []model.Trade      `json:"trades"`
	Withdrawals  []model.Withdrawal `json:"withdrawals"`
	CheckIns     []model.CheckIn    `json:"psychological_checkins"`
	DailyEntries []model.DailyEntry `json:"daily_entries"`
	ExportedAt   model.Timestamp    `json:"exported_at"`
}

// aliases maps key names used by older exports to collections.
var aliases = map[string]Collection{
	"daily_checkins": CheckIns,
	"checkins":       CheckIns,
}

// Export reads every collection into a Snapshot.
func (s *Store) Export() (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Settings, err = s.Settings(); err != nil {
		return snap, err
	}
	if snap.PropFirms, err = s.PropFirms(); err != nil {
		return snap, err
	}
	if snap.Accounts, err = s.Accounts(); err != nil {
		return snap, err
	}
	if snap.Playbooks, err = s.Playbooks(); err != nil {
		return snap, err
	}
	if snap.Trades, err = s.Trades(); err != nil {
		return snap, err
	}
	if snap.Withdrawals, err = s.Withdrawals(); err != nil {
		return snap, err
	}
	if snap.CheckIns, err = s.CheckIns(); err != nil {
		return snap, err
	}
	if snap.DailyEntries, err = s.DailyEntries(); err != nil {
		return snap, err
	}
	snap.ExportedAt = model.NewTimestamp(s.now())
	return snap, nil
}

// ExportJSON is Export encoded for writing to a file.
func (s *Store) ExportJSON() ([]byte, error) {
	snap, err := s.Export()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(snap, "", "  ")
}

func stageList[T any](raw json.RawMessage, save func([]T) error) (func() error, error) {
	var v []T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return func() error { return save(v) }, nil
}

// Import replaces every collection present in a snapshot document.
// Collections missing from the document are left untouched, and keys from
// older exports are accepted. Every present collection is decoded before
// anything is written, so a malformed document changes nothing.
func (s *Store) Import(data []byte) ([]Collection, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, model.Invalid("snapshot", "not a JSON object")
	}

	found := map[Collection]json.RawMessage{}
	for key, msg := range raw {
		if c, ok := aliases[key]; ok {
			if _, set := found[c]; !set {
				found[c] = msg
			}
		}
	}
	for _, c := range Collections {
		if msg, ok := raw[string(c)]; ok {
			found[c] = msg
		}
	}

	var (
		writes   []func() error
		imported []Collection
	)
	for _, c := range Collections {
		msg, ok := found[c]
		if !ok {
			continue
		}
		w, err := s.stage(c, msg)
		if err != nil {
			return nil, model.Invalid(string(c), "%v", err)
		}
		writes = append(writes, w)
		imported = append(imported, c)
	}

	for _, w := range writes {
		if err := w(); err != nil {
			return nil, err
		}
	}
	s.log.WithField("collections", imported).Info("imported snapshot")
	return imported, nil
}

func (s *Store) stage(c Collection, msg json.RawMessage) (func() error, error) {
	switch c {
	case Settings:
		st, err := decodeSettings(msg)
		if err != nil {
			return nil, err
		}
		return func() error { return s.SaveSettings(st) }, nil
	case PropFirms:
		return stageList(msg, s.SavePropFirms)
	case Accounts:
		return stageList(msg, s.SaveAccounts)
	case Playbooks:
		return stageList(msg, s.SavePlaybooks)
	case Trades:
		return stageList(msg, s.SaveTrades)
	case Withdrawals:
		return stageList(msg, s.SaveWithdrawals)
	case CheckIns:
		return stageList(msg, s.SaveCheckIns)
	case DailyEntries:
		return stageList(msg, s.SaveDailyEntries)
	}
	return nil, fmt.Errorf("unknown collection %q", c)
}

const (
	backupPrefix = "backup_"
	backupLayout = "20060102_150405"
)

// BackupInfo describes one backup file.
type BackupInfo struct {
	Name  string
	Path  string
	Taken time.Time
	Size  int64
}

// Backup writes a snapshot to dir as backup_YYYYMMDD_HHMMSS.json and returns
// its path.
func (s *Store) Backup(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &model.StorageError{Collection: "backup", Op: "write", Err: err}
	}
	data, err := s.ExportJSON()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, backupPrefix+s.now().Format(backupLayout)+".json")
	if err := writeFileAtomic(path, data); err != nil {
		return "", &model.StorageError{Collection: "backup", Op: "write", Err: err}
	}
	s.log.WithField("path", path).Info("backup written")
	return path, nil
}

// ListBackups returns the backups in dir, newest first. A missing dir has
// no backups.
func ListBackups(dir string) ([]BackupInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &model.StorageError{Collection: "backup", Op: "list", Err: err}
	}

	var out []BackupInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), ".json")
		taken, err := time.ParseInLocation(backupLayout, stamp, time.Local)
		if err != nil {
			continue
		}
		info := BackupInfo{Name: name, Path: filepath.Join(dir, name), Taken: taken}
		if fi, err := e.Info(); err == nil {
			info.Size = fi.Size()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Taken.After(out[j].Taken) })
	return out, nil
}

// Restore imports a backup file.
func (s *Store) Restore(path string) ([]Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.StorageError{Collection: "backup", Op: "read", Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, model.Invalid("backup", "%s is empty", filepath.Base(path))
	}
	imported, err := s.Import(data)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", filepath.Base(path), err)
	}
	return imported, nil
}
