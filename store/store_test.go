package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/model"
)

func fptr(v float64) *float64 { return &v }

func backends(t *testing.T) map[string]*Store {
	t.Helper()

	fb, err := NewFileBackend(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	sb, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	stores := map[string]*Store{"json": New(fb, nil), "sqlite": New(sb, nil)}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func sampleAccount() model.Account {
	created := model.NewTimestamp(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	return model.Account{
		ID:             "01HQ0000000000000000000000",
		PropFirm:       "Apex",
		AccountType:    "50K Eval",
		AccountSize:    50000,
		AccountNumber:  "APX-1",
		InitialBalance: fptr(50000),
		CurrentBalance: fptr(51250.5),
		Status:         model.StatusEvaluation,
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			accts := []model.Account{sampleAccount()}
			require.NoError(t, s.SaveAccounts(accts))
			got, err := s.Accounts()
			require.NoError(t, err)
			assert.Equal(t, accts, got)

			trades := []model.Trade{{
				ID:                 "t1",
				Date:               "2024-03-01",
				AccountID:          "01HQ0000000000000000000000",
				Playbook:           "ORB",
				Symbol:             "MES",
				Direction:          model.Long,
				PnLGross:           125,
				Commission:         4.5,
				PnLNet:             120.5,
				Grade:              model.GradeB,
				MustHaveCompliance: map[string]bool{"must_0": true},
				RuleCompliance:     map[string]bool{"b_0": true, "a_0": false},
			}}
			require.NoError(t, s.SaveTrades(trades))
			gotTrades, err := s.Trades()
			require.NoError(t, err)
			assert.Equal(t, trades, gotTrades)
		})
	}
}

func TestMissingCollectionIsEmpty(t *testing.T) {
	t.Parallel()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.Withdrawals()
			require.NoError(t, err)
			assert.Empty(t, got)

			st, err := s.Settings()
			require.NoError(t, err)
			assert.Equal(t, model.DefaultSettings(), st)
		})
	}
}

func TestSaveNilWritesEmptyList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := New(fb, nil)

	require.NoError(t, s.SavePlaybooks(nil))
	data, err := os.ReadFile(filepath.Join(dir, "playbooks.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestMalformedCollectionDegradesToEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trades.json"), []byte(`{"oops"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`nonsense`), 0o644))
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := New(fb, nil)

	trades, err := s.Trades()
	require.NoError(t, err)
	assert.Empty(t, trades)

	st, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), st)
}

func TestReadFailureIsStorageError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A directory where the file should be cannot be read.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "accounts.json"), 0o755))
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)

	_, err = New(fb, nil).Accounts()
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrStorage))
}

func TestSettingsShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		want func(t *testing.T, st model.Settings)
	}{
		{
			name: "object",
			doc:  `{"debt_amount": 2500, "debt_name": "Card", "goal_amount": 10000, "must_have_rules": ["stop set"]}`,
			want: func(t *testing.T, st model.Settings) {
				assert.Equal(t, 2500.0, st.DebtAmount)
				assert.Equal(t, "Card", st.DebtName)
				assert.Len(t, st.MustHave, 1)
				assert.Empty(t, st.Mode)
				assert.Equal(t, model.DefaultSizing(), st.PositionSizing)
			},
		},
		{
			name: "one element list",
			doc:  `[{"debt_amount": 1, "rules_c": [{"text": "trend", "mandatory": true}]}]`,
			want: func(t *testing.T, st model.Settings) {
				assert.Equal(t, 1.0, st.DebtAmount)
				assert.Len(t, st.RulesC, 1)
			},
		},
		{
			name: "no rules keeps default rule set",
			doc:  `{"debt_amount": 7}`,
			want: func(t *testing.T, st model.Settings) {
				assert.Equal(t, model.ModeUnified, st.Mode)
				assert.Equal(t, 80.0, st.Thresholds["A"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := decodeSettings([]byte(tt.doc))
			require.NoError(t, err)
			tt.want(t, st)
		})
	}

	_, err := decodeSettings([]byte(`[{}, {}]`))
	assert.Error(t, err)
}

func TestSettingsWrittenAsObject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := New(fb, nil)

	require.NoError(t, s.SaveSettings(model.DefaultSettings()))
	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)

	var obj map[string]any
	require.NoError(t, json.Unmarshal(data, &obj))
	assert.Equal(t, "Trading Loan", obj["debt_name"])
}

func TestExportImport(t *testing.T) {
	t.Parallel()

	src := backends(t)["json"]
	src.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	require.NoError(t, src.SaveAccounts([]model.Account{sampleAccount()}))
	require.NoError(t, src.SaveCheckIns([]model.CheckIn{{ID: "c1", Date: "2024-05-06", SleepHours: 8}}))

	data, err := src.ExportJSON()
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &keys))
	for _, k := range []string{"settings", "prop_firms", "accounts", "playbooks", "trades", "withdrawals", "psychological_checkins", "daily_entries", "exported_at"} {
		assert.Contains(t, keys, k)
	}

	dst := backends(t)["sqlite"]
	imported, err := dst.Import(data)
	require.NoError(t, err)
	assert.Equal(t, Collections, imported)

	accts, err := dst.Accounts()
	require.NoError(t, err)
	assert.Equal(t, []model.Account{sampleAccount()}, accts)
}

func TestImportAliasesAndMissingKeys(t *testing.T) {
	t.Parallel()

	s := backends(t)["json"]
	require.NoError(t, s.SaveTrades([]model.Trade{{ID: "keep"}}))

	imported, err := s.Import([]byte(`{
		"daily_checkins": [{"id": 3, "date": "2024-01-02", "alcohol_24h": true}],
		"exported_at": "2024-01-02T10:00:00"
	}`))
	require.NoError(t, err)
	assert.Equal(t, []Collection{CheckIns}, imported)

	checkins, err := s.CheckIns()
	require.NoError(t, err)
	require.Len(t, checkins, 1)
	assert.Equal(t, model.ID("3"), checkins[0].ID)
	assert.True(t, checkins[0].AlcoholConsumed)

	trades, err := s.Trades()
	require.NoError(t, err)
	assert.Equal(t, []model.Trade{{ID: "keep"}}, trades)
}

func TestImportRejectsWithoutPartialWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `garbage`},
		{"not an object", `[1, 2]`},
		{"null", `null`},
		{"one bad collection", `{"accounts": [{"id": "new"}], "trades": {"not": "a list"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := backends(t)["json"]
			require.NoError(t, s.SaveAccounts([]model.Account{sampleAccount()}))

			_, err := s.Import([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrValidation))

			accts, err := s.Accounts()
			require.NoError(t, err)
			assert.Equal(t, []model.Account{sampleAccount()}, accts)
		})
	}
}

func TestBackupListRestore(t *testing.T) {
	t.Parallel()

	s := backends(t)["json"]
	dir := filepath.Join(t.TempDir(), "backups")

	list, err := ListBackups(dir)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.SaveAccounts([]model.Account{sampleAccount()}))
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local) }
	first, err := s.Backup(dir)
	require.NoError(t, err)
	assert.Equal(t, "backup_20240102_030405.json", filepath.Base(first))

	s.now = func() time.Time { return time.Date(2024, 2, 2, 3, 4, 5, 0, time.Local) }
	_, err = s.Backup(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	list, err = ListBackups(dir)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "backup_20240202_030405.json", list[0].Name)
	assert.Positive(t, list[0].Size)

	require.NoError(t, s.SaveAccounts(nil))
	_, err = s.Restore(first)
	require.NoError(t, err)
	accts, err := s.Accounts()
	require.NoError(t, err)
	assert.Equal(t, []model.Account{sampleAccount()}, accts)
}

func TestOpenUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := Open("mongo", t.TempDir(), "", nil)
	assert.True(t, errors.Is(err, model.ErrValidation))
}
