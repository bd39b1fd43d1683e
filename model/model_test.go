package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	t.Parallel()

	var recs []struct {
		ID ID `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`[{"id": 3}, {"id": "01HX"}, {"id": null}]`), &recs))
	assert.Equal(t, ID("3"), recs[0].ID)
	assert.Equal(t, ID("01HX"), recs[1].ID)
	assert.Equal(t, ID(""), recs[2].ID)

	out, err := json.Marshal(recs[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"3"}`, string(out))
}

func TestTimestampLayouts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-15T10:30:45Z", time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC)},
		{"2024-03-15T10:30:45.123456", time.Date(2024, 3, 15, 10, 30, 45, 123456000, time.Local)},
		{"2024-03-15T10:30:45", time.Date(2024, 3, 15, 10, 30, 45, 0, time.Local)},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, ts.Equal(tt.want), "got %v", ts.Time)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestampJSONRoundTrip(t *testing.T) {
	t.Parallel()

	in := struct {
		At   Timestamp `json:"at"`
		Zero Timestamp `json:"zero"`
	}{At: NewTimestamp(time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC))}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"zero":null`)

	var out struct {
		At   Timestamp `json:"at"`
		Zero Timestamp `json:"zero"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.True(t, out.At.Equal(in.At.Time))
	assert.True(t, out.Zero.IsZero())
}

func TestParseGrade(t *testing.T) {
	t.Parallel()

	g, err := ParseGrade(" b ")
	require.NoError(t, err)
	assert.Equal(t, GradeB, g)

	_, err = ParseGrade("D")
	assert.True(t, errors.Is(err, ErrValidation))

	assert.Greater(t, GradeA.Rank(), GradeB.Rank())
	assert.Greater(t, GradeC.Rank(), GradeF.Rank())
	assert.Equal(t, -1, Grade("Z").Rank())
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	d, err := ParseDirection("short")
	require.NoError(t, err)
	assert.Equal(t, Short, d)
	assert.Equal(t, -1.0, d.Sign())
	assert.Equal(t, 1.0, Long.Sign())

	_, err = ParseDirection("sideways")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRuleTextDecodesStringOrObject(t *testing.T) {
	t.Parallel()

	var rs RuleSet
	require.NoError(t, json.Unmarshal([]byte(`{"must_have_rules": ["Trend aligned", {"id": "m1", "text": "Stop set"}]}`), &rs))
	require.Len(t, rs.MustHave, 2)
	assert.Equal(t, RuleText{Text: "Trend aligned"}, rs.MustHave[0])
	assert.Equal(t, RuleText{ID: "m1", Text: "Stop set"}, rs.MustHave[1])
	assert.False(t, rs.Empty())
	assert.True(t, RuleSet{Mode: ModeTiered}.Empty())
}

func TestTradeComplianceMergesLegacyMaps(t *testing.T) {
	t.Parallel()

	tr := Trade{
		MustHaveCompliance: map[string]bool{"must_0": true},
		ACompliance:        map[string]bool{"a_0": false},
		BCompliance:        map[string]bool{"b_0": true},
		RuleCompliance:     map[string]bool{"c_0": true},
	}
	must, rules := tr.Compliance()
	assert.Equal(t, map[string]bool{"must_0": true}, must)
	assert.Equal(t, map[string]bool{"a_0": false, "b_0": true, "c_0": true}, rules)
}

func TestCheckInLegacyKeys(t *testing.T) {
	t.Parallel()

	var c CheckIn
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-01-02","sleep_quality":7,"alcohol_24h":true,"exercise":true}`), &c))
	assert.True(t, c.AlcoholConsumed)
	assert.True(t, c.ExerciseDone)
	assert.Equal(t, 7, c.SleepQuality)
}

func TestWithdrawalBreakdown(t *testing.T) {
	t.Parallel()

	w := Withdrawal{Amount: 200, Allocation: "Debt Payment", Status: WithdrawalPaid}
	assert.Equal(t, Allocations{Debt: 200}, w.Breakdown())
	assert.Equal(t, 200.0, w.Deduction())

	w = Withdrawal{Amount: 200, Allocation: "Reinvestment", Status: WithdrawalPending}
	assert.Equal(t, Allocations{Reinvestment: 200}, w.Breakdown())
	assert.Equal(t, 0.0, w.Deduction())

	w = Withdrawal{Amount: 100, Allocations: &Allocations{Debt: 10, Savings: 90}}
	assert.Equal(t, Allocations{Debt: 10, Savings: 90}, w.Breakdown())
}

func TestAccountBalanceFallback(t *testing.T) {
	t.Parallel()

	a := Account{AccountSize: 50000}
	assert.Equal(t, 50000.0, a.Balance())
	assert.Equal(t, 50000.0, a.Baseline())
	a.SetBalance(51000)
	assert.Equal(t, 51000.0, a.Balance())
	assert.True(t, Account{ID: "7", AccountNumber: "TF-1"}.Matches("TF-1"))
	assert.False(t, Account{ID: "7"}.Matches(""))
}

func TestPropFirmLimitsFor(t *testing.T) {
	t.Parallel()

	f := PropFirm{
		Limits: map[string]FirmLimits{"50K": {MaxDailyLoss: 1000, MaxTotalLoss: 2000, ProfitTarget: 3000}},
	}
	l, ok := f.LimitsFor("50K", 50000)
	assert.True(t, ok)
	assert.Equal(t, 1000.0, l.MaxDailyLoss)

	_, ok = f.LimitsFor("100K", 100000)
	assert.False(t, ok)

	legacy := PropFirm{MaxDailyLossPct: 3, MaxDrawdownPct: 6}
	l, ok = legacy.LimitsFor("any", 50000)
	assert.True(t, ok)
	assert.InDelta(t, 1500, l.MaxDailyLoss, 1e-9)
	assert.InDelta(t, 3000, l.MaxTotalLoss, 1e-9)
}
