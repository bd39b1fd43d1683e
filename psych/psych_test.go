package psych

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/model"
)

type memStore struct {
	checkins []model.CheckIn
}

func (m *memStore) CheckIns() ([]model.CheckIn, error) {
	return append([]model.CheckIn(nil), m.checkins...), nil
}

func (m *memStore) SaveCheckIns(v []model.CheckIn) error {
	m.checkins = append([]model.CheckIn(nil), v...)
	return nil
}

func good() model.CheckIn {
	return model.CheckIn{SleepHours: 8, StressLevel: 3, HomeStress: 2, EmotionalState: 4, ExerciseDone: true}
}

func TestAssess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *model.CheckIn)
		want   Status
		red    int
		yellow int
	}{
		{"all good", func(c *model.CheckIn) {}, Green, 0, 0},
		{"alcohol", func(c *model.CheckIn) { c.AlcoholConsumed = true }, Red, 1, 0},
		{"short sleep", func(c *model.CheckIn) { c.SleepHours = 5.5 }, Red, 1, 1},
		{"stress 8", func(c *model.CheckIn) { c.StressLevel = 8 }, Red, 1, 1},
		{"emotional 8", func(c *model.CheckIn) { c.EmotionalState = 8 }, Red, 1, 0},
		{"one soft flag", func(c *model.CheckIn) { c.ExerciseDone = false }, Green, 0, 1},
		{"two soft flags", func(c *model.CheckIn) { c.ExerciseDone = false; c.SleepHours = 6.5 }, Yellow, 0, 2},
		{"moderate stress and home stress", func(c *model.CheckIn) { c.StressLevel = 5; c.HomeStress = 8 }, Yellow, 0, 2},
		{"legacy poor sleep quality", func(c *model.CheckIn) { c.SleepHours = 0; c.SleepQuality = 3 }, Red, 1, 0},
		{"legacy fine sleep quality", func(c *model.CheckIn) { c.SleepHours = 0; c.SleepQuality = 8 }, Green, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := good()
			tt.mutate(&c)
			a := Assess(c)
			assert.Equal(t, tt.want, a.Status)
			assert.Len(t, a.RedFlags, tt.red)
			assert.Len(t, a.YellowFlags, tt.yellow)
		})
	}
}

func TestClearanceFor(t *testing.T) {
	t.Parallel()

	none := DefaultThresholds.ClearanceFor(nil)
	assert.Equal(t, NoCheckIn, none.Status)
	assert.False(t, none.Cleared)

	y := good()
	y.ExerciseDone, y.StressLevel = false, 6
	cl := DefaultThresholds.ClearanceFor(&y)
	assert.Equal(t, Yellow, cl.Status)
	assert.True(t, cl.Cleared)
	assert.Equal(t, []string{"Max 1 trade today", "Reduce position sizes by 50%", "No revenge trading"}, cl.Restrictions)

	r := good()
	r.AlcoholConsumed = true
	assert.False(t, DefaultThresholds.ClearanceFor(&r).Cleared)
}

func TestEnforcement(t *testing.T) {
	t.Parallel()

	red := Clearance{Status: Red, RedFlags: []string{"Alcohol consumed in last 24hrs"}}
	none := Clearance{Status: NoCheckIn}
	yellow := Clearance{Status: Yellow, Cleared: true}

	tests := []struct {
		level   Enforcement
		c       Clearance
		blocked bool
	}{
		{Soft, red, false},
		{Soft, none, false},
		{Medium, red, true},
		{Medium, none, false},
		{Strict, red, true},
		{Strict, none, true},
		{Strict, yellow, false},
	}
	for _, tt := range tests {
		err := tt.level.Check(tt.c)
		assert.Equal(t, tt.blocked, errors.Is(err, ErrTradingBlocked), "%s/%s", tt.level, tt.c.Status)
	}

	e, err := ParseEnforcement("")
	require.NoError(t, err)
	assert.Equal(t, Soft, e)
	e, err = ParseEnforcement("STRICT")
	require.NoError(t, err)
	assert.Equal(t, Strict, e)
	_, err = ParseEnforcement("ultra")
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestJournalOnePerDay(t *testing.T) {
	t.Parallel()

	st := &memStore{checkins: []model.CheckIn{{ID: "old", Date: "2024-03-09", SleepHours: 7}}}
	j := NewJournal(st, nil)
	j.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.Local) }

	cl, err := j.Clearance()
	require.NoError(t, err)
	assert.Equal(t, NoCheckIn, cl.Status)

	first := good()
	first.AlcoholConsumed = true
	_, err = j.SaveCheckIn(first)
	require.NoError(t, err)
	cl, err = j.Clearance()
	require.NoError(t, err)
	assert.Equal(t, Red, cl.Status)

	saved, err := j.SaveCheckIn(good())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", saved.Date)
	assert.Len(t, st.checkins, 2)

	today, err := j.Today()
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, saved.ID, today.ID)

	hist, err := j.History(1)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "2024-03-10", hist[0].Date)

	bad := good()
	bad.StressLevel = 12
	_, err = j.SaveCheckIn(bad)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	st := &memStore{checkins: []model.CheckIn{
		{Date: "2024-02-01", SleepHours: 3, AlcoholConsumed: true},
		{Date: "2024-03-05", SleepHours: 5, StressLevel: 4, ExerciseDone: false, AlcoholConsumed: true},
		{Date: "2024-03-07", SleepHours: 6.5, StressLevel: 6, EmotionalState: 5},
		{Date: "2024-03-09", SleepHours: 8, StressLevel: 2, EmotionalState: 3, ExerciseDone: true},
	}}
	j := NewJournal(st, nil)
	j.now = func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.Local) }

	p, err := j.Patterns(7)
	require.NoError(t, err)
	assert.Equal(t, 3, p.DaysAnalyzed)
	assert.InDelta(t, 6.5, p.AvgSleep, 1e-9)
	assert.InDelta(t, 4.0, p.AvgStress, 1e-9)
	assert.InDelta(t, 2.7, p.AvgEmotional, 1e-9)
	assert.Equal(t, 1, p.RedDays)
	assert.Equal(t, 1, p.YellowDays)
	assert.Equal(t, 1, p.GreenDays)
	assert.Equal(t, 1, p.AlcoholDays)
	assert.Equal(t, 1, p.ExerciseDays)
	assert.Equal(t, "improving", p.SleepTrend)

	empty, err := NewJournal(&memStore{}, nil).Patterns(7)
	require.NoError(t, err)
	assert.Zero(t, empty.DaysAnalyzed)
}
