package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/store"
)

func TestDetectKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rs   model.RuleSet
		want Kind
	}{
		{"empty", model.RuleSet{}, Unified},
		{"explicit mode wins", model.RuleSet{Mode: "threshold", RulesC: []model.TierRule{{Text: "x"}}}, Threshold},
		{"bad mode falls back to shapes", model.RuleSet{Mode: "bogus", RulesA: []model.TierRule{{Text: "x"}}}, Tiered},
		{"legacy flat rules", model.RuleSet{Rules: []string{"x"}}, Tiered},
		{"conditions", model.RuleSet{Conditions: []model.Condition{{Text: "x", Unlocks: model.GradeA}}}, Unified},
		{"live grader lists", model.RuleSet{BRules: []model.RuleText{{Text: "x"}}}, Unified},
		{"bonus rules", model.RuleSet{Bonus: []model.RuleText{{Text: "x"}}}, Threshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.rs))
		})
	}
}

func TestNormalizeUnifiedAssignsLegacyKeys(t *testing.T) {
	t.Parallel()

	rs := model.RuleSet{
		MustHave: []model.RuleText{{Text: "Stop set"}, {Text: "Trend aligned"}},
		ARules:   []model.RuleText{{Text: "HTF level"}},
		BRules:   []model.RuleText{{Text: "Volume"}},
		CRules:   []model.RuleText{{Text: "Any"}},
		Conditions: []model.Condition{
			{ID: "x1", Text: "Retest", Unlocks: model.GradeB},
			{Text: "Bad grade", Unlocks: "Q"},
		},
	}
	m := Normalize(rs)

	assert.Equal(t, Unified, m.Kind)
	require.Len(t, m.MustHave, 2)
	assert.Equal(t, "must_0", m.MustHave[0].ID)
	assert.Equal(t, "must_1", m.MustHave[1].ID)
	assert.True(t, m.MustHave[0].Mandatory)

	byID := map[string]model.Grade{}
	for _, c := range m.Conditions {
		byID[c.ID] = c.Unlocks
	}
	assert.Equal(t, map[string]model.Grade{
		"x1":     model.GradeB,
		"cond_1": model.GradeC,
		"a_0":    model.GradeA,
		"b_0":    model.GradeB,
		"c_0":    model.GradeC,
	}, byID)

	// Input is untouched.
	assert.Empty(t, rs.MustHave[0].ID)
}

func TestNormalizeTiered(t *testing.T) {
	t.Parallel()

	m := Normalize(model.RuleSet{
		RulesC: []model.TierRule{{Text: "c1", Mandatory: true}, {ID: "keep", Text: "c2"}},
		RulesA: []model.TierRule{{Text: "a1", Mandatory: true}},
	})
	assert.Equal(t, Tiered, m.Kind)
	assert.Equal(t, []Rule{{ID: "tc_0", Text: "c1", Mandatory: true}, {ID: "keep", Text: "c2"}}, m.Tiers[model.GradeC])
	assert.Empty(t, m.Tiers[model.GradeB])
	assert.Equal(t, "ta_0", m.Tiers[model.GradeA][0].ID)
	assert.Equal(t, []string{"tc_0", "keep", "ta_0"}, m.Keys())
}

func TestNormalizeThreshold(t *testing.T) {
	t.Parallel()

	m := Normalize(model.RuleSet{
		Bonus:      []model.RuleText{{Text: "one"}, {Text: "two"}},
		Thresholds: map[string]float64{"A": 90},
	})
	assert.Equal(t, Threshold, m.Kind)
	assert.Equal(t, Thresholds{A: 90, B: 50}, m.Thresholds)
	assert.Equal(t, "bonus_1", m.Bonus[1].ID)
}

func TestModelEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, Normalize(model.RuleSet{}).Empty())
	assert.True(t, Normalize(model.RuleSet{Mode: model.ModeTiered}).Empty())
	assert.False(t, Normalize(model.RuleSet{MustHave: []model.RuleText{{Text: "x"}}}).Empty())
}

func TestMigratePlaybookLegacyRules(t *testing.T) {
	t.Parallel()

	var pb model.Playbook
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "name": "ORB", "rules": ["x", "y"]}`), &pb))

	assert.True(t, MigratePlaybook(&pb))
	assert.Equal(t, []model.TierRule{
		{ID: "tc_0", Text: "x", Mandatory: true},
		{ID: "tc_1", Text: "y", Mandatory: true},
	}, pb.RulesC)
	assert.Equal(t, []model.TierRule{}, pb.RulesB)
	assert.Equal(t, []model.TierRule{}, pb.RulesA)
	assert.Nil(t, pb.Rules)
	assert.Equal(t, model.ModeTiered, pb.Mode)

	// Already migrated.
	assert.False(t, MigratePlaybook(&pb))

	// The migrated shape survives a save and reload.
	fb, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	st := store.New(fb, nil)
	require.NoError(t, st.SavePlaybooks([]model.Playbook{pb}))
	raw, err := fb.Read(string(store.Playbooks))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rules_b": []`)
	assert.Contains(t, string(raw), `"rules_a": []`)
	loaded, err := st.Playbooks()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, pb, loaded[0])

	// The unmigrated playbook grades the same way.
	legacy := Normalize(model.RuleSet{Rules: []string{"x", "y"}})
	assert.Equal(t, legacy.Tiers[model.GradeC], Normalize(pb.RuleSet).Tiers[model.GradeC])
}

func TestAddAndRemoveRuleKeepIDsStable(t *testing.T) {
	t.Parallel()

	rs := model.RuleSet{MustHave: []model.RuleText{{Text: "first"}, {Text: "second"}}}

	newID, err := AddRule(&rs, SectionMustHave, "third", false)
	require.NoError(t, err)
	assert.NotEmpty(t, newID)
	assert.Equal(t, "must_0", rs.MustHave[0].ID)

	assert.True(t, RemoveRule(&rs, "must_0"))
	require.Len(t, rs.MustHave, 2)
	assert.Equal(t, "must_1", rs.MustHave[0].ID)
	assert.Equal(t, newID, rs.MustHave[1].ID)

	assert.False(t, RemoveRule(&rs, "missing"))

	_, err = AddRule(&rs, "nowhere", "x", false)
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = AddRule(&rs, SectionA, "  ", false)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestAddTierRuleMigratesLegacyList(t *testing.T) {
	t.Parallel()

	rs := model.RuleSet{Rules: []string{"x"}}
	_, err := AddRule(&rs, SectionTierB, "b1", true)
	require.NoError(t, err)

	m := Normalize(rs)
	assert.Equal(t, "x", m.Tiers[model.GradeC][0].Text)
	assert.True(t, m.Tiers[model.GradeB][0].Mandatory)
}
