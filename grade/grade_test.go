package grade

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/rules"
)

func tieredModel() rules.Model {
	return rules.Model{
		Kind:     rules.Tiered,
		MustHave: []rules.Rule{{ID: "must_0", Text: "stop set", Mandatory: true}},
		Tiers: map[model.Grade][]rules.Rule{
			model.GradeC: {{ID: "tc_0", Text: "trend", Mandatory: true}, {ID: "tc_1", Text: "level", Mandatory: true}},
			model.GradeB: {{ID: "tb_0", Text: "volume", Mandatory: true}, {ID: "tb_1", Text: "nice to have"}},
			model.GradeA: {{ID: "ta_0", Text: "confluence", Mandatory: true}},
		},
	}
}

func set(ids ...string) map[string]bool {
	m := map[string]bool{}
	for _, id := range ids {
		m[id] = true
	}
	return m
}

func TestTieredMandatoryGrading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mustHave map[string]bool
		checked  map[string]bool
		want     model.Grade
	}{
		{"must-have missing", nil, set("tc_0", "tc_1", "tb_0", "ta_0"), model.GradeF},
		{"c tier incomplete", set("must_0"), set("tc_0"), model.GradeF},
		{"c tier only", set("must_0"), set("tc_0", "tc_1"), model.GradeC},
		{"optional rules do not count", set("must_0"), set("tc_0", "tc_1", "tb_1"), model.GradeC},
		{"b tier", set("must_0"), set("tc_0", "tc_1", "tb_0"), model.GradeB},
		{"a tier needs b", set("must_0"), set("tc_0", "tc_1", "ta_0"), model.GradeC},
		{"everything", set("must_0"), set("tc_0", "tc_1", "tb_0", "ta_0"), model.GradeA},
	}

	g := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, policy := g.Grade(tieredModel(), tt.mustHave, tt.checked)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, g.Policy(tt.want), policy)
		})
	}
}

func TestTierWithoutMandatoryRulesIsComplete(t *testing.T) {
	t.Parallel()

	m := rules.Model{
		Kind: rules.Tiered,
		Tiers: map[model.Grade][]rules.Rule{
			model.GradeC: {{ID: "tc_0", Mandatory: true}},
			model.GradeB: {{ID: "tb_0"}},
		},
	}
	got, _ := New(nil, nil).Grade(m, nil, set("tc_0"))
	assert.Equal(t, model.GradeA, got)
}

func TestUnifiedConditionGrading(t *testing.T) {
	t.Parallel()

	m := unifiedModel()

	tests := []struct {
		name    string
		checked map[string]bool
		want    model.Grade
	}{
		{"nothing checked defaults to C", nil, model.GradeC},
		{"best unlocked wins", set("b_0", "c_0"), model.GradeB},
		{"a alone", set("a_0"), model.GradeA},
	}
	g := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := g.Grade(m, set("must_0"), tt.checked)
			assert.Equal(t, tt.want, got)
		})
	}

	got, policy := g.Grade(m, map[string]bool{"must_0": false}, set("a_0"))
	assert.Equal(t, model.GradeF, got)
	assert.Equal(t, model.SizePolicy{DrawdownPct: 0, Label: "NO TRADE"}, policy)
}

func unifiedModel() rules.Model {
	return rules.Model{
		Kind:     rules.Unified,
		MustHave: []rules.Rule{{ID: "must_0", Mandatory: true}},
		Conditions: []rules.Condition{
			{Rule: rules.Rule{ID: "a_0"}, Unlocks: model.GradeA},
			{Rule: rules.Rule{ID: "b_0"}, Unlocks: model.GradeB},
			{Rule: rules.Rule{ID: "c_0"}, Unlocks: model.GradeC},
		},
	}
}

// Every combination of checkmarks resolves to exactly the expected grade.
func TestEveryCheckCombinationGrades(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		model rules.Model
		ids   []string
		want  func(on map[string]bool) model.Grade
	}{
		{
			name:  "tiered",
			model: tieredModel(),
			ids:   []string{"tc_0", "tc_1", "tb_0", "tb_1", "ta_0"},
			want: func(on map[string]bool) model.Grade {
				switch {
				case !on["must_0"] || !on["tc_0"] || !on["tc_1"]:
					return model.GradeF
				case !on["tb_0"]:
					return model.GradeC
				case !on["ta_0"]:
					return model.GradeB
				}
				return model.GradeA
			},
		},
		{
			name:  "unified",
			model: unifiedModel(),
			ids:   []string{"a_0", "b_0", "c_0"},
			want: func(on map[string]bool) model.Grade {
				switch {
				case !on["must_0"]:
					return model.GradeF
				case on["a_0"]:
					return model.GradeA
				case on["b_0"]:
					return model.GradeB
				}
				return model.GradeC
			},
		},
	}

	g := New(nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := append([]string{"must_0"}, tt.ids...)
			for mask := 0; mask < 1<<len(ids); mask++ {
				on := map[string]bool{}
				for i, id := range ids {
					on[id] = mask&(1<<i) != 0
				}
				c := Checks{MustHave: map[string]bool{"must_0": on["must_0"]}, Rules: on}

				res := g.Evaluate(tt.model, c)
				require.True(t, res.Grade.Valid(), "mask %b", mask)
				assert.Equal(t, tt.want(on), res.Grade, "mask %b", mask)
				assert.Equal(t, g.Policy(res.Grade), res.Policy, "mask %b", mask)
			}
		})
	}
}

func TestPercentThresholdGrading(t *testing.T) {
	t.Parallel()

	m := rules.Model{
		Kind:       rules.Threshold,
		Bonus:      []rules.Rule{{ID: "bonus_0"}, {ID: "bonus_1"}, {ID: "bonus_2"}, {ID: "bonus_3"}, {ID: "bonus_4"}},
		Thresholds: rules.Thresholds{A: 80, B: 50},
	}
	g := New(nil, nil)

	got, _ := g.Grade(m, nil, set("bonus_0", "bonus_1", "bonus_2", "bonus_3"))
	assert.Equal(t, model.GradeA, got)
	got, _ = g.Grade(m, nil, set("bonus_0", "bonus_1", "bonus_2"))
	assert.Equal(t, model.GradeB, got)
	got, _ = g.Grade(m, nil, set("bonus_0"))
	assert.Equal(t, model.GradeC, got)
}

func TestEmptyModelGradesC(t *testing.T) {
	t.Parallel()

	res := New(nil, nil).Evaluate(rules.Model{Kind: rules.Tiered}, Checks{})
	assert.Equal(t, model.GradeC, res.Grade)
	assert.Equal(t, "Minimum", res.Policy.Label)
}

func TestUnknownKindGradesF(t *testing.T) {
	t.Parallel()

	m := rules.Model{Kind: rules.Kind(42), MustHave: []rules.Rule{{ID: "must_0"}}}
	res := New(nil, nil).Evaluate(m, Checks{MustHave: set("must_0")})
	assert.Equal(t, model.GradeF, res.Grade)
}

func TestPolicyFallbacks(t *testing.T) {
	t.Parallel()

	g := New(map[model.Grade]model.SizePolicy{
		model.GradeA: {DrawdownPct: 40, Label: "Big"},
		model.GradeF: {DrawdownPct: 10, Label: "ignored"},
	}, nil)

	assert.Equal(t, model.SizePolicy{DrawdownPct: 40, Label: "Big"}, g.Policy(model.GradeA))
	assert.Equal(t, model.SizePolicy{DrawdownPct: 0, Label: "Unknown"}, g.Policy(model.GradeB))
	assert.Equal(t, model.SizePolicy{DrawdownPct: 0, Label: "NO TRADE"}, g.Policy(model.GradeF))
}

func TestResultSizeLabel(t *testing.T) {
	t.Parallel()

	r := Result{Policy: model.SizePolicy{DrawdownPct: 50, Label: "Full Size"}}
	assert.Equal(t, "50% drawdown (Full Size)", r.SizeLabel())
}

func TestEvaluateIsDeterministic(t *testing.T) {
	t.Parallel()

	g := New(nil, nil)
	c := Checks{MustHave: set("must_0"), Rules: set("tc_0", "tc_1", "tb_0")}
	first := g.Evaluate(tieredModel(), c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, g.Evaluate(tieredModel(), c))
	}
	assert.Equal(t, 1, first.MustHaveMet)
	assert.Equal(t, 1, first.MustHaveTotal)
	assert.Equal(t, "tieredMandatoryGrading", first.Strategy)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	s := NewSession(nil)
	assert.Equal(t, Idle, s.State())

	_, err := s.Toggle("tc_0")
	assert.True(t, errors.Is(err, ErrSessionState))

	require.NoError(t, s.Start(tieredModel()))
	assert.Equal(t, Active, s.State())
	assert.True(t, errors.Is(s.Start(tieredModel()), ErrSessionState))

	for _, id := range []string{"must_0", "tc_0", "tc_1"} {
		v, err := s.Toggle(id)
		require.NoError(t, err)
		assert.True(t, v)
	}
	_, err = s.Toggle("nope")
	assert.True(t, errors.Is(err, ErrUnknownRule))

	cur, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, model.GradeC, cur.Grade)

	_, err = s.CommitToEntry()
	require.NoError(t, err)
	assert.Equal(t, PendingEntry, s.State())
	_, err = s.Toggle("tb_0")
	assert.True(t, errors.Is(err, ErrSessionState))

	require.NoError(t, s.CancelEntry())
	_, err = s.Toggle("tb_0")
	require.NoError(t, err)
	frozen, err := s.CommitToEntry()
	require.NoError(t, err)
	assert.Equal(t, model.GradeB, frozen.Grade)

	res, checks, err := s.Finish()
	require.NoError(t, err)
	assert.Equal(t, frozen, res)
	assert.True(t, checks.MustHave["must_0"])
	assert.True(t, checks.Rules["tb_0"])
	assert.False(t, checks.Rules["ta_0"])
	assert.Equal(t, Idle, s.State())

	_, _, err = s.Finish()
	assert.True(t, errors.Is(err, ErrSessionState))
}

func TestSessionClear(t *testing.T) {
	t.Parallel()

	s := NewSession(nil)
	require.NoError(t, s.Start(tieredModel()))
	_, err := s.CommitToEntry()
	require.NoError(t, err)
	s.Clear()
	assert.Equal(t, Idle, s.State())
	_, err = s.Current()
	assert.True(t, errors.Is(err, ErrSessionState))
}
