package grade

import (
	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/rules"
)

// Strategy resolves a grade from a rule model and the checked rules. Each
// rule model kind has exactly one strategy.
type Strategy interface {
	Name() string
	Resolve(m rules.Model, c Checks) model.Grade
}

var (
	// TieredMandatory grades bottom-up: a tier is complete when all of its
	// mandatory rules are checked, and the grade is the highest tier reached
	// with every tier below it complete. An incomplete C tier is an F.
	TieredMandatory Strategy = tieredMandatory{}

	// UnifiedCondition grades by the best grade unlocked among checked
	// conditions, C when none are checked.
	UnifiedCondition Strategy = unifiedCondition{}

	// PercentThreshold grades by the share of bonus rules checked.
	PercentThreshold Strategy = percentThreshold{}
)

// StrategyFor selects the strategy for a model kind.
func StrategyFor(k rules.Kind) (Strategy, bool) {
	switch k {
	case rules.Tiered:
		return TieredMandatory, true
	case rules.Unified:
		return UnifiedCondition, true
	case rules.Threshold:
		return PercentThreshold, true
	}
	return nil, false
}

// mustHaveMet counts checked must-have rules.
func mustHaveMet(m rules.Model, c Checks) (met, total int) {
	for _, r := range m.MustHave {
		if c.MustHaveChecked(r.ID) {
			met++
		}
	}
	return met, len(m.MustHave)
}

func mustHavesPass(m rules.Model, c Checks) bool {
	met, total := mustHaveMet(m, c)
	return met == total
}

type tieredMandatory struct{}

func (tieredMandatory) Name() string { return "tieredMandatoryGrading" }

func (tieredMandatory) Resolve(m rules.Model, c Checks) model.Grade {
	if !mustHavesPass(m, c) {
		return model.GradeF
	}
	complete := func(g model.Grade) bool {
		for _, r := range m.Tiers[g] {
			if r.Mandatory && !c.RuleChecked(r.ID) {
				return false
			}
		}
		return true
	}
	switch {
	case !complete(model.GradeC):
		return model.GradeF
	case !complete(model.GradeB):
		return model.GradeC
	case !complete(model.GradeA):
		return model.GradeB
	}
	return model.GradeA
}

type unifiedCondition struct{}

func (unifiedCondition) Name() string { return "unifiedConditionGrading" }

func (unifiedCondition) Resolve(m rules.Model, c Checks) model.Grade {
	if !mustHavesPass(m, c) {
		return model.GradeF
	}
	best := model.GradeC
	for _, cond := range m.Conditions {
		if c.RuleChecked(cond.ID) && cond.Unlocks.Rank() > best.Rank() {
			best = cond.Unlocks
		}
	}
	return best
}

type percentThreshold struct{}

func (percentThreshold) Name() string { return "percentThresholdGrading" }

func (percentThreshold) Resolve(m rules.Model, c Checks) model.Grade {
	if !mustHavesPass(m, c) {
		return model.GradeF
	}
	if len(m.Bonus) == 0 {
		return model.GradeC
	}
	n := 0
	for _, r := range m.Bonus {
		if c.RuleChecked(r.ID) {
			n++
		}
	}
	pct := float64(n) / float64(len(m.Bonus)) * 100
	switch {
	case pct >= m.Thresholds.A:
		return model.GradeA
	case pct >= m.Thresholds.B:
		return model.GradeB
	}
	return model.GradeC
}
