// Package rules turns the rule shapes stored on playbooks and settings into
// one grading model. Every rule in a Model has a stable id; compliance maps
// recorded on trades are keyed by those ids.
package rules

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/propjournal/model"
)

// Kind selects the grading strategy a Model is evaluated with.
type Kind int

const (
	Unified Kind = iota
	Tiered
	Threshold
)

func (k Kind) String() string {
	switch k {
	case Unified:
		return model.ModeUnified
	case Tiered:
		return model.ModeTiered
	case Threshold:
		return model.ModeThreshold
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a grading_mode value to a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case model.ModeUnified:
		return Unified, nil
	case model.ModeTiered:
		return Tiered, nil
	case model.ModeThreshold:
		return Threshold, nil
	}
	return Unified, model.Invalid("grading_mode", "unknown grading mode %q", s)
}

type Rule struct {
	ID        string
	Text      string
	Mandatory bool
}

// Condition unlocks a grade when checked.
type Condition struct {
	Rule
	Unlocks model.Grade
}

// Thresholds are percentages of bonus rules that must be checked.
type Thresholds struct {
	A float64
	B float64
}

// Model is the canonical rule model. Which fields matter depends on Kind:
// Tiers for Tiered, Conditions for Unified, Bonus and Thresholds for
// Threshold. MustHave applies to every kind.
type Model struct {
	Kind       Kind
	MustHave   []Rule
	Tiers      map[model.Grade][]Rule
	Conditions []Condition
	Bonus      []Rule
	Thresholds Thresholds
}

// Empty reports whether the model has nothing to evaluate.
func (m Model) Empty() bool {
	if len(m.MustHave) > 0 {
		return false
	}
	switch m.Kind {
	case Tiered:
		for _, rs := range m.Tiers {
			if len(rs) > 0 {
				return false
			}
		}
		return true
	case Threshold:
		return len(m.Bonus) == 0
	}
	return len(m.Conditions) == 0
}

// Section is a titled group of rules, in display order.
type Section struct {
	Title    string
	MustHave bool
	Rules    []Rule
}

// Sections lists the model's rules grouped the way they are presented for
// checking off.
func (m Model) Sections() []Section {
	var out []Section
	if len(m.MustHave) > 0 {
		out = append(out, Section{Title: "Must-Have", MustHave: true, Rules: m.MustHave})
	}
	switch m.Kind {
	case Tiered:
		for _, g := range []model.Grade{model.GradeC, model.GradeB, model.GradeA} {
			if rs := m.Tiers[g]; len(rs) > 0 {
				out = append(out, Section{Title: string(g) + "-Tier", Rules: rs})
			}
		}
	case Threshold:
		if len(m.Bonus) > 0 {
			out = append(out, Section{Title: "Bonus", Rules: m.Bonus})
		}
	default:
		for _, g := range []model.Grade{model.GradeA, model.GradeB, model.GradeC} {
			var rs []Rule
			for _, c := range m.Conditions {
				if c.Unlocks == g {
					rs = append(rs, c.Rule)
				}
			}
			if len(rs) > 0 {
				out = append(out, Section{Title: string(g) + "-Grade", Rules: rs})
			}
		}
	}
	return out
}

// Lookup finds a rule by id. mustHave is true for must-have rules.
func (m Model) Lookup(id string) (r Rule, mustHave bool, ok bool) {
	for _, s := range m.Sections() {
		for _, r := range s.Rules {
			if r.ID == id {
				return r, s.MustHave, true
			}
		}
	}
	return Rule{}, false, false
}

// Keys returns every rule id in display order.
func (m Model) Keys() []string {
	var keys []string
	for _, s := range m.Sections() {
		for _, r := range s.Rules {
			keys = append(keys, r.ID)
		}
	}
	return keys
}
