package rules

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/propjournal/internal/id"
	"github.com/rustyeddy/propjournal/model"
)

// Id prefixes for rules that predate stable ids. must_, a_, b_ and c_ match
// the keys older versions of the live grader wrote into trade compliance maps.
const (
	prefixMust  = "must"
	prefixA     = "a"
	prefixB     = "b"
	prefixC     = "c"
	prefixCond  = "cond"
	prefixTierC = "tc"
	prefixTierB = "tb"
	prefixTierA = "ta"
	prefixBonus = "bonus"
)

func legacyID(prefix string, i int) string {
	return fmt.Sprintf("%s_%d", prefix, i)
}

func idOr(existing, prefix string, i int) string {
	if existing != "" {
		return existing
	}
	return legacyID(prefix, i)
}

// DetectKind picks the grading strategy for a rule set. An explicit
// grading_mode wins; otherwise the shapes present decide.
func DetectKind(rs model.RuleSet) Kind {
	if rs.Mode != "" {
		if k, err := ParseKind(rs.Mode); err == nil {
			return k
		}
	}
	switch {
	case len(rs.RulesC) > 0 || len(rs.RulesB) > 0 || len(rs.RulesA) > 0 || len(rs.Rules) > 0:
		return Tiered
	case len(rs.Conditions) > 0 || len(rs.ARules) > 0 || len(rs.BRules) > 0 || len(rs.CRules) > 0:
		return Unified
	case len(rs.Bonus) > 0:
		return Threshold
	}
	return Unified
}

// Normalize builds the canonical Model for a rule set. Rules without an id
// get their deterministic legacy id; rs is not modified.
func Normalize(rs model.RuleSet) Model {
	m := Model{Kind: DetectKind(rs)}

	for i, r := range rs.MustHave {
		m.MustHave = append(m.MustHave, Rule{ID: idOr(r.ID, prefixMust, i), Text: r.Text, Mandatory: true})
	}

	switch m.Kind {
	case Tiered:
		m.Tiers = map[model.Grade][]Rule{
			model.GradeC: tierRules(rs.RulesC, prefixTierC),
			model.GradeB: tierRules(rs.RulesB, prefixTierB),
			model.GradeA: tierRules(rs.RulesA, prefixTierA),
		}
		if len(rs.RulesC) == 0 {
			for i, text := range rs.Rules {
				m.Tiers[model.GradeC] = append(m.Tiers[model.GradeC],
					Rule{ID: legacyID(prefixTierC, i), Text: text, Mandatory: true})
			}
		}
	case Threshold:
		for i, r := range rs.Bonus {
			m.Bonus = append(m.Bonus, Rule{ID: idOr(r.ID, prefixBonus, i), Text: r.Text})
		}
		m.Thresholds = Thresholds{A: 80, B: 50}
		if v, ok := rs.Thresholds["A"]; ok {
			m.Thresholds.A = v
		}
		if v, ok := rs.Thresholds["B"]; ok {
			m.Thresholds.B = v
		}
	default:
		for i, c := range rs.Conditions {
			g := c.Unlocks
			if !g.Valid() || g == model.GradeF {
				g = model.GradeC
			}
			m.Conditions = append(m.Conditions, Condition{
				Rule:    Rule{ID: idOr(c.ID, prefixCond, i), Text: c.Text},
				Unlocks: g,
			})
		}
		m.Conditions = append(m.Conditions, listConditions(rs.ARules, prefixA, model.GradeA)...)
		m.Conditions = append(m.Conditions, listConditions(rs.BRules, prefixB, model.GradeB)...)
		m.Conditions = append(m.Conditions, listConditions(rs.CRules, prefixC, model.GradeC)...)
	}
	return m
}

func tierRules(in []model.TierRule, prefix string) []Rule {
	out := make([]Rule, 0, len(in))
	for i, r := range in {
		out = append(out, Rule{ID: idOr(r.ID, prefix, i), Text: r.Text, Mandatory: r.Mandatory})
	}
	return out
}

func listConditions(in []model.RuleText, prefix string, g model.Grade) []Condition {
	var out []Condition
	for i, r := range in {
		out = append(out, Condition{Rule: Rule{ID: idOr(r.ID, prefix, i), Text: r.Text}, Unlocks: g})
	}
	return out
}

// AssignIDs writes the deterministic legacy id into every rule that has
// none, so the ids survive later edits. It reports whether anything changed.
func AssignIDs(rs *model.RuleSet) bool {
	changed := false
	text := func(list []model.RuleText, prefix string) {
		for i := range list {
			if list[i].ID == "" {
				list[i].ID = legacyID(prefix, i)
				changed = true
			}
		}
	}
	tier := func(list []model.TierRule, prefix string) {
		for i := range list {
			if list[i].ID == "" {
				list[i].ID = legacyID(prefix, i)
				changed = true
			}
		}
	}
	text(rs.MustHave, prefixMust)
	text(rs.ARules, prefixA)
	text(rs.BRules, prefixB)
	text(rs.CRules, prefixC)
	text(rs.Bonus, prefixBonus)
	tier(rs.RulesC, prefixTierC)
	tier(rs.RulesB, prefixTierB)
	tier(rs.RulesA, prefixTierA)
	for i := range rs.Conditions {
		if rs.Conditions[i].ID == "" {
			rs.Conditions[i].ID = legacyID(prefixCond, i)
			changed = true
		}
	}
	return changed
}

// MigratePlaybook moves a legacy flat rule list into mandatory C-tier rules.
// It reports whether the playbook changed.
func MigratePlaybook(pb *model.Playbook) bool {
	return migrateLegacy(&pb.RuleSet)
}

func migrateLegacy(rs *model.RuleSet) bool {
	if len(rs.Rules) == 0 || len(rs.RulesC) > 0 {
		return false
	}
	rs.RulesC = make([]model.TierRule, 0, len(rs.Rules))
	for i, text := range rs.Rules {
		rs.RulesC = append(rs.RulesC, model.TierRule{ID: legacyID(prefixTierC, i), Text: text, Mandatory: true})
	}
	if rs.RulesB == nil {
		rs.RulesB = []model.TierRule{}
	}
	if rs.RulesA == nil {
		rs.RulesA = []model.TierRule{}
	}
	rs.Rules = nil
	if rs.Mode == "" {
		rs.Mode = model.ModeTiered
	}
	return true
}

// Sections accepted by AddRule.
const (
	SectionMustHave = "must"
	SectionA        = "a"
	SectionB        = "b"
	SectionC        = "c"
	SectionTierC    = "tier-c"
	SectionTierB    = "tier-b"
	SectionTierA    = "tier-a"
	SectionBonus    = "bonus"
)

// AddRule appends a rule with a fresh ULID to a section of the rule set and
// returns its id. mandatory only applies to tier sections.
func AddRule(rs *model.RuleSet, section, text string, mandatory bool) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", model.Invalid("rule", "text is required")
	}
	// Pin positional ids first so later removals cannot shift them.
	migrateLegacy(rs)
	AssignIDs(rs)
	rid := id.New()
	switch strings.ToLower(section) {
	case SectionMustHave:
		rs.MustHave = append(rs.MustHave, model.RuleText{ID: rid, Text: text})
	case SectionA:
		rs.ARules = append(rs.ARules, model.RuleText{ID: rid, Text: text})
	case SectionB:
		rs.BRules = append(rs.BRules, model.RuleText{ID: rid, Text: text})
	case SectionC:
		rs.CRules = append(rs.CRules, model.RuleText{ID: rid, Text: text})
	case SectionBonus:
		rs.Bonus = append(rs.Bonus, model.RuleText{ID: rid, Text: text})
	case SectionTierC:
		rs.RulesC = append(rs.RulesC, model.TierRule{ID: rid, Text: text, Mandatory: mandatory})
	case SectionTierB:
		rs.RulesB = append(rs.RulesB, model.TierRule{ID: rid, Text: text, Mandatory: mandatory})
	case SectionTierA:
		rs.RulesA = append(rs.RulesA, model.TierRule{ID: rid, Text: text, Mandatory: mandatory})
	default:
		return "", model.Invalid("section", "unknown rule section %q", section)
	}
	return rid, nil
}

// RemoveRule deletes the rule with the given id. Other rules keep their ids,
// so compliance recorded on earlier trades stays aligned.
func RemoveRule(rs *model.RuleSet, ruleID string) bool {
	migrateLegacy(rs)
	AssignIDs(rs)
	removed := false
	dropText := func(list []model.RuleText) []model.RuleText {
		out := list[:0]
		for _, r := range list {
			if r.ID == ruleID {
				removed = true
				continue
			}
			out = append(out, r)
		}
		return out
	}
	dropTier := func(list []model.TierRule) []model.TierRule {
		out := list[:0]
		for _, r := range list {
			if r.ID == ruleID {
				removed = true
				continue
			}
			out = append(out, r)
		}
		return out
	}
	rs.MustHave = dropText(rs.MustHave)
	rs.ARules = dropText(rs.ARules)
	rs.BRules = dropText(rs.BRules)
	rs.CRules = dropText(rs.CRules)
	rs.Bonus = dropText(rs.Bonus)
	rs.RulesC = dropTier(rs.RulesC)
	rs.RulesB = dropTier(rs.RulesB)
	rs.RulesA = dropTier(rs.RulesA)
	conds := rs.Conditions[:0]
	for _, c := range rs.Conditions {
		if c.ID == ruleID {
			removed = true
			continue
		}
		conds = append(conds, c)
	}
	rs.Conditions = conds
	return removed
}
