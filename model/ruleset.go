package model

import (
	"bytes"
	"encoding/json"
)

// Grading modes a RuleSet can declare.
const (
	ModeTiered    = "tiered"
	ModeUnified   = "unified"
	ModeThreshold = "threshold"
)

// RuleText is a plain rule. Older files store these as bare strings; newer
// ones as {id, text} so compliance maps can key by a stable id.
type RuleText struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (r *RuleText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		r.ID = ""
		return json.Unmarshal(b, &r.Text)
	}
	type plain RuleText
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = RuleText(p)
	return nil
}

// TierRule belongs to one of the C/B/A tiers of a tiered playbook.
type TierRule struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Mandatory bool   `json:"mandatory"`
}

// Condition is a unified-mode rule that unlocks a grade when checked.
type Condition struct {
	ID      string `json:"id"`
	Text    string `json:"condition_text"`
	Unlocks Grade  `json:"unlocks_grade"`
}

// RuleSet carries every historical rule shape. Playbooks and Settings both
// embed it; rules.Normalize turns it into a single grading model.
type RuleSet struct {
	Mode string `json:"grading_mode,omitempty"`

	// Legacy flat playbook rules, migrated to mandatory C-tier rules.
	Rules []string `json:"rules,omitempty"`

	// Tiers are always written so a migrated set keeps its empty B and A
	// lists on disk.
	RulesC []TierRule `json:"rules_c"`
	RulesB []TierRule `json:"rules_b"`
	RulesA []TierRule `json:"rules_a"`

	Conditions []Condition `json:"conditions,omitempty"`
	MustHave   []RuleText  `json:"must_have_rules,omitempty"`

	// Live-grader lists: any checked rule unlocks its grade.
	ARules []RuleText `json:"a_rules,omitempty"`
	BRules []RuleText `json:"b_rules,omitempty"`
	CRules []RuleText `json:"c_rules,omitempty"`

	Bonus      []RuleText         `json:"bonus_rules,omitempty"`
	Thresholds map[string]float64 `json:"grade_thresholds,omitempty"`
}

// Empty reports whether no rule of any shape is configured.
func (rs RuleSet) Empty() bool {
	return len(rs.Rules) == 0 &&
		len(rs.RulesC) == 0 && len(rs.RulesB) == 0 && len(rs.RulesA) == 0 &&
		len(rs.Conditions) == 0 && len(rs.MustHave) == 0 &&
		len(rs.ARules) == 0 && len(rs.BRules) == 0 && len(rs.CRules) == 0 &&
		len(rs.Bonus) == 0
}
