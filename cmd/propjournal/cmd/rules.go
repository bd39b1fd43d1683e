package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Edit grading rules and the position-sizing table",
	Long: `Edit the grading rules in settings, or of one playbook with --playbook.

Sections for 'rules add':
  must            must-have rules (any unchecked grades F)
  a, b, c         unified conditions unlocking that grade
  tier-c, tier-b, tier-a
                  tiered rules, --mandatory marks a rule required for its tier
  bonus           bonus rules for threshold grading

Examples:
  propjournal rules add must "Stop loss placed before entry"
  propjournal rules add --playbook "Opening Range" tier-b "Volume confirms" --mandatory
  propjournal rules mode tiered --playbook "Opening Range"
  propjournal rules sizing A 50 "Full Size"`,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show rules",
	Args:  cobra.NoArgs,
	RunE:  runRulesShow,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <section> <text>",
	Short: "Add a rule",
	Args:  cobra.ExactArgs(2),
	RunE:  runRulesAdd,
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <rule-id>",
	Short: "Remove a rule by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesRemove,
}

var rulesModeCmd = &cobra.Command{
	Use:   "mode <tiered|unified|threshold>",
	Short: "Select the grading mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesMode,
}

var rulesSizingCmd = &cobra.Command{
	Use:   "sizing [grade] [drawdown-pct] [label]",
	Short: "Show or set the position size allowed per grade",
	Args:  cobra.RangeArgs(0, 3),
	RunE:  runRulesSizing,
}

var (
	rulesPlaybook  string
	rulesMandatory bool
)

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesRemoveCmd)
	rulesCmd.AddCommand(rulesModeCmd)
	rulesCmd.AddCommand(rulesSizingCmd)

	rulesCmd.PersistentFlags().StringVarP(&rulesPlaybook, "playbook", "p", "", "edit this playbook's rules instead of settings")
	rulesAddCmd.Flags().BoolVar(&rulesMandatory, "mandatory", false, "tier rule is mandatory")
}

// editRules applies mutate to the rule set of ref, or of settings when ref
// is empty, and saves it.
func editRules(ref string, mutate func(*model.RuleSet) error) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	if ref == "" {
		settings, err := st.Settings()
		if err != nil {
			return err
		}
		if err := mutate(&settings.RuleSet); err != nil {
			return err
		}
		return st.SaveSettings(settings)
	}

	pbs, err := st.Playbooks()
	if err != nil {
		return err
	}
	i := findPlaybook(pbs, ref)
	if i < 0 {
		return model.NotFound("playbook", ref)
	}
	if err := mutate(&pbs[i].RuleSet); err != nil {
		return err
	}
	pbs[i].UpdatedAt = model.NewTimestamp(time.Now())
	return st.SavePlaybooks(pbs)
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	var rs model.RuleSet
	if rulesPlaybook == "" {
		settings, err := st.Settings()
		if err != nil {
			return err
		}
		rs = settings.RuleSet
	} else {
		pbs, err := st.Playbooks()
		if err != nil {
			return err
		}
		i := findPlaybook(pbs, rulesPlaybook)
		if i < 0 {
			return model.NotFound("playbook", rulesPlaybook)
		}
		rs = pbs[i].RuleSet
	}
	printModel(cmd.OutOrStdout(), rules.Normalize(rs))
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	var rid string
	err := editRules(rulesPlaybook, func(rs *model.RuleSet) error {
		var err error
		rid, err = rules.AddRule(rs, args[0], args[1], rulesMandatory)
		return err
	})
	if err != nil {
		return fmt.Errorf("add rule: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added rule %s\n", rid)
	return nil
}

func runRulesRemove(cmd *cobra.Command, args []string) error {
	err := editRules(rulesPlaybook, func(rs *model.RuleSet) error {
		if !rules.RemoveRule(rs, args[0]) {
			return model.NotFound("rule", args[0])
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove rule: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed rule %s\n", args[0])
	return nil
}

func runRulesMode(cmd *cobra.Command, args []string) error {
	kind, err := rules.ParseKind(args[0])
	if err != nil {
		return err
	}
	err = editRules(rulesPlaybook, func(rs *model.RuleSet) error {
		rs.Mode = kind.String()
		return nil
	})
	if err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Grading mode set to %s\n", kind)
	return nil
}

func runRulesSizing(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	settings, err := st.Settings()
	if err != nil {
		return err
	}

	if len(args) >= 2 {
		g, err := model.ParseGrade(args[0])
		if err != nil {
			return err
		}
		pct, err := strconv.ParseFloat(args[1], 64)
		if err != nil || pct < 0 || pct > 100 {
			return model.Invalid("drawdown_pct", "must be a number between 0 and 100, got %q", args[1])
		}
		p := settings.PositionSizing[g]
		p.DrawdownPct = pct
		if len(args) == 3 {
			p.Label = strings.TrimSpace(args[2])
		}
		if settings.PositionSizing == nil {
			settings.PositionSizing = model.DefaultSizing()
		}
		settings.PositionSizing[g] = p
		if err := st.SaveSettings(settings); err != nil {
			return err
		}
		if g == model.GradeF {
			fmt.Fprintln(cmd.OutOrStdout(), "note: F always trades at 0% (NO TRADE)")
		}
	} else if len(args) == 1 {
		return model.Invalid("drawdown_pct", "is required when a grade is given")
	}

	table := newTable(cmd.OutOrStdout(), "Grade", "Drawdown", "Label")
	for _, g := range model.Grades {
		p := settings.PositionSizing[g]
		table.Append([]string{string(g), fmt.Sprintf("%g%%", p.DrawdownPct), p.Label})
	}
	table.Render()
	return nil
}
