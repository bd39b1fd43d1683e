package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/internal/id"
	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/rules"
)

var playbookCmd = &cobra.Command{
	Use:   "playbook",
	Short: "Manage playbooks",
	Long: `Manage the named strategies trades are logged against.

A playbook with rules grades its trades by those rules; one without rules
falls back to the rules in settings. Add rules with 'propjournal rules add
--playbook <name>'.

Examples:
  propjournal playbook add "Opening Range" --mode tiered --markets MES,MNQ
  propjournal playbook show "Opening Range"
  propjournal playbook migrate`,
}

var playbookAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a playbook",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaybookAdd,
}

var playbookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playbooks",
	Args:  cobra.NoArgs,
	RunE:  runPlaybookList,
}

var playbookShowCmd = &cobra.Command{
	Use:   "show <playbook>",
	Short: "Show a playbook and its rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaybookShow,
}

var playbookMigrateCmd = &cobra.Command{
	Use:   "migrate [playbook]",
	Short: "Convert legacy rule lists and pin rule ids",
	Long: `Convert legacy flat rule lists into mandatory C-tier rules and give every
rule a stable id. Compliance recorded on later trades is keyed by these ids.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlaybookMigrate,
}

var playbookFlags struct {
	description string
	mode        string
	markets     string
	timeframes  string
	winRate     float64
	riskReward  string
	entry       string
	exit        string
}

func init() {
	rootCmd.AddCommand(playbookCmd)
	playbookCmd.AddCommand(playbookAddCmd)
	playbookCmd.AddCommand(playbookListCmd)
	playbookCmd.AddCommand(playbookShowCmd)
	playbookCmd.AddCommand(playbookMigrateCmd)

	f := playbookAddCmd.Flags()
	f.StringVar(&playbookFlags.description, "description", "", "description")
	f.StringVar(&playbookFlags.mode, "mode", model.ModeTiered, "grading mode: tiered, unified or threshold")
	f.StringVar(&playbookFlags.markets, "markets", "", "comma separated markets")
	f.StringVar(&playbookFlags.timeframes, "timeframes", "", "comma separated timeframes")
	f.Float64Var(&playbookFlags.winRate, "win-rate", 0, "target win rate percent")
	f.StringVar(&playbookFlags.riskReward, "rr", "", "target risk:reward, e.g. 1:2")
	f.StringVar(&playbookFlags.entry, "entry", "", "entry criteria")
	f.StringVar(&playbookFlags.exit, "exit", "", "exit criteria")
}

func findPlaybook(pbs []model.Playbook, ref string) int {
	for i, pb := range pbs {
		if pb.Matches(ref) {
			return i
		}
	}
	for i, pb := range pbs {
		if strings.EqualFold(pb.Name, ref) {
			return i
		}
	}
	return -1
}

func runPlaybookAdd(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return model.Invalid("name", "playbook name is required")
	}
	kind, err := rules.ParseKind(playbookFlags.mode)
	if err != nil {
		return err
	}
	st, err := app.store()
	if err != nil {
		return err
	}
	pbs, err := st.Playbooks()
	if err != nil {
		return err
	}
	if findPlaybook(pbs, name) >= 0 {
		return model.Invalid("name", "playbook %q already exists", name)
	}

	now := model.NewTimestamp(time.Now())
	pb := model.Playbook{
		ID:            model.ID(id.New()),
		Name:          name,
		Description:   playbookFlags.description,
		Markets:       splitList(playbookFlags.markets),
		Timeframes:    splitList(playbookFlags.timeframes),
		WinRateTarget: playbookFlags.winRate,
		RiskReward:    playbookFlags.riskReward,
		EntryCriteria: playbookFlags.entry,
		ExitCriteria:  playbookFlags.exit,
		RuleSet:       model.RuleSet{Mode: kind.String()},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := st.SavePlaybooks(append(pbs, pb)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created playbook %s (%s)\n", pb.Name, pb.Mode)
	return nil
}

func runPlaybookList(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	pbs, err := st.Playbooks()
	if err != nil {
		return err
	}
	if len(pbs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No playbooks yet.")
		return nil
	}
	table := newTable(cmd.OutOrStdout(), "Name", "Mode", "Rules", "Markets", "Timeframes")
	for _, pb := range pbs {
		m := rules.Normalize(pb.RuleSet)
		table.Append([]string{pb.Name, m.Kind.String(), fmt.Sprint(len(m.Keys())),
			strings.Join(pb.Markets, ","), strings.Join(pb.Timeframes, ",")})
	}
	table.Render()
	return nil
}

func runPlaybookShow(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	pbs, err := st.Playbooks()
	if err != nil {
		return err
	}
	i := findPlaybook(pbs, args[0])
	if i < 0 {
		return model.NotFound("playbook", args[0])
	}
	pb := pbs[i]

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n", pb.Name)
	if pb.Description != "" {
		fmt.Fprintf(w, "  %s\n", pb.Description)
	}
	if len(pb.Markets) > 0 {
		fmt.Fprintf(w, "  Markets: %s\n", strings.Join(pb.Markets, ", "))
	}
	if len(pb.Timeframes) > 0 {
		fmt.Fprintf(w, "  Timeframes: %s\n", strings.Join(pb.Timeframes, ", "))
	}
	if pb.WinRateTarget > 0 || pb.RiskReward != "" {
		fmt.Fprintf(w, "  Targets: %.0f%% win rate, %s R:R\n", pb.WinRateTarget, pb.RiskReward)
	}
	if pb.EntryCriteria != "" {
		fmt.Fprintf(w, "  Entry: %s\n", pb.EntryCriteria)
	}
	if pb.ExitCriteria != "" {
		fmt.Fprintf(w, "  Exit: %s\n", pb.ExitCriteria)
	}
	fmt.Fprintln(w)
	printModel(w, rules.Normalize(pb.RuleSet))
	return nil
}

func printModel(w io.Writer, m rules.Model) {
	fmt.Fprintf(w, "Grading: %s\n", m.Kind)
	if m.Empty() {
		fmt.Fprintln(w, "No rules configured; every trade grades C.")
		return
	}
	table := newTable(w, "Section", "ID", "Rule", "Mandatory")
	for _, s := range m.Sections() {
		for _, r := range s.Rules {
			mandatory := ""
			if r.Mandatory || s.MustHave {
				mandatory = "yes"
			}
			table.Append([]string{s.Title, r.ID, r.Text, mandatory})
		}
	}
	table.Render()
	if m.Kind == rules.Threshold {
		fmt.Fprintf(w, "Thresholds: A %g%%, B %g%%\n", m.Thresholds.A, m.Thresholds.B)
	}
}

func runPlaybookMigrate(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	pbs, err := st.Playbooks()
	if err != nil {
		return err
	}
	changed := 0
	for i := range pbs {
		if len(args) == 1 && !pbs[i].Matches(args[0]) {
			continue
		}
		migrated := rules.MigratePlaybook(&pbs[i])
		pinned := rules.AssignIDs(&pbs[i].RuleSet)
		if migrated || pinned {
			pbs[i].UpdatedAt = model.NewTimestamp(time.Now())
			changed++
		}
	}
	if changed > 0 {
		if err := st.SavePlaybooks(pbs); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Migrated %d playbook(s)\n", changed)
	return nil
}
