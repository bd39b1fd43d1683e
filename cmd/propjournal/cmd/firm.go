package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/internal/id"
	"github.com/rustyeddy/propjournal/model"
)

var firmCmd = &cobra.Command{
	Use:   "firm",
	Short: "Manage prop firms",
	Long: `Manage the prop firms accounts belong to.

Accounts reference firms by name. Renaming a firm orphans the accounts
still using the old name.

Examples:
  propjournal firm add Apex --type 50K --daily-loss 1000 --total-loss 2500 --target 3000
  propjournal firm list`,
}

var firmAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a firm or update the limits of one account type",
	Args:  cobra.ExactArgs(1),
	RunE:  runFirmAdd,
}

var firmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prop firms",
	Args:  cobra.NoArgs,
	RunE:  runFirmList,
}

var firmFlags struct {
	accountType string
	dailyLoss   float64
	totalLoss   float64
	target      float64
	split       float64
	minDays     int
	minPayout   float64
	schedule    string
	notes       string
}

func init() {
	rootCmd.AddCommand(firmCmd)
	firmCmd.AddCommand(firmAddCmd)
	firmCmd.AddCommand(firmListCmd)

	f := firmAddCmd.Flags()
	f.StringVar(&firmFlags.accountType, "type", "", "account type the limits apply to, e.g. 50K")
	f.Float64Var(&firmFlags.dailyLoss, "daily-loss", 0, "max daily loss in dollars")
	f.Float64Var(&firmFlags.totalLoss, "total-loss", 0, "max total loss in dollars")
	f.Float64Var(&firmFlags.target, "target", 0, "profit target in dollars")
	f.Float64Var(&firmFlags.split, "split", 0, "payout split percent")
	f.IntVar(&firmFlags.minDays, "min-days", 0, "minimum trading days")
	f.Float64Var(&firmFlags.minPayout, "min-payout", 0, "minimum payout")
	f.StringVar(&firmFlags.schedule, "schedule", "", "payout schedule")
	f.StringVar(&firmFlags.notes, "notes", "", "notes")
}

func findFirm(firms []model.PropFirm, name string) int {
	for i, f := range firms {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

func runFirmAdd(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	firms, err := st.PropFirms()
	if err != nil {
		return err
	}

	name := strings.TrimSpace(args[0])
	if name == "" {
		return model.Invalid("name", "firm name is required")
	}
	i := findFirm(firms, name)
	if i < 0 {
		firms = append(firms, model.PropFirm{
			ID:        model.ID(id.New()),
			Name:      name,
			CreatedAt: model.NewTimestamp(time.Now()),
		})
		i = len(firms) - 1
	}
	firm := &firms[i]

	flags := cmd.Flags()
	if flags.Changed("split") {
		firm.PayoutSplit = firmFlags.split
	}
	if flags.Changed("min-days") {
		firm.MinTradingDays = firmFlags.minDays
	}
	if flags.Changed("min-payout") {
		firm.MinPayout = firmFlags.minPayout
	}
	if flags.Changed("schedule") {
		firm.PayoutSchedule = firmFlags.schedule
	}
	if flags.Changed("notes") {
		firm.Notes = firmFlags.notes
	}
	if t := strings.TrimSpace(firmFlags.accountType); t != "" {
		if firm.Limits == nil {
			firm.Limits = make(map[string]model.FirmLimits)
		}
		firm.Limits[t] = model.FirmLimits{
			MaxDailyLoss: firmFlags.dailyLoss,
			MaxTotalLoss: firmFlags.totalLoss,
			ProfitTarget: firmFlags.target,
		}
		if findString(firm.AccountTypes, t) < 0 {
			firm.AccountTypes = append(firm.AccountTypes, t)
		}
	}

	if err := st.SavePropFirms(firms); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved firm %s\n", firm.Name)
	return nil
}

func runFirmList(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	firms, err := st.PropFirms()
	if err != nil {
		return err
	}
	if len(firms) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No prop firms configured.")
		return nil
	}

	table := newTable(cmd.OutOrStdout(), "Firm", "Type", "Daily Loss", "Total Loss", "Target", "Split", "Min Days")
	for _, f := range firms {
		types := append([]string(nil), f.AccountTypes...)
		for t := range f.Limits {
			if findString(types, t) < 0 {
				types = append(types, t)
			}
		}
		sort.Strings(types)
		if len(types) == 0 {
			table.Append([]string{f.Name, "-", "-", "-", "-", pctString(f.PayoutSplit), fmt.Sprint(f.MinTradingDays)})
			continue
		}
		for _, t := range types {
			l := f.Limits[t]
			table.Append([]string{f.Name, t, money(l.MaxDailyLoss), money(l.MaxTotalLoss), money(l.ProfitTarget),
				pctString(f.PayoutSplit), fmt.Sprint(f.MinTradingDays)})
		}
	}
	table.Render()
	return nil
}

func findString(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
