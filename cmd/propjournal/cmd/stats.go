package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/analytics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show performance statistics",
	Long: `Show performance by grade, playbook, account and emotional state, plus
withdrawal progress against the goals in settings.

Examples:
  propjournal stats
  propjournal stats --from 2024-03-01 --playbook "Opening Range"
  propjournal stats --curve`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var statsCurve bool

func init() {
	rootCmd.AddCommand(statsCmd)
	addTradeFilterFlags(statsCmd.Flags())
	statsCmd.Flags().BoolVar(&statsCurve, "curve", false, "print the equity curve")
}

func printGroups(w io.Writer, title string, gs []analytics.Group) {
	if len(gs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	table := newTable(w, "Key", "Trades", "Share", "Win Rate", "P&L", "Avg", "A/B")
	for _, g := range gs {
		table.Append([]string{g.Key, fmt.Sprint(g.Trades), pctString(g.Share), pctString(g.WinRate),
			money(g.PnL), money(g.AvgPnL), fmt.Sprint(g.ABSetups)})
	}
	table.Render()
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	trades, err := st.Trades()
	if err != nil {
		return err
	}
	ws, err := st.Withdrawals()
	if err != nil {
		return err
	}
	settings, err := st.Settings()
	if err != nil {
		return err
	}

	d := analytics.Build(trades, ws, settings, analytics.Filter{
		From:      tradeFilter.from,
		To:        tradeFilter.to,
		AccountID: tradeFilter.account,
		Playbook:  tradeFilter.playbook,
	})

	w := cmd.OutOrStdout()
	o := d.Overall
	table := newTable(w, "Trades", "Win Rate", "Total P&L", "Avg Win", "Avg Loss", "Profit Factor", "A/B Rate", "Max DD")
	table.Append([]string{fmt.Sprint(o.Trades), pctString(o.WinRate), money(o.TotalPnL), money(o.AvgWin),
		money(o.AvgLoss), fmt.Sprintf("%.2f", o.ProfitFactor), pctString(o.ABRate), money(o.MaxDrawdown)})
	table.Render()

	printGroups(w, "By grade", d.Grades)
	printGroups(w, "By playbook", d.Playbooks)
	printGroups(w, "By account", d.Accounts)
	printGroups(w, "By emotional state", d.Emotions)

	if statsCurve && len(d.Curve) > 0 {
		fmt.Fprintln(w, "\nEquity curve")
		curve := newTable(w, "#", "Date", "Grade", "P&L", "Equity")
		for _, p := range d.Curve {
			curve.Append([]string{fmt.Sprint(p.N), p.Date, string(p.Grade), money(p.PnL), money(p.Equity)})
		}
		curve.Render()
	}

	s := d.Withdrawals
	if s.Count > 0 || settings.GoalAmount > 0 {
		fmt.Fprintln(w, "\nWithdrawals")
		wt := newTable(w, "Paid", "Pending", "Debt Paid", "Reinvested", "Saved", "Personal", "Debt Left", "Goal")
		wt.Append([]string{money(s.Paid), money(s.Pending), money(s.Debt), money(s.Reinvested), money(s.Saved),
			money(s.Personal), money(s.DebtRemaining), pctString(s.GoalProgress)})
		wt.Render()
	}

	if len(d.Insights) > 0 {
		fmt.Fprintln(w, "\nInsights")
		for _, in := range d.Insights {
			fmt.Fprintf(w, "  - %s\n", in)
		}
	}
	return nil
}
