package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rustyeddy/propjournal/analytics"
	"github.com/rustyeddy/propjournal/grade"
	"github.com/rustyeddy/propjournal/journal"
	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/psych"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Log, edit and review trades",
	Long: `Log, edit and review trades.

Logging a trade grades it from the checked rules and adds its net P&L to
the account balance. Editing moves the balance by the change in net P&L;
deleting reverses it.

Examples:
  propjournal trade log --account APX-1 --playbook "Opening Range" \
      --symbol MES --direction long --size 2 --entry 5100 --exit 5110 --commission 2.5 \
      --check tc_0,tc_1,tb_0
  propjournal trade edit <trade-id> --commission 3
  propjournal trade list --from 2024-03-01
  propjournal trade export --format csv -o trades.csv`,
}

var tradeLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a trade",
	Args:  cobra.NoArgs,
	RunE:  runTradeLog,
}

var tradeEditCmd = &cobra.Command{
	Use:   "edit <trade-id>",
	Short: "Edit a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeEdit,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade and reverse its P&L",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDelete,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show a trade as an Org-mode entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var tradeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades as CSV or Org-mode",
	Args:  cobra.NoArgs,
	RunE:  runTradeExport,
}

var tradeFlags struct {
	account    string
	playbook   string
	date       string
	entryTime  string
	exitTime   string
	symbol     string
	direction  string
	size       float64
	entry      float64
	exit       float64
	stop       float64
	target     float64
	pointValue float64
	pnl        float64
	commission float64
	emotion    int
	quality    int
	repeat     bool
	followed   bool
	planned    bool
	screenshot string
	notes      string
	check      []string
}

var tradeFilter struct {
	from     string
	to       string
	account  string
	playbook string
}

var (
	tradeExportFormat string
	tradeExportOutput string
)

func addTradeFieldFlags(f *pflag.FlagSet) {
	f.StringVar(&tradeFlags.date, "date", "", "trade date YYYY-MM-DD (default today)")
	f.StringVar(&tradeFlags.entryTime, "entry-time", "", "entry time")
	f.StringVar(&tradeFlags.exitTime, "exit-time", "", "exit time")
	f.StringVar(&tradeFlags.symbol, "symbol", "", "instrument symbol")
	f.StringVar(&tradeFlags.direction, "direction", "", "Long or Short")
	f.Float64Var(&tradeFlags.size, "size", 0, "position size in contracts")
	f.Float64Var(&tradeFlags.entry, "entry", 0, "entry price")
	f.Float64Var(&tradeFlags.exit, "exit", 0, "exit price")
	f.Float64Var(&tradeFlags.stop, "stop", 0, "stop loss price")
	f.Float64Var(&tradeFlags.target, "target", 0, "take profit price")
	f.Float64Var(&tradeFlags.pointValue, "point-value", 0, "dollars per point (default from the symbol)")
	f.Float64Var(&tradeFlags.pnl, "pnl", 0, "gross P&L, used instead of prices")
	f.Float64Var(&tradeFlags.commission, "commission", 0, "commission, subtracted from gross")
	f.IntVar(&tradeFlags.emotion, "emotion", 0, "emotional state 1-10")
	f.IntVar(&tradeFlags.quality, "quality", 0, "setup quality 1-10")
	f.BoolVar(&tradeFlags.repeat, "would-repeat", false, "would take this trade again")
	f.BoolVar(&tradeFlags.followed, "followed-rules", false, "followed the rules")
	f.BoolVar(&tradeFlags.planned, "planned", false, "trade was in the plan")
	f.StringVar(&tradeFlags.screenshot, "screenshot", "", "screenshot URL")
	f.StringVar(&tradeFlags.notes, "notes", "", "notes")
	f.StringSliceVar(&tradeFlags.check, "check", nil, "ids of the checked rules")
}

func addTradeFilterFlags(f *pflag.FlagSet) {
	f.StringVar(&tradeFilter.from, "from", "", "first date YYYY-MM-DD")
	f.StringVar(&tradeFilter.to, "to", "", "last date YYYY-MM-DD")
	f.StringVar(&tradeFilter.account, "account", "", "only this account")
	f.StringVar(&tradeFilter.playbook, "playbook", "", "only this playbook")
}

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeLogCmd)
	tradeCmd.AddCommand(tradeEditCmd)
	tradeCmd.AddCommand(tradeDeleteCmd)
	tradeCmd.AddCommand(tradeListCmd)
	tradeCmd.AddCommand(tradeShowCmd)
	tradeCmd.AddCommand(tradeExportCmd)

	addTradeFieldFlags(tradeLogCmd.Flags())
	tradeLogCmd.Flags().StringVarP(&tradeFlags.account, "account", "a", "", "account id or number (required)")
	tradeLogCmd.Flags().StringVarP(&tradeFlags.playbook, "playbook", "p", "", "playbook name or id")
	tradeLogCmd.MarkFlagRequired("account")

	addTradeFieldFlags(tradeEditCmd.Flags())

	addTradeFilterFlags(tradeListCmd.Flags())
	addTradeFilterFlags(tradeExportCmd.Flags())
	tradeExportCmd.Flags().StringVarP(&tradeExportFormat, "format", "f", "csv", "csv or org")
	tradeExportCmd.Flags().StringVarP(&tradeExportOutput, "output", "o", "", "output file (default stdout)")
}

// applyTradeFlags overwrites the fields whose flags were set.
func applyTradeFlags(cmd *cobra.Command, f *ledger.TradeFields) {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("date", func() { f.Date = tradeFlags.date })
	set("entry-time", func() { f.EntryTime = tradeFlags.entryTime })
	set("exit-time", func() { f.ExitTime = tradeFlags.exitTime })
	set("symbol", func() { f.Symbol = strings.ToUpper(tradeFlags.symbol) })
	set("direction", func() { f.Direction = tradeFlags.direction })
	set("size", func() { f.PositionSize = tradeFlags.size })
	set("entry", func() { f.EntryPrice = tradeFlags.entry; f.PnLGross = nil })
	set("exit", func() { f.ExitPrice = tradeFlags.exit; f.PnLGross = nil })
	set("stop", func() { f.StopLoss = tradeFlags.stop })
	set("target", func() { f.TakeProfit = tradeFlags.target })
	set("point-value", func() { f.PointValue = tradeFlags.pointValue; f.PnLGross = nil })
	set("pnl", func() { f.PnLGross = optFloat(cmd, "pnl", tradeFlags.pnl) })
	set("commission", func() { f.Commission = tradeFlags.commission })
	set("emotion", func() { f.EmotionalState = tradeFlags.emotion })
	set("quality", func() { f.SetupQuality = tradeFlags.quality })
	set("would-repeat", func() { f.WouldRepeat = tradeFlags.repeat })
	set("followed-rules", func() { f.FollowedRules = tradeFlags.followed })
	set("planned", func() { f.WasPlanned = tradeFlags.planned })
	set("screenshot", func() { f.ScreenshotURL = tradeFlags.screenshot })
	set("notes", func() { f.Notes = tradeFlags.notes })
}

// checkClearance applies the enforcement level in settings to today's
// check-in. Advisory clearances are printed to stderr.
func checkClearance(cmd *cobra.Command) error {
	j, err := app.journal()
	if err != nil {
		return err
	}
	clr, err := j.Clearance()
	if err != nil {
		return err
	}
	st, err := app.store()
	if err != nil {
		return err
	}
	settings, err := st.Settings()
	if err != nil {
		return err
	}
	enf, err := psych.ParseEnforcement(settings.Enforcement)
	if err != nil {
		return err
	}
	if err := enf.Check(clr); err != nil {
		return err
	}
	if clr.Status != psych.Green {
		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "⚠ %s: %s\n", clr.Status, clr.Message)
		for _, r := range clr.Restrictions {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
	return nil
}

func runTradeLog(cmd *cobra.Command, args []string) error {
	if err := checkClearance(cmd); err != nil {
		return err
	}
	tl, err := app.trades()
	if err != nil {
		return err
	}
	m, err := tl.Model(tradeFlags.playbook)
	if err != nil {
		return err
	}
	g, err := app.grader()
	if err != nil {
		return err
	}
	_, checks, err := gradeChecked(g, m, tradeFlags.check)
	if err != nil {
		return err
	}

	f := ledger.TradeFields{}
	if cfg, err := app.config(); err == nil {
		f.Symbol = cfg.Trading.DefaultSymbol
		f.Commission = cfg.Trading.DefaultCommission
	}
	applyTradeFlags(cmd, &f)

	t, err := tl.LogTrade(tradeFlags.account, tradeFlags.playbook, f, checks)
	if err != nil {
		return fmt.Errorf("log trade: %w", err)
	}
	printTradeSummary(cmd, t)
	return nil
}

func printTradeSummary(cmd *cobra.Command, t model.Trade) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "✓ Trade %s\n", t.ID)
	fmt.Fprintf(w, "  %s %s %s x%g\n", t.Date, t.Symbol, t.Direction, t.PositionSize)
	fmt.Fprintf(w, "  Net P&L: %s (gross %s, commission %s)\n", money(t.PnLNet), money(t.PnLGross), money(t.Commission))
	fmt.Fprintf(w, "  Grade: %s, %s\n", t.Grade, t.SizeLabel)
}

func runTradeEdit(cmd *cobra.Command, args []string) error {
	tl, err := app.trades()
	if err != nil {
		return err
	}
	t, err := tl.Trade(args[0])
	if err != nil {
		return err
	}
	f := ledger.Fields(t)
	applyTradeFlags(cmd, &f)

	var checks *grade.Checks
	if cmd.Flags().Changed("check") {
		ref := string(t.PlaybookID)
		if ref == "" {
			ref = t.Playbook
		}
		m, err := tl.Model(ref)
		if err != nil {
			return err
		}
		g, err := app.grader()
		if err != nil {
			return err
		}
		_, c, err := gradeChecked(g, m, tradeFlags.check)
		if err != nil {
			return err
		}
		checks = &c
	}

	edited, err := tl.EditTrade(args[0], f, checks)
	if err != nil {
		return fmt.Errorf("edit trade: %w", err)
	}
	printTradeSummary(cmd, edited)
	if d := edited.PnLNet - t.PnLNet; d != 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "  Balance moved by %s\n", money(d))
	}
	return nil
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	tl, err := app.trades()
	if err != nil {
		return err
	}
	t, err := tl.DeleteTrade(args[0])
	if err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted trade %s, reversed %s\n", t.ID, money(t.PnLNet))
	return nil
}

func filteredTrades() ([]model.Trade, error) {
	st, err := app.store()
	if err != nil {
		return nil, err
	}
	trades, err := st.Trades()
	if err != nil {
		return nil, err
	}
	f := analytics.Filter{
		From:      tradeFilter.from,
		To:        tradeFilter.to,
		AccountID: tradeFilter.account,
		Playbook:  tradeFilter.playbook,
	}
	trades = f.Apply(trades)
	sort.SliceStable(trades, func(i, j int) bool { return trades[i].Date < trades[j].Date })
	return trades, nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	trades, err := filteredTrades()
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No trades.")
		return nil
	}
	table := newTable(cmd.OutOrStdout(), "ID", "Date", "Symbol", "Dir", "Size", "Playbook", "Grade", "Net P&L")
	total := 0.0
	for _, t := range trades {
		table.Append([]string{string(t.ID), t.Date, t.Symbol, string(t.Direction), fmt.Sprintf("%g", t.PositionSize),
			t.Playbook, string(t.Grade), money(t.PnLNet)})
		total += t.PnLNet
	}
	table.SetFooter([]string{"", "", "", "", "", "", "Total", money(total)})
	table.Render()
	return nil
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	tl, err := app.trades()
	if err != nil {
		return err
	}
	t, err := tl.Trade(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}

func runTradeExport(cmd *cobra.Command, args []string) error {
	trades, err := filteredTrades()
	if err != nil {
		return err
	}

	switch strings.ToLower(tradeExportFormat) {
	case "csv":
		if tradeExportOutput != "" {
			if err := journal.WriteTradesCSVFile(tradeExportOutput, trades); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d trades to %s\n", len(trades), tradeExportOutput)
			return nil
		}
		return journal.WriteTradesCSV(cmd.OutOrStdout(), trades)
	case "org":
		out := journal.FormatTradesOrg(trades)
		if tradeExportOutput != "" {
			return writeFile(tradeExportOutput, []byte(out))
		}
		_, err := fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	return model.Invalid("format", "must be csv or org, got %q", tradeExportFormat)
}
