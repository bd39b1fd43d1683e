package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/grade"
	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/risk"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage trading accounts",
	Long: `Open accounts, change their status and check them against firm limits.

Accounts are referenced by id or account number.

Examples:
  propjournal account add --firm Apex --type 50K --size 50000 --number APX-1
  propjournal account status APX-1 funded
  propjournal account check APX-1 --risk-per-contract 50
  propjournal account reconcile`,
}

var accountAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Open an account",
	Args:  cobra.NoArgs,
	RunE:  runAccountAdd,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE:  runAccountList,
}

var accountStatusCmd = &cobra.Command{
	Use:   "status <account> <status>",
	Short: "Set the lifecycle status of an account",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountStatus,
}

var accountAdjustCmd = &cobra.Command{
	Use:   "adjust <account> <balance>",
	Short: "Override an account balance by hand",
	Long: `Set the balance of an account by hand, e.g. to match the firm's dashboard.

The account's baseline is moved so existing trades and withdrawals still
reconcile against the new balance.`,
	Args: cobra.ExactArgs(2),
	RunE: runAccountAdjust,
}

var accountReconcileCmd = &cobra.Command{
	Use:   "reconcile [account]",
	Short: "Compare balances with what the recorded trades and withdrawals imply",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAccountReconcile,
}

var accountCheckCmd = &cobra.Command{
	Use:   "check <account>",
	Short: "Check an account against its prop firm limits",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountCheck,
}

var accountFlags struct {
	firm     string
	typ      string
	size     float64
	number   string
	funded   float64
	status   string
	notes    string
	date     string
	rpc      float64
	drawdown float64
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountAddCmd)
	accountCmd.AddCommand(accountListCmd)
	accountCmd.AddCommand(accountStatusCmd)
	accountCmd.AddCommand(accountAdjustCmd)
	accountCmd.AddCommand(accountReconcileCmd)
	accountCmd.AddCommand(accountCheckCmd)

	f := accountAddCmd.Flags()
	f.StringVar(&accountFlags.firm, "firm", "", "prop firm name (required)")
	f.StringVar(&accountFlags.typ, "type", "", "account type, e.g. 50K")
	f.Float64Var(&accountFlags.size, "size", 0, "account size in dollars (required)")
	f.StringVar(&accountFlags.number, "number", "", "account number")
	f.Float64Var(&accountFlags.funded, "funded", 0, "starting balance when it differs from the size")
	f.StringVar(&accountFlags.status, "status", "", "status (default evaluation)")
	f.StringVar(&accountFlags.notes, "notes", "", "notes")
	accountAddCmd.MarkFlagRequired("firm")
	accountAddCmd.MarkFlagRequired("size")

	accountCheckCmd.Flags().StringVar(&accountFlags.date, "date", "", "trading day to check (default today)")
	accountCheckCmd.Flags().Float64Var(&accountFlags.rpc, "risk-per-contract", 0, "dollar risk of one contract, enables per-grade sizing")
	accountCheckCmd.Flags().Float64Var(&accountFlags.drawdown, "daily-drawdown", 0, "daily drawdown budget (default the firm's daily loss limit)")
}

func runAccountAdd(cmd *cobra.Command, args []string) error {
	accts, err := app.accounts()
	if err != nil {
		return err
	}
	a, err := accts.Open(ledger.AccountFields{
		PropFirm:      accountFlags.firm,
		AccountType:   accountFlags.typ,
		AccountSize:   accountFlags.size,
		AccountNumber: accountFlags.number,
		FundedBalance: optFloat(cmd, "funded", accountFlags.funded),
		Status:        accountFlags.status,
		Notes:         accountFlags.notes,
	})
	if err != nil {
		return fmt.Errorf("open account: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Opened %s\n  ID: %s\n  Balance: %s\n", a.Label(), a.ID, money(a.Balance()))
	return nil
}

func runAccountList(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	accts, err := st.Accounts()
	if err != nil {
		return err
	}
	if len(accts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No accounts yet.")
		return nil
	}
	table := newTable(cmd.OutOrStdout(), "ID", "Firm", "Type", "Number", "Status", "Size", "Balance", "P&L")
	for _, a := range accts {
		table.Append([]string{
			string(a.ID), a.PropFirm, a.AccountType, a.AccountNumber, string(a.Status),
			money(a.AccountSize), money(a.Balance()), money(a.Balance() - a.Baseline()),
		})
	}
	table.Render()
	return nil
}

func runAccountStatus(cmd *cobra.Command, args []string) error {
	accts, err := app.accounts()
	if err != nil {
		return err
	}
	a, err := accts.SetStatus(args[0], args[1])
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", a.Label(), a.Status)
	return nil
}

func runAccountAdjust(cmd *cobra.Command, args []string) error {
	balance, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return model.Invalid("balance", "not a number: %q", args[1])
	}
	accts, err := app.accounts()
	if err != nil {
		return err
	}
	a, err := accts.AdjustBalance(args[0], balance)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s balance set to %s (baseline %s)\n", a.Label(), money(a.Balance()), money(a.Baseline()))
	return nil
}

func runAccountReconcile(cmd *cobra.Command, args []string) error {
	accts, err := app.accounts()
	if err != nil {
		return err
	}
	var recs []ledger.Reconciliation
	if len(args) == 1 {
		r, err := accts.Reconcile(args[0])
		if err != nil {
			return err
		}
		recs = append(recs, r)
	} else if recs, err = accts.ReconcileAll(); err != nil {
		return err
	}

	table := newTable(cmd.OutOrStdout(), "Account", "Baseline", "Trades", "Withdrawals", "Expected", "Actual", "Drift", "OK")
	for _, r := range recs {
		table.Append([]string{
			r.Account.Label(), money(r.Baseline), money(r.TradePnL), money(r.Withdrawals),
			money(r.Expected), money(r.Actual), money(r.Drift), yesNo(r.OK()),
		})
	}
	table.Render()
	return nil
}

func runAccountCheck(cmd *cobra.Command, args []string) error {
	accts, err := app.accounts()
	if err != nil {
		return err
	}
	acct, err := accts.Account(args[0])
	if err != nil {
		return err
	}
	st, err := app.store()
	if err != nil {
		return err
	}
	firms, err := st.PropFirms()
	if err != nil {
		return err
	}
	fi := findFirm(firms, acct.PropFirm)
	if fi < 0 {
		return model.NotFound("prop firm", acct.PropFirm)
	}
	limits, ok := firms[fi].LimitsFor(acct.AccountType, acct.AccountSize)
	if !ok {
		return model.Invalid("account_type", "firm %s has no limits for account type %q", acct.PropFirm, acct.AccountType)
	}
	trades, err := st.Trades()
	if err != nil {
		return err
	}

	day := accountFlags.date
	if day == "" {
		day = time.Now().Format(model.DateLayout)
	}
	d := risk.EvaluateAccount(limits, risk.StateOf(acct, trades, day))

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s on %s\n", acct.Label(), day)
	if d.Allowed {
		fmt.Fprintln(w, "  ✓ Within firm limits")
	}
	for _, v := range d.Violations {
		fmt.Fprintf(w, "  ✗ %s: %s\n", v.Code, v.Msg)
	}
	if limits.MaxDailyLoss > 0 {
		fmt.Fprintf(w, "  Daily loss remaining: %s\n", money(d.DailyRemaining))
	}
	if limits.MaxTotalLoss > 0 {
		fmt.Fprintf(w, "  Total loss remaining: %s\n", money(d.TotalRemaining))
	}
	switch {
	case d.TargetReached:
		fmt.Fprintln(w, "  ✓ Profit target reached")
	case limits.ProfitTarget > 0:
		fmt.Fprintf(w, "  To profit target: %s\n", money(d.ToTarget))
	}

	if accountFlags.rpc <= 0 {
		return nil
	}
	budget := accountFlags.drawdown
	if budget <= 0 {
		budget = limits.MaxDailyLoss
	}
	settings, err := st.Settings()
	if err != nil {
		return err
	}
	g := grade.New(settings.PositionSizing, app.log)
	table := newTable(w, "Grade", "Policy", "Risk", "Contracts")
	for _, gr := range model.Grades {
		s := risk.SizeForPolicy(g.Policy(gr), budget, accountFlags.rpc)
		table.Append([]string{string(gr), fmt.Sprintf("%g%% (%s)", s.Pct, s.Label), money(s.Dollars), strconv.FormatInt(s.Contracts, 10)})
	}
	table.Render()
	return nil
}
