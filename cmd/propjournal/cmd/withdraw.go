package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/model"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Record payouts taken from accounts",
	Long: `Record withdrawals and where the money went.

Only paid withdrawals are deducted from the account balance. Changing the
status to or from paid moves the balance accordingly. An allocation split
must add up to the amount exactly.

Examples:
  propjournal withdraw add --account APX-1 --amount 1000 --debt 500 --savings 500
  propjournal withdraw add --account APX-1 --amount 800 --status pending
  propjournal withdraw status <id> paid`,
}

var withdrawAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a withdrawal",
	Args:  cobra.NoArgs,
	RunE:  runWithdrawAdd,
}

var withdrawEditCmd = &cobra.Command{
	Use:   "edit <withdrawal-id>",
	Short: "Edit a withdrawal",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithdrawEdit,
}

var withdrawStatusCmd = &cobra.Command{
	Use:   "status <withdrawal-id> <pending|approved|paid|rejected>",
	Short: "Change the status of a withdrawal",
	Args:  cobra.ExactArgs(2),
	RunE:  runWithdrawStatus,
}

var withdrawDeleteCmd = &cobra.Command{
	Use:   "delete <withdrawal-id>",
	Short: "Delete a withdrawal and restore its deduction",
	Args:  cobra.ExactArgs(1),
	RunE:  runWithdrawDelete,
}

var withdrawListCmd = &cobra.Command{
	Use:   "list",
	Short: "List withdrawals",
	Args:  cobra.NoArgs,
	RunE:  runWithdrawList,
}

var withdrawFlags struct {
	account      string
	amount       float64
	date         string
	status       string
	allocation   string
	debt         float64
	reinvestment float64
	savings      float64
	personal     float64
	reinvest     string
	notes        string
}

var allocationFlags = []string{"debt", "reinvestment", "savings", "personal"}

func addWithdrawFieldFlags(f *pflag.FlagSet) {
	f.Float64Var(&withdrawFlags.amount, "amount", 0, "amount withdrawn")
	f.StringVar(&withdrawFlags.date, "date", "", "date YYYY-MM-DD (default today)")
	f.StringVar(&withdrawFlags.status, "status", "", "pending, approved, paid or rejected (default paid)")
	f.StringVar(&withdrawFlags.allocation, "allocation", "", "single allocation category")
	f.Float64Var(&withdrawFlags.debt, "debt", 0, "amount allocated to debt")
	f.Float64Var(&withdrawFlags.reinvestment, "reinvestment", 0, "amount allocated to reinvestment")
	f.Float64Var(&withdrawFlags.savings, "savings", 0, "amount allocated to savings")
	f.Float64Var(&withdrawFlags.personal, "personal", 0, "amount allocated to personal use")
	f.StringVar(&withdrawFlags.reinvest, "reinvest-details", "", "what the reinvestment went to")
	f.StringVar(&withdrawFlags.notes, "notes", "", "notes")
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
	withdrawCmd.AddCommand(withdrawAddCmd)
	withdrawCmd.AddCommand(withdrawEditCmd)
	withdrawCmd.AddCommand(withdrawStatusCmd)
	withdrawCmd.AddCommand(withdrawDeleteCmd)
	withdrawCmd.AddCommand(withdrawListCmd)

	addWithdrawFieldFlags(withdrawAddCmd.Flags())
	withdrawAddCmd.Flags().StringVarP(&withdrawFlags.account, "account", "a", "", "account id or number (required)")
	withdrawAddCmd.MarkFlagRequired("account")
	withdrawAddCmd.MarkFlagRequired("amount")

	addWithdrawFieldFlags(withdrawEditCmd.Flags())
}

func applyWithdrawFlags(cmd *cobra.Command, f *ledger.WithdrawalFields) {
	flags := cmd.Flags()
	if flags.Changed("amount") {
		f.Amount = withdrawFlags.amount
	}
	if flags.Changed("date") {
		f.Date = withdrawFlags.date
	}
	if flags.Changed("status") {
		f.Status = withdrawFlags.status
	}
	if flags.Changed("allocation") {
		f.Allocation = withdrawFlags.allocation
	}
	if flags.Changed("reinvest-details") {
		f.ReinvestDetails = withdrawFlags.reinvest
	}
	if flags.Changed("notes") {
		f.Notes = withdrawFlags.notes
	}
	for _, name := range allocationFlags {
		if flags.Changed(name) {
			f.Allocations = &model.Allocations{
				Debt:         withdrawFlags.debt,
				Reinvestment: withdrawFlags.reinvestment,
				Savings:      withdrawFlags.savings,
				Personal:     withdrawFlags.personal,
			}
			break
		}
	}
}

func withdrawalFields(w model.Withdrawal) ledger.WithdrawalFields {
	return ledger.WithdrawalFields{
		Amount:          w.Amount,
		Date:            w.Date,
		Status:          string(w.Status),
		Allocation:      w.Allocation,
		Allocations:     w.Allocations,
		ReinvestDetails: w.ReinvestDetails,
		Notes:           w.Notes,
	}
}

func printWithdrawal(cmd *cobra.Command, verb string, w model.Withdrawal) {
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s withdrawal %s: %s on %s (%s)\n", verb, w.ID, money(w.Amount), w.Date, w.Status)
	if !w.Deducts() {
		fmt.Fprintln(cmd.OutOrStdout(), "  Not deducted from the balance until paid")
	}
}

func runWithdrawAdd(cmd *cobra.Command, args []string) error {
	wl, err := app.withdrawals()
	if err != nil {
		return err
	}
	var f ledger.WithdrawalFields
	applyWithdrawFlags(cmd, &f)
	w, err := wl.Record(withdrawFlags.account, f)
	if err != nil {
		return fmt.Errorf("record withdrawal: %w", err)
	}
	printWithdrawal(cmd, "Recorded", w)
	return nil
}

func findWithdrawal(ref string) (model.Withdrawal, error) {
	st, err := app.store()
	if err != nil {
		return model.Withdrawal{}, err
	}
	ws, err := st.Withdrawals()
	if err != nil {
		return model.Withdrawal{}, err
	}
	for _, w := range ws {
		if string(w.ID) == ref {
			return w, nil
		}
	}
	return model.Withdrawal{}, model.NotFound("withdrawal", ref)
}

func runWithdrawEdit(cmd *cobra.Command, args []string) error {
	w, err := findWithdrawal(args[0])
	if err != nil {
		return err
	}
	f := withdrawalFields(w)
	applyWithdrawFlags(cmd, &f)

	wl, err := app.withdrawals()
	if err != nil {
		return err
	}
	edited, err := wl.Edit(args[0], f)
	if err != nil {
		return fmt.Errorf("edit withdrawal: %w", err)
	}
	printWithdrawal(cmd, "Updated", edited)
	return nil
}

func runWithdrawStatus(cmd *cobra.Command, args []string) error {
	wl, err := app.withdrawals()
	if err != nil {
		return err
	}
	w, err := wl.SetStatus(args[0], args[1])
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	printWithdrawal(cmd, "Updated", w)
	return nil
}

func runWithdrawDelete(cmd *cobra.Command, args []string) error {
	wl, err := app.withdrawals()
	if err != nil {
		return err
	}
	w, err := wl.Delete(args[0])
	if err != nil {
		return fmt.Errorf("delete withdrawal: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted withdrawal %s, restored %s\n", w.ID, money(w.Deduction()))
	return nil
}

func runWithdrawList(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	ws, err := st.Withdrawals()
	if err != nil {
		return err
	}
	if len(ws) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No withdrawals.")
		return nil
	}
	table := newTable(cmd.OutOrStdout(), "ID", "Date", "Account", "Amount", "Status", "Debt", "Reinvest", "Savings", "Personal")
	for _, w := range ws {
		b := w.Breakdown()
		table.Append([]string{string(w.ID), w.Date, string(w.AccountID), money(w.Amount), string(w.Status),
			money(b.Debt), money(b.Reinvestment), money(b.Savings), money(b.Personal)})
	}
	table.Render()
	return nil
}
