package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/grade"
	"github.com/rustyeddy/propjournal/risk"
	"github.com/rustyeddy/propjournal/rules"
)

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Grade a setup from the rules it meets",
	Long: `Grade a setup without logging a trade.

Pass the ids of the checked rules with --check (see 'propjournal rules show').
With --risk-per-contract the allowed position is sized from the grade.

Examples:
  propjournal grade --check must_0,a_1
  propjournal grade --playbook "Opening Range" --check tc_0,tc_1,tb_0 --daily-drawdown 1000 --risk-per-contract 50`,
	Args: cobra.NoArgs,
	RunE: runGrade,
}

var gradeFlags struct {
	playbook string
	check    []string
	drawdown float64
	rpc      float64
}

func init() {
	rootCmd.AddCommand(gradeCmd)

	gradeCmd.Flags().StringVarP(&gradeFlags.playbook, "playbook", "p", "", "grade by this playbook's rules")
	gradeCmd.Flags().StringSliceVar(&gradeFlags.check, "check", nil, "ids of the checked rules")
	gradeCmd.Flags().Float64Var(&gradeFlags.drawdown, "daily-drawdown", 0, "daily drawdown budget in dollars")
	gradeCmd.Flags().Float64Var(&gradeFlags.rpc, "risk-per-contract", 0, "dollar risk of one contract")
}

// gradeChecked runs a grading session over m with ids checked and returns
// the frozen result and checkmarks.
func gradeChecked(g *grade.Grader, m rules.Model, ids []string) (grade.Result, grade.Checks, error) {
	s := grade.NewSession(g)
	if err := s.Start(m); err != nil {
		return grade.Result{}, grade.Checks{}, err
	}
	for _, id := range ids {
		on, err := s.Toggle(id)
		if err != nil {
			s.Clear()
			return grade.Result{}, grade.Checks{}, err
		}
		if !on {
			// Listed twice; keep it checked.
			if _, err := s.Toggle(id); err != nil {
				return grade.Result{}, grade.Checks{}, err
			}
		}
	}
	if _, err := s.CommitToEntry(); err != nil {
		return grade.Result{}, grade.Checks{}, err
	}
	return s.Finish()
}

func (e *environment) grader() (*grade.Grader, error) {
	st, err := e.store()
	if err != nil {
		return nil, err
	}
	settings, err := st.Settings()
	if err != nil {
		return nil, err
	}
	return grade.New(settings.PositionSizing, e.log), nil
}

func printResult(w io.Writer, res grade.Result) {
	fmt.Fprintf(w, "Grade: %s\n", res.Grade)
	fmt.Fprintf(w, "  Size: %s\n", res.SizeLabel())
	if res.MustHaveTotal > 0 {
		fmt.Fprintf(w, "  Must-have: %d/%d\n", res.MustHaveMet, res.MustHaveTotal)
	}
	fmt.Fprintf(w, "  Strategy: %s\n", res.Strategy)
}

func runGrade(cmd *cobra.Command, args []string) error {
	tl, err := app.trades()
	if err != nil {
		return err
	}
	m, err := tl.Model(gradeFlags.playbook)
	if err != nil {
		return err
	}
	g, err := app.grader()
	if err != nil {
		return err
	}
	res, _, err := gradeChecked(g, m, gradeFlags.check)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printResult(w, res)
	if gradeFlags.rpc > 0 && gradeFlags.drawdown > 0 {
		s := risk.SizeForPolicy(res.Policy, gradeFlags.drawdown, gradeFlags.rpc)
		fmt.Fprintf(w, "  Risk: %s (%s contracts)\n", money(s.Dollars), strconv.FormatInt(s.Contracts, 10))
	}
	return nil
}
