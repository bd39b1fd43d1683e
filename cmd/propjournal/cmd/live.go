package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/grade"
	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/model"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Grade a setup interactively and log the trade",
	Long: `Check rules off one by one while a setup forms and watch the grade.

Commands at the prompt:
  <n> or <rule-id>   toggle a rule
  c                  commit to the entry and freeze the grade
  q                  discard and quit

After committing, answer the trade prompts to log it, or type 'back' to
return to the checklist.`,
	Args: cobra.NoArgs,
	RunE: runLive,
}

var liveFlags struct {
	playbook string
	account  string
}

func init() {
	rootCmd.AddCommand(liveCmd)
	liveCmd.Flags().StringVarP(&liveFlags.playbook, "playbook", "p", "", "grade by this playbook's rules")
	liveCmd.Flags().StringVarP(&liveFlags.account, "account", "a", "", "account to log the trade to")
}

type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// ask prints label and reads one line. An empty answer returns def.
func (p prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	if s := strings.TrimSpace(p.in.Text()); s != "" {
		return s, nil
	}
	return def, nil
}

func (p prompter) askFloat(label string, def float64) (float64, error) {
	s, err := p.ask(label, strconv.FormatFloat(def, 'f', -1, 64))
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, model.Invalid(strings.ToLower(label), "not a number: %q", s)
	}
	return v, nil
}

func renderSession(w io.Writer, s *grade.Session) []string {
	checks := s.Checks()
	var keys []string
	for _, sec := range s.Model().Sections() {
		fmt.Fprintf(w, "%s\n", sec.Title)
		for _, r := range sec.Rules {
			keys = append(keys, r.ID)
			box := "[ ]"
			if checks.MustHaveChecked(r.ID) || checks.RuleChecked(r.ID) {
				box = "[x]"
			}
			fmt.Fprintf(w, "  %2d %s %s\n", len(keys), box, r.Text)
		}
	}
	if res, err := s.Current(); err == nil {
		fmt.Fprintf(w, "=> Grade %s, %s\n", res.Grade, res.SizeLabel())
	}
	return keys
}

func runLive(cmd *cobra.Command, args []string) error {
	if err := checkClearance(cmd); err != nil {
		return err
	}
	tl, err := app.trades()
	if err != nil {
		return err
	}
	m, err := tl.Model(liveFlags.playbook)
	if err != nil {
		return err
	}
	g, err := app.grader()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	p := prompter{in: bufio.NewScanner(cmd.InOrStdin()), out: w}
	s := grade.NewSession(g)
	if err := s.Start(m); err != nil {
		return err
	}
	defer s.Clear()

	for {
		switch s.State() {
		case grade.Active:
			keys := renderSession(w, s)
			in, err := p.ask("toggle <n>, c to commit, q to quit", "")
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			switch in {
			case "q":
				return nil
			case "c":
				if _, err := s.CommitToEntry(); err != nil {
					return err
				}
				continue
			case "":
				continue
			}
			ref := in
			if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= len(keys) {
				ref = keys[n-1]
			}
			if _, err := s.Toggle(ref); err != nil {
				fmt.Fprintf(w, "! %v\n", err)
			}

		case grade.PendingEntry:
			res, _ := s.Current()
			printResult(w, res)
			if res.Grade == model.GradeF {
				fmt.Fprintln(w, "! Grade F: this setup breaks your rules")
			}
			in, err := p.ask("log trade? y/n/back", "y")
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			switch strings.ToLower(in) {
			case "back", "b":
				if err := s.CancelEntry(); err != nil {
					return err
				}
				continue
			case "n", "no":
				return nil
			}
			t, err := liveLogTrade(p, tl, s)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			printTradeSummary(cmd, t)
			return nil

		default:
			return nil
		}
	}
}

func liveLogTrade(p prompter, tl *ledger.TradeLedger, s *grade.Session) (model.Trade, error) {
	account := liveFlags.account
	var err error
	if account == "" {
		if account, err = p.ask("Account", ""); err != nil {
			return model.Trade{}, err
		}
	}

	f := ledger.TradeFields{}
	if cfg, err := app.config(); err == nil {
		f.Symbol = cfg.Trading.DefaultSymbol
		f.Commission = cfg.Trading.DefaultCommission
	}
	if f.Symbol, err = p.ask("Symbol", f.Symbol); err != nil {
		return model.Trade{}, err
	}
	if f.Direction, err = p.ask("Direction", string(model.Long)); err != nil {
		return model.Trade{}, err
	}
	if f.PositionSize, err = p.askFloat("Size", 1); err != nil {
		return model.Trade{}, err
	}
	gross, err := p.askFloat("Gross P&L", 0)
	if err != nil {
		return model.Trade{}, err
	}
	f.PnLGross = &gross
	if f.Commission, err = p.askFloat("Commission", f.Commission); err != nil {
		return model.Trade{}, err
	}
	if f.Notes, err = p.ask("Notes", ""); err != nil {
		return model.Trade{}, err
	}

	_, checks, err := s.Finish()
	if err != nil {
		return model.Trade{}, err
	}
	return tl.LogTrade(account, liveFlags.playbook, f, checks)
}
