package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/model"
	"github.com/rustyeddy/propjournal/psych"
)

var checkinCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Daily psychological check-in",
	Long: `Record how you are before trading and see whether you are cleared to trade.

One check-in is kept per day; checking in again replaces today's. The
enforcement level in settings decides whether a RED or missing check-in
blocks 'trade log'.

Examples:
  propjournal checkin add --sleep 7.5 --stress 3 --home-stress 2 --emotion 4 --exercise
  propjournal checkin today
  propjournal checkin history --days 30
  propjournal checkin enforcement strict`,
}

var checkinAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record today's check-in",
	Args:  cobra.NoArgs,
	RunE:  runCheckinAdd,
}

var checkinTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's trading clearance",
	Args:  cobra.NoArgs,
	RunE:  runCheckinToday,
}

var checkinHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent check-ins and patterns",
	Args:  cobra.NoArgs,
	RunE:  runCheckinHistory,
}

var checkinEnforcementCmd = &cobra.Command{
	Use:   "enforcement [soft|medium|strict]",
	Short: "Show or set the clearance enforcement level",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheckinEnforcement,
}

var checkinFlags struct {
	sleep      float64
	quality    int
	stress     int
	homeStress int
	emotion    int
	alcohol    bool
	exercise   bool
	plan       string
	emotions   string
	notes      string
	days       int
}

func init() {
	rootCmd.AddCommand(checkinCmd)
	checkinCmd.AddCommand(checkinAddCmd)
	checkinCmd.AddCommand(checkinTodayCmd)
	checkinCmd.AddCommand(checkinHistoryCmd)
	checkinCmd.AddCommand(checkinEnforcementCmd)

	f := checkinAddCmd.Flags()
	f.Float64Var(&checkinFlags.sleep, "sleep", 0, "hours slept (required)")
	f.IntVar(&checkinFlags.quality, "sleep-quality", 0, "sleep quality 1-10")
	f.IntVar(&checkinFlags.stress, "stress", 0, "stress level 1-10")
	f.IntVar(&checkinFlags.homeStress, "home-stress", 0, "home stress 1-10")
	f.IntVar(&checkinFlags.emotion, "emotion", 0, "emotional state 1-10, 10 is most agitated")
	f.BoolVar(&checkinFlags.alcohol, "alcohol", false, "alcohol in the last 24 hours")
	f.BoolVar(&checkinFlags.exercise, "exercise", false, "exercised today")
	f.StringVar(&checkinFlags.plan, "plan", "", "today's trading plan")
	f.StringVar(&checkinFlags.emotions, "feeling", "", "how you feel right now")
	f.StringVar(&checkinFlags.notes, "notes", "", "notes")
	checkinAddCmd.MarkFlagRequired("sleep")

	checkinHistoryCmd.Flags().IntVar(&checkinFlags.days, "days", 7, "number of days")
}

func printClearance(w io.Writer, c psych.Clearance) {
	mark := "✓"
	if !c.Cleared {
		mark = "✗"
	}
	fmt.Fprintf(w, "%s %s: %s\n", mark, c.Status, c.Message)
	for _, f := range c.RedFlags {
		fmt.Fprintf(w, "  RED: %s\n", f)
	}
	for _, f := range c.YellowFlags {
		fmt.Fprintf(w, "  YELLOW: %s\n", f)
	}
	for _, r := range c.Restrictions {
		fmt.Fprintf(w, "  - %s\n", r)
	}
}

func runCheckinAdd(cmd *cobra.Command, args []string) error {
	j, err := app.journal()
	if err != nil {
		return err
	}
	c, err := j.SaveCheckIn(model.CheckIn{
		SleepHours:      checkinFlags.sleep,
		SleepQuality:    checkinFlags.quality,
		StressLevel:     checkinFlags.stress,
		HomeStress:      checkinFlags.homeStress,
		EmotionalState:  checkinFlags.emotion,
		AlcoholConsumed: checkinFlags.alcohol,
		ExerciseDone:    checkinFlags.exercise,
		TradingPlan:     checkinFlags.plan,
		CurrentEmotions: checkinFlags.emotions,
		Notes:           checkinFlags.notes,
	})
	if err != nil {
		return fmt.Errorf("save check-in: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Check-in saved for %s\n", c.Date)
	printClearance(cmd.OutOrStdout(), psych.DefaultThresholds.ClearanceFor(&c))
	return nil
}

func runCheckinToday(cmd *cobra.Command, args []string) error {
	j, err := app.journal()
	if err != nil {
		return err
	}
	c, err := j.Clearance()
	if err != nil {
		return err
	}
	printClearance(cmd.OutOrStdout(), c)
	return nil
}

func runCheckinHistory(cmd *cobra.Command, args []string) error {
	j, err := app.journal()
	if err != nil {
		return err
	}
	hist, err := j.History(checkinFlags.days)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if len(hist) == 0 {
		fmt.Fprintln(w, "No check-ins yet.")
		return nil
	}

	table := newTable(w, "Date", "Status", "Sleep", "Stress", "Home", "Emotion", "Alcohol", "Exercise")
	for _, c := range hist {
		a := psych.Assess(c)
		table.Append([]string{c.Date, string(a.Status), fmt.Sprintf("%.1f", c.SleepHours),
			fmt.Sprint(c.StressLevel), fmt.Sprint(c.HomeStress), fmt.Sprint(c.EmotionalState),
			yesNo(c.AlcoholConsumed), yesNo(c.ExerciseDone)})
	}
	table.Render()

	p, err := j.Patterns(checkinFlags.days)
	if err != nil {
		return err
	}
	if p.DaysAnalyzed > 0 {
		fmt.Fprintf(w, "\nLast %d days: %d green, %d yellow, %d red\n", p.DaysAnalyzed, p.GreenDays, p.YellowDays, p.RedDays)
		fmt.Fprintf(w, "  Avg sleep %.1fh, stress %.1f, emotion %.1f\n", p.AvgSleep, p.AvgStress, p.AvgEmotional)
		fmt.Fprintf(w, "  Alcohol on %d days, exercise on %d days\n", p.AlcoholDays, p.ExerciseDays)
		if p.SleepTrend != "" {
			fmt.Fprintf(w, "  Sleep is %s\n", p.SleepTrend)
		}
	}
	return nil
}

func runCheckinEnforcement(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	settings, err := st.Settings()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		e, err := psych.ParseEnforcement(args[0])
		if err != nil {
			return err
		}
		settings.Enforcement = string(e)
		if err := st.SaveSettings(settings); err != nil {
			return err
		}
	}
	e, err := psych.ParseEnforcement(settings.Enforcement)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Enforcement: %s\n", e)
	return nil
}
