package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/propjournal/internal/id"
	"github.com/rustyeddy/propjournal/model"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Daily plan and review notes",
	Long: `Keep a plan and review note per trading day.

Adding an entry for a day that already has one updates the fields given.

Examples:
  propjournal entry add --plan "Only ORB longs above VWAP"
  propjournal entry add --date 2024-03-15 --review "Chased the second entry" --rating 6
  propjournal entry list`,
}

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a daily entry",
	Args:  cobra.NoArgs,
	RunE:  runEntryAdd,
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List daily entries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runEntryList,
}

var entryFlags struct {
	date    string
	plan    string
	review  string
	lessons string
	rating  int
	limit   int
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd)
	entryCmd.AddCommand(entryListCmd)

	f := entryAddCmd.Flags()
	f.StringVar(&entryFlags.date, "date", "", "day YYYY-MM-DD (default today)")
	f.StringVar(&entryFlags.plan, "plan", "", "plan for the day")
	f.StringVar(&entryFlags.review, "review", "", "how the day went")
	f.StringVar(&entryFlags.lessons, "lessons", "", "lessons learned")
	f.IntVar(&entryFlags.rating, "rating", 0, "rating of the day 1-10")

	entryListCmd.Flags().IntVarP(&entryFlags.limit, "limit", "n", 10, "entries to show, 0 for all")
}

func runEntryAdd(cmd *cobra.Command, args []string) error {
	day := entryFlags.date
	if day == "" {
		day = time.Now().Format(model.DateLayout)
	}
	if _, err := time.Parse(model.DateLayout, day); err != nil {
		return model.Invalid("date", "must be YYYY-MM-DD, got %q", day)
	}
	if entryFlags.rating < 0 || entryFlags.rating > 10 {
		return model.Invalid("rating", "outside 0-10")
	}

	st, err := app.store()
	if err != nil {
		return err
	}
	entries, err := st.DailyEntries()
	if err != nil {
		return err
	}
	i := -1
	for k, e := range entries {
		if e.Date == day {
			i = k
			break
		}
	}
	if i < 0 {
		entries = append(entries, model.DailyEntry{ID: model.ID(id.New()), Date: day})
		i = len(entries) - 1
	}

	e := &entries[i]
	flags := cmd.Flags()
	if flags.Changed("plan") {
		e.Plan = entryFlags.plan
	}
	if flags.Changed("review") {
		e.Review = entryFlags.review
	}
	if flags.Changed("lessons") {
		e.Lessons = entryFlags.lessons
	}
	if flags.Changed("rating") {
		e.Rating = entryFlags.rating
	}
	e.Timestamp = model.NewTimestamp(time.Now())

	if err := st.SaveDailyEntries(entries); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved entry for %s\n", day)
	return nil
}

func runEntryList(cmd *cobra.Command, args []string) error {
	st, err := app.store()
	if err != nil {
		return err
	}
	entries, err := st.DailyEntries()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries yet.")
		return nil
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].Date > entries[b].Date })
	if entryFlags.limit > 0 && len(entries) > entryFlags.limit {
		entries = entries[:entryFlags.limit]
	}

	table := newTable(cmd.OutOrStdout(), "Date", "Rating", "Plan", "Review", "Lessons")
	for _, e := range entries {
		rating := ""
		if e.Rating > 0 {
			rating = fmt.Sprint(e.Rating)
		}
		table.Append([]string{e.Date, rating, e.Plan, e.Review, e.Lessons})
	}
	table.Render()
	return nil
}
