// Package journal renders logged trades for export: CSV for spreadsheets
// and Org-mode blocks for a written journal.
package journal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/propjournal/model"
)

// FormatTradeOrg renders a trade as an Org-mode block. Facts go in the
// PROPERTIES drawer; the narrative sections start empty unless the trade
// has notes.
func FormatTradeOrg(t model.Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s %s [%s] (%s)", t.Date, t.Symbol, t.Direction, t.Grade, shortID(string(t.ID)))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":ACCOUNT: %s\n", t.AccountID))
	b.WriteString(fmt.Sprintf(":PLAYBOOK: %s\n", t.Playbook))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", t.Direction))
	b.WriteString(fmt.Sprintf(":SIZE: %g\n", t.PositionSize))
	if t.EntryPrice != 0 || t.ExitPrice != 0 {
		b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.2f\n", t.EntryPrice))
		b.WriteString(fmt.Sprintf(":EXIT_PRICE: %.2f\n", t.ExitPrice))
	}
	b.WriteString(fmt.Sprintf(":PNL_GROSS: %.2f\n", t.PnLGross))
	b.WriteString(fmt.Sprintf(":COMMISSION: %.2f\n", t.Commission))
	b.WriteString(fmt.Sprintf(":PNL_NET: %.2f\n", t.PnLNet))
	b.WriteString(fmt.Sprintf(":GRADE: %s\n", t.Grade))
	if t.SizeLabel != "" {
		b.WriteString(fmt.Sprintf(":SIZE_POLICY: %s\n", t.SizeLabel))
	}
	if t.EmotionalState != 0 {
		b.WriteString(fmt.Sprintf(":EMOTIONAL_STATE: %d\n", t.EmotionalState))
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")

	mustHave, rules := t.Compliance()
	if len(mustHave)+len(rules) > 0 {
		b.WriteString("*** Rules\n")
		writeChecks(&b, mustHave)
		writeChecks(&b, rules)
		b.WriteString("\n")
	}

	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n")
	if t.Notes != "" {
		b.WriteString(t.Notes)
		b.WriteString("\n")
	} else {
		b.WriteString("- \n")
	}
	return b.String()
}

func writeChecks(b *strings.Builder, m map[string]bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		box := "[ ]"
		if m[k] {
			box = "[X]"
		}
		fmt.Fprintf(b, "- %s %s\n", box, k)
	}
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []model.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
