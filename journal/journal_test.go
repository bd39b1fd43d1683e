package journal

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/model"
)

func sampleTrade() model.Trade {
	return model.Trade{
		ID:                 "01HQZX3Y4K5M6N7P8Q9RSTUVWX",
		Date:               "2024-03-15",
		AccountID:          "acct-1",
		Playbook:           "Opening Range",
		Symbol:             "MES",
		Direction:          model.Long,
		PositionSize:       2,
		EntryPrice:         5100.25,
		ExitPrice:          5110.25,
		PnLGross:           100,
		Commission:         2.5,
		PnLNet:             97.5,
		Grade:              model.GradeB,
		SizeLabel:          "30% drawdown (Reduced)",
		MustHaveCompliance: map[string]bool{"must_0": true},
		RuleCompliance:     map[string]bool{"tb_0": true, "ta_0": false},
		EmotionalState:     4,
		Notes:              "waited for the retest",
	}
}

func TestFormatTradeOrg(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(sampleTrade())

	assert.Contains(t, result, "** Trade: 2024-03-15 MES Long [B] (9RSTUVWX)")
	assert.Contains(t, result, ":PROPERTIES:")
	assert.Contains(t, result, ":TRADE_ID: 01HQZX3Y4K5M6N7P8Q9RSTUVWX")
	assert.Contains(t, result, ":ENTRY_PRICE: 5100.25")
	assert.Contains(t, result, ":PNL_NET: 97.50")
	assert.Contains(t, result, ":SIZE_POLICY: 30% drawdown (Reduced)")
	assert.Contains(t, result, ":END:")
	assert.Contains(t, result, "- [X] must_0\n- [ ] ta_0\n- [X] tb_0\n")
	assert.Contains(t, result, "*** Review\nwaited for the retest\n")
}

func TestFormatTradeOrgMinimal(t *testing.T) {
	t.Parallel()

	result := FormatTradeOrg(model.Trade{ID: "short", Symbol: "ES", PnLGross: -50, PnLNet: -50})
	assert.Contains(t, result, "(short)")
	assert.NotContains(t, result, ":ENTRY_PRICE:")
	assert.NotContains(t, result, "*** Rules")
	assert.Contains(t, result, "*** Review\n- \n")
}

func TestFormatTradesOrg(t *testing.T) {
	t.Parallel()

	out := FormatTradesOrg([]model.Trade{sampleTrade(), sampleTrade()})
	assert.Equal(t, 2, strings.Count(out, ":PROPERTIES:"))
	assert.Contains(t, out, "\n\n\n** Trade:")
	assert.Empty(t, FormatTradesOrg(nil))
}

func TestWriteTradesCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteTradesCSV(&buf, []model.Trade{sampleTrade()}))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "id", records[0][0])
	assert.Contains(t, records[0], "pnl_net")
	assert.Contains(t, records[1], "97.5")

	rows, err := ReadTradesCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, rowOf(sampleTrade()), rows[0])
}

func TestWriteTradesCSVFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, WriteTradesCSVFile(path, []model.Trade{sampleTrade()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,date,"))
}
