package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/propjournal/grade"
	"github.com/rustyeddy/propjournal/psych"
)

// resetFlags puts every flag back to its default so commands can run more
// than once in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) cli {
	return cli{t: t, dir: t.TempDir()}
}

func (c cli) run(args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	app = environment{}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(""))
	base := []string{"--config", filepath.Join(c.dir, "absent.yaml"), "--data-dir", filepath.Join(c.dir, "data")}
	rootCmd.SetArgs(append(base, args...))
	err := rootCmd.Execute()
	closeErr := app.close()
	if err == nil {
		err = closeErr
	}
	return out.String(), err
}

func (c cli) must(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	require.NoError(c.t, err, "propjournal %s", strings.Join(args, " "))
	return out
}

func TestTradeAndWithdrawalFlow(t *testing.T) {
	c := newCLI(t)

	out := c.must("account", "add", "--firm", "Apex", "--type", "50K", "--size", "50000", "--number", "APX-1")
	assert.Contains(t, out, "Balance: $50000.00")

	out = c.must("trade", "log", "--account", "APX-1", "--symbol", "MES", "--direction", "long",
		"--size", "2", "--pnl", "100", "--commission", "2.5", "--date", "2024-03-15")
	assert.Contains(t, out, "Net P&L: $97.50")
	assert.Contains(t, out, "Grade: C, 15% drawdown (Minimum)")

	out = c.must("account", "list")
	assert.Contains(t, out, "$50097.50")

	out = c.must("withdraw", "add", "--account", "APX-1", "--amount", "1000", "--debt", "600", "--savings", "400")
	assert.Contains(t, out, "Recorded withdrawal")

	_, err := c.run("withdraw", "add", "--account", "APX-1", "--amount", "1000", "--debt", "600", "--savings", "300")
	assert.Error(t, err)

	out = c.must("account", "reconcile")
	assert.Contains(t, out, "$49097.50")
	assert.Contains(t, out, "yes")

	out = c.must("trade", "export", "--format", "csv")
	assert.True(t, strings.HasPrefix(out, "id,date,"))
	assert.Contains(t, out, "97.5")

	out = c.must("stats")
	assert.Contains(t, out, "By grade")
}

func TestGradeCommand(t *testing.T) {
	c := newCLI(t)

	out := c.must("rules", "add", "must", "Stop placed before entry")
	assert.Contains(t, out, "Added rule")
	c.must("rules", "add", "a", "Trend day confirmed")

	out = c.must("rules", "show")
	assert.Contains(t, out, "Stop placed before entry")

	out = c.must("grade")
	assert.Contains(t, out, "Grade: F")
	assert.Contains(t, out, "0% drawdown (NO TRADE)")

	_, err := c.run("grade", "--check", "nope")
	assert.ErrorIs(t, err, grade.ErrUnknownRule)
}

func TestStrictEnforcementBlocksTrades(t *testing.T) {
	c := newCLI(t)

	c.must("account", "add", "--firm", "Apex", "--size", "50000", "--number", "APX-1")
	out := c.must("checkin", "enforcement", "strict")
	assert.Contains(t, out, "Enforcement: strict")

	_, err := c.run("trade", "log", "--account", "APX-1", "--direction", "short", "--size", "1", "--pnl", "50")
	assert.ErrorIs(t, err, psych.ErrTradingBlocked)

	c.must("checkin", "add", "--sleep", "8", "--stress", "2", "--home-stress", "2", "--emotion", "3", "--exercise")
	c.must("trade", "log", "--account", "APX-1", "--direction", "short", "--size", "1", "--pnl", "50")
}

func TestDataBackupRestore(t *testing.T) {
	c := newCLI(t)

	c.must("firm", "add", "Apex", "--type", "50K", "--daily-loss", "1000", "--total-loss", "2500", "--target", "3000")
	out := c.must("data", "backup")
	assert.Contains(t, out, "backup_")

	out = c.must("data", "backups")
	assert.Contains(t, out, "backup_")

	snapshot := filepath.Join(c.dir, "snap.json")
	c.must("data", "export", "-o", snapshot)
	data, err := os.ReadFile(snapshot)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"prop_firms"`)

	out = c.must("data", "import", snapshot)
	assert.Contains(t, out, "prop_firms")

	bad := filepath.Join(c.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[1,2]`), 0o644))
	_, err = c.run("data", "import", bad)
	assert.Error(t, err)
}

func TestConfigInitAndValidate(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(c.dir, "pj.yaml")

	c.must("config", "init", "-o", path)
	out := c.must("config", "validate", "-f", path)
	assert.Contains(t, out, "Configuration valid")
	assert.Contains(t, out, "Store: json")
}
