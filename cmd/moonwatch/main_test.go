package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moonwatch/internal/app"
)

func runArgs(args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestUsageErrors(t *testing.T) {
	cases := [][]string{
		nil,
		{"monitor"},
		{"trade"},
		{"price", "--bogus"},
		{"price", "--interval", "soon"},
		{"position", "extra"},
	}
	for _, args := range cases {
		code, _, _ := runArgs(args...)
		assert.Equal(t, exitUsage, code, "%v", args)
	}
}

func TestHelp(t *testing.T) {
	code, out, _ := runArgs("help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "position")

	code, _, errOut := runArgs("monitor", "price", "--help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "--sort")
}

func writeConfig(t *testing.T, coinsBody string) string {
	t.Helper()
	dir := t.TempDir()
	coins := filepath.Join(dir, "coins.json")
	require.NoError(t, os.WriteFile(coins, []byte(coinsBody), 0o644))
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("monitor:\n  coins_path: "+coins+"\n"), 0o644))
	return cfg
}

func TestConfigCommand(t *testing.T) {
	cfg := writeConfig(t, `{"BTCUSDT": {"leverage": 25, "sl_percent": 2}}`)
	code, out, _ := runArgs("config", "--config", cfg)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "rest_base_url")
}

func TestInvalidCoinsIsFatal(t *testing.T) {
	cfg := writeConfig(t, `{"BTCUSDT": {"leverage": 500, "sl_percent": 2}}`)
	code, _, _ := runArgs("config", "--config", cfg)
	assert.Equal(t, exitFatal, code)
}

func TestPositionNeedsCredentials(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "")
	t.Setenv("BINANCE_API_SECRET", "")
	cfg := writeConfig(t, `{"BTCUSDT": {"leverage": 25, "sl_percent": 2}}`)
	code, _, _ := runArgs("position", "--config", cfg)
	assert.Equal(t, exitFatal, code)
}

func TestNotifyMode(t *testing.T) {
	o, ignored := notifyMode(app.RunOptions{}, true)
	assert.True(t, o.Notify)
	assert.False(t, ignored)

	o, ignored = notifyMode(app.RunOptions{Live: true}, true)
	assert.False(t, o.Notify)
	assert.False(t, ignored)

	o, ignored = notifyMode(app.RunOptions{Live: true, Notify: true}, false)
	assert.False(t, o.Notify)
	assert.True(t, ignored)
}
