package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"earnings-ledger/internal/util"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "earnings-ledger", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "record", "stats", "streak", "hash-passcode"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)
}

// writeConfig points the CLI at a database in a temp dir.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := strings.Join([]string{
		"database:",
		"  path: " + filepath.Join(dir, "earnings.db"),
		"security:",
		"  encryption_key: cli-test",
		"log:",
		"  level: error",
		"earnings:",
		"  daily_goal: \"28000\"",
		"  timezone: UTC",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecordStatsStreak(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "--config", cfg, "record", "100", "--notes", "slow day")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 100.00")

	_, err = run(t, "--config", cfg, "record", "200")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err = run(t, "--config", cfg, "--format", "json", "stats")
	require.NoError(t, err)
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			DaysTracked int         `json:"daysTracked"`
			TotalEarned json.Number `json:"totalEarned"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.DaysTracked)
	assert.Equal(t, "100", resp.Data.TotalEarned.String())

	// 100 is below the goal, so today does not count
	out, err = run(t, "--config", cfg, "streak")
	require.NoError(t, err)
	assert.Equal(t, "0 day streak\n", out)
}

func TestRecord_InvalidAmount(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "record", "-5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestStats_InvalidMonth(t *testing.T) {
	_, err := run(t, "--config", writeConfig(t), "stats", "--month", "2025/02")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestStats_MissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "stats")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "xml", "hash-passcode", "1234")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHashPasscode(t *testing.T) {
	out, err := run(t, "hash-passcode", "4321")
	require.NoError(t, err)
	hash := strings.TrimSpace(out)
	assert.True(t, util.CheckPasscode("4321", hash))

	_, err = run(t, "hash-passcode", "12")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", errors.New("y"))))
}

func TestOutputFormatter_Error(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	f.Error(NewExitError(ExitCommandError, "broken"))
	assert.JSONEq(t, `{"status":"error","error":{"code":2,"message":"broken"}}`, buf.String())
}
