package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/habitgrid/internal/datekey"
	"github.com/tOgg1/habitgrid/internal/logging"
	"github.com/tOgg1/habitgrid/internal/registry"
)

const testToday = "2024-03-10"

// isolate points every config search path at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	return t.TempDir()
}

func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	base := []string{"--data-dir", dataDir, "--today", testToday, "--env-file", ""}
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dataDir, args...)
	require.NoError(t, err, "habitgrid %s", strings.Join(args, " "))
	return out
}

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd("test")
	for _, name := range []string{"list", "add", "remove", "rename", "toggle", "streak", "color", "show", "import", "export", "history"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		require.Equal(t, name, cmd.Name())
	}
}

func TestAddToggleStreak(t *testing.T) {
	dir := isolate(t)

	require.Contains(t, mustRun(t, dir, "add", "  Read "), "Added Read")
	mustRun(t, dir, "add", "Run")

	require.Equal(t, "Read 2024-03-09: done\n", mustRun(t, dir, "toggle", "Read", "2024-03-09"))
	require.Equal(t, "Read 2024-03-10: done\n", mustRun(t, dir, "toggle", "Read"))
	require.Equal(t, "Read: 2 days as of 2024-03-10 (longest 2 days)\n", mustRun(t, dir, "streak", "Read"))
	require.Equal(t, "Read: 1 day as of 2024-03-09 (longest 2 days)\n", mustRun(t, dir, "streak", "Read", "yesterday"))

	require.Equal(t, "Read 2024-03-10: not done\n", mustRun(t, dir, "toggle", "Read", "today"))
	require.Equal(t, "Read: 0 days as of 2024-03-10 (longest 1 day)\n", mustRun(t, dir, "streak", "Read"))

	data, err := os.ReadFile(filepath.Join(dir, "habits.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), `"habits"`)
	require.Contains(t, string(data), `"2024-03-09": true`)
	require.NotContains(t, string(data), "2024-03-10")
}

func TestAddRejectsInvalidNames(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "add", "Read")

	_, err := runCLI(t, dir, "add", "Read")
	require.ErrorIs(t, err, registry.ErrDuplicateName)

	_, err = runCLI(t, dir, "add", "habits")
	require.ErrorIs(t, err, registry.ErrReservedName)

	_, err = runCLI(t, dir, "add", "   ")
	require.ErrorIs(t, err, registry.ErrEmptyName)
}

func TestUnknownHabit(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "add", "Read")
	for _, args := range [][]string{
		{"toggle", "Nope"},
		{"streak", "Nope"},
		{"remove", "Nope"},
		{"rename", "Nope", "Other"},
		{"color", "Nope"},
		{"show", "--habit", "Nope"},
	} {
		_, err := runCLI(t, dir, args...)
		require.ErrorIs(t, err, registry.ErrUnknownHabit, strings.Join(args, " "))
	}
}

func TestToggleRejectsBadDate(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "add", "Read")
	_, err := runCLI(t, dir, "toggle", "Read", "2024-02-30")
	require.ErrorIs(t, err, datekey.ErrInvalidDate)
}

func TestListRenameRemoveColor(t *testing.T) {
	dir := isolate(t)
	require.Equal(t, "No habits found.\n", mustRun(t, dir, "list"))

	mustRun(t, dir, "add", "Read")
	mustRun(t, dir, "add", "Run")
	mustRun(t, dir, "toggle", "Run")
	mustRun(t, dir, "color", "Run", "#ff8800")
	require.Equal(t, "#ff8800\n", mustRun(t, dir, "color", "Run"))

	out := mustRun(t, dir, "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "HABIT"))
	require.True(t, strings.HasPrefix(lines[1], "Read"))
	require.Contains(t, lines[2], "#ff8800")
	require.True(t, strings.HasSuffix(lines[2], "yes"))

	mustRun(t, dir, "rename", "Run", "Jog")
	require.Equal(t, "#ff8800\n", mustRun(t, dir, "color", "Jog"))
	require.Equal(t, "Jog: 1 day as of 2024-03-10 (longest 1 day)\n", mustRun(t, dir, "streak", "Jog"))

	mustRun(t, dir, "color", "Jog", "--clear")
	require.Equal(t, "-\n", mustRun(t, dir, "color", "Jog"))

	mustRun(t, dir, "remove", "Read")
	out = mustRun(t, dir, "list")
	require.NotContains(t, out, "Read")
	require.Contains(t, out, "Jog")
}

func TestShowViews(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "add", "Read")
	mustRun(t, dir, "toggle", "Read")
	mustRun(t, dir, "toggle", "Read", "2024-03-01")

	out := mustRun(t, dir, "show", "--columns", "7")
	require.Contains(t, out, "Read")
	require.Contains(t, out, "2/366 days completed")
	require.Equal(t, 2, strings.Count(out, "■"))

	out = mustRun(t, dir, "show", "month", "--month", "2024-03")
	require.Contains(t, out, "March 2024")
	require.Contains(t, out, "2/31 days completed")

	out = mustRun(t, dir, "show", "month", "--month", "2024-02")
	require.Contains(t, out, "0/29 days completed")

	out = mustRun(t, dir, "show", "week")
	require.Contains(t, out, "2024-03-04 .. 2024-03-10")
	require.Contains(t, out, "1/7 days completed")

	out = mustRun(t, dir, "show", "rolling", "--days", "30", "--columns", "10")
	require.Contains(t, out, "2024-02-10 .. 2024-03-10")
	require.Contains(t, out, "2/30 days completed")

	out = mustRun(t, dir, "show", "weeks")
	require.Contains(t, out, "2/366 days completed")

	_, err := runCLI(t, dir, "show", "decade")
	require.ErrorContains(t, err, "unknown view")
}

func TestShowOverviewUnlocksOpenedMonth(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "add", "Read")

	out := mustRun(t, dir, "show", "overview")
	require.Equal(t, 9, strings.Count(out, "(locked)"))
	require.Contains(t, out, "December (locked)")

	out = mustRun(t, dir, "show", "overview", "--open", "dec")
	require.Equal(t, 8, strings.Count(out, "(locked)"))
	require.NotContains(t, out, "December (locked)")

	out = mustRun(t, dir, "show", "overview", "--year", "2023")
	require.Zero(t, strings.Count(out, "(locked)"))

	_, err := runCLI(t, dir, "show", "overview", "--open", "13")
	require.Error(t, err)
}

func TestShowAllHabits(t *testing.T) {
	dir := isolate(t)
	require.Contains(t, mustRun(t, dir, "show"), "No habits found")

	mustRun(t, dir, "add", "Read")
	mustRun(t, dir, "add", "Run")
	out := mustRun(t, dir, "show", "week", "--all")
	require.Contains(t, out, "Read")
	require.Contains(t, out, "Run")
	require.Equal(t, 2, strings.Count(out, "days completed"))
}

func TestExportImportRoundTrip(t *testing.T) {
	src := isolate(t)
	mustRun(t, src, "add", "Read")
	mustRun(t, src, "add", "Run")
	mustRun(t, src, "toggle", "Read", "2024-03-01")
	mustRun(t, src, "color", "Run", "33")

	yamlOut := mustRun(t, src, "export", "--format", "yaml")
	require.True(t, strings.HasPrefix(yamlOut, "habits:\n"))
	require.Contains(t, yamlOut, "2024-03-01")

	exportPath := filepath.Join(t.TempDir(), "backup.json")
	mustRun(t, src, "export", "-o", exportPath)

	dst := t.TempDir()
	mustRun(t, dst, "add", "Meditate")
	out := mustRun(t, dst, "import", exportPath)
	require.Equal(t, "Imported 2 habit(s), 1 completion(s), 1 color(s)\n", out)

	list := mustRun(t, dst, "list")
	require.Less(t, strings.Index(list, "Meditate"), strings.Index(list, "Read"))
	require.Less(t, strings.Index(list, "Read"), strings.Index(list, "Run"))
	require.Equal(t, "33\n", mustRun(t, dst, "color", "Run"))

	_, err := runCLI(t, dst, "export", "--format", "csv")
	require.Error(t, err)
}

func TestImportMarkdown(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(t.TempDir(), "list.md")
	require.NoError(t, os.WriteFile(path, []byte("# Habits\n- [ ] Read\n* Run\n1. Stretch\nnotes\n"), 0o644))

	require.Equal(t, "Imported 3 habit(s)\n", mustRun(t, dir, "import", path))
	require.Equal(t, "Imported 0 habit(s)\n", mustRun(t, dir, "import", path))
	require.Equal(t, "- Read\n- Run\n- Stretch\n", mustRun(t, dir, "export", "--format", "md"))
}

func TestBootstrapFromHabitsFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "habits.md"), []byte("- Read\n- Run\n"), 0o644))

	out := mustRun(t, dir, "list")
	require.Contains(t, out, "Read")
	require.Contains(t, out, "Run")

	// Once habits exist the file is not consulted again.
	mustRun(t, dir, "remove", "Run")
	require.NotContains(t, mustRun(t, dir, "list"), "Run")
}

func TestHistory(t *testing.T) {
	dir := isolate(t)
	_, err := runCLI(t, dir, "history")
	require.ErrorContains(t, err, "keeps no history")

	mustRun(t, dir, "--backend", "sqlite", "add", "Read")
	mustRun(t, dir, "--backend", "sqlite", "toggle", "Read")
	_, err = os.Stat(filepath.Join(dir, "habits.db"))
	require.NoError(t, err)

	out := mustRun(t, dir, "--backend", "sqlite", "history")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[0], "ID"))
	require.True(t, strings.HasSuffix(lines[1], "1"), lines[1])
	require.True(t, strings.HasSuffix(lines[2], "0"), lines[2])

	_, err = runCLI(t, dir, "--backend", "sqlite", "history", "--limit", "0")
	require.Error(t, err)
}

func TestInvalidFlags(t *testing.T) {
	dir := isolate(t)
	_, err := runCLI(t, dir, "--backend", "mongo", "list")
	require.Error(t, err)

	_, err = runCLI(t, dir, "--today", "tomorrow", "list")
	require.ErrorContains(t, err, "--today")
}

func TestWriteTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	err := writeTable(&buf, []string{"HABIT", "DAYS"}, [][]string{
		{"Read", "12"},
		{"\x1b[1m読書\x1b[0m", "3"},
	})
	require.NoError(t, err)
	require.Equal(t, "HABIT  DAYS\nRead     12\n\x1b[1m読書\x1b[0m      3\n", buf.String())
}

func TestStripANSI(t *testing.T) {
	require.Equal(t, "plain", stripANSI("plain"))
	require.Equal(t, "bold", stripANSI("\x1b[1;31mbold\x1b[0m"))
}

func TestParseMonthName(t *testing.T) {
	for input, want := range map[string]time.Month{
		"3":         time.March,
		"12":        time.December,
		"sep":       time.September,
		"September": time.September,
	} {
		got, err := parseMonthName(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got, input)
	}
	for _, input := range []string{"0", "13", "se", "smarch"} {
		_, err := parseMonthName(input)
		require.Error(t, err, input)
	}
}

func TestParseMonthFlag(t *testing.T) {
	month, err := parseMonthFlag("2024-02")
	require.NoError(t, err)
	require.Equal(t, datekey.Month{Year: 2024, Month: time.February}, month)

	_, err = parseMonthFlag("2024-2-1")
	require.Error(t, err)
}

func TestGridColumns(t *testing.T) {
	require.Equal(t, fallbackColumns, gridColumns(&bytes.Buffer{}))
	require.Equal(t, minColumns, clampColumns(2))
	require.Equal(t, maxColumns, clampColumns(500))
	require.Equal(t, 40, clampColumns(40))
}

func TestShowLogsLayoutAtDebug(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "add", "Read")
	t.Cleanup(func() { logging.Init(logging.DefaultConfig()) })

	cmd := newRootCmd("test")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{
		"--data-dir", dir, "--today", testToday, "--env-file", "",
		"--log-level", "debug", "--log-format", "json",
		"show", "month",
	})
	require.NoError(t, cmd.Execute())

	require.Contains(t, out.String(), "March 2024")
	require.Contains(t, errOut.String(), `"habit":"Read"`)
	require.Contains(t, errOut.String(), `"message":"built layout"`)
}

func TestShowMonthCursorFlags(t *testing.T) {
	dir := isolate(t)
	mustRun(t, dir, "add", "Read")
	mustRun(t, dir, "add", "Run")
	mustRun(t, dir, "toggle", "Read", "2024-01-05")

	out := mustRun(t, dir, "show", "month", "--step", "-2")
	require.Contains(t, out, "January 2024")
	require.Contains(t, out, "1/31 days completed")

	out = mustRun(t, dir, "show", "month", "--habit-month", "2023-12", "--step", "1")
	require.Contains(t, out, "January 2024")

	// The override moves only the selected habit; the rest follow the global month.
	out = mustRun(t, dir, "show", "month", "--all", "--habit", "Run", "--habit-month", "2023-12")
	require.Contains(t, out, "December 2023")
	require.Contains(t, out, "March 2024")

	out = mustRun(t, dir, "show", "year", "--step", "-1")
	require.Contains(t, out, "0/365 days completed")

	out = mustRun(t, dir, "show", "overview", "--step", "1")
	require.Equal(t, 12, strings.Count(out, "(locked)"))

	_, err := runCLI(t, dir, "show", "week", "--step", "1")
	require.ErrorContains(t, err, "--step")

	_, err = runCLI(t, dir, "show", "month", "--habit-month", "March")
	require.Error(t, err)
}
