package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/schoolbell/internal/app"
	"github.com/verte-zerg/schoolbell/internal/config"
	"github.com/verte-zerg/schoolbell/internal/document"
	"github.com/verte-zerg/schoolbell/internal/gate"
	"github.com/verte-zerg/schoolbell/internal/model"
	"github.com/verte-zerg/schoolbell/internal/player"
	"github.com/verte-zerg/schoolbell/internal/sounds"
	"github.com/verte-zerg/schoolbell/internal/stats"
	"github.com/verte-zerg/schoolbell/internal/store"
)

var errWrongPassword = errors.New("wrong password")

func newRingCmd() *cobra.Command {
	names := make([]string, 0, len(app.CueKinds))
	for _, k := range app.CueKinds {
		if k != app.CueStop {
			names = append(names, string(k))
		}
	}
	return &cobra.Command{
		Use:   "ring <cue>",
		Short: "Play a manual cue and wait for it to finish",
		Long:  "Play a manual cue: " + strings.Join(names, ", ") + ".",
		Args:  cobra.ExactArgs(1),
		RunE:  runRingCmd,
	}
}

func runRingCmd(cmd *cobra.Command, args []string) error {
	kind, ok := app.ParseCue(args[0])
	if !ok {
		return fmt.Errorf("unknown cue %q", args[0])
	}
	if kind == app.CueStop {
		return fmt.Errorf("stop only applies to a running bell; use the dashboard")
	}
	settings := loadSettings()
	cue, _ := app.ManualCue(kind, settings)

	out, err := player.NewExecOutput(playerCommand)
	if err != nil {
		return fmt.Errorf("failed to configure player: %w", err)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan uint64, 2)
	seq := player.NewSequencer(out, sounds.New(soundsDir, baseDir), func(gen uint64) {
		done <- gen
	})

	entry := model.LogEntry{At: time.Now(), Source: model.SourceManual, Kind: string(kind), Description: kind.Label()}
	started, err := seq.Play(cue)
	entry.Sound = started.Sound
	if err != nil {
		entry.Source = model.SourceError
		recordEntry(ctx, entry)
		return err
	}
	recordEntry(ctx, entry)
	logErrf("Playing %s (%s)\n", cue.Label, started.Sound)

	for seq.State() != player.Idle {
		select {
		case gen := <-done:
			next, err := seq.Finished(gen)
			if err != nil {
				return err
			}
			if next != nil {
				logErrf("Playing %s\n", next.Sound)
			}
		case <-ctx.Done():
			seq.Stop()
			return nil
		}
	}
	return nil
}

// recordEntry appends a one-off entry to the ring log. Failures are
// reported but never fail the command.
func recordEntry(ctx context.Context, e model.LogEntry) {
	st, err := store.Open(dbPath)
	if err != nil {
		logErrf("failed to open ring log: %v\n", err)
		return
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	runID := uuid.NewString()
	hostname, _ := os.Hostname()
	if err := st.StartRun(ctx, runID, e.At, hostname); err != nil {
		logErrf("failed to record run: %v\n", err)
		return
	}
	e.RunID = runID
	if err := st.InsertEntries(ctx, []model.LogEntry{e}); err != nil {
		logErrf("failed to record entry: %v\n", err)
	}
}

var guardPassword string

// checkGuard enforces the settings password on operator changes.
func checkGuard(settings model.Settings) error {
	if settings.PasswordHash == nil {
		return nil
	}
	g := gate.New(settings.Mode)
	g.SetPasswordHash(*settings.PasswordHash)
	if !g.CheckPassword(guardPassword) {
		return errWrongPassword
	}
	return nil
}

func newModeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode [normal|sinav|tatil]",
		Short: "Show or change the operating mode",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModeCmd,
	}
	cmd.Flags().StringVar(&guardPassword, "password", "", "settings password, if one is set")
	return cmd
}

func runModeCmd(cmd *cobra.Command, args []string) error {
	settings, err := document.LoadSettings(settingsPath)
	if len(args) == 0 {
		if err != nil {
			logErrf("failed to load settings, showing defaults: %v\n", err)
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), settings.Mode.Label())
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to load settings %s: %w", settingsPath, err)
	}
	mode, ok := model.ParseMode(args[0])
	if !ok {
		return fmt.Errorf("unknown mode %q", args[0])
	}
	if err := checkGuard(settings); err != nil {
		return err
	}
	settings.Mode = mode
	if err := document.SaveSettings(settingsPath, settings); err != nil {
		return err
	}
	logErrf("Mode set to %s\n", mode.Label())
	return nil
}

var gateClear bool

func newGateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Manage the bell control password",
	}
	password := &cobra.Command{
		Use:   "password [new]",
		Short: "Set or clear the password that guards bell control",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGatePasswordCmd,
	}
	password.Flags().BoolVar(&gateClear, "clear", false, "remove the password")
	password.Flags().StringVar(&guardPassword, "password", "", "current password, if one is set")
	cmd.AddCommand(password)
	return cmd
}

func runGatePasswordCmd(_ *cobra.Command, args []string) error {
	if gateClear == (len(args) == 1) {
		return fmt.Errorf("give a new password or --clear")
	}
	settings, err := document.LoadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings %s: %w", settingsPath, err)
	}
	if err := checkGuard(settings); err != nil {
		return err
	}
	if gateClear {
		settings.PasswordHash = nil
	} else {
		hash := gate.HashPassword(args[0])
		settings.PasswordHash = &hash
	}
	if err := document.SaveSettings(settingsPath, settings); err != nil {
		return err
	}
	logErrln("Password updated")
	return nil
}

var (
	logSince     string
	logDays      int
	logSource    string
	logLast      int
	logPruneDays int
)

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the ring log",
		Args:  cobra.NoArgs,
		RunE:  runLogCmd,
	}
	cmd.Flags().StringVar(&logSince, "since", "", "only entries from this date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&logDays, "days", 0, "only entries from the last N days")
	cmd.Flags().StringVar(&logSource, "source", "", "filter by source: automatic, manual, suppressed, system or error")
	cmd.Flags().IntVar(&logLast, "last", 50, "show the last N entries (0 for all)")
	cmd.Flags().IntVar(&logPruneDays, "prune-days", 0, "delete entries older than N days and exit")
	return cmd
}

func logFilter(now time.Time) (model.LogFilter, error) {
	filter := model.LogFilter{Last: logLast}
	if logSince != "" && logDays > 0 {
		return filter, fmt.Errorf("use either --since or --days")
	}
	if logSince != "" {
		since, err := time.ParseInLocation("2006-01-02", logSince, time.Local)
		if err != nil {
			return filter, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &since
	}
	if logDays > 0 {
		y, m, d := now.AddDate(0, 0, -(logDays - 1)).Date()
		since := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		filter.Since = &since
	}
	if logSource != "" {
		source := model.LogSource(strings.ToLower(logSource))
		valid := false
		for _, s := range stats.Sources {
			if s == source {
				valid = true
				break
			}
		}
		if !valid {
			return filter, fmt.Errorf("unknown source %q", logSource)
		}
		filter.Source = source
	}
	if logLast < 0 {
		return filter, fmt.Errorf("--last must be >= 0")
	}
	return filter, nil
}

func runLogCmd(cmd *cobra.Command, _ []string) error {
	now := time.Now()
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open ring log: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	if logPruneDays > 0 {
		n, err := st.Prune(cmd.Context(), now.AddDate(0, 0, -logPruneDays))
		if err != nil {
			return fmt.Errorf("failed to prune ring log: %w", err)
		}
		logErrf("%d entries removed\n", n)
		return nil
	}

	filter, err := logFilter(now)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(cmd.Context(), st, filter)
	if err != nil {
		return fmt.Errorf("failed to read ring log: %w", err)
	}
	w := cmd.OutOrStdout()
	days := stats.GroupByDay(report.Counts)
	if err := stats.RenderSummary(w, days); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(days) == 0 {
		return nil
	}
	if err := stats.RenderDaily(w, days); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderEntries(w, report.Entries, terminalWidth()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

var soundsGroup string

func newSoundsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sounds",
		Short: "List sound files usable in the documents",
		Args:  cobra.NoArgs,
		RunE:  runSoundsCmd,
	}
	cmd.Flags().StringVar(&soundsGroup, "group", "", "only list one group, e.g. ziller or marslar")
	return cmd
}

func runSoundsCmd(cmd *cobra.Command, _ []string) error {
	entries, err := sounds.New(soundsDir, baseDir).List(nil)
	if err != nil {
		return fmt.Errorf("failed to read sounds directory: %w", err)
	}
	listed := 0
	for _, e := range entries {
		if soundsGroup != "" && e.Group != soundsGroup {
			continue
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), e.ID); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		listed++
	}
	if listed == 0 {
		logErrf("No sounds found in %s\n", soundsDir)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# schoolbell configuration
# Uncomment a value to enable it. CLI flags override config values.
# A .env file next to this one may set %s and %s.

[paths]
# timetable = %q
# settings = %q
# sounds = %q
# base-dir = %q
# db = %q

[player]
# command = %q

[log]
# env = "production"       # production or development
# file = %q
`,
		config.EnvName,
		config.EnvPlayer,
		config.DefaultTimetablePath(),
		config.DefaultSettingsPath(),
		config.DefaultSoundsDir(),
		config.DefaultBaseDir(),
		config.DefaultDBPath(),
		player.DefaultCommand,
		config.DefaultLogPath(),
	)
}
