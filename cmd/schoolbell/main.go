// Package main provides the CLI entrypoint for schoolbell.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/schoolbell/internal/config"
	"github.com/verte-zerg/schoolbell/internal/document"
	"github.com/verte-zerg/schoolbell/internal/model"
)

var (
	configPath    string
	timetablePath string
	settingsPath  string
	soundsDir     string
	baseDir       string
	dbPath        string
	playerCommand string
	logEnv        string
	logFile       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "schoolbell",
		Short:             "School bell scheduler",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: resolveConfig,
		RunE:              runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file")
	flags.StringVar(&timetablePath, "timetable", config.DefaultTimetablePath(), "timetable document")
	flags.StringVar(&settingsPath, "settings", config.DefaultSettingsPath(), "settings document")
	flags.StringVar(&soundsDir, "sounds", config.DefaultSoundsDir(), "sounds directory")
	flags.StringVar(&baseDir, "base-dir", config.DefaultBaseDir(), "base directory for relative sound paths")
	flags.StringVar(&dbPath, "db", config.DefaultDBPath(), "ring log database")
	flags.StringVar(&playerCommand, "player", "", "player command with {file} and {volume} placeholders")
	flags.StringVar(&logEnv, "log-env", "", "logger environment (production or development)")
	flags.StringVar(&logFile, "log-file", "", "log file (dashboard default: data dir)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newTodayCmd())
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newRingCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newCopyDayCmd())
	rootCmd.AddCommand(newShiftCmd())
	rootCmd.AddCommand(newModeCmd())
	rootCmd.AddCommand(newGateCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newSoundsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolveConfig layers values: flag, then environment, then config file,
// then the built-in default.
func resolveConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadEnv(configPath); err != nil {
		return err
	}
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "timetable", &timetablePath, fileCfg.Paths.Timetable)
	applyStringConfig(cmd, "settings", &settingsPath, fileCfg.Paths.Settings)
	applyStringConfig(cmd, "sounds", &soundsDir, fileCfg.Paths.Sounds)
	applyStringConfig(cmd, "base-dir", &baseDir, fileCfg.Paths.BaseDir)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.Paths.DB)
	applyStringConfig(cmd, "player", &playerCommand, fileCfg.Player.Command)
	applyStringConfig(cmd, "log-env", &logEnv, fileCfg.Log.Env)
	applyStringConfig(cmd, "log-file", &logFile, fileCfg.Log.File)

	if env := config.PlayerCommand(); env != "" && !cmd.Flags().Changed("player") {
		playerCommand = env
	}
	if !cmd.Flags().Changed("log-env") {
		if os.Getenv(config.EnvName) != "" || logEnv == "" {
			logEnv = config.Environment()
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

// loadTimetableForEdit refuses to continue on a document that exists but
// cannot be read, so an edit never replaces it with the default.
func loadTimetableForEdit() (*model.Timetable, error) {
	tt, err := document.LoadTimetable(timetablePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load timetable %s: %w", timetablePath, err)
	}
	return tt, nil
}

func loadSettings() model.Settings {
	s, err := document.LoadSettings(settingsPath)
	if err != nil {
		logErrf("settings have errors, bad values fall back to defaults: %v\n", err)
	}
	return s
}

func parseDayArg(s string) (time.Weekday, error) {
	w, ok := model.ParseDay(s)
	if !ok {
		return 0, fmt.Errorf("unknown day %q", s)
	}
	return w, nil
}

func parseDaysArg(args []string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, arg := range args {
		if strings.EqualFold(arg, "all") || strings.EqualFold(arg, "hepsi") {
			return model.WeekOrder[:], nil
		}
		w, err := parseDayArg(arg)
		if err != nil {
			return nil, err
		}
		days = append(days, w)
	}
	return days, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
