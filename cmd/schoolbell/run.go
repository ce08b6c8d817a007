package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/verte-zerg/schoolbell/internal/app"
	"github.com/verte-zerg/schoolbell/internal/config"
	"github.com/verte-zerg/schoolbell/internal/document"
	"github.com/verte-zerg/schoolbell/internal/gate"
	"github.com/verte-zerg/schoolbell/internal/model"
	"github.com/verte-zerg/schoolbell/internal/player"
	"github.com/verte-zerg/schoolbell/internal/sounds"
	"github.com/verte-zerg/schoolbell/internal/store"
	"github.com/verte-zerg/schoolbell/internal/tui"
)

var (
	runClosed      bool
	runClosedUntil string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bell without the dashboard",
		Args:  cobra.NoArgs,
		RunE:  runHeadlessCmd,
	}
	cmd.Flags().BoolVar(&runClosed, "closed", false, "start with automatic bells disabled")
	cmd.Flags().StringVar(&runClosedUntil, "closed-until", "", "start disabled until HH:MM")
	return cmd
}

// service is a running scheduler and everything it owns.
type service struct {
	logger    *zap.Logger
	scheduler *app.Scheduler
	journal   *app.Journal
	store     *store.Store

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// closedUntilFlag parses --closed-until; nil means the flag is unset.
func closedUntilFlag() (*model.TimeOfDay, error) {
	if runClosedUntil == "" {
		return nil, nil
	}
	at, err := model.ParseLooseTimeOfDay(runClosedUntil)
	if err != nil {
		return nil, fmt.Errorf("invalid --closed-until value: %w", err)
	}
	return &at, nil
}

func startService(ctx context.Context, logPath string) (*service, error) {
	closedUntil, err := closedUntilFlag()
	if err != nil {
		return nil, err
	}
	logger, err := app.NewLogger(logEnv, logPath)
	if err != nil {
		return nil, err
	}

	tt, err := document.LoadTimetable(timetablePath)
	if err != nil {
		logger.Error("Failed to load timetable, using built-in default", zap.String("path", timetablePath), zap.Error(err))
	}
	settings, err := document.LoadSettings(settingsPath)
	if err != nil {
		logger.Error("Settings have errors, bad values fall back to defaults", zap.String("path", settingsPath), zap.Error(err))
	}

	out, err := player.NewExecOutput(playerCommand)
	if err != nil {
		return nil, fmt.Errorf("failed to configure player: %w", err)
	}

	svc := &service{logger: logger}
	runID := uuid.NewString()
	var writer app.EntryWriter
	st, err := store.Open(dbPath)
	if err != nil {
		logger.Error("Failed to open ring log, entries will not be persisted", zap.String("path", dbPath), zap.Error(err))
	} else {
		svc.store = st
		writer = st
		hostname, _ := os.Hostname()
		if err := st.StartRun(ctx, runID, time.Now(), hostname); err != nil {
			logger.Warn("Failed to record run", zap.Error(err))
		}
	}

	g := gate.New(settings.Mode)
	if settings.PasswordHash != nil {
		g.SetPasswordHash(*settings.PasswordHash)
	}
	switch {
	case closedUntil != nil:
		g.CloseUntil(*closedUntil)
	case runClosed:
		g.Close()
	}

	svc.journal = app.NewJournal(writer, runID, logger)
	svc.scheduler = app.NewScheduler(app.Options{
		Timetable: tt,
		Settings:  settings,
		Gate:      g,
		Output:    out,
		Resolver:  sounds.New(soundsDir, baseDir),
		Journal:   svc.journal,
		Logger:    logger,
	})

	// The journal outlives the scheduler so the shutdown entry is written.
	go svc.journal.Run(context.Background())

	runCtx, cancel := context.WithCancel(ctx)
	svc.cancel = cancel
	svc.wg.Add(1)
	go func() {
		defer svc.wg.Done()
		if err := svc.scheduler.Run(runCtx); err != nil {
			logger.Error("Scheduler stopped with error", zap.Error(err))
		}
	}()
	return svc, nil
}

// reload re-reads both documents and hands them to the scheduler.
func (s *service) reload() {
	tt, err := document.LoadTimetable(timetablePath)
	if err != nil {
		s.logger.Error("Reload failed, keeping current timetable", zap.Error(err))
	} else {
		s.scheduler.Reload(tt)
	}
	settings, err := document.LoadSettings(settingsPath)
	if err != nil {
		s.logger.Error("Reload failed, keeping current settings", zap.Error(err))
		return
	}
	s.scheduler.Gate().SetMode(settings.Mode)
	if settings.PasswordHash != nil {
		s.scheduler.Gate().SetPasswordHash(*settings.PasswordHash)
	} else {
		s.scheduler.Gate().SetPasswordHash("")
	}
	s.scheduler.UpdateSettings(settings)
}

// saveMode persists a mode chosen in the dashboard.
func (s *service) saveMode(mode model.Mode) error {
	settings, err := document.LoadSettings(settingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	settings.Mode = mode
	if err := document.SaveSettings(settingsPath, settings); err != nil {
		return err
	}
	s.scheduler.UpdateSettings(settings)
	s.logger.Info("Mode changed", zap.String("mode", string(mode)))
	return nil
}

func (s *service) stop() {
	s.cancel()
	s.wg.Wait()
	s.journal.Close()
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("Failed to close ring log", zap.Error(err))
		}
	}
	// Best-effort flush; stdout sync fails on some terminals.
	_ = s.logger.Sync()
}

func runHeadlessCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := startService(ctx, logFile)
	if err != nil {
		return err
	}
	defer svc.stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-hup:
			svc.logger.Info("SIGHUP received, reloading documents")
			svc.reload()
		case <-ctx.Done():
			return nil
		}
	}
}

func runDashboardCmd(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		logErrln("stdout is not a terminal; running without the dashboard")
		return runHeadlessCmd(cmd, args)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	path := logFile
	if path == "" {
		path = config.DefaultLogPath()
	}
	svc, err := startService(ctx, path)
	if err != nil {
		return err
	}
	defer svc.stop()

	program := tea.NewProgram(tui.NewModel(svc.scheduler, svc.saveMode), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}
