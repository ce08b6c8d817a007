package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/schoolbell/internal/cascade"
	"github.com/verte-zerg/schoolbell/internal/document"
	"github.com/verte-zerg/schoolbell/internal/engine"
	"github.com/verte-zerg/schoolbell/internal/generator"
	"github.com/verte-zerg/schoolbell/internal/gate"
	"github.com/verte-zerg/schoolbell/internal/model"
	"github.com/verte-zerg/schoolbell/internal/tui"
)

const defaultWidth = 80

func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return defaultWidth
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}

func newTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today [day]",
		Short: "Show the bell program of today or another weekday",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTodayCmd,
	}
}

func runTodayCmd(cmd *cobra.Command, args []string) error {
	tt, err := document.LoadTimetable(timetablePath)
	if err != nil {
		logErrf("failed to load timetable, showing default: %v\n", err)
	}
	now := time.Now()
	if len(args) == 1 {
		w, err := parseDayArg(args[0])
		if err != nil {
			return err
		}
		// Show the requested weekday of the current week.
		now = now.AddDate(0, 0, int(w)-int(now.Weekday()))
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), tui.RenderDay(tt, now, terminalWidth())); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the next scheduled bell",
		Args:  cobra.NoArgs,
		RunE:  runNextCmd,
	}
}

func runNextCmd(cmd *cobra.Command, _ []string) error {
	tt, err := document.LoadTimetable(timetablePath)
	if err != nil {
		logErrf("failed to load timetable, showing default: %v\n", err)
	}
	settings := loadSettings()
	now := time.Now()
	next, ok := engine.Next(now, tt)
	canRing := gate.New(settings.Mode).CanRing(now)
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), tui.Countdown(now, next, ok, canRing)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

var editPart string

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit a day's lesson slots",
	}
	cmd.PersistentFlags().StringVar(&editPart, "part", "lessons", "slot list: lessons, sabahci or oglenci")

	cmd.AddCommand(&cobra.Command{
		Use:   "gap <day> <slot> <minutes>",
		Short: "Set the recess after a slot and shift the following slots",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			i, err := parseSlotArg(args[1])
			if err != nil {
				return err
			}
			minutes, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid minutes %q", args[2])
			}
			return editTable(args[0], func(t cascade.Table) (cascade.Table, error) {
				return t.SetGap(i, minutes)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "time <day> <slot> <ogrenci|ogretmen|cikis> <HH:MM>",
		Short: "Set a bell time and shift the following slots",
		Args:  cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			i, err := parseSlotArg(args[1])
			if err != nil {
				return err
			}
			field, ok := model.ParseField(args[2])
			if !ok {
				return fmt.Errorf("unknown bell %q", args[2])
			}
			at, err := model.ParseLooseTimeOfDay(args[3])
			if err != nil {
				return err
			}
			return editTable(args[0], func(t cascade.Table) (cascade.Table, error) {
				return t.SetTime(i, field, at)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "add <day>",
		Short: "Append a slot after the last one",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return editTable(args[0], func(t cascade.Table) (cascade.Table, error) {
				return t.AddSlot(), nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove <day> <slot>",
		Short: "Remove a slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			i, err := parseSlotArg(args[1])
			if err != nil {
				return err
			}
			return editTable(args[0], func(t cascade.Table) (cascade.Table, error) {
				return t.RemoveSlot(i)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "active <day> <on|off>",
		Short: "Enable or disable a day or one of its shifts",
		Args:  cobra.ExactArgs(2),
		RunE:  runEditActiveCmd,
	})
	return cmd
}

// parseSlotArg turns a 1-based slot position into an index.
func parseSlotArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid slot %q", s)
	}
	return n - 1, nil
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "acik", "açık", "true", "1":
		return true, nil
	case "off", "kapali", "kapalı", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
}

func editTable(dayArg string, edit func(cascade.Table) (cascade.Table, error)) error {
	w, err := parseDayArg(dayArg)
	if err != nil {
		return err
	}
	part, ok := cascade.ParsePart(editPart)
	if !ok {
		return fmt.Errorf("unknown part %q", editPart)
	}
	tt, err := loadTimetableForEdit()
	if err != nil {
		return err
	}
	settings := loadSettings()

	day := tt.Day(w)
	slots, err := cascade.SlotsOf(day, part)
	if err != nil {
		return err
	}
	table, err := edit(cascade.NewTable(slots, cascade.DefaultsFrom(settings.Defaults)))
	if err != nil {
		return err
	}
	day, err = cascade.WithSlots(day, part, table.Slots)
	if err != nil {
		return err
	}
	if err := document.SaveTimetable(timetablePath, cascade.WithDay(tt, w, day)); err != nil {
		return err
	}
	logErrf("%s updated\n", model.DayName(w))
	return nil
}

func runEditActiveCmd(_ *cobra.Command, args []string) error {
	w, err := parseDayArg(args[0])
	if err != nil {
		return err
	}
	active, err := parseSwitch(args[1])
	if err != nil {
		return err
	}
	part, ok := cascade.ParsePart(editPart)
	if !ok {
		return fmt.Errorf("unknown part %q", editPart)
	}
	tt, err := loadTimetableForEdit()
	if err != nil {
		return err
	}
	day, err := cascade.SetActive(tt.Day(w), part, active)
	if err != nil {
		return err
	}
	return document.SaveTimetable(timetablePath, cascade.WithDay(tt, w, day))
}

var (
	genFirst       string
	genLessons     int
	genDuration    int
	genGap         int
	genLead        int
	genLunch       bool
	genLunchAfter  int
	genLunchLength int
	genSound       string
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <day...|all>",
		Short: "Generate an evenly spaced program for the given days",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGenerateCmd,
	}
	d := model.DefaultScheduleDefaults()
	cmd.Flags().StringVar(&genFirst, "first", d.FirstLesson, "first teacher entry (HH:MM)")
	cmd.Flags().IntVar(&genLessons, "lessons", d.LessonsPerDay, "lessons per day")
	cmd.Flags().IntVar(&genDuration, "duration", d.LessonDuration, "lesson duration in minutes")
	cmd.Flags().IntVar(&genGap, "gap", d.Gap, "recess in minutes")
	cmd.Flags().IntVar(&genLead, "lead", d.StudentLead, "minutes between student and teacher entry")
	cmd.Flags().BoolVar(&genLunch, "lunch", false, "insert a lunch break")
	cmd.Flags().IntVar(&genLunchAfter, "lunch-after", d.LunchAfterLesson, "lesson after which lunch starts")
	cmd.Flags().IntVar(&genLunchLength, "lunch-duration", d.LunchDuration, "lunch duration in minutes")
	cmd.Flags().StringVar(&genSound, "sound", model.DefaultSound, "bell sound for every slot")
	return cmd
}

// generatePlan starts from the saved schedule defaults and lets flags
// override them.
func generatePlan(cmd *cobra.Command, sd model.ScheduleDefaults) (generator.Plan, error) {
	if cmd.Flags().Changed("first") {
		sd.FirstLesson = genFirst
	}
	applyIntFlag(cmd, "lessons", &sd.LessonsPerDay, genLessons)
	applyIntFlag(cmd, "duration", &sd.LessonDuration, genDuration)
	applyIntFlag(cmd, "gap", &sd.Gap, genGap)
	applyIntFlag(cmd, "lead", &sd.StudentLead, genLead)
	applyIntFlag(cmd, "lunch-after", &sd.LunchAfterLesson, genLunchAfter)
	applyIntFlag(cmd, "lunch-duration", &sd.LunchDuration, genLunchLength)
	plan, err := generator.PlanFrom(sd, genLunch)
	if err != nil {
		return generator.Plan{}, err
	}
	plan.Sound = genSound
	return plan, nil
}

// applyIntFlag copies a flag value over a document value when the flag was
// given explicitly.
func applyIntFlag(cmd *cobra.Command, name string, target *int, value int) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	days, err := parseDaysArg(args)
	if err != nil {
		return err
	}
	settings := loadSettings()
	plan, err := generatePlan(cmd, settings.Defaults)
	if err != nil {
		return err
	}
	tt, err := loadTimetableForEdit()
	if err != nil {
		return err
	}
	tt, err = generator.Apply(tt, plan, days...)
	if err != nil {
		return err
	}
	if err := document.SaveTimetable(timetablePath, tt); err != nil {
		return err
	}
	for _, w := range days {
		logErrf("%s: %d lessons generated\n", model.DayName(w), plan.Lessons)
	}
	return nil
}

func newCopyDayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy-day <from> <to...|all>",
		Short: "Copy one day's program onto other days",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			from, err := parseDayArg(args[0])
			if err != nil {
				return err
			}
			to, err := parseDaysArg(args[1:])
			if err != nil {
				return err
			}
			tt, err := loadTimetableForEdit()
			if err != nil {
				return err
			}
			tt, err = cascade.CopyDay(tt, from, to...)
			if err != nil {
				return err
			}
			return document.SaveTimetable(timetablePath, tt)
		},
	}
}

var shiftSplit string

func newShiftCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shift <day> <on|off>",
		Short: "Switch a day between a single list and morning/afternoon shifts",
		Args:  cobra.ExactArgs(2),
		RunE:  runShiftCmd,
	}
	cmd.Flags().StringVar(&shiftSplit, "split", model.DefaultSplit, "time the afternoon shift takes over (HH:MM)")
	return cmd
}

func runShiftCmd(cmd *cobra.Command, args []string) error {
	w, err := parseDayArg(args[0])
	if err != nil {
		return err
	}
	on, err := parseSwitch(args[1])
	if err != nil {
		return err
	}
	tt, err := loadTimetableForEdit()
	if err != nil {
		return err
	}
	day := tt.Day(w)
	if on {
		day = cascade.ToShift(day)
		if cmd.Flags().Changed("split") {
			split, err := model.ParseLooseTimeOfDay(shiftSplit)
			if err != nil {
				return err
			}
			if sd, ok := day.(*model.ShiftDay); ok {
				sd.Split = split.String()
			}
		}
	} else {
		day = cascade.ToSimple(day)
	}
	return document.SaveTimetable(timetablePath, cascade.WithDay(tt, w, day))
}
