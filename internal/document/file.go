package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/verte-zerg/schoolbell/internal/model"
)

// LoadTimetable reads the timetable at path. A missing document is
// created from DefaultTimetable. On any failure the default is returned
// together with the error so the caller can log it and keep running.
func LoadTimetable(path string) (*model.Timetable, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		tt := DefaultTimetable()
		if err := SaveTimetable(path, tt); err != nil {
			return tt, err
		}
		return tt, nil
	}
	if err != nil {
		return DefaultTimetable(), fmt.Errorf("failed to read timetable: %w", err)
	}
	tt, err := DecodeTimetable(data)
	if err != nil {
		return DefaultTimetable(), fmt.Errorf("%s: %w", path, err)
	}
	return tt, nil
}

// SaveTimetable atomically replaces the document at path.
func SaveTimetable(path string, tt *model.Timetable) error {
	data, err := EncodeTimetable(tt)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// LoadSettings reads the settings at path. A missing document yields
// DefaultSettings without error. A broken one yields whatever
// DecodeSettings could keep, with the error.
func LoadSettings(path string) (model.Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), fmt.Errorf("failed to read settings: %w", err)
	}
	s, err := DecodeSettings(data)
	if err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// SaveSettings atomically replaces the settings document at path.
func SaveSettings(path string, s model.Settings) error {
	data, err := EncodeSettings(s)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create document dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp document: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close document: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}
	return nil
}
