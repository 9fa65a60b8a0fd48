package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"clickguardian/internal/core/counter"
	"clickguardian/internal/core/model"
	"clickguardian/internal/logging"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultStateFile is resolved against the working directory, which main pins to
// the executable's directory.
const DefaultStateFile = "config.yaml"

// Document is everything persisted in the state file.
type Document struct {
	Config  model.Config
	Counter counter.State
}

// yamlState mirrors the on-disk layout. Pointers distinguish missing keys from zero values.
type yamlState struct {
	ClickLimit        *int  `yaml:"clickLimit"`
	UnlockTime        *int  `yaml:"unlockTime"`
	BlockClicks       *bool `yaml:"blockClicks"`
	ShowTrayIcon      *bool `yaml:"showTrayIcon"`
	ShowExitButton    *bool `yaml:"showExitButton"`
	GracePeriod       *int  `yaml:"gracePeriod"`
	CurrentClickCount *int  `yaml:"currentClickCount"`
	LastResetYear     *int  `yaml:"lastResetYear"`
	LastResetMonth    *int  `yaml:"lastResetMonth"`
	RegisterForReboot *bool `yaml:"registerForReboot"`
	RedirectOnUnlock  *bool `yaml:"redirectOnUnlock"`
}

// Store reads and writes the state file.
type Store struct {
	path   string
	logger *zap.Logger
	clock  func() time.Time
}

// NewStore creates a Store for path. An empty path selects DefaultStateFile.
func NewStore(path string, logger *zap.Logger) *Store {
	if path == "" {
		path = DefaultStateFile
	}
	logger = logging.OrNop(logger)
	return &Store{path: path, logger: logger, clock: time.Now}
}

// Path returns the state file location.
func (store *Store) Path() string {
	return store.path
}

// DefaultDocument returns the defaults stamped with the month of now.
func DefaultDocument(now time.Time) Document {
	config := model.DefaultConfig()
	return Document{
		Config:  config,
		Counter: counter.New(config.ClickLimit, config.GracePeriod, now),
	}
}

// Load returns the persisted document. It never fails: a missing file is created with
// defaults and an unreadable or malformed file is logged and replaced by defaults in memory.
func (store *Store) Load() Document {
	document, err := store.Read()
	if err == nil {
		return document
	}

	defaults := DefaultDocument(store.clock())
	if errors.Is(err, os.ErrNotExist) {
		store.logger.Info("state file missing, writing defaults", zap.String("path", store.path))
		if saveErr := store.Save(defaults); saveErr != nil {
			store.logger.Error("write default state", zap.Error(saveErr))
		}
		return defaults
	}

	store.logger.Warn("state file unusable, using defaults", zap.String("path", store.path), zap.Error(err))
	return defaults
}

// Read parses the state file, returning os.ErrNotExist (wrapped) when it is absent.
func (store *Store) Read() (Document, error) {
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		return Document{}, fmt.Errorf("read state file: %w", err)
	}

	var fileData yamlState
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return Document{}, fmt.Errorf("parse state yaml: %w", err)
	}

	return applyYamlState(fileData, store.clock()), nil
}

// Save writes the document atomically through a temporary file.
func (store *Store) Save(document Document) error {
	if dir := filepath.Dir(store.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}

	serialized, err := yaml.Marshal(toYamlState(document))
	if err != nil {
		return fmt.Errorf("marshal state yaml: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(store.path), filepath.Base(store.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(serialized); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmpName, store.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func toYamlState(document Document) yamlState {
	config := document.Config
	state := document.Counter
	unlockMillis := int(config.UnlockDuration / time.Millisecond)
	month := int(state.ResetMonth)
	return yamlState{
		ClickLimit:        &config.ClickLimit,
		UnlockTime:        &unlockMillis,
		BlockClicks:       &config.BlockClicks,
		ShowTrayIcon:      &config.ShowTrayIcon,
		ShowExitButton:    &config.ShowExitButton,
		GracePeriod:       &config.GracePeriod,
		CurrentClickCount: &state.Count,
		LastResetYear:     &state.ResetYear,
		LastResetMonth:    &month,
		RegisterForReboot: &config.RegisterForReboot,
		RedirectOnUnlock:  &config.RedirectOnUnlock,
	}
}

func applyYamlState(fileData yamlState, now time.Time) Document {
	config := model.DefaultConfig()

	if fileData.ClickLimit != nil && *fileData.ClickLimit > 0 {
		config.ClickLimit = *fileData.ClickLimit
	}
	if fileData.UnlockTime != nil && *fileData.UnlockTime > 0 {
		config.UnlockDuration = time.Duration(*fileData.UnlockTime) * time.Millisecond
	}
	if fileData.GracePeriod != nil && *fileData.GracePeriod >= 0 {
		config.GracePeriod = *fileData.GracePeriod
	}
	if fileData.BlockClicks != nil {
		config.BlockClicks = *fileData.BlockClicks
	}
	if fileData.ShowTrayIcon != nil {
		config.ShowTrayIcon = *fileData.ShowTrayIcon
	}
	if fileData.ShowExitButton != nil {
		config.ShowExitButton = *fileData.ShowExitButton
	}
	if fileData.RegisterForReboot != nil {
		config.RegisterForReboot = *fileData.RegisterForReboot
	}
	if fileData.RedirectOnUnlock != nil {
		config.RedirectOnUnlock = *fileData.RedirectOnUnlock
	}
	config = config.Normalized()

	state := counter.New(config.ClickLimit, config.GracePeriod, now)
	validStamp := fileData.LastResetYear != nil && *fileData.LastResetYear > 0 &&
		fileData.LastResetMonth != nil && *fileData.LastResetMonth >= 1 && *fileData.LastResetMonth <= 12
	if validStamp {
		state.ResetYear = *fileData.LastResetYear
		state.ResetMonth = time.Month(*fileData.LastResetMonth)
		if fileData.CurrentClickCount != nil && *fileData.CurrentClickCount > 0 {
			state.Count = *fileData.CurrentClickCount
		}
	}

	return Document{Config: config, Counter: state}
}
