package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"rsiassist/internal/core/model"
)

// SettingsFileName is the name of the local settings document.
const SettingsFileName = "settings.yaml"

const (
	minOverlayOpacity = 0.7
	maxOverlayOpacity = 0.95
)

// Preferences are settings that only exist on this machine and never reach the timer service.
type Preferences struct {
	OverlayOpacity float64
	Fullscreen     bool
	LaunchAtLogin  bool
}

// DefaultPreferences returns the default local preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		OverlayOpacity: 0.85,
		Fullscreen:     true,
		LaunchAtLogin:  false,
	}
}

type yamlDocument struct {
	BreakConfig   *model.PartialBreakConfig `yaml:"break_config,omitempty"`
	Overlay       *yamlOverlay              `yaml:"overlay,omitempty"`
	LaunchAtLogin *bool                     `yaml:"launch_at_login,omitempty"`
}

type yamlOverlay struct {
	Opacity    float64 `yaml:"opacity"`
	Fullscreen bool    `yaml:"fullscreen"`
}

// SettingsStore persists the settings document as YAML.
// The break config lives under the break_config key; a missing key means it was never saved.
type SettingsStore struct {
	mu   sync.Mutex
	path string
}

// NewSettingsStore returns a store rooted at dir.
func NewSettingsStore(dir string) *SettingsStore {
	return &SettingsStore{path: filepath.Join(dir, SettingsFileName)}
}

// Path returns the location of the settings document.
func (store *SettingsStore) Path() string {
	return store.path
}

// LoadBreakConfig returns the saved break config and whether one exists.
func (store *SettingsStore) LoadBreakConfig() (model.PartialBreakConfig, bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		return model.PartialBreakConfig{}, false, err
	}
	if document.BreakConfig == nil || document.BreakConfig.IsEmpty() {
		return model.PartialBreakConfig{}, false, nil
	}
	return *document.BreakConfig, true, nil
}

// SaveBreakConfig replaces the saved break config.
func (store *SettingsStore) SaveBreakConfig(config model.BreakConfig) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("save break config: %w", err)
	}
	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		return err
	}
	partial := config.Partial()
	document.BreakConfig = &partial
	return store.writeLocked(document)
}

// LoadPreferences returns the local preferences, falling back to defaults per field.
func (store *SettingsStore) LoadPreferences() (Preferences, error) {
	preferences := DefaultPreferences()
	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		return preferences, err
	}
	if document.Overlay != nil {
		if document.Overlay.Opacity >= minOverlayOpacity && document.Overlay.Opacity <= maxOverlayOpacity {
			preferences.OverlayOpacity = document.Overlay.Opacity
		}
		preferences.Fullscreen = document.Overlay.Fullscreen
	}
	if document.LaunchAtLogin != nil {
		preferences.LaunchAtLogin = *document.LaunchAtLogin
	}
	return preferences, nil
}

// SavePreferences replaces the local preferences, keeping the break config untouched.
func (store *SettingsStore) SavePreferences(preferences Preferences) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	document, err := store.readLocked()
	if err != nil {
		return err
	}
	opacity := preferences.OverlayOpacity
	if opacity < minOverlayOpacity {
		opacity = minOverlayOpacity
	}
	if opacity > maxOverlayOpacity {
		opacity = maxOverlayOpacity
	}
	launchAtLogin := preferences.LaunchAtLogin
	document.Overlay = &yamlOverlay{Opacity: opacity, Fullscreen: preferences.Fullscreen}
	document.LaunchAtLogin = &launchAtLogin
	return store.writeLocked(document)
}

func (store *SettingsStore) readLocked() (yamlDocument, error) {
	var document yamlDocument
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document, nil
		}
		return document, fmt.Errorf("read settings file: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &document); err != nil {
		return yamlDocument{}, fmt.Errorf("parse settings yaml: %w", err)
	}
	return document, nil
}

func (store *SettingsStore) writeLocked(document yamlDocument) error {
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	serialized, err := yaml.Marshal(document)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	tempPath := store.path + ".tmp"
	if err := os.WriteFile(tempPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tempPath, store.path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}
