// Package prefs persists per-user client preferences: the settings blob and
// which detail-screen sections the user has collapsed.
package prefs

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"

	"github.com/cloverhq/clover/pkg/redis"
)

// Settings is the user-tunable client configuration blob.
type Settings struct {
	Theme                     string `json:"theme,omitempty"`
	DefaultPageSize           int    `json:"default_page_size,omitempty"`
	ShowHistoricalConnections bool   `json:"show_historical_connections"`
	DateFormat                string `json:"date_format,omitempty"`
}

// DefaultSettings are the settings a user starts from.
func DefaultSettings() Settings {
	return Settings{
		Theme:                     "system",
		DefaultPageSize:           25,
		ShowHistoricalConnections: true,
	}
}

// Store reads and writes preferences in Redis. Preferences have no TTL; they
// live until the user changes or clears them.
type Store struct {
	client *redis.Client
	logger ectologger.Logger
}

// NewStore creates a preference store over the given Redis client.
func NewStore(client *redis.Client, logger ectologger.Logger) *Store {
	return &Store{client: client, logger: logger}
}

func settingsKey(userID string) string {
	return "clover:prefs:settings:" + userID
}

func collapsedKey(userID string) string {
	return "clover:prefs:collapsed:" + userID
}

// GetSettings returns the user's settings, or the defaults when none are
// stored yet.
func (s *Store) GetSettings(ctx context.Context, userID string) (Settings, error) {
	settings := DefaultSettings()
	found, err := s.client.GetJSON(ctx, settingsKey(userID), &settings)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if !found {
		return DefaultSettings(), nil
	}
	return settings, nil
}

// SaveSettings replaces the user's settings blob.
func (s *Store) SaveSettings(ctx context.Context, userID string, settings Settings) error {
	if err := s.client.SetJSON(ctx, settingsKey(userID), settings, 0); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// CollapsedSections returns which detail sections the user has collapsed,
// keyed by section name. Sections never collapsed are simply absent.
func (s *Store) CollapsedSections(ctx context.Context, userID string) (map[string]bool, error) {
	collapsed := map[string]bool{}
	if _, err := s.client.GetJSON(ctx, collapsedKey(userID), &collapsed); err != nil {
		return nil, fmt.Errorf("failed to load collapsed sections: %w", err)
	}
	return collapsed, nil
}

// SetSectionCollapsed records one section's collapsed state.
func (s *Store) SetSectionCollapsed(ctx context.Context, userID, section string, isCollapsed bool) error {
	collapsed, err := s.CollapsedSections(ctx, userID)
	if err != nil {
		return err
	}
	if isCollapsed {
		collapsed[section] = true
	} else {
		delete(collapsed, section)
	}
	if err := s.client.SetJSON(ctx, collapsedKey(userID), collapsed, 0); err != nil {
		return fmt.Errorf("failed to save collapsed sections: %w", err)
	}
	return nil
}

// Clear removes all stored preferences for a user.
func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, settingsKey(userID), collapsedKey(userID))
}
