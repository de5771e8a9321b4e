package services

import (
	"strings"
	"sync"

	"github.com/arnold/lifesync-api/internal/clock"
	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/arnold/lifesync-api/internal/tracker"
	"go.uber.org/zap"
)

// Settings holds user preferences, the virtual test date and the push
// device token.
type Settings struct {
	mu    sync.RWMutex
	store tracker.Storage
	clock *clock.Virtual
	log   *zap.SugaredLogger

	prefs       models.Preferences
	deviceToken string
}

func NewSettings(store tracker.Storage, clk *clock.Virtual, log *zap.SugaredLogger) *Settings {
	return &Settings{store: store, clock: clk, log: log, prefs: defaultPreferences()}
}

func defaultPreferences() models.Preferences {
	return models.Preferences{
		Theme:          models.ThemeLight,
		PreferredModel: models.DefaultModel,
		Language:       models.DefaultLanguage,
	}
}

// Load reads preferences from storage and restores the virtual date.
func (s *Settings) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs = defaultPreferences()
	s.loadString(database.KeyTheme, &s.prefs.Theme)
	s.loadString(database.KeyPreferredModel, &s.prefs.PreferredModel)
	s.loadString(database.KeyLanguage, &s.prefs.Language)
	s.loadString(database.KeyAPIKey, &s.prefs.APIKey)
	s.deviceToken = ""
	s.loadString(database.KeyDeviceToken, &s.deviceToken)

	var virtual string
	s.loadString(database.KeyVirtualDate, &virtual)
	if err := s.clock.Set(virtual); err != nil {
		s.log.Warnw("Ignoring stored virtual date", "date", virtual, "error", err)
		s.clock.Clear()
	}
}

func (s *Settings) loadString(key string, dst *string) {
	var v string
	found, err := s.store.Load(key, &v)
	if err != nil {
		s.log.Warnw("Setting unreadable, using default", "key", key, "error", err)
		return
	}
	if found && v != "" {
		*dst = v
	}
}

func (s *Settings) Preferences() models.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.prefs
	p.VirtualDate = s.clock.Override()
	return p
}

func (s *Settings) Update(req models.UpdatePreferencesRequest) (models.Preferences, error) {
	if err := tracker.Validate(req); err != nil {
		return models.Preferences{}, err
	}

	s.mu.Lock()
	if req.Theme != nil {
		s.prefs.Theme = *req.Theme
		s.save(database.KeyTheme, s.prefs.Theme)
	}
	if req.PreferredModel != nil {
		s.prefs.PreferredModel = strings.TrimSpace(*req.PreferredModel)
		s.save(database.KeyPreferredModel, s.prefs.PreferredModel)
	}
	if req.Language != nil {
		s.prefs.Language = *req.Language
		s.save(database.KeyLanguage, s.prefs.Language)
	}
	if req.APIKey != nil {
		s.prefs.APIKey = strings.TrimSpace(*req.APIKey)
		s.save(database.KeyAPIKey, s.prefs.APIKey)
	}
	s.mu.Unlock()

	return s.Preferences(), nil
}

// SetVirtualDate moves "today" to date for testing day rollovers.
func (s *Settings) SetVirtualDate(date string) error {
	if err := tracker.Validate(models.VirtualDateRequest{Date: date}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.clock.Set(date); err != nil {
		return err
	}
	s.save(database.KeyVirtualDate, date)
	s.log.Infow("Virtual date set", "date", date)
	return nil
}

func (s *Settings) ClearVirtualDate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Clear()
	if err := s.store.Remove(database.KeyVirtualDate); err != nil {
		s.log.Errorw("Failed to clear virtual date", "error", err)
	}
	s.log.Infow("Virtual date cleared")
}

func (s *Settings) SetDeviceToken(token string) error {
	if err := tracker.Validate(models.DeviceTokenRequest{Token: token}); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deviceToken = strings.TrimSpace(token)
	s.save(database.KeyDeviceToken, s.deviceToken)
	return nil
}

func (s *Settings) DeviceToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceToken
}

func (s *Settings) save(key, value string) {
	if err := s.store.Save(key, value); err != nil {
		s.log.Errorw("Failed to save setting", "key", key, "error", err)
	}
}
