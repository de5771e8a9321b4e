// Package backup moves the whole data set in and out as a single JSON
// document.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/arnold/lifesync-api/internal/tracker"
)

// LegacyDataVersion is assumed for documents and stores that predate
// versioning.
const LegacyDataVersion = "3"

var ErrNotObject = errors.New("backup must be a JSON object")

type Document struct {
	Goals          json.RawMessage `json:"goals"`
	Journal        json.RawMessage `json:"journal"`
	ChatSessions   json.RawMessage `json:"chat_sessions"`
	Theme          string          `json:"theme"`
	PreferredModel string          `json:"preferred_model"`
	APIKey         string          `json:"api_key"`
	DataVersion    string          `json:"data_version"`
	Language       string          `json:"language"`
}

var emptyList = json.RawMessage("[]")

type listKey struct {
	field string
	key   string
}

type stringKey struct {
	field    string
	key      string
	fallback string
}

var (
	listKeys = []listKey{
		{"goals", database.KeyGoals},
		{"journal", database.KeyJournal},
		{"chat_sessions", database.KeyChatSessions},
	}
	stringKeys = []stringKey{
		{"theme", database.KeyTheme, models.ThemeLight},
		{"preferred_model", database.KeyPreferredModel, models.DefaultModel},
		{"api_key", database.KeyAPIKey, ""},
		{"data_version", database.KeyDataVersion, LegacyDataVersion},
		{"language", database.KeyLanguage, models.DefaultLanguage},
	}
)

// Export reads every exported key from store, substituting defaults for
// missing or unreadable values.
func Export(store tracker.Storage) Document {
	lists := map[string]json.RawMessage{}
	for _, k := range listKeys {
		var raw json.RawMessage
		found, err := store.Load(k.key, &raw)
		if err != nil || !found || isNull(raw) {
			raw = emptyList
		}
		lists[k.field] = raw
	}

	strs := map[string]string{}
	for _, k := range stringKeys {
		var v string
		found, err := store.Load(k.key, &v)
		if err != nil || !found || v == "" {
			v = k.fallback
		}
		strs[k.field] = v
	}

	return Document{
		Goals:          lists["goals"],
		Journal:        lists["journal"],
		ChatSessions:   lists["chat_sessions"],
		Theme:          strs["theme"],
		PreferredModel: strs["preferred_model"],
		APIKey:         strs["api_key"],
		DataVersion:    strs["data_version"],
		Language:       strs["language"],
	}
}

// Import overwrites every exported key with the document's value, or with
// the default when the document lacks it. Callers reload in-memory state
// afterwards.
func Import(store tracker.Storage, data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return ErrNotObject
	}

	for _, k := range listKeys {
		raw, ok := doc[k.field]
		if !ok || isNull(raw) {
			raw = emptyList
		}
		if err := store.Save(k.key, raw); err != nil {
			return fmt.Errorf("import %s: %w", k.field, err)
		}
	}

	for _, k := range stringKeys {
		v := k.fallback
		if raw, ok := doc[k.field]; ok {
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				v = s
			}
		}
		if err := store.Save(k.key, v); err != nil {
			return fmt.Errorf("import %s: %w", k.field, err)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
