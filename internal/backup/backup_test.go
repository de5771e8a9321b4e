package backup

import (
	"encoding/json"
	"testing"

	"github.com/arnold/lifesync-api/internal/database"
	"github.com/arnold/lifesync-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportDefaults(t *testing.T) {
	doc := Export(database.NewMemoryStore())

	assert.JSONEq(t, `[]`, string(doc.Goals))
	assert.JSONEq(t, `[]`, string(doc.Journal))
	assert.JSONEq(t, `[]`, string(doc.ChatSessions))
	assert.Equal(t, models.ThemeLight, doc.Theme)
	assert.Equal(t, models.DefaultModel, doc.PreferredModel)
	assert.Equal(t, "", doc.APIKey)
	assert.Equal(t, LegacyDataVersion, doc.DataVersion)
	assert.Equal(t, models.DefaultLanguage, doc.Language)
}

func TestExportReadsStoredValues(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.Save(database.KeyGoals, []models.Goal{{ID: "g1", Title: "Run"}}))
	require.NoError(t, store.Save(database.KeyTheme, "dark"))
	require.NoError(t, store.Save(database.KeyDataVersion, models.DataVersion))
	store.SetRaw(database.KeyJournal, []byte("{broken"))

	doc := Export(store)
	var goals []models.Goal
	require.NoError(t, json.Unmarshal(doc.Goals, &goals))
	require.Len(t, goals, 1)
	assert.Equal(t, "g1", goals[0].ID)
	assert.Equal(t, "dark", doc.Theme)
	assert.Equal(t, models.DataVersion, doc.DataVersion)
	assert.JSONEq(t, `[]`, string(doc.Journal))

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"chat_sessions":[]`)
	assert.Contains(t, string(raw), `"preferred_model"`)
}

func TestImportOverwritesEveryKey(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.Save(database.KeyTheme, "dark"))
	require.NoError(t, store.Save(database.KeyAPIKey, "old-key"))
	require.NoError(t, store.Save(database.KeyJournal, []models.JournalEntry{{ID: "old"}}))

	require.NoError(t, Import(store, []byte(`{"goals":[{"id":"g1","title":"Run"}],"language":"en","theme":""}`)))

	var goals []models.Goal
	found, err := store.Load(database.KeyGoals, &goals)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "g1", goals[0].ID)

	var entries []models.JournalEntry
	_, err = store.Load(database.KeyJournal, &entries)
	require.NoError(t, err)
	assert.Empty(t, entries)

	var s string
	_, _ = store.Load(database.KeyTheme, &s)
	assert.Equal(t, models.ThemeLight, s)
	_, _ = store.Load(database.KeyAPIKey, &s)
	assert.Equal(t, "", s)
	_, _ = store.Load(database.KeyLanguage, &s)
	assert.Equal(t, "en", s)
	_, _ = store.Load(database.KeyDataVersion, &s)
	assert.Equal(t, LegacyDataVersion, s)
}

func TestImportRejectsNonObjects(t *testing.T) {
	store := database.NewMemoryStore()
	require.NoError(t, store.Save(database.KeyTheme, "dark"))

	for _, in := range []string{`[]`, `"text"`, `null`, `42`, `{not json`} {
		assert.ErrorIs(t, Import(store, []byte(in)), ErrNotObject, in)
	}

	var theme string
	_, _ = store.Load(database.KeyTheme, &theme)
	assert.Equal(t, "dark", theme)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := database.NewMemoryStore()
	require.NoError(t, src.Save(database.KeyGoals, []models.Goal{{ID: "g1"}}))
	require.NoError(t, src.Save(database.KeyLanguage, "en"))

	raw, err := json.Marshal(Export(src))
	require.NoError(t, err)

	dst := database.NewMemoryStore()
	require.NoError(t, Import(dst, raw))
	assert.Equal(t, Export(src), Export(dst))
}
