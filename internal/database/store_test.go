package database

import (
	"fmt"
	"testing"

	"github.com/arnold/lifesync-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

type kvStore interface {
	Load(key string, dst any) (bool, error)
	Save(key string, v any) error
	Remove(key string) error
}

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := Open(dsn, logger.Silent)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.KVEntry{}))
	return NewStore(db)
}

func exerciseStore(t *testing.T, s kvStore) {
	var goals []models.Goal
	found, err := s.Load(KeyGoals, &goals)
	require.NoError(t, err)
	assert.False(t, found)

	in := []models.Goal{{ID: "g1", Title: "Read", Type: models.GoalQuantitative, Target: 10}}
	require.NoError(t, s.Save(KeyGoals, in))

	found, err = s.Load(KeyGoals, &goals)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, goals, 1)
	assert.Equal(t, "Read", goals[0].Title)

	in[0].Title = "Read more"
	require.NoError(t, s.Save(KeyGoals, in))
	found, err = s.Load(KeyGoals, &goals)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Read more", goals[0].Title)

	require.NoError(t, s.Save(KeyTheme, "dark"))
	var theme string
	_, err = s.Load(KeyTheme, &theme)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)

	require.NoError(t, s.Remove(KeyGoals))
	found, err = s.Load(KeyGoals, &goals)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newSQLiteStore(t))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestLoadReportsCorruptValues(t *testing.T) {
	m := NewMemoryStore()
	m.SetRaw(KeyJournal, []byte("{not json"))

	var entries []models.JournalEntry
	found, err := m.Load(KeyJournal, &entries)
	assert.Error(t, err)
	assert.False(t, found)

	s := newSQLiteStore(t)
	require.NoError(t, s.db.Create(&models.KVEntry{Key: KeyJournal, Value: "[1,"}).Error)
	found, err = s.Load(KeyJournal, &entries)
	assert.Error(t, err)
	assert.False(t, found)
}
