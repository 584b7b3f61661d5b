package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) (Client, string) {
	path := filepath.Join(t.TempDir(), "nested", "storage.db")

	c, err := NewClient(path)
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}

	t.Cleanup(func() {
		c.Close()
	})

	return c, path
}

func TestConnect(t *testing.T) {
	c, path := setupStorage(t)
	assert.NotNil(t, c)
	assert.FileExists(t, path)
}

func TestGetMissingItem(t *testing.T) {
	c, _ := setupStorage(t)

	value, ok, err := c.GetItem("token")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSetItemsOverwrites(t *testing.T) {
	c, _ := setupStorage(t)

	require.NoError(t, c.SetItems(map[string]string{"token": "first", "user": "{}"}))
	require.NoError(t, c.SetItems(map[string]string{"token": "second"}))

	value, ok, err := c.GetItem("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", value)

	value, ok, err = c.GetItem("user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", value)
}

func TestRemoveItems(t *testing.T) {
	c, _ := setupStorage(t)

	require.NoError(t, c.SetItems(map[string]string{"token": "abc", "user": "{}", "theme": "dark"}))
	require.NoError(t, c.RemoveItems("token", "user", "never-set"))

	for _, key := range []string{"token", "user"} {
		_, ok, err := c.GetItem(key)
		require.NoError(t, err)
		assert.False(t, ok, "key %s should be gone", key)
	}

	value, ok, err := c.GetItem("theme")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "dark", value)
}

func TestItemsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")

	first, err := NewClient(path)
	require.NoError(t, err)
	require.NoError(t, first.SetItems(map[string]string{"token": "persisted"}))
	first.Close()

	second, err := NewClient(path)
	require.NoError(t, err)
	defer second.Close()

	value, ok, err := second.GetItem("token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", value)
}

func TestMigrateDownAndUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")

	c, err := NewClient(path)
	require.NoError(t, err)
	require.NoError(t, c.SetItems(map[string]string{"token": "gone after down"}))
	c.Close()

	db, err := Open(path)
	require.NoError(t, err)
	m, err := NewMigrator(db)
	require.NoError(t, err)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	require.NoError(t, m.Down())
	srcErr, dbErr := m.Close()
	require.NoError(t, srcErr)
	require.NoError(t, dbErr)

	reopened, err := NewClient(path)
	require.NoError(t, err)
	defer reopened.Close()

	_, ok, err := reopened.GetItem("token")
	require.NoError(t, err)
	assert.False(t, ok)
}
