package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mealtracker/internal/adapter/memory"
	"mealtracker/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_MemoryWithoutDatabaseURL(t *testing.T) {
	st, err := openStore(config.Default(), nil, true)
	require.NoError(t, err)
	defer st.Close()

	_, ok := st.repo.(*memory.DB)
	assert.True(t, ok)
	assert.NotNil(t, st.notifier)
	assert.NotNil(t, st.sessions)
}

func TestNewServices_SeedsMealsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meals.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Oats":{"calories":150,"protein":5}}`), 0o600))

	c := config.Default()
	c.MealsFile = path
	c.SessionHours = 2
	st, err := openStore(c, nil, false)
	require.NoError(t, err)
	defer st.Close()

	svc, err := newServices(c, st, nil)
	require.NoError(t, err)
	meal, err := svc.library.Find(context.Background(), 1, "Oats")
	require.NoError(t, err)
	require.NotNil(t, meal)
	assert.Equal(t, 150.0, meal.Macros.Calories)
	assert.Equal(t, 2.0, svc.auth.TTL().Hours())

	c.MealsFile = filepath.Join(t.TempDir(), "missing.json")
	_, err = newServices(c, st, nil)
	assert.Error(t, err)
}

func TestExportCommand_WritesHeader(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	out := filepath.Join(t.TempDir(), "out.csv")
	rootCmd.SetArgs([]string{"export", "--user", "1", "--out", out})
	require.NoError(t, rootCmd.Execute())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "date,"))
}

func TestImportCommand_RejectsMissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{"import", "--file", filepath.Join(t.TempDir(), "nope.json")})
	assert.Error(t, rootCmd.Execute())
}
