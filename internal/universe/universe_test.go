package universe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/database"
)

func TestStatic(t *testing.T) {
	src := NewStatic([]string{" TCS.NS ", "", "HAL.NS"})

	symbols, err := src.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS.NS", "HAL.NS"}, symbols)

	symbols[0] = "MUTATED"
	again, _ := src.Symbols(context.Background())
	assert.Equal(t, "TCS.NS", again[0])
}

func TestStatic_Empty(t *testing.T) {
	symbols, err := NewStatic(nil).Symbols(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, symbols)
	assert.Empty(t, symbols)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tickers:\n  - INFY.NS\n  - RELIANCE.NS\n"), 0o600))

	symbols, err := NewFile(path).Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"INFY.NS", "RELIANCE.NS"}, symbols)

	require.NoError(t, os.WriteFile(path, []byte("symbols:\n  - INFY.NS\n"), 0o600))
	_, err = NewFile(path).Symbols(context.Background())
	assert.Error(t, err)

	_, err = NewFile(filepath.Join(t.TempDir(), "missing.yaml")).Symbols(context.Background())
	assert.Error(t, err)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(&config.Config{Universe: config.UniverseConfig{Source: "config", Tickers: config.DefaultTickers}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "config", src.Name())
	symbols, _ := src.Symbols(context.Background())
	assert.Len(t, symbols, 7)

	src, err = NewSource(&config.Config{Universe: config.UniverseConfig{Source: "file", File: "u.yaml"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "file", src.Name())

	_, err = NewSource(&config.Config{Universe: config.UniverseConfig{Source: "database"}}, nil)
	assert.Error(t, err)

	_, err = NewSource(&config.Config{Universe: config.UniverseConfig{Source: "s3"}}, nil)
	assert.Error(t, err)
}

func TestRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db.Pool)
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.Seed(ctx, config.DefaultTickers))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	symbols, err := repo.Symbols(ctx)
	require.NoError(t, err)
	assert.Len(t, symbols, n)
}
