package view

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/syndic/internal/export"
	"github.com/MrJamesThe3rd/syndic/internal/tracker"
	"github.com/MrJamesThe3rd/syndic/internal/tracker/memstore"
)

func TestWriteExports(t *testing.T) {
	ctx := context.Background()
	svc := tracker.NewService(memstore.New())

	_, err := svc.AddInvestor(ctx, "albert")
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC)

	files, err := writeExports(ctx, export.NewService(svc), svc, dir, now)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, filepath.Join(dir, "20250119_portfolio.xlsx"), files[0])
	assert.FileExists(t, files[0])

	text, err := os.ReadFile(files[1])
	require.NoError(t, err)
	assert.Contains(t, string(text), "Statement for albert as of 2025-01-19")
	assert.Contains(t, string(text), "No positions.")
}
