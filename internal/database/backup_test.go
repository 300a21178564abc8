package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"parklot/internal/config"
	"parklot/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformBackup(t *testing.T) {
	logger := zerolog.New(io.Discard)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "parklot.db")

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	require.NoError(t, db.CreateFloor(context.Background(), &models.Floor{Name: "G", FloorNumber: 1}))
	require.NoError(t, db.Close())

	backupDir := filepath.Join(dir, "backups")
	svc := NewBackupService(dbPath, config.BackupConfig{
		Enabled:     true,
		StoragePath: backupDir,
	}, &logger)

	require.NoError(t, svc.PerformBackup())

	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// The snapshot is a valid database containing the seeded floor.
	restored, err := NewDB(filepath.Join(backupDir, entries[0].Name()), &logger)
	require.NoError(t, err)
	defer restored.Close()

	floors, err := restored.GetFloors(context.Background())
	require.NoError(t, err)
	assert.Len(t, floors, 1)
}

func TestCleanupOldBackups(t *testing.T) {
	logger := zerolog.New(io.Discard)
	backupDir := t.TempDir()

	oldFile := filepath.Join(backupDir, "parklot_20200101_000000.db")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
	oldTime := time.Now().AddDate(0, 0, -30)
	require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))

	freshFile := filepath.Join(backupDir, "parklot_20991231_000000.db")
	require.NoError(t, os.WriteFile(freshFile, []byte("fresh"), 0o644))

	unrelated := filepath.Join(backupDir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep"), 0o644))
	require.NoError(t, os.Chtimes(unrelated, oldTime, oldTime))

	svc := NewBackupService("unused.db", config.BackupConfig{
		Enabled:       true,
		StoragePath:   backupDir,
		RetentionDays: 7,
	}, &logger)

	svc.CleanupOldBackups()

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, freshFile)
	// Files outside the snapshot naming scheme are left alone.
	assert.FileExists(t, unrelated)
}
