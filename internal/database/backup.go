package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"parklot/internal/config"
	"parklot/internal/worker"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/rs/zerolog"
)

// BackupService takes periodic online snapshots of the ledger database
// and prunes snapshots older than the retention window.
type BackupService struct {
	dbPath string
	config config.BackupConfig
	retry  worker.RetryPolicy
	logger *zerolog.Logger
}

func NewBackupService(dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		dbPath: dbPath,
		config: cfg,
		retry:  worker.DefaultRetryPolicy(),
		logger: logger,
	}
}

// Start runs the backup loop until ctx is cancelled. Failed backups are
// retried with backoff before waiting for the next tick.
func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}

	interval := 24 * time.Hour
	if d, err := time.ParseDuration(s.config.Schedule); err == nil && d > 0 {
		interval = d
	} else if s.config.Schedule != "" {
		s.logger.Warn().Str("schedule", s.config.Schedule).Msg("unparsable backup schedule, using 24h")
	}

	s.logger.Info().Dur("interval", interval).Str("path", s.config.StoragePath).Msg("backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.backupWithRetry(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.backupWithRetry(ctx)
			s.CleanupOldBackups()
		}
	}
}

func (s *BackupService) backupWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		err := s.PerformBackup()
		if err == nil {
			return
		}
		s.logger.Error().Err(err).Int("attempt", attempt).Msg("backup failed")
		if attempt < s.retry.MaxAttempts {
			if waitErr := s.retry.Wait(ctx, attempt); waitErr != nil {
				return
			}
		}
	}
}

// PerformBackup writes a consistent snapshot via VACUUM INTO, which is
// safe while writers are active.
func (s *BackupService) PerformBackup() error {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	timestamp := time.Now().UTC().Format("20060102_150405")
	backupPath := filepath.Join(s.config.StoragePath, fmt.Sprintf("parklot_%s.db", timestamp))

	db, err := sql.Open("sqlite3", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	// Single-quote escaping; the path is operator-controlled config.
	escaped := strings.ReplaceAll(backupPath, "'", "''")
	if _, err := db.Exec(fmt.Sprintf("VACUUM INTO '%s'", escaped)); err != nil {
		return fmt.Errorf("vacuum into failed: %w", err)
	}

	s.logger.Info().Str("path", backupPath).Msg("backup completed")
	return nil
}

// CleanupOldBackups removes snapshot files older than the retention
// window.
func (s *BackupService) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), "parklot_") {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("deleting old backup")
			_ = os.Remove(filepath.Join(s.config.StoragePath, file.Name()))
		}
	}
}
