package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Daskott/scamguard/server/gstorage"
	"github.com/Daskott/scamguard/server/store"
	"github.com/Daskott/scamguard/server/work"
	"github.com/Daskott/scamguard/utils"
	"github.com/pkg/errors"
)

const BACKUP_SQLITE_DB_HANDLER = "backupSqliteDb"

// sqliteBackup copies the sqlite store to google cloud storage
type sqliteBackup struct {
	store   *store.SQLiteStore
	storage *gstorage.GStorage
}

func (b *sqliteBackup) objectName() string {
	return b.storage.ObjectName(b.store.Path())
}

// backupSqliteDb snapshots the live database into a temp file & uploads it
func (b *sqliteBackup) backupSqliteDb(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	tmpDir, err := os.MkdirTemp("", "scamguard-backup-")
	if err != nil {
		return nil, errors.Wrap(err, "backupSqliteDb")
	}
	defer os.RemoveAll(tmpDir)

	snapshotPath := filepath.Join(tmpDir, filepath.Base(b.store.Path()))
	if err := b.store.Snapshot(ctx, snapshotPath); err != nil {
		return nil, errors.Wrap(err, "backupSqliteDb")
	}

	objectName := b.objectName()
	if err := b.storage.UploadFile(ctx, snapshotPath, objectName); err != nil {
		return nil, errors.Wrap(err, "backupSqliteDb")
	}

	return objectName, nil
}

// restoreSqliteDb downloads the last backup to 'dbPath' unless a local
// database already exists
func restoreSqliteDb(storage *gstorage.GStorage, dbPath string) error {
	if utils.FileExist(dbPath) {
		return nil
	}

	if err := utils.EnsureParentDir(dbPath); err != nil {
		return errors.Wrap(err, "restoreSqliteDb")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	err := storage.DownloadFile(ctx, storage.ObjectName(dbPath), dbPath)
	if err == gstorage.ErrObjectNotExist {
		logg.Info("No sqlite backup found, starting with a fresh database")
		return nil
	}

	return err
}

func registerJobHandlers(wpa *work.WorkerPoolAdapter, backup *sqliteBackup) error {
	if backup == nil {
		return nil
	}

	return wpa.Register(BACKUP_SQLITE_DB_HANDLER, backup.backupSqliteDb)
}

func enqueueJobs(wpa *work.WorkerPoolAdapter, backup *sqliteBackup, schedule string) error {
	if backup == nil {
		return nil
	}

	err := wpa.PeriodicallyPerform(schedule, work.JobParams{
		Name:    BACKUP_SQLITE_DB_HANDLER,
		Handler: BACKUP_SQLITE_DB_HANDLER,
		Args:    map[string]interface{}{},
	})
	if err != nil {
		return fmt.Errorf("unable to schedule %v: %v", BACKUP_SQLITE_DB_HANDLER, err)
	}

	return nil
}
