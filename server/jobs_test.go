package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Daskott/scamguard/server/work"
	"github.com/stretchr/testify/assert"
)

func TestJobsWithoutBackup(t *testing.T) {
	wpa := work.NewWorkerAdapter("UTC", 1)

	assert.Nil(t, registerJobHandlers(wpa, nil))
	assert.Nil(t, enqueueJobs(wpa, nil, ""))
}

func TestRestoreSkipsExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scamguard.db")
	assert.Nil(t, os.WriteFile(dbPath, []byte("local"), 0600))

	// storage is never touched when a local database exists
	assert.Nil(t, restoreSqliteDb(nil, dbPath))

	content, err := os.ReadFile(dbPath)
	assert.Nil(t, err)
	assert.Equal(t, "local", string(content))
}

func TestResolveStorePath(t *testing.T) {
	assert.Equal(t, "", resolveStorePath("", false))
	assert.Equal(t, "/var/lib/scamguard.db", resolveStorePath("/var/lib/scamguard.db", false))

	wd, _ := os.Getwd()
	assert.Equal(t, filepath.Join(wd, "dev", "scamguard.db"), resolveStorePath("scamguard.db", true))
	os.RemoveAll(filepath.Join(wd, "dev"))
}

func TestShutdownTimeoutOutlastsSends(t *testing.T) {
	sendTimeout := 10 * time.Second
	assert.True(t, shutdownTimeout(sendTimeout) > sendTimeout)
}
