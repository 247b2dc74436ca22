package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Daskott/scamguard/server/alerts"
	"github.com/Daskott/scamguard/server/classifier"
	"github.com/Daskott/scamguard/server/dispatch"
	"github.com/Daskott/scamguard/server/gstorage"
	"github.com/Daskott/scamguard/server/logger"
	"github.com/Daskott/scamguard/server/store"
	"github.com/Daskott/scamguard/server/twilio"
	"github.com/Daskott/scamguard/server/work"
	"github.com/Daskott/scamguard/shared"
	"github.com/spf13/viper"
)

var logg = logger.NewLogger()

// Start runs the scamguard server until it receives SIGINT or SIGTERM
func Start(config *viper.Viper, devMode bool) {
	serverConfig, err := shared.ParseServerConfig(config)
	fatalOnError(err)

	logg = logger.NewLoggerWithLevel(serverConfig.Log.Level)

	var backupStorage *gstorage.GStorage
	storageConfig := serverConfig.Google.Storage
	if serverConfig.Store.Driver == "sqlite" && storageConfig.EnableSqliteBackup {
		backupStorage, err = gstorage.NewGStorage(
			context.Background(),
			serverConfig.Google.ApplicationCredentials,
			storageConfig.Bucket,
			storageConfig.Prefix,
		)
		fatalOnError(err)
	}

	s, sqliteStore := newStore(serverConfig.Store, devMode, backupStorage)

	var backup *sqliteBackup
	if backupStorage != nil {
		backup = &sqliteBackup{store: sqliteStore, storage: backupStorage}
	}

	gateway := twilio.NewClient(serverConfig.Twilio)
	if !gateway.Configured() {
		logg.Warn("Twilio credentials are missing, sms alerts will be recorded as not sent")
	}

	workerPool := work.NewWorkerAdapter("UTC", serverConfig.Dispatch.Concurrency)

	dispatcher, err := dispatch.NewDispatcher(s, gateway, workerPool, dispatch.Config{
		DefaultCountryCode: serverConfig.Dispatch.DefaultCountryCode,
		SendTimeout:        serverConfig.Dispatch.SendTimeout,
	})
	fatalOnError(err)

	service := alerts.NewService(s, classifier.NewKeywordClassifier(serverConfig.Classifier.Keywords), dispatcher)

	fatalOnError(registerJobHandlers(workerPool, backup))
	fatalOnError(enqueueJobs(workerPool, backup, storageConfig.SqliteBackupSchedule))
	fatalOnError(workerPool.Start())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%v", serverConfig.Listener.Port),
		Handler:      newRouter(&handlers{service: service, smsValidator: gateway}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: serverConfig.Dispatch.SendTimeout + 15*time.Second,
	}

	go serve(server)

	// Wait for an interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cleanup(workerPool, server, s, backup, serverConfig.Dispatch.SendTimeout)
}

// newStore opens the store chosen by 'config'. The sqlite store is also
// returned on its own when in use, for backups.
func newStore(config shared.StoreConfig, devMode bool, backupStorage *gstorage.GStorage) (store.Store, *store.SQLiteStore) {
	if config.Driver != "sqlite" {
		logg.Info("Using in-memory store, data will be lost on shutdown")
		return store.NewMemoryStore(), nil
	}

	dbPath := resolveStorePath(config.Path, devMode)
	if backupStorage != nil {
		fatalOnError(restoreSqliteDb(backupStorage, dbPath))
	}

	sqliteStore, err := store.NewSQLiteStore(dbPath)
	fatalOnError(err)

	logg.Infof("Using sqlite store at %v", dbPath)
	return sqliteStore, sqliteStore
}
