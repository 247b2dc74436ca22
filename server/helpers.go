package server

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Daskott/scamguard/server/store"
	"github.com/Daskott/scamguard/server/work"
	"github.com/Daskott/scamguard/utils"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(payLoad.Errors)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(payLoad.Errors)
	}

	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payLoad)
}

func writeErrMsgForSmsWebhook(rw http.ResponseWriter, err error) {
	logg.Error(err)

	errMsg := "Sorry an application error has occured.\nPlease try again later"
	msgBytes, err := xml.Marshal(&TwilioSmsResponse{Message: errMsg})
	if err != nil {
		logg.Errorf("writeErrMsgForSmsWebhook: %v", err)
	}

	writeSmsWebHookResponse(rw, msgBytes, http.StatusOK)
}

func writeSmsWebHookResponse(rw http.ResponseWriter, body []byte, status int) {
	rw.WriteHeader(status)
	rw.Write(body)
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("Scamguard server is listening on port%v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

// shutdownTimeout leaves in-flight requests time to finish their sms sends
func shutdownTimeout(sendTimeout time.Duration) time.Duration {
	return sendTimeout + 5*time.Second
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, s store.Store, backup *sqliteBackup, sendTimeout time.Duration) {
	// Shutdown server gracefully, so no new alerts come in while jobs drain
	ctxShutDown, cancel := context.WithTimeout(context.Background(), shutdownTimeout(sendTimeout))
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Errorf("Scamguard server shutdown failed:%+s", err)
	}

	// Stop all jobs i.e. pending sms sends & periodic backups
	workerPool.Stop()

	if backup != nil {
		if _, err := backup.backupSqliteDb(context.Background(), nil); err != nil {
			logg.Error(err)
		}
	}

	if err := s.Close(); err != nil {
		logg.Error(err)
	}

	logg.Infof("Scamguard server stopped properly")
}

// dataDirectory retrieves the directory to store scamguard data
// Or logs an error message and then calls os.Exit if it's unable to.
func dataDirectory(devMode bool) string {
	// Use 'scamguard' folder in home directory for prod
	folderName := ".scamguard"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		folderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	dataDir := filepath.Join(rootDir, folderName)

	err = utils.CreateDirIfNotExist(dataDir)
	fatalOnError(err)

	return dataDir
}

// resolveStorePath makes a relative sqlite path relative to the data directory
func resolveStorePath(path string, devMode bool) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(dataDirectory(devMode), path)
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
