package gstorage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Daskott/scamguard/server/logger"
	"google.golang.org/api/option"
)

const DEFAULT_TIMEOUT = 50 * time.Second

var (
	ErrObjectNotExist = storage.ErrObjectNotExist

	logg = logger.NewLogger()
)

type GStorage struct {
	storageClient *storage.Client
	bucket        string
	prefix        string
}

// NewGStorage returns a client for 'bucket'. Objects are stored under 'prefix'.
// Without 'credentialsFilePath' the application default credentials are used.
func NewGStorage(ctx context.Context, credentialsFilePath, bucket, prefix string) (*GStorage, error) {
	var client *storage.Client
	var err error

	if credentialsFilePath != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFilePath))
	} else {
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("NewGStorage: %v", err)
	}

	return &GStorage{storageClient: client, bucket: bucket, prefix: prefix}, nil
}

// ObjectName is where a local file named 'fileName' is stored in the bucket
func (gs *GStorage) ObjectName(fileName string) string {
	return ObjectName(gs.prefix, fileName)
}

func ObjectName(prefix, fileName string) string {
	return path.Join(prefix, filepath.Base(fileName))
}

// UploadFile uploads 'filePath' as 'objectName'.
func (gs *GStorage) UploadFile(ctx context.Context, filePath, objectName string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("os.Open: %v", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, DEFAULT_TIMEOUT)
	defer cancel()

	wc := gs.storageClient.Bucket(gs.bucket).Object(objectName).NewWriter(ctx)
	if _, err = io.Copy(wc, f); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %v", err)
	}

	logg.Infof("Blob %v uploaded to bucket %v", objectName, gs.bucket)
	return nil
}

// DownloadFile downloads 'objectName' to 'destFileName'. ErrObjectNotExist is
// returned as is, so callers can treat a missing backup as a fresh start.
func (gs *GStorage) DownloadFile(ctx context.Context, objectName, destFileName string) error {
	ctx, cancel := context.WithTimeout(ctx, DEFAULT_TIMEOUT)
	defer cancel()

	rc, err := gs.storageClient.Bucket(gs.bucket).Object(objectName).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return err
	}
	if err != nil {
		return fmt.Errorf("Object(%q).NewReader: %v", objectName, err)
	}
	defer rc.Close()

	f, err := os.OpenFile(destFileName, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("os.OpenFile: %v", err)
	}

	if _, err := io.Copy(f, rc); err != nil {
		f.Close()
		return fmt.Errorf("io.Copy: %v", err)
	}

	if err = f.Close(); err != nil {
		return fmt.Errorf("f.Close: %v", err)
	}

	logg.Infof("Blob %v downloaded to local file %v", objectName, destFileName)
	return nil
}

func (gs *GStorage) Close() error {
	return gs.storageClient.Close()
}
