package store

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/Daskott/scamguard/server/models"
	"github.com/Daskott/scamguard/utils"
	"github.com/glebarez/sqlite"
	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// SQLiteStore persists the directory and ledgers with gorm. Ledger order is
// the auto-increment 'seq' column, newest first.
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at 'dsn' & migrates the schema.
// 'dsn' may be a file path or a sqlite URI such as "file:x?mode=memory&cache=shared".
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	if err := utils.EnsureParentDir(dsn); err != nil {
		return nil, pkgErrors.Wrap(err, "NewSQLiteStore")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to connect database")
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// sqlite allows a single writer, so serialise everything through one connection
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	err = db.AutoMigrate(
		&models.UserProfile{},
		&models.FamilyContact{},
		&models.Alert{},
		&models.DeliveryLogEntry{},
	)
	if err != nil {
		return nil, pkgErrors.Wrap(err, "failed to migrate schema")
	}

	return &SQLiteStore{db: db, path: dsn}, nil
}

// Path is the dsn the store was opened with
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) GetOrCreateUser(ctx context.Context, email string) (*models.UserRecord, error) {
	email, err := requireEmail(email)
	if err != nil {
		return nil, err
	}

	var record *models.UserRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, email); err != nil {
			return err
		}

		record, err = loadRecord(tx, email)
		return err
	})
	if err != nil {
		return nil, pkgErrors.Wrapf(err, "GetOrCreateUser(%s)", email)
	}

	return record, nil
}

func (s *SQLiteStore) FindUser(ctx context.Context, email string) (*models.UserRecord, bool, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, false, nil
	}

	var record *models.UserRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = loadRecord(tx, email)
		return err
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgErrors.Wrapf(err, "FindUser(%s)", email)
	}

	return record, true, nil
}

func (s *SQLiteStore) SetProfile(ctx context.Context, email string, profile models.UserProfile) error {
	email, err := requireEmail(email)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, email); err != nil {
			return err
		}

		return tx.Model(&models.UserProfile{}).Where("email = ?", email).
			Updates(map[string]interface{}{"name": profile.Name, "phone": profile.Phone}).Error
	})

	return pkgErrors.Wrapf(err, "SetProfile(%s)", email)
}

func (s *SQLiteStore) SetFamily(ctx context.Context, email string, contacts []models.FamilyContact) error {
	email, err := requireEmail(email)
	if err != nil {
		return err
	}

	family := make([]models.FamilyContact, len(contacts))
	for i, contact := range contacts {
		family[i] = models.FamilyContact{
			UserEmail: email,
			Position:  i,
			Name:      contact.Name,
			Phone:     contact.Phone,
			Relation:  contact.Relation,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, email); err != nil {
			return err
		}

		if err := tx.Where("user_email = ?", email).Delete(&models.FamilyContact{}).Error; err != nil {
			return err
		}

		if len(family) == 0 {
			return nil
		}
		return tx.Create(&family).Error
	})

	return pkgErrors.Wrapf(err, "SetFamily(%s)", email)
}

func (s *SQLiteStore) AppendAlert(ctx context.Context, alert *models.Alert) error {
	prepareAlert(alert)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if alert.UserEmail != "" {
			if err := ensureUser(tx, alert.UserEmail); err != nil {
				return err
			}
		}

		return tx.Create(alert).Error
	})

	return pkgErrors.Wrap(err, "AppendAlert")
}

func (s *SQLiteStore) ListAlerts(ctx context.Context, email string) ([]models.Alert, error) {
	alerts := []models.Alert{}
	db := s.db.WithContext(ctx)

	if email == "" {
		err := db.Order("seq desc").Find(&alerts).Error
		return alerts, pkgErrors.Wrap(err, "ListAlerts")
	}

	email = models.NormalizeEmail(email)
	var count int64
	if err := db.Model(&models.UserProfile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, pkgErrors.Wrap(err, "ListAlerts")
	}

	if count == 0 {
		return alerts, nil
	}

	err := db.Where("user_email = ?", email).Order("seq desc").Find(&alerts).Error
	return alerts, pkgErrors.Wrap(err, "ListAlerts")
}

func (s *SQLiteStore) AppendDelivery(ctx context.Context, entry *models.DeliveryLogEntry) error {
	prepareDelivery(entry)
	return pkgErrors.Wrap(s.db.WithContext(ctx).Create(entry).Error, "AppendDelivery")
}

func (s *SQLiteStore) ListDeliveries(ctx context.Context) ([]models.DeliveryLogEntry, error) {
	entries := []models.DeliveryLogEntry{}
	err := s.db.WithContext(ctx).Order("seq desc").Find(&entries).Error
	return entries, pkgErrors.Wrap(err, "ListDeliveries")
}

// Snapshot writes a consistent copy of the database to 'destPath', which must not exist
func (s *SQLiteStore) Snapshot(ctx context.Context, destPath string) error {
	if err := utils.EnsureParentDir(destPath); err != nil {
		return pkgErrors.Wrap(err, "Snapshot")
	}

	if err := s.db.WithContext(ctx).Exec("VACUUM INTO ?", destPath).Error; err != nil {
		return pkgErrors.Wrapf(err, "Snapshot: unable to copy database to %v", destPath)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func ensureUser(tx *gorm.DB, email string) error {
	profile := models.UserProfile{}
	return tx.Where(models.UserProfile{Email: email}).FirstOrCreate(&profile).Error
}

func loadRecord(tx *gorm.DB, email string) (*models.UserRecord, error) {
	record := models.NewUserRecord(email)

	if err := tx.First(&record.Profile, "email = ?", email).Error; err != nil {
		return nil, err
	}

	if err := tx.Where("user_email = ?", email).Order("position asc").Find(&record.Family).Error; err != nil {
		return nil, err
	}

	if err := tx.Where("user_email = ?", email).Order("seq desc").Find(&record.History).Error; err != nil {
		return nil, err
	}

	return record, nil
}
