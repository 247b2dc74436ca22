// Package store holds the user directory, the alert ledger and the delivery
// ledger. Ledgers are append-only and always listed most-recent-first.
package store

import (
	"context"
	"time"

	"github.com/Daskott/scamguard/server/models"
	"github.com/google/uuid"
)

// Store is safe for concurrent use. A reader never observes a partially
// written record.
type Store interface {
	// GetOrCreateUser returns the record for 'email', creating a default one on first reference
	GetOrCreateUser(ctx context.Context, email string) (*models.UserRecord, error)

	// FindUser returns the record for 'email' without creating it; ok is false for unknown users
	FindUser(ctx context.Context, email string) (record *models.UserRecord, ok bool, err error)

	SetProfile(ctx context.Context, email string, profile models.UserProfile) error

	// SetFamily replaces the user's family contacts with 'contacts'
	SetFamily(ctx context.Context, email string, contacts []models.FamilyContact) error

	// AppendAlert adds 'alert' to the global ledger and, when it carries a user email, to that user's history
	AppendAlert(ctx context.Context, alert *models.Alert) error

	// ListAlerts returns the global ledger when 'email' is empty, otherwise the user's history
	// (empty for unknown users)
	ListAlerts(ctx context.Context, email string) ([]models.Alert, error)

	AppendDelivery(ctx context.Context, entry *models.DeliveryLogEntry) error
	ListDeliveries(ctx context.Context) ([]models.DeliveryLogEntry, error)

	Close() error
}

func newID() string {
	return uuid.NewString()
}

func prepareAlert(alert *models.Alert) {
	if alert.ID == "" {
		alert.ID = newID()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	alert.UserEmail = models.NormalizeEmail(alert.UserEmail)
}

func prepareDelivery(entry *models.DeliveryLogEntry) {
	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}

func requireEmail(email string) (string, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return "", models.ErrEmailRequired
	}
	return email, nil
}
