package store

import (
	"context"
	"sync"

	"github.com/Daskott/scamguard/server/models"
)

type memoryUser struct {
	profile models.UserProfile
	family  []models.FamilyContact
	history []models.Alert // oldest first
}

// MemoryStore keeps everything in process memory behind a single RWMutex.
// Ledgers are appended to internally and reversed on read.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[string]*memoryUser
	alerts     []models.Alert
	deliveries []models.DeliveryLogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*memoryUser)}
}

func (s *MemoryStore) GetOrCreateUser(ctx context.Context, email string) (*models.UserRecord, error) {
	email, err := requireEmail(email)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(email).record(), nil
}

func (s *MemoryStore) FindUser(ctx context.Context, email string) (*models.UserRecord, bool, error) {
	email = models.NormalizeEmail(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok || email == "" {
		return nil, false, nil
	}

	return user.record(), true, nil
}

func (s *MemoryStore) SetProfile(ctx context.Context, email string, profile models.UserProfile) error {
	email, err := requireEmail(email)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile.Email = email
	s.getOrCreateLocked(email).profile = profile
	return nil
}

func (s *MemoryStore) SetFamily(ctx context.Context, email string, contacts []models.FamilyContact) error {
	email, err := requireEmail(email)
	if err != nil {
		return err
	}

	family := make([]models.FamilyContact, len(contacts))
	for i, contact := range contacts {
		contact.UserEmail = email
		contact.Position = i
		family[i] = contact
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.getOrCreateLocked(email).family = family
	return nil
}

func (s *MemoryStore) AppendAlert(ctx context.Context, alert *models.Alert) error {
	prepareAlert(alert)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, *alert)
	if alert.UserEmail != "" {
		user := s.getOrCreateLocked(alert.UserEmail)
		user.history = append(user.history, *alert)
	}
	return nil
}

func (s *MemoryStore) ListAlerts(ctx context.Context, email string) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if email == "" {
		return reversedAlerts(s.alerts), nil
	}

	user, ok := s.users[models.NormalizeEmail(email)]
	if !ok {
		return []models.Alert{}, nil
	}
	return reversedAlerts(user.history), nil
}

func (s *MemoryStore) AppendDelivery(ctx context.Context, entry *models.DeliveryLogEntry) error {
	prepareDelivery(entry)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deliveries = append(s.deliveries, *entry)
	return nil
}

func (s *MemoryStore) ListDeliveries(ctx context.Context) ([]models.DeliveryLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.DeliveryLogEntry, 0, len(s.deliveries))
	for i := len(s.deliveries) - 1; i >= 0; i-- {
		entries = append(entries, s.deliveries[i])
	}
	return entries, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// getOrCreateLocked must be called with s.mu held for writing
func (s *MemoryStore) getOrCreateLocked(email string) *memoryUser {
	user, ok := s.users[email]
	if !ok {
		user = &memoryUser{profile: models.UserProfile{Email: email}}
		s.users[email] = user
	}
	return user
}

func (user *memoryUser) record() *models.UserRecord {
	record := models.NewUserRecord(user.profile.Email)
	record.Profile = user.profile
	record.Family = append(record.Family, user.family...)
	record.History = reversedAlerts(user.history)
	return record
}

func reversedAlerts(alerts []models.Alert) []models.Alert {
	reversed := make([]models.Alert, 0, len(alerts))
	for i := len(alerts) - 1; i >= 0; i-- {
		reversed = append(reversed, alerts[i])
	}
	return reversed
}
