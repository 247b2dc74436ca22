package models

import "strings"

// UserProfile is keyed by the lower-cased email. Phone is stored as typed
// by the user and only normalized when an SMS is sent.
type UserProfile struct {
	Email string `json:"email" gorm:"primaryKey"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type FamilyContact struct {
	ID        uint   `json:"-" gorm:"primarykey"`
	UserEmail string `json:"-" gorm:"index;not null"`
	Position  int    `json:"-"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Relation  string `json:"relation,omitempty"`
}

// UserRecord is everything the directory holds for one user
type UserRecord struct {
	Profile UserProfile     `json:"profile"`
	Family  []FamilyContact `json:"family"`
	History []Alert         `json:"history"`
}

// NewUserRecord returns the default record created on first reference to 'email'
func NewUserRecord(email string) *UserRecord {
	return &UserRecord{
		Profile: UserProfile{Email: email},
		Family:  []FamilyContact{},
		History: []Alert{},
	}
}

// Phones returns the user's own phone followed by each family contact's,
// skipping blanks.
func (record *UserRecord) Phones() []string {
	phones := []string{}
	if strings.TrimSpace(record.Profile.Phone) != "" {
		phones = append(phones, record.Profile.Phone)
	}

	for _, contact := range record.Family {
		if strings.TrimSpace(contact.Phone) != "" {
			phones = append(phones, contact.Phone)
		}
	}

	return phones
}

// NormalizeEmail is the identity rule for users
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
