package server

import (
	"encoding/xml"

	"github.com/Daskott/scamguard/server/models"
)

type ResponsePayload struct {
	Errors  []string    `json:"errors"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// TwilioSmsResponse is the TwiML reply to an inbound SMS
type TwilioSmsResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message,omitempty"`
}

type loginRequest struct {
	Email string `json:"email" validate:"required"`
}

type profilePayload struct {
	Name  string `json:"name" validate:"max=128"`
	Phone string `json:"phone" validate:"max=32"`
}

type saveProfileRequest struct {
	Email   string         `json:"email" validate:"required"`
	Profile profilePayload `json:"profile"`
}

type familyContactPayload struct {
	Name     string `json:"name" validate:"max=128"`
	Phone    string `json:"phone" validate:"max=32"`
	Relation string `json:"relation" validate:"max=64"`
}

type saveFamilyRequest struct {
	Email  string                 `json:"email" validate:"required"`
	Family []familyContactPayload `json:"family" validate:"dive"`
}

type testMessageRequest struct {
	Email   string `json:"email"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
}

type familyAlertRequest struct {
	Phones  []string               `json:"phones"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

func (p profilePayload) toModel(email string) models.UserProfile {
	return models.UserProfile{Email: email, Name: p.Name, Phone: p.Phone}
}

func toFamilyContacts(payloads []familyContactPayload) []models.FamilyContact {
	contacts := make([]models.FamilyContact, 0, len(payloads))
	for _, p := range payloads {
		contacts = append(contacts, models.FamilyContact{Name: p.Name, Phone: p.Phone, Relation: p.Relation})
	}
	return contacts
}
