package models

import "time"

// SendResult is the outcome of a single gateway call
type SendResult struct {
	OK          bool   `json:"ok"`
	ProviderRef string `json:"sid,omitempty"`
	Error       string `json:"error,omitempty"`
}

func Delivered(providerRef string) SendResult {
	return SendResult{OK: true, ProviderRef: providerRef}
}

func Failed(reason string) SendResult {
	return SendResult{OK: false, Error: reason}
}

// DeliveryLogEntry records one SMS attempt, successful or not
type DeliveryLogEntry struct {
	Seq       uint                   `json:"-" gorm:"primaryKey;autoIncrement"`
	ID        string                 `json:"id" gorm:"uniqueIndex;not null"`
	To        string                 `json:"to"`
	Body      string                 `json:"body"`
	Details   map[string]interface{} `json:"details,omitempty" gorm:"serializer:json"`
	Result    SendResult             `json:"result" gorm:"embedded;embeddedPrefix:result_"`
	CreatedAt time.Time              `json:"created_at"`
}
