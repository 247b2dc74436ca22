package models

import "time"

// Alert is one classified inbound message. IsScam is nil when the
// classifier could not reach a verdict.
type Alert struct {
	Seq         uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	ID          string    `json:"id" gorm:"uniqueIndex;not null"`
	Sender      string    `json:"sender"`
	Message     string    `json:"message"`
	IsScam      *bool     `json:"is_scam"`
	Warning     string    `json:"elder_warning"`
	Explanation string    `json:"explanation"`
	CreatedAt   time.Time `json:"created_at"`
	UserEmail   string    `json:"user_email,omitempty" gorm:"index"`
}

// Flagged reports whether the alert was positively identified as a scam
func (alert Alert) Flagged() bool {
	return alert.IsScam != nil && *alert.IsScam
}

func Bool(value bool) *bool {
	return &value
}
