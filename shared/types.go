package shared

import "time"

type ServerConfig struct {
	Listener   ListenerConfig   `mapstructure:"listener" validate:"required"`
	Log        LogConfig        `mapstructure:"log"`
	Twilio     TwilioConfig     `mapstructure:"twilio"`
	Dispatch   DispatchConfig   `mapstructure:"dispatch" validate:"required"`
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Google     GoogleConfig     `mapstructure:"google"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// TwilioConfig is optional as a whole; without AccountSid & AuthToken the
// gateway runs in "not configured" mode.
type TwilioConfig struct {
	AccountSid          string        `mapstructure:"accountSid"`
	AuthToken           string        `mapstructure:"authToken"`
	Number              string        `mapstructure:"number"`
	MessagingServiceSid string        `mapstructure:"messagingServiceSid"`
	WebhookBaseURL      string        `mapstructure:"webhookBaseURL"`
	Breaker             BreakerConfig `mapstructure:"breaker"`
}

// Configured reports whether enough credentials are present to reach Twilio
func (tc TwilioConfig) Configured() bool {
	return tc.AccountSid != "" && tc.AuthToken != ""
}

type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"maxFailures"`
	OpenTimeout time.Duration `mapstructure:"openTimeout"`
}

type DispatchConfig struct {
	DefaultCountryCode string        `mapstructure:"defaultCountryCode" validate:"required,numeric,max=3"`
	Concurrency        int           `mapstructure:"concurrency" validate:"min=1,max=64"`
	SendTimeout        time.Duration `mapstructure:"sendTimeout" validate:"required"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=memory sqlite"`
	Path   string `mapstructure:"path"`
}

type ClassifierConfig struct {
	Keywords []string `mapstructure:"keywords"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Bucket               string `mapstructure:"bucket" validate:"required_with=EnableSqliteBackup"`
	Prefix               string `mapstructure:"prefix"`
	SqliteBackupSchedule string `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackup"`
	EnableSqliteBackup   bool   `mapstructure:"enableSqliteBackup"`
}
