package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/spf13/viper"
)

// SetDefaults registers default values for every optional server setting
func SetDefaults(config *viper.Viper) {
	config.SetDefault("listener.port", 5000)
	config.SetDefault("log.level", "debug")
	config.SetDefault("twilio.breaker.maxFailures", 0)
	config.SetDefault("twilio.breaker.openTimeout", 30*time.Second)
	config.SetDefault("dispatch.defaultCountryCode", "91")
	config.SetDefault("dispatch.concurrency", 4)
	config.SetDefault("dispatch.sendTimeout", 10*time.Second)
	config.SetDefault("store.driver", "memory")
	config.SetDefault("store.path", "")
}

// BindEnv maps the deployment env vars onto config keys. Env vars override
// whatever is in the config file.
func BindEnv(config *viper.Viper) {
	config.BindEnv("twilio.accountSid", "TWILIO_SID")
	config.BindEnv("twilio.authToken", "TWILIO_AUTH")
	config.BindEnv("twilio.number", "TWILIO_NUMBER")
	config.BindEnv("twilio.messagingServiceSid", "TWILIO_MESSAGING_SERVICE_SID")
	config.BindEnv("dispatch.defaultCountryCode", "DEFAULT_COUNTRY_CODE")
	config.BindEnv("listener.port", "PORT")
	config.BindEnv("google.applicationCredentials", "GOOGLE_APPLICATION_CREDENTIALS")

	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
}

// ParseServerConfig decodes & validates 'config' into a ServerConfig
func ParseServerConfig(config *viper.Viper) (*ServerConfig, error) {
	SetDefaults(config)

	serverConfig := ServerConfig{}
	if err := config.Unmarshal(&serverConfig); err != nil {
		return nil, fmt.Errorf("unable to decode server config: %v", err)
	}

	validate := validator.New()
	validate.RegisterStructValidation(storeConfigValidation, StoreConfig{})

	if err := validate.Struct(serverConfig); err != nil {
		return nil, fmt.Errorf("invalid server config: %v", err)
	}

	return &serverConfig, nil
}

func storeConfigValidation(sl validator.StructLevel) {
	storeConfig := sl.Current().Interface().(StoreConfig)

	if storeConfig.Driver == "sqlite" && strings.TrimSpace(storeConfig.Path) == "" {
		sl.ReportError(storeConfig.Path, "Path", "path", "required_for_sqlite", "")
	}
}
