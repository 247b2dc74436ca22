package shared

import (
	"bytes"
	"testing"
	"time"

	devConfig "github.com/Daskott/scamguard/dev/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configFromYAML(t *testing.T, content string) *viper.Viper {
	t.Helper()

	config := viper.New()
	config.SetConfigType("yaml")
	require.Nil(t, config.ReadConfig(bytes.NewBufferString(content)))

	return config
}

func TestParseServerConfigDefaults(t *testing.T) {
	serverConfig, err := ParseServerConfig(configFromYAML(t, "listener:\n  port: 8080\n"))
	require.Nil(t, err)

	assert.Equal(t, 8080, serverConfig.Listener.Port)
	assert.Equal(t, "91", serverConfig.Dispatch.DefaultCountryCode)
	assert.Equal(t, 4, serverConfig.Dispatch.Concurrency)
	assert.Equal(t, 10*time.Second, serverConfig.Dispatch.SendTimeout)
	assert.Equal(t, "memory", serverConfig.Store.Driver)
	assert.False(t, serverConfig.Twilio.Configured(), "missing twilio creds is not an error")
}

func TestParseServerConfigFromEnv(t *testing.T) {
	t.Setenv("TWILIO_SID", "AC123")
	t.Setenv("TWILIO_AUTH", "secret")
	t.Setenv("DEFAULT_COUNTRY_CODE", "1")

	config := configFromYAML(t, "twilio:\n  number: \"+15005550006\"\n")
	BindEnv(config)

	serverConfig, err := ParseServerConfig(config)
	require.Nil(t, err)

	assert.True(t, serverConfig.Twilio.Configured())
	assert.Equal(t, "AC123", serverConfig.Twilio.AccountSid)
	assert.Equal(t, "+15005550006", serverConfig.Twilio.Number)
	assert.Equal(t, "1", serverConfig.Dispatch.DefaultCountryCode)
}

func TestParseServerConfigValidation(t *testing.T) {
	cases := []struct {
		description string
		yaml        string
		expectedErr string
	}{
		{"unknown store driver", "store:\n  driver: redis\n", "Driver"},
		{"sqlite without a path", "store:\n  driver: sqlite\n", "Path"},
		{"non numeric country code", "dispatch:\n  defaultCountryCode: abc\n", "DefaultCountryCode"},
		{"zero concurrency", "dispatch:\n  concurrency: 0\n", "Concurrency"},
		{"backup without bucket", "google:\n  storage:\n    enableSqliteBackup: true\n", "Bucket"},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			_, err := ParseServerConfig(configFromYAML(t, c.yaml))
			if assert.NotNil(t, err) {
				assert.Contains(t, err.Error(), c.expectedErr)
			}
		})
	}
}

func TestDevServerConfigIsValid(t *testing.T) {
	serverConfig, err := ParseServerConfig(configFromYAML(t, devConfig.SERVER_YML))
	require.Nil(t, err)

	assert.Equal(t, "sqlite", serverConfig.Store.Driver)
	assert.Equal(t, uint32(5), serverConfig.Twilio.Breaker.MaxFailures)
	assert.False(t, serverConfig.Google.Storage.EnableSqliteBackup)
}
