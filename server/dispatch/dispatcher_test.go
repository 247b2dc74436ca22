package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/Daskott/scamguard/server/models"
	"github.com/Daskott/scamguard/server/store"
	"github.com/Daskott/scamguard/server/twilio"
	"github.com/Daskott/scamguard/server/work"
	"github.com/Daskott/scamguard/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T, gateway Gateway, started bool, config Config) (*Dispatcher, store.Store) {
	t.Helper()

	s := store.NewMemoryStore()
	pool := work.NewWorkerAdapter("UTC", 2)
	if started {
		require.Nil(t, pool.Start())
		t.Cleanup(func() { pool.Stop() })
	}

	dispatcher, err := NewDispatcher(s, gateway, pool, config)
	require.Nil(t, err)

	return dispatcher, s
}

func scamAlert() models.Alert {
	return models.Alert{
		ID:      "a1",
		Sender:  "Bank",
		Message: "Your account is blocked, share OTP",
		IsScam:  models.Bool(true),
		Warning: "⚠ This message looks suspicious. Do NOT share OTP/passwords.",
	}
}

func TestDispatchOnScam(t *testing.T) {
	ctx := context.Background()

	t.Run("dedupes profile and family numbers", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1")}
		dispatcher, s := newTestDispatcher(t, gateway, true, Config{})

		require.Nil(t, s.SetProfile(ctx, "a@x.com", models.UserProfile{Phone: "9876543210"}))
		require.Nil(t, s.SetFamily(ctx, "a@x.com", []models.FamilyContact{
			{Name: "Son", Phone: "+919876543210"},
			{Name: "Daughter", Phone: "(987) 654-3211"},
			{Name: "Neighbour", Phone: "abc"},
		}))

		report, err := dispatcher.DispatchOnScam(ctx, scamAlert(), "A@x.com")
		require.Nil(t, err)

		assert.Equal(t, []string{"+919876543210", "+919876543211"}, report.Sent)
		assert.Len(t, report.Logs, 2)
		assert.Len(t, gateway.Sent(), 2)

		for _, sent := range gateway.Sent() {
			assert.Equal(t,
				"⚠ Scam alert for Bank: ⚠ This message looks suspicious. Do NOT share OTP/passwords.",
				sent.Body)
		}

		deliveries, err := s.ListDeliveries(ctx)
		require.Nil(t, err)
		assert.Len(t, deliveries, 2)
	})

	t.Run("no user email sends nothing", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1")}
		dispatcher, _ := newTestDispatcher(t, gateway, false, Config{})

		report, err := dispatcher.DispatchOnScam(ctx, scamAlert(), "")
		require.Nil(t, err)
		assert.Empty(t, report.Sent)
		assert.Empty(t, report.Logs)
		assert.Empty(t, gateway.Sent())
	})

	t.Run("unknown user sends nothing", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1")}
		dispatcher, s := newTestDispatcher(t, gateway, false, Config{})

		report, err := dispatcher.DispatchOnScam(ctx, scamAlert(), "ghost@x.com")
		require.Nil(t, err)
		assert.Empty(t, report.Logs)
		assert.Empty(t, gateway.Sent())

		_, ok, err := s.FindUser(ctx, "ghost@x.com")
		require.Nil(t, err)
		assert.False(t, ok)
	})

	t.Run("safe alert sends nothing", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1")}
		dispatcher, s := newTestDispatcher(t, gateway, false, Config{})
		require.Nil(t, s.SetProfile(ctx, "a@x.com", models.UserProfile{Phone: "9876543210"}))

		alert := scamAlert()
		alert.IsScam = models.Bool(false)

		report, err := dispatcher.DispatchOnScam(ctx, alert, "a@x.com")
		require.Nil(t, err)
		assert.Empty(t, report.Logs)
		assert.Empty(t, gateway.Sent())
	})

	t.Run("gateway failures are recorded", func(t *testing.T) {
		gateway := &twilio.GatewayStub{
			Default: models.Delivered("SM1"),
			Results: map[string]models.SendResult{
				"+919876543211": models.Failed("invalid number"),
			},
		}
		dispatcher, s := newTestDispatcher(t, gateway, false, Config{})
		require.Nil(t, s.SetFamily(ctx, "a@x.com", []models.FamilyContact{
			{Name: "Son", Phone: "9876543210"},
			{Name: "Daughter", Phone: "9876543211"},
		}))

		report, err := dispatcher.DispatchOnScam(ctx, scamAlert(), "a@x.com")
		require.Nil(t, err)
		require.Len(t, report.Logs, 2)

		// sequential when the pool isn't started, so completion order is input order
		assert.True(t, report.Logs[0].Result.OK)
		assert.Equal(t, "SM1", report.Logs[0].Result.ProviderRef)
		assert.False(t, report.Logs[1].Result.OK)
		assert.Equal(t, "invalid number", report.Logs[1].Result.Error)
	})

	t.Run("slow gateway times out", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1"), Delay: time.Second}
		dispatcher, s := newTestDispatcher(t, gateway, true, Config{SendTimeout: 20 * time.Millisecond})
		require.Nil(t, s.SetProfile(ctx, "a@x.com", models.UserProfile{Phone: "9876543210"}))

		report, err := dispatcher.DispatchOnScam(ctx, scamAlert(), "a@x.com")
		require.Nil(t, err)
		require.Len(t, report.Logs, 1)
		assert.Equal(t, models.Failed("timeout"), report.Logs[0].Result)
	})

	t.Run("uses the configured country code", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1")}
		dispatcher, s := newTestDispatcher(t, gateway, false, Config{DefaultCountryCode: "1"})
		require.Nil(t, s.SetProfile(ctx, "a@x.com", models.UserProfile{Phone: "415-555-0100"}))

		report, err := dispatcher.DispatchOnScam(ctx, scamAlert(), "a@x.com")
		require.Nil(t, err)
		assert.Equal(t, []string{"+14155550100"}, report.Sent)
	})
}

func TestDispatchAdhoc(t *testing.T) {
	ctx := context.Background()

	t.Run("empty list is rejected before any send", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1")}
		dispatcher, s := newTestDispatcher(t, gateway, false, Config{})

		_, err := dispatcher.DispatchAdhoc(ctx, []string{}, "hi", nil)
		assert.True(t, models.IsValidationError(err))

		deliveries, err := s.ListDeliveries(ctx)
		require.Nil(t, err)
		assert.Empty(t, deliveries)
		assert.Empty(t, gateway.Sent())
	})

	t.Run("no valid numbers is rejected before any send", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1")}
		dispatcher, s := newTestDispatcher(t, gateway, false, Config{})

		_, err := dispatcher.DispatchAdhoc(ctx, []string{"abc", "12"}, "hi", nil)
		assert.Equal(t, ErrNoValidPhones, err)

		deliveries, err := s.ListDeliveries(ctx)
		require.Nil(t, err)
		assert.Empty(t, deliveries)
	})

	t.Run("sends to every valid number with details", func(t *testing.T) {
		gateway := &twilio.GatewayStub{Default: models.Delivered("SM1")}
		dispatcher, s := newTestDispatcher(t, gateway, true, Config{})
		details := map[string]interface{}{"reason": "drill"}

		report, err := dispatcher.DispatchAdhoc(ctx,
			[]string{"9876543210", "abc", "09876543211", "919876543210"}, "Call me", details)
		require.Nil(t, err)

		assert.Equal(t, []string{"+919876543210", "+919876543211"}, report.Sent)
		require.Len(t, report.Logs, 2)
		for _, entry := range report.Logs {
			assert.Equal(t, "Call me", entry.Body)
			assert.Equal(t, details, entry.Details)
			assert.NotEmpty(t, entry.ID)
		}

		deliveries, err := s.ListDeliveries(ctx)
		require.Nil(t, err)
		assert.Len(t, deliveries, 2)
	})

	t.Run("gateway not configured still records attempts", func(t *testing.T) {
		gateway := twilio.NewClient(shared.TwilioConfig{})
		dispatcher, _ := newTestDispatcher(t, gateway, false, Config{})

		report, err := dispatcher.DispatchAdhoc(ctx, []string{"9876543210"}, "hi", nil)
		require.Nil(t, err)
		require.Len(t, report.Logs, 1)
		assert.Equal(t, models.Failed("gateway not configured"), report.Logs[0].Result)
	})
}

func TestNewDispatcherRegistersOnce(t *testing.T) {
	pool := work.NewWorkerAdapter("UTC", 1)
	s := store.NewMemoryStore()

	_, err := NewDispatcher(s, &twilio.GatewayStub{}, pool, Config{})
	require.Nil(t, err)

	_, err = NewDispatcher(s, &twilio.GatewayStub{}, pool, Config{})
	assert.NotNil(t, err)
}
