package twilio

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Daskott/scamguard/server/models"
	"github.com/Daskott/scamguard/shared"
	"github.com/stretchr/testify/assert"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeMessages struct {
	sid   string
	err   error
	delay time.Duration
	calls int32

	mu   sync.Mutex
	last *openapi.CreateMessageParams
}

func (f *fakeMessages) CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last = params
	f.mu.Unlock()
	time.Sleep(f.delay)

	if f.err != nil {
		return nil, f.err
	}
	return &openapi.ApiV2010Message{Sid: &f.sid}, nil
}

func configuredClient(config shared.TwilioConfig, fake *fakeMessages) *ClientWrapper {
	config.AccountSid = "AC123"
	config.AuthToken = "secret"

	cw := NewClient(config)
	cw.messages = fake
	return cw
}

func TestSendNotConfigured(t *testing.T) {
	cw := NewClient(shared.TwilioConfig{Number: "+15005550006"})

	assert.False(t, cw.Configured())
	assert.Equal(t, models.Failed(ErrNotConfigured), cw.Send(context.Background(), "+919876543210", "hi"))
}

func TestSend(t *testing.T) {
	fake := &fakeMessages{sid: "SM123"}
	cw := configuredClient(shared.TwilioConfig{Number: "+15005550006"}, fake)

	result := cw.Send(context.Background(), "+919876543210", "hi")

	assert.Equal(t, models.Delivered("SM123"), result)
	assert.Equal(t, "+919876543210", *fake.last.To)
	assert.Equal(t, "+15005550006", *fake.last.From)
	assert.Equal(t, "hi", *fake.last.Body)
}

func TestSendEmptyRecipient(t *testing.T) {
	fake := &fakeMessages{sid: "SM123"}
	cw := configuredClient(shared.TwilioConfig{}, fake)

	assert.Equal(t, models.Failed(ErrEmptyTo), cw.Send(context.Background(), " ", "hi"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&fake.calls), "gateway should not be called without a recipient")
}

func TestSendFailure(t *testing.T) {
	cw := configuredClient(shared.TwilioConfig{}, &fakeMessages{err: errors.New("unreachable number")})

	assert.Equal(t, models.Failed("unreachable number"), cw.Send(context.Background(), "+919876543210", "hi"))
}

func TestSendTimeout(t *testing.T) {
	cw := configuredClient(shared.TwilioConfig{}, &fakeMessages{sid: "SM123", delay: 200 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.Equal(t, models.Failed(ErrTimeout), cw.Send(ctx, "+919876543210", "hi"))
}

func TestSendCircuitBreaker(t *testing.T) {
	fake := &fakeMessages{err: errors.New("twilio down")}
	cw := configuredClient(shared.TwilioConfig{Breaker: shared.BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute}}, fake)

	for i := 0; i < 2; i++ {
		assert.Equal(t, models.Failed("twilio down"), cw.Send(context.Background(), "+919876543210", "hi"))
	}

	result := cw.Send(context.Background(), "+919876543210", "hi")
	assert.False(t, result.OK)
	assert.Contains(t, result.Error, "circuit breaker is open")
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.calls), "open breaker should not reach twilio")
}

func TestSendCircuitBreakerCountsTimeouts(t *testing.T) {
	fake := &fakeMessages{sid: "SM123", delay: 200 * time.Millisecond}
	cw := configuredClient(shared.TwilioConfig{Breaker: shared.BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute}}, fake)

	send := func() models.SendResult {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		return cw.Send(ctx, "+919876543210", "hi")
	}

	for i := 0; i < 2; i++ {
		assert.Equal(t, models.Failed(ErrTimeout), send())
	}

	result := send()
	assert.False(t, result.OK)
	assert.Contains(t, result.Error, "circuit breaker is open")
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.calls), "open breaker should not reach twilio")
}

func TestValidateRequest(t *testing.T) {
	cw := NewClient(shared.TwilioConfig{AuthToken: "secret", WebhookBaseURL: "scamguard.example.com/"})
	values := url.Values{"From": {"+919876543210"}, "Body": {"verify your otp"}}
	signature := sign("secret", "https://scamguard.example.com/webhooks/sms/nana@example.com", values)

	assert.True(t, cw.ValidateRequest("/webhooks/sms/nana@example.com", values, signature))
	assert.False(t, cw.ValidateRequest("/webhooks/sms/nana@example.com", values, "bogus"))
}

func TestFullRequestURL(t *testing.T) {
	assert.Equal(t, "https://example.com/sms", fullRequestURL("example.com/", "/sms"))
	assert.Equal(t, "http://localhost:5000/sms", fullRequestURL("http://localhost:5000", "/sms"))
}

func sign(token, fullURL string, values url.Values) string {
	keys := []string{}
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	payload := fullURL
	for _, key := range keys {
		payload += key + values.Get(key)
	}

	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
