// Package twilio is the SMS gateway. Every send resolves to a
// models.SendResult; nothing here returns an error to the dispatcher.
package twilio

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Daskott/scamguard/server/logger"
	"github.com/Daskott/scamguard/server/models"
	"github.com/Daskott/scamguard/shared"
	"github.com/sony/gobreaker"
	"github.com/twilio/twilio-go"
	twilioUtil "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

const (
	ErrNotConfigured = "gateway not configured"
	ErrTimeout       = "timeout"
	ErrEmptyTo       = "recipient is required"
)

var logg = logger.NewLogger()

// messageCreator is the part of the twilio rest client used for sending
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

type ClientWrapper struct {
	messages         messageCreator
	config           shared.TwilioConfig
	requestValidator twilioUtil.RequestValidator
	webhookBaseURL   string
	breaker          *gobreaker.CircuitBreaker
}

// NewClient returns a gateway for 'config'. Without an account sid & auth token
// the client is still usable, but every send fails with ErrNotConfigured.
func NewClient(config shared.TwilioConfig) *ClientWrapper {
	cw := &ClientWrapper{
		config:           config,
		webhookBaseURL:   config.WebhookBaseURL,
		requestValidator: twilioUtil.NewRequestValidator(config.AuthToken),
		breaker:          newBreaker(config.Breaker),
	}

	if config.Configured() {
		client := twilio.NewRestClientWithParams(twilio.RestClientParams{
			Username: config.AccountSid,
			Password: config.AuthToken,
		})
		cw.messages = client.ApiV2010
	}

	return cw
}

// Configured reports whether sends will actually reach Twilio
func (cw *ClientWrapper) Configured() bool {
	return cw.messages != nil
}

// Send delivers 'body' to the E.164 number 'to'. If ctx is done before
// Twilio answers the result is a timeout; the request itself still runs to
// completion in the background.
func (cw *ClientWrapper) Send(ctx context.Context, to, body string) models.SendResult {
	if strings.TrimSpace(to) == "" {
		return models.Failed(ErrEmptyTo)
	}

	if !cw.Configured() {
		return models.Failed(ErrNotConfigured)
	}

	if cw.breaker == nil {
		return cw.sendWithDeadline(ctx, to, body)
	}

	// Timeouts & failed sends both count against the breaker
	var result models.SendResult
	_, err := cw.breaker.Execute(func() (interface{}, error) {
		result = cw.sendWithDeadline(ctx, to, body)
		if !result.OK {
			return nil, errors.New(result.Error)
		}
		return nil, nil
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return models.Failed(err.Error())
	}

	return result
}

func (cw *ClientWrapper) sendWithDeadline(ctx context.Context, to, body string) models.SendResult {
	resultChan := make(chan models.SendResult, 1)
	go func() {
		resultChan <- cw.send(to, body)
	}()

	select {
	case result := <-resultChan:
		return result
	case <-ctx.Done():
		logg.Warnf("send to %v timed out: %v", to, ctx.Err())
		return models.Failed(ErrTimeout)
	}
}

func (cw *ClientWrapper) send(to, body string) models.SendResult {
	params := &openapi.CreateMessageParams{}
	if cw.config.MessagingServiceSid != "" {
		params.SetMessagingServiceSid(cw.config.MessagingServiceSid)
	} else {
		params.SetFrom(cw.config.Number)
	}
	params.SetTo(to)
	params.SetBody(body)

	message, err := cw.messages.CreateMessage(params)
	if err != nil {
		logg.Errorf("send to %v failed: %v", to, err)
		return models.Failed(err.Error())
	}

	if message == nil {
		return models.Delivered("")
	}

	if message.ErrorMessage != nil && *message.ErrorMessage != "" {
		return models.Failed(*message.ErrorMessage)
	}

	sid := ""
	if message.Sid != nil {
		sid = *message.Sid
	}

	return models.Delivered(sid)
}

// ValidateRequest checks the X-Twilio-Signature of an inbound webhook call
func (cw *ClientWrapper) ValidateRequest(path string, urlValues url.Values, expectedSignature string) bool {
	// Get 'urlValues' as map[string]string so it's compatible with twilio request validator
	params := make(map[string]string)
	for key, val := range urlValues {
		params[key] = strings.Join(val, ",")
	}

	return cw.requestValidator.Validate(fullRequestURL(cw.webhookBaseURL, path), params, expectedSignature)
}

func fullRequestURL(appUrl, path string) string {
	refinedUrl := strings.TrimSuffix(appUrl, "/")

	// Set default scheme to https
	if !strings.HasPrefix(refinedUrl, "http") {
		refinedUrl = "https://" + refinedUrl
	}

	return refinedUrl + path
}

// newBreaker returns nil when the breaker is disabled i.e. MaxFailures == 0
func newBreaker(config shared.BreakerConfig) *gobreaker.CircuitBreaker {
	if config.MaxFailures == 0 {
		return nil
	}

	openTimeout := config.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "twilio",
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logg.Warnf("%v circuit breaker: %v -> %v", name, from, to)
		},
	})
}
