package twilio

import (
	"context"
	"sync"
	"time"

	"github.com/Daskott/scamguard/server/models"
)

// GatewayStub records every send and answers with Results[to], or Default
// when no result is set for the number.
type GatewayStub struct {
	Results map[string]models.SendResult
	Default models.SendResult
	Delay   time.Duration

	mu   sync.Mutex
	sent []SentMessage
}

type SentMessage struct {
	To   string
	Body string
}

func (stub *GatewayStub) Send(ctx context.Context, to, body string) models.SendResult {
	stub.mu.Lock()
	stub.sent = append(stub.sent, SentMessage{To: to, Body: body})
	stub.mu.Unlock()

	if stub.Delay > 0 {
		select {
		case <-time.After(stub.Delay):
		case <-ctx.Done():
			return models.Failed(ErrTimeout)
		}
	}

	if result, ok := stub.Results[to]; ok {
		return result
	}
	return stub.Default
}

// Sent returns a copy of the messages sent so far
func (stub *GatewayStub) Sent() []SentMessage {
	stub.mu.Lock()
	defer stub.mu.Unlock()

	return append([]SentMessage{}, stub.sent...)
}
