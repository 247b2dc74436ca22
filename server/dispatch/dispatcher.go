// Package dispatch fans a warning out by SMS and records every attempt in
// the delivery ledger.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/Daskott/scamguard/server/logger"
	"github.com/Daskott/scamguard/server/metrics"
	"github.com/Daskott/scamguard/server/models"
	"github.com/Daskott/scamguard/server/phone"
	"github.com/Daskott/scamguard/server/store"
	"github.com/Daskott/scamguard/server/work"
)

const (
	SEND_SMS_HANDLER = "sendSms"

	DEFAULT_SEND_TIMEOUT = 10 * time.Second

	scamAlertTemplate = "⚠ Scam alert for %v: %v"
)

var (
	ErrNoPhones      = models.NewValidationError("phones must be a non-empty list")
	ErrNoValidPhones = models.NewValidationError("no valid phone numbers after cleaning")

	logg = logger.NewLogger()
)

// Gateway sends one SMS. It must not be called with an empty or
// un-normalized 'to', and reports failures in the result rather than as errors.
type Gateway interface {
	Send(ctx context.Context, to, body string) models.SendResult
}

type Config struct {
	DefaultCountryCode string
	SendTimeout        time.Duration
}

// Report lists the numbers a dispatch targeted and the ledger entries it
// wrote, in the order the sends completed.
type Report struct {
	Sent []string                  `json:"sent"`
	Logs []models.DeliveryLogEntry `json:"logs"`
}

func emptyReport() *Report {
	return &Report{Sent: []string{}, Logs: []models.DeliveryLogEntry{}}
}

type Dispatcher struct {
	store      store.Store
	gateway    Gateway
	workerPool *work.WorkerPoolAdapter
	config     Config
}

// NewDispatcher registers the send handler on 'workerPool'. Sends run on
// the pool's workers once it's started, sequentially otherwise.
func NewDispatcher(store store.Store, gateway Gateway, workerPool *work.WorkerPoolAdapter, config Config) (*Dispatcher, error) {
	if config.DefaultCountryCode == "" {
		config.DefaultCountryCode = phone.DefaultCountryCode
	}

	if config.SendTimeout <= 0 {
		config.SendTimeout = DEFAULT_SEND_TIMEOUT
	}

	dispatcher := &Dispatcher{
		store:      store,
		gateway:    gateway,
		workerPool: workerPool,
		config:     config,
	}

	if err := workerPool.Register(SEND_SMS_HANDLER, dispatcher.sendSms); err != nil {
		return nil, fmt.Errorf("NewDispatcher: %v", err)
	}

	return dispatcher, nil
}

// DispatchOnScam warns the owner of 'userEmail' and their family about 'alert'.
// Without a user, or for an alert that isn't a scam, nothing is sent.
func (d *Dispatcher) DispatchOnScam(ctx context.Context, alert models.Alert, userEmail string) (*Report, error) {
	userEmail = models.NormalizeEmail(userEmail)
	if userEmail == "" || !alert.Flagged() {
		return emptyReport(), nil
	}

	record, ok, err := d.store.FindUser(ctx, userEmail)
	if err != nil {
		return nil, err
	}

	if !ok {
		return emptyReport(), nil
	}

	targets := d.resolveTargets(record.Phones())
	body := fmt.Sprintf(scamAlertTemplate, alert.Sender, alert.Warning)

	return d.dispatch(ctx, targets, body, nil), nil
}

// DispatchAdhoc sends 'body' to an explicit list of numbers. The call is
// rejected, before anything is sent, when 'phones' is empty or none of them
// can be normalized.
func (d *Dispatcher) DispatchAdhoc(ctx context.Context, phones []string, body string, details map[string]interface{}) (*Report, error) {
	if len(phones) == 0 {
		return nil, ErrNoPhones
	}

	targets := d.resolveTargets(phones)
	if len(targets) == 0 {
		return nil, ErrNoValidPhones
	}

	return d.dispatch(ctx, targets, body, details), nil
}

// resolveTargets normalizes 'raws' and drops duplicates & invalid numbers,
// keeping the first-seen order.
func (d *Dispatcher) resolveTargets(raws []string) []string {
	seen := make(map[string]bool)
	targets := []string{}

	for _, raw := range raws {
		e164, err := phone.Normalize(raw, d.config.DefaultCountryCode)
		if err != nil {
			logg.Warnf("Invalid phone skipped: %q", raw)
			metrics.DroppedPhoneNumbers.Inc()
			continue
		}

		if seen[e164] {
			continue
		}
		seen[e164] = true
		targets = append(targets, e164)
	}

	return targets
}

func (d *Dispatcher) dispatch(ctx context.Context, targets []string, body string, details map[string]interface{}) *Report {
	report := emptyReport()
	report.Sent = append(report.Sent, targets...)

	if len(targets) == 0 {
		return report
	}

	start := time.Now()
	defer func() {
		metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	}()

	jobs := make([]work.JobParams, 0, len(targets))
	for _, to := range targets {
		jobs = append(jobs, work.JobParams{
			Name:    fmt.Sprintf("%v:%v", SEND_SMS_HANDLER, to),
			Handler: SEND_SMS_HANDLER,
			Args: map[string]interface{}{
				"to":      to,
				"body":    body,
				"details": details,
			},
		})
	}

	for _, result := range d.workerPool.PerformBatch(ctx, jobs) {
		if result.Err != nil {
			logg.Errorf("%v: %v", result.Job.Name, result.Err)
		}

		if entry, ok := result.Value.(models.DeliveryLogEntry); ok {
			report.Logs = append(report.Logs, entry)
		}
	}

	return report
}

// sendSms is the worker pool handler for a single recipient. The send and
// the ledger write are detached from the caller's cancellation so an
// attempt, once started, is always recorded.
func (d *Dispatcher) sendSms(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	to, _ := args["to"].(string)
	body, _ := args["body"].(string)
	details, _ := args["details"].(map[string]interface{})

	detached := context.WithoutCancel(ctx)
	sendCtx, cancel := context.WithTimeout(detached, d.config.SendTimeout)
	defer cancel()

	result := d.gateway.Send(sendCtx, to, body)
	metrics.ObserveSend(result.OK)

	entry := models.DeliveryLogEntry{
		To:      to,
		Body:    body,
		Details: details,
		Result:  result,
	}

	if err := d.store.AppendDelivery(detached, &entry); err != nil {
		return entry, fmt.Errorf("recording delivery to %v: %v", to, err)
	}

	if !result.OK {
		logg.Infof("SMS to %v not delivered: %v", to, result.Error)
	}

	return entry, nil
}
