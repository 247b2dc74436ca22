// Package alerts exposes the operations behind the HTTP routes: user
// directory upkeep, message submission and ad-hoc family alerts.
package alerts

import (
	"context"
	"strings"

	"github.com/Daskott/scamguard/server/classifier"
	"github.com/Daskott/scamguard/server/dispatch"
	"github.com/Daskott/scamguard/server/logger"
	"github.com/Daskott/scamguard/server/metrics"
	"github.com/Daskott/scamguard/server/models"
	"github.com/Daskott/scamguard/server/store"
	"github.com/pkg/errors"
)

const DEFAULT_SENDER = "User"

var logg = logger.NewLogger()

// Submission is the outcome of a submitted message. Dispatch is only set
// when the message was flagged as a scam.
type Submission struct {
	Alert    models.Alert     `json:"alert"`
	Dispatch *dispatch.Report `json:"dispatch,omitempty"`
}

type Service struct {
	store      store.Store
	classifier classifier.Classifier
	dispatcher *dispatch.Dispatcher
}

func NewService(store store.Store, classifier classifier.Classifier, dispatcher *dispatch.Dispatcher) *Service {
	return &Service{
		store:      store,
		classifier: classifier,
		dispatcher: dispatcher,
	}
}

// Login returns the user's record, creating it on first login
func (s *Service) Login(ctx context.Context, email string) (*models.UserRecord, error) {
	return s.store.GetOrCreateUser(ctx, email)
}

func (s *Service) SaveProfile(ctx context.Context, email string, profile models.UserProfile) error {
	return s.store.SetProfile(ctx, email, profile)
}

func (s *Service) SaveFamily(ctx context.Context, email string, contacts []models.FamilyContact) error {
	if contacts == nil {
		contacts = []models.FamilyContact{}
	}
	return s.store.SetFamily(ctx, email, contacts)
}

// SubmitMessage classifies 'message', records it as an alert and, for a
// scam, warns the user and their family. 'email' is optional.
func (s *Service) SubmitMessage(ctx context.Context, email, sender, message string) (*Submission, error) {
	if strings.TrimSpace(sender) == "" {
		sender = DEFAULT_SENDER
	}

	analysis := classifier.Analyze(s.classifier, message)
	metrics.ObserveVerdict(analysis.IsScam)

	alert := models.Alert{
		Sender:      sender,
		Message:     message,
		IsScam:      analysis.IsScam,
		Warning:     analysis.Warning,
		Explanation: analysis.Explanation,
		UserEmail:   email,
	}

	if err := s.store.AppendAlert(ctx, &alert); err != nil {
		return nil, errors.Wrap(err, "SubmitMessage")
	}

	submission := &Submission{Alert: alert}
	if !alert.Flagged() {
		return submission, nil
	}

	report, err := s.dispatcher.DispatchOnScam(ctx, alert, alert.UserEmail)
	if err != nil {
		return nil, errors.Wrapf(err, "SubmitMessage: dispatching alert %v", alert.ID)
	}

	logg.Infof("Scam alert %v dispatched to %v number(s)", alert.ID, len(report.Sent))
	submission.Dispatch = report

	return submission, nil
}

// SendAdhocAlert sends 'message' to 'phones' as is
func (s *Service) SendAdhocAlert(ctx context.Context, phones []string, message string, details map[string]interface{}) (*dispatch.Report, error) {
	return s.dispatcher.DispatchAdhoc(ctx, phones, message, details)
}

// ListAlerts returns every alert when 'email' is empty, otherwise the user's history
func (s *Service) ListAlerts(ctx context.Context, email string) ([]models.Alert, error) {
	return s.store.ListAlerts(ctx, email)
}

func (s *Service) ListDeliveryLog(ctx context.Context) ([]models.DeliveryLogEntry, error) {
	return s.store.ListDeliveries(ctx)
}
