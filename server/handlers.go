package server

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"github.com/Daskott/scamguard/server/alerts"
	"github.com/Daskott/scamguard/server/models"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
)

var validate = validator.New()

// smsRequestValidator checks inbound webhook signatures
type smsRequestValidator interface {
	Configured() bool
	ValidateRequest(path string, urlValues url.Values, expectedSignature string) bool
}

type handlers struct {
	service      *alerts.Service
	smsValidator smsRequestValidator
}

func (h *handlers) login(rw http.ResponseWriter, r *http.Request) {
	data := loginRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	record, err := h.service.Login(r.Context(), data.Email)
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: record})
}

func (h *handlers) saveProfile(rw http.ResponseWriter, r *http.Request) {
	data := saveProfileRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	err := h.service.SaveProfile(r.Context(), data.Email, data.Profile.toModel(data.Email))
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func (h *handlers) saveFamily(rw http.ResponseWriter, r *http.Request) {
	data := saveFamilyRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	err := h.service.SaveFamily(r.Context(), data.Email, toFamilyContacts(data.Family))
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true})
}

func (h *handlers) listAlerts(rw http.ResponseWriter, r *http.Request) {
	alertList, err := h.service.ListAlerts(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: alertList})
}

func (h *handlers) testMessage(rw http.ResponseWriter, r *http.Request) {
	data := testMessageRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	submission, err := h.service.SubmitMessage(r.Context(), data.Email, data.Sender, data.Message)
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: submission})
}

func (h *handlers) sendFamilyAlert(rw http.ResponseWriter, r *http.Request) {
	data := familyAlertRequest{}
	if !decodeAndValidate(rw, r, &data) {
		return
	}

	report, err := h.service.SendAdhocAlert(r.Context(), data.Phones, data.Message, data.Details)
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: report})
}

func (h *handlers) familyLogs(rw http.ResponseWriter, r *http.Request) {
	logs, err := h.service.ListDeliveryLog(r.Context())
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	json.NewEncoder(rw).Encode(ResponsePayload{Success: true, Data: logs})
}

// smsWebhook handles a message forwarded by Twilio for the user in the path,
// and replies with the verdict as TwiML
func (h *handlers) smsWebhook(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "text/xml")

	if err := r.ParseForm(); err != nil {
		writeErrMsgForSmsWebhook(rw, err)
		return
	}

	if h.smsValidator.Configured() &&
		!h.smsValidator.ValidateRequest(r.URL.Path, r.PostForm, r.Header.Get("X-Twilio-Signature")) {
		logg.Warnf("Rejected sms webhook call with an invalid signature for %v", r.URL.Path)
		writeSmsWebHookResponse(rw, []byte{}, http.StatusForbidden)
		return
	}

	submission, err := h.service.SubmitMessage(
		r.Context(),
		mux.Vars(r)["email"],
		r.PostForm.Get("From"),
		r.PostForm.Get("Body"),
	)
	if err != nil {
		writeErrMsgForSmsWebhook(rw, err)
		return
	}

	msgBytes, err := xml.Marshal(&TwilioSmsResponse{Message: submission.Alert.Warning})
	if err != nil {
		writeErrMsgForSmsWebhook(rw, err)
		return
	}

	writeSmsWebHookResponse(rw, msgBytes, http.StatusOK)
}

// decodeAndValidate reads the json body into 'data'. On failure the error
// response is written & false returned.
func decodeAndValidate(rw http.ResponseWriter, r *http.Request, data interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(data); err != nil {
		writeResponse(rw, ResponsePayload{Errors: []string{"invalid json body: " + err.Error()}}, http.StatusBadRequest)
		return false
	}

	if errs := validate.Struct(data); errs != nil {
		writeResponse(rw, ResponsePayload{Errors: strings.Split(errs.Error(), "\n")}, http.StatusBadRequest)
		return false
	}

	return true
}

func writeServiceError(rw http.ResponseWriter, err error) {
	if models.IsValidationError(err) {
		writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusBadRequest)
		return
	}

	writeResponse(rw, ResponsePayload{Errors: []string{err.Error()}}, http.StatusInternalServerError)
}
