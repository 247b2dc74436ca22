package server

import (
	"net/http"

	"github.com/Daskott/scamguard/server/metrics"
	"github.com/gorilla/mux"
)

func newRouter(h *handlers) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/webhooks/sms/{email}", h.smsWebhook).Methods(http.MethodPost)

	apiRouter := router.PathPrefix("/").Subrouter()
	apiRouter.Use(mux.CORSMethodMiddleware(apiRouter), corsMiddleware, jsonContentTypeMiddleware)

	apiRouter.HandleFunc("/login", h.login).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/save-profile", h.saveProfile).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/save-family", h.saveFamily).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/alerts", h.listAlerts).Methods(http.MethodGet, http.MethodOptions)
	apiRouter.HandleFunc("/test-message", h.testMessage).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/send-family-alert", h.sendFamilyAlert).Methods(http.MethodPost, http.MethodOptions)
	apiRouter.HandleFunc("/family-logs", h.familyLogs).Methods(http.MethodGet, http.MethodOptions)

	return router
}
