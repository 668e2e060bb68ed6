package server

import (
	"net/http"

	"github.com/ahmethakanbesel/yahoojp-history/internal/download"
	"github.com/ahmethakanbesel/yahoojp-history/internal/job"
)

// NewHandler creates the full HTTP handler with routes and middleware.
// Exported for use in tests (e.g., httptest.NewServer).
func NewHandler(historySvc *download.Service, jobSvc *job.Service) http.Handler {
	return newMux(historySvc, jobSvc)
}

func newMux(historySvc *download.Service, jobSvc *job.Service) http.Handler {
	h := &handler{
		historySvc: historySvc,
		jobSvc:     jobSvc,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /api/v1/history/{code}", h.getHistory)
	mux.HandleFunc("GET /api/v1/jobs", h.listJobs)
	mux.HandleFunc("GET /api/v1/jobs/{id}", h.getJob)

	// recovery -> requestID -> logging
	var handler http.Handler = mux
	handler = logging(handler)
	handler = requestID(handler)
	handler = recovery(handler)

	return handler
}
