package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/download"
	"github.com/ahmethakanbesel/yahoojp-history/internal/job"
)

const dateFormat = "2006-01-02"

type handler struct {
	historySvc *download.Service
	jobSvc     *job.Service
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) getHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := download.GetHistoryRequest{
		Code:   strings.ToUpper(r.PathValue("code")),
		Adjust: true,
		Format: q.Get("format"),
	}

	var err error
	if v := q.Get("startDate"); v != "" {
		if req.StartDate, err = time.Parse(dateFormat, v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid startDate format, expected YYYY-MM-DD")
			return
		}
	}
	if v := q.Get("endDate"); v != "" {
		if req.EndDate, err = time.Parse(dateFormat, v); err != nil {
			writeError(w, http.StatusBadRequest, "invalid endDate format, expected YYYY-MM-DD")
			return
		}
	}
	if v := q.Get("days"); v != "" {
		if req.Days, err = strconv.Atoi(v); err != nil {
			writeError(w, http.StatusBadRequest, "days must be an integer")
			return
		}
	}
	if v := q.Get("adjust"); v != "" {
		if req.Adjust, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "adjust must be true or false")
			return
		}
	}

	if appErr := req.Validate(); appErr != nil {
		writeError(w, appErr.HTTPStatus(), appErr.Message())
		return
	}

	resp, err := h.historySvc.GetHistory(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if req.Format == "csv" {
		writeCSV(w, resp)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return
	}

	j, err := h.jobSvc.Get(r.Context(), job.GetJobRequest{ID: id})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, j)
}

func (h *handler) listJobs(w http.ResponseWriter, r *http.Request) {
	req := job.ListJobsRequest{
		RunID:  r.URL.Query().Get("runId"),
		Symbol: strings.ToUpper(r.URL.Query().Get("symbol")),
	}

	jobs, err := h.jobSvc.List(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}
