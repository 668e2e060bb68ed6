package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
	"github.com/ahmethakanbesel/yahoojp-history/internal/download"
	"github.com/ahmethakanbesel/yahoojp-history/internal/export"
)

type APIResponse[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func writeJSON[T any](w http.ResponseWriter, status int, data T) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[T]{
		Message: "ok",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse[string]{
		Message: message,
		Data:    "",
	})
}

// writeAppError maps err to a status through its AppError code. Errors
// without one are reported as internal.
func writeAppError(w http.ResponseWriter, err error) {
	var ae *apperror.AppError
	if errors.As(err, &ae) {
		writeError(w, ae.HTTPStatus(), ae.Error())
		return
	}
	slog.Error("unhandled error", "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func writeCSV(w http.ResponseWriter, resp *download.GetHistoryResponse) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s_%s_%s.csv", resp.Code, resp.StartDate, resp.EndDate))
	w.WriteHeader(http.StatusOK)

	if err := export.WriteCSV(w, resp.Dataset); err != nil {
		slog.Error("write csv response", "code", resp.Code, "error", err)
	}
}
