package download

import (
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
)

type GetHistoryRequest struct {
	Code      string
	StartDate time.Time
	EndDate   time.Time
	Days      int
	Adjust    bool
	Format    string // "json" or "csv"
}

func (r GetHistoryRequest) Validate() *apperror.AppError {
	if r.Code == "" {
		return apperror.New(apperror.BadRequest, "code is required")
	}
	for _, c := range r.Code {
		if (c < '0' || c > '9') && (c < 'A' || c > 'Z') {
			return apperror.New(apperror.BadRequest, "code must contain only digits and upper-case letters")
		}
	}
	if r.Days < 0 {
		return apperror.New(apperror.BadRequest, "days must not be negative")
	}
	if !r.StartDate.IsZero() && r.Days > 0 {
		return apperror.New(apperror.BadRequest, "startDate and days are mutually exclusive")
	}
	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && !r.EndDate.After(r.StartDate) {
		return apperror.New(apperror.BadRequest, "endDate must be after startDate")
	}
	if r.Format != "" && r.Format != "json" && r.Format != "csv" {
		return apperror.New(apperror.BadRequest, "format must be json or csv")
	}
	return nil
}

type GetHistoryResponse struct {
	Code      string           `json:"code"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
	Dataset   *history.Dataset `json:"history"`
	Warnings  []string         `json:"warnings"`
}
