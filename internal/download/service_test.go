package download

import (
	"context"
	"testing"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
)

func TestGetHistoryRequest_Validate(t *testing.T) {
	start := time.Date(2017, 4, 11, 0, 0, 0, 0, time.UTC)
	end := time.Date(2017, 4, 21, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     GetHistoryRequest
		wantErr bool
	}{
		{"code only", GetHistoryRequest{Code: "7203"}, false},
		{"explicit range", GetHistoryRequest{Code: "7203", StartDate: start, EndDate: end}, false},
		{"days", GetHistoryRequest{Code: "7203", Days: 30, Format: "csv"}, false},
		{"missing code", GetHistoryRequest{}, true},
		{"invalid code", GetHistoryRequest{Code: "72;03"}, true},
		{"negative days", GetHistoryRequest{Code: "7203", Days: -1}, true},
		{"start and days", GetHistoryRequest{Code: "7203", StartDate: start, Days: 5}, true},
		{"end before start", GetHistoryRequest{Code: "7203", StartDate: end, EndDate: start}, true},
		{"bad format", GetHistoryRequest{Code: "7203", Format: "xml"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_GetHistory(t *testing.T) {
	ts := newFakeSite(t)
	svc := NewService(ts.Client(), 10, WithEndpoint(ts.Endpoint()), WithPagePause(0))

	resp, err := svc.GetHistory(context.Background(), GetHistoryRequest{
		Code:    "7203",
		EndDate: time.Date(2017, 4, 21, 0, 0, 0, 0, time.UTC),
		Adjust:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.StartDate != "2017-04-11" || resp.EndDate != "2017-04-21" {
		t.Errorf("unexpected range %s..%s", resp.StartDate, resp.EndDate)
	}
	if !resp.Dataset.Adjusted || resp.Dataset.Len() != 2 {
		t.Errorf("unexpected dataset: %+v", resp.Dataset)
	}
	if resp.Dataset.Records[0].Close != 95 {
		t.Errorf("expected adjusted close 95, got %v", resp.Dataset.Records[0].Close)
	}
}

func TestService_GetHistory_ValidationError(t *testing.T) {
	svc := NewService(nil, 0)
	_, err := svc.GetHistory(context.Background(), GetHistoryRequest{Code: "7203", Format: "xml"})
	if !apperror.Is(err, apperror.BadRequest) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
}

func TestService_GetHistory_SourceError(t *testing.T) {
	ts := newFakeSite(t)
	ts.SetRaw("9999", "<html><body>no table</body></html>")
	svc := NewService(ts.Client(), 10, WithEndpoint(ts.Endpoint()), WithPagePause(0))

	_, err := svc.GetHistory(context.Background(), GetHistoryRequest{Code: "9999"})
	if !apperror.Is(err, apperror.FormatMismatch) {
		t.Fatalf("expected FormatMismatch, got %v", err)
	}
}
