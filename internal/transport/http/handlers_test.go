package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoppulse/internal/dataprocessing"
	apierrors "shoppulse/internal/errors"
	"shoppulse/pkg/contracts/domain"
)

// mockDataService records calls and returns canned results.
type mockDataService struct {
	submitted    []string
	failed       []string
	submitResult domain.ProcessingLog
	submitErr    error
	snapshot     domain.AnalyticsSnapshot
	records      []domain.TransactionRecord
	logs         []domain.ProcessingLog
	cleared      bool
	err          error
}

func (m *mockDataService) SubmitBatch(ctx context.Context, filename string, rows []dataprocessing.RawRow) (domain.ProcessingLog, error) {
	m.submitted = append(m.submitted, filename)
	return m.submitResult, m.submitErr
}

func (m *mockDataService) FailBatch(ctx context.Context, filename string, cause error) (domain.ProcessingLog, error) {
	m.failed = append(m.failed, filename)
	return domain.ProcessingLog{Filename: filename, Status: domain.LogStatusFailed}, nil
}

func (m *mockDataService) AnalyticsOverview(ctx context.Context) (domain.AnalyticsSnapshot, error) {
	return m.snapshot, m.err
}

func (m *mockDataService) CustomerInsights(ctx context.Context) ([]domain.CustomerInsight, error) {
	return nil, m.err
}

func (m *mockDataService) ProductInsights(ctx context.Context) ([]domain.ProductInsight, error) {
	return nil, m.err
}

func (m *mockDataService) ProcessingLogs(ctx context.Context) ([]domain.ProcessingLog, error) {
	return m.logs, m.err
}

func (m *mockDataService) ExportRecords(ctx context.Context) ([]domain.TransactionRecord, error) {
	return m.records, m.err
}

func (m *mockDataService) ClearAllData(ctx context.Context) error {
	m.cleared = true
	return m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newDataHandler(svc *mockDataService) *DataHandler {
	logger := testLogger()
	return NewDataHandler(svc, logger, apierrors.NewErrorHandler(logger, false), 1<<20)
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestUploadBatch(t *testing.T) {
	svc := &mockDataService{
		submitResult: domain.ProcessingLog{
			LogID:            "log-1",
			Filename:         "orders.csv",
			Status:           domain.LogStatusCompleted,
			RecordsProcessed: 1,
		},
	}
	handler := newDataHandler(svc)

	body, contentType := multipartUpload(t, "orders.csv",
		"order_id,product_id,customer_id,quantity,price,date\nA1,P1,C1,1,1.00,2024-01-01\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, []string{"orders.csv"}, svc.submitted)

	var resp struct {
		Status  string               `json:"status"`
		Message string               `json:"message"`
		Data    domain.ProcessingLog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "File processed successfully", resp.Message)
	assert.Equal(t, 1, resp.Data.RecordsProcessed)
}

func TestUploadBatchWithoutFile(t *testing.T) {
	handler := newDataHandler(&mockDataService{})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("note", "no file here"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var problem struct {
		Type   string `json:"type"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusBadRequest, problem.Status)
}

func TestUploadBatchUnsupportedExtension(t *testing.T) {
	svc := &mockDataService{}
	handler := newDataHandler(svc)

	body, contentType := multipartUpload(t, "orders.txt", "whatever")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.submitted)
}

func TestUploadBatchUnreadableFileRecordsFailedBatch(t *testing.T) {
	svc := &mockDataService{}
	handler := newDataHandler(svc)

	// An xlsx that is not a zip archive fails before row accounting.
	body, contentType := multipartUpload(t, "orders.xlsx", "not a spreadsheet")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rr, req)

	assert.NotEqual(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"orders.xlsx"}, svc.failed)
	assert.Empty(t, svc.submitted)
}

func TestUploadBatchServiceFailure(t *testing.T) {
	svc := &mockDataService{submitErr: fmt.Errorf("disk full")}
	handler := newDataHandler(svc)

	body, contentType := multipartUpload(t, "orders.csv",
		"order_id,product_id,customer_id,quantity,price,date\nA1,P1,C1,1,1.00,2024-01-01\n")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	handler.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var problem struct {
		Detail  string `json:"detail"`
		Details string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, "Batch could not be processed", problem.Detail)
	assert.Contains(t, problem.Details, "disk full")
}

func TestClearAllData(t *testing.T) {
	svc := &mockDataService{}
	handler := newDataHandler(svc)

	req := httptest.NewRequest(http.MethodDelete, "/clear", nil)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, svc.cleared)
}

func TestExportCSV(t *testing.T) {
	price := decimal.RequireFromString("10.00")
	svc := &mockDataService{records: []domain.TransactionRecord{{
		RecordID:    "r1",
		OrderID:     "A1",
		ProductID:   "P1",
		CustomerID:  "C1",
		Quantity:    1,
		UnitPrice:   price,
		LineRevenue: price,
		OccurredAt:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		IngestedAt:  time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
	}}}
	handler := newDataHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "transactions.csv")
	assert.Contains(t, rr.Body.String(), "A1,P1,C1")
}

func TestGetOverview(t *testing.T) {
	svc := &mockDataService{snapshot: domain.AnalyticsSnapshot{
		TotalRecords: 2,
		TotalRevenue: decimal.RequireFromString("25.00"),
		TopProducts:  []domain.ProductRanking{},
		TopCustomers: []domain.CustomerRanking{},
		DailyRevenue: []domain.DailyRevenue{},
	}}
	logger := testLogger()
	handler := NewAnalyticsHandler(svc, logger, apierrors.NewErrorHandler(logger, false))

	req := httptest.NewRequest(http.MethodGet, "/overview", nil)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			TotalRecords int    `json:"total_records"`
			TotalRevenue string `json:"total_revenue"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 2, resp.Data.TotalRecords)
}

func TestGetLogs(t *testing.T) {
	svc := &mockDataService{logs: []domain.ProcessingLog{
		{LogID: "log-2", Status: domain.LogStatusCompleted},
		{LogID: "log-1", Status: domain.LogStatusFailed},
	}}
	logger := testLogger()
	handler := NewLogsHandler(svc, logger, apierrors.NewErrorHandler(logger, false))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Status string                 `json:"status"`
		Data   []domain.ProcessingLog `json:"data"`
		Count  int                    `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "log-2", resp.Data[0].LogID)
}

func TestGetHealth(t *testing.T) {
	handler := NewHealthHandler("1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "1.2.3", resp["version"])
}
