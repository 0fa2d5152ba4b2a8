package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"LowesMerge/api/constants"
	"LowesMerge/internal/audit"
	"LowesMerge/internal/config"
	"LowesMerge/internal/lookup"
	"LowesMerge/internal/merge"
	"LowesMerge/internal/notification"
	"LowesMerge/internal/progress"
	"LowesMerge/internal/reportstore"
	"LowesMerge/internal/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ordersCSV = "PO Number,PO Line#,PO Date,Vendor #,Buyers Catalog or Stock Keeping #,Qty Ordered,Unit Price\n" +
		"100,,2024-03-01,118871,,,\n" +
		"100,1,,,71894,10,$2.00\n"
	shipmentsCSV = "PO #,Buyer Item #,Ship Date\n100,71894,2024-03-10\n"
	invoicesCSV  = "Invoice Number,Retailers PO #,Invoice Date,Invoice Total\n"
	testRunID    = "0b8f0f4e-54d5-4b63-9d3f-0e4f0d6f2c11"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	broker := progress.NewBroker()
	t.Cleanup(broker.Stop)
	store := reportstore.New(time.Hour, time.Minute)
	notices := notification.NewNotificationService(10)
	clock := time.Date(2024, 3, 1, 14, 5, 0, 0, time.UTC)
	return &Handlers{
		Runner: &merge.Runner{
			Lookups:  lookup.Default(),
			Reports:  store,
			Progress: broker,
			Notices:  notices,
			Now:      func() time.Time { return clock },
		},
		Reports:        store,
		Progress:       broker,
		Notices:        notices,
		MaxUploadBytes: 1 << 20,
	}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, f := range files {
		fw, err := mw.CreateFormFile(field, f[0])
		require.NoError(t, err)
		_, err = fw.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func postMerge(t *testing.T, router http.Handler, fields map[string]string, files map[string][2]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, "/merge", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestMergeRejectsBadUploads(t *testing.T) {
	h := newTestHandlers(t)
	router := NewRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/merge", bytes.NewBufferString(`{"orders":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, constants.ErrInvalidForm, decode(t, rec)["error"])

	big := ordersCSV + strings.Repeat("100,2,,,71894,10,$2.00\n", 64<<10)
	rec = postMerge(t, router, nil, map[string][2]string{"orders": {"orders.csv", big}})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, constants.ErrUploadTooLarge, decode(t, rec)["error"])
}

var allFiles = map[string][2]string{
	"orders":    {"orders.csv", ordersCSV},
	"shipments": {"shipments.csv", shipmentsCSV},
	"invoices":  {"invoices.csv", invoicesCSV},
}

func TestMergeReturnsWorkbook(t *testing.T) {
	h := newTestHandlers(t)
	router := NewRouter(h)

	rec := postMerge(t, router, map[string]string{"run_id": testRunID}, allFiles)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, config.SpreadsheetMIME, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Lowes_Merged_2024-03-01_0905.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, testRunID, rec.Header().Get("X-Run-ID"))

	report, err := sheet.Read("report.xlsx", rec.Body.Bytes())
	require.NoError(t, err)
	require.Equal(t, 1, report.Len())
	assert.Equal(t, "Fostoria", report.Get(0, "VBU Name"))
	assert.Equal(t, "Shipped Not Invoiced", report.Get(0, "Fulfillment Status"))

	again := httptest.NewRecorder()
	router.ServeHTTP(again, httptest.NewRequest(http.MethodGet, "/reports/"+testRunID, nil))
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, rec.Body.Bytes(), again.Body.Bytes())

	stream := httptest.NewRecorder()
	router.ServeHTTP(stream, httptest.NewRequest(http.MethodGet, "/merge/"+testRunID+"/progress", nil))
	assert.Contains(t, stream.Body.String(), `"done":true`)

	runs := httptest.NewRecorder()
	router.ServeHTTP(runs, httptest.NewRequest(http.MethodGet, "/runs", nil))
	rows, ok := decode(t, runs)["rows"].([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, testRunID, rows[0].(map[string]interface{})["run_id"])
}

func TestMergeRejectsMissingColumns(t *testing.T) {
	router := NewRouter(newTestHandlers(t))
	rec := postMerge(t, router, nil, map[string][2]string{
		"orders": {"orders.csv", "Vendor #,Qty Ordered\n118871,1\n"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Your PO Number, PO Line# column(s) are either missing or in the incorrect format.", body["error"])
	assert.Equal(t, []interface{}{"PO Number", "PO Line#"}, body["missing"])
}

func TestMergeBadRequests(t *testing.T) {
	router := NewRouter(newTestHandlers(t))

	rec := postMerge(t, router, nil, map[string][2]string{"shipments": {"shipments.csv", shipmentsCSV}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postMerge(t, router, map[string]string{"run_id": "not-a-uuid"}, allFiles)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postMerge(t, router, nil, map[string][2]string{"orders": {"orders.xlsx", "not a workbook"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "orders file")

	plain := httptest.NewRecorder()
	router.ServeHTTP(plain, httptest.NewRequest(http.MethodPost, "/merge", bytes.NewBufferString("x")))
	assert.Equal(t, http.StatusBadRequest, plain.Code)
}

func TestRoutes(t *testing.T) {
	router := NewRouter(newTestHandlers(t))

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/reports/unknown", http.StatusNotFound},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
		{http.MethodGet, "/merge", http.StatusMethodNotAllowed},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(c.method, c.path, nil))
		assert.Equal(t, c.want, rec.Code, c.path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), c.path)
	}
}

type fakeRuns struct {
	runs []audit.Run
	err  error
}

func (f fakeRuns) Recent(ctx context.Context, limit int) ([]audit.Run, error) {
	return f.runs, f.err
}

func TestRunsPrefersAudit(t *testing.T) {
	h := newTestHandlers(t)
	h.Runs = fakeRuns{runs: []audit.Run{{ID: "db-run", Status: audit.StatusSucceeded}}}
	router := NewRouter(h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode(t, rec)["rows"].([]interface{})
	assert.Equal(t, "db-run", rows[0].(map[string]interface{})["run_id"])

	h.Runs = fakeRuns{err: errors.New("db down")}
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNewGatewayServiceReadsConfig(t *testing.T) {
	s := NewGatewayService(map[string]interface{}{"port": 9090, "max_upload_mb": 4}, &Handlers{})
	assert.Equal(t, 9090, s.Port())
	assert.Equal(t, int64(4<<20), s.handlers.MaxUploadBytes)
	assert.Equal(t, "gateway", s.Name())

	s = NewGatewayService(nil, &Handlers{})
	assert.Equal(t, config.DefaultGatewayPort, s.Port())
}
