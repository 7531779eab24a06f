package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasage-ai/datasage/internal/pipeline"
)

func okRun(t *testing.T) RunFunc {
	t.Helper()
	return func(ctx context.Context, question, store string) (pipeline.State, error) {
		st := pipeline.NewState(question, "sqlite", store)
		st.ReportPath = "reports/report_test.pdf"
		st.Log = []string{"[ok] report: saved as reports/report_test.pdf"}
		return st, nil
	}
}

func newTestServer(t *testing.T, run RunFunc) *Server {
	t.Helper()
	return NewServer(Config{ReportsDir: t.TempDir()}, run, nil)
}

func TestAnalyzeSuccess(t *testing.T) {
	srv := newTestServer(t, okRun(t))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"question": "What is revenue by category?"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "report_test.pdf", resp.Report)
	assert.NotEmpty(t, resp.Log)
}

func TestAnalyzeFailedRunStillSucceedsWithReport(t *testing.T) {
	srv := newTestServer(t, func(ctx context.Context, question, store string) (pipeline.State, error) {
		st := pipeline.NewState(question, "sqlite", "")
		st.Err = "query validation failed: DELETE statement in a read path"
		st.ReportPath = "reports/report_failed.pdf"
		return st, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"question": "Delete everything"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// The artifact exists, so the request succeeded: the report documents the
	// internal failure and the error field carries it too.
	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Error, "query validation failed")
	assert.Equal(t, "report_failed.pdf", resp.Report)
}

func TestAnalyzeWithoutReportIsFailure(t *testing.T) {
	srv := newTestServer(t, func(ctx context.Context, question, store string) (pipeline.State, error) {
		st := pipeline.NewState(question, "sqlite", "")
		st.Err = "report composition failed: disk full"
		return st, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"question": "q"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "report composition failed")
	assert.Empty(t, resp.Report)
}

func TestAnalyzeForwardsStoreDescriptor(t *testing.T) {
	var gotStore string
	srv := newTestServer(t, func(ctx context.Context, question, store string) (pipeline.State, error) {
		gotStore = store
		st := pipeline.NewState(question, "sqlite", store)
		st.ReportPath = "reports/report_test.pdf"
		return st, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"question": "q", "store": "sqlite://analytics.db"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sqlite://analytics.db", gotStore)

	// Absent store field reaches the runner as empty, meaning the default.
	req = httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"question": "q"}`))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, gotStore)
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, okRun(t))

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"invalid json", "{"},
		{"missing question", `{}`},
		{"blank question", `{"question": "   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAnalyzeEngineFault(t *testing.T) {
	srv := newTestServer(t, func(ctx context.Context, question, store string) (pipeline.State, error) {
		return pipeline.State{}, context.DeadlineExceeded
	})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"question": "q"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReportDownload(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report_abc.pdf"), []byte("%PDF-1.4 test"), 0o644))

	srv := NewServer(Config{ReportsDir: dir}, okRun(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/report_abc.pdf", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "%PDF")
}

func TestReportDownloadRejectsTraversal(t *testing.T) {
	srv := newTestServer(t, okRun(t))

	paths := []string{
		"/api/reports/..%2f..%2fetc%2fpasswd",
		"/api/reports/..%5cwindows",
		"/api/reports/a%2fb.pdf",
		"/api/reports/..",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, p, nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, "traversal must be rejected")
		})
	}
}

func TestReportDownloadNotFound(t *testing.T) {
	srv := newTestServer(t, okRun(t))

	req := httptest.NewRequest(http.MethodGet, "/api/reports/missing.pdf", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, okRun(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestSafeReportName(t *testing.T) {
	assert.True(t, safeReportName("report_20260823_abcd1234.pdf"))
	assert.False(t, safeReportName(""))
	assert.False(t, safeReportName(".."))
	assert.False(t, safeReportName("../secret.pdf"))
	assert.False(t, safeReportName("a/b.pdf"))
	assert.False(t, safeReportName(`a\b.pdf`))
	assert.False(t, safeReportName("x..y.pdf"))
}
