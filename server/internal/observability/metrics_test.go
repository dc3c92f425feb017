package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordCompletion(t *testing.T) {
	InitMetrics()
	InitMetrics()

	before := testutil.ToFloat64(completionsTotal.WithLabelValues(CompletionOK))
	tokensBefore := testutil.ToFloat64(completionTokensTotal)

	RecordCompletion(CompletionOK, 3)

	require.Equal(t, before+1, testutil.ToFloat64(completionsTotal.WithLabelValues(CompletionOK)))
	require.Equal(t, tokensBefore+3, testutil.ToFloat64(completionTokensTotal))
}

func TestStreamStarted(t *testing.T) {
	before := testutil.ToFloat64(activeStreams)
	done := StreamStarted()
	require.Equal(t, before+1, testutil.ToFloat64(activeStreams))
	done()
	require.Equal(t, before, testutil.ToFloat64(activeStreams))
}

func TestMetricsHandler(t *testing.T) {
	InitMetrics()
	RecordHTTPRequest(http.MethodGet, "/sessions", "200", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `lmchat_http_requests_total{method="GET",path="/sessions",status="200"}`)
}

func TestRequestContext(t *testing.T) {
	reqCtx := NewRequestContext(nil, "u1", "s1")
	require.NotEmpty(t, reqCtx.RequestID)
	require.Equal(t, "u1", reqCtx.UserID)

	ctx := WithRequestContext(context.Background(), reqCtx)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Same(t, reqCtx, got)

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}
