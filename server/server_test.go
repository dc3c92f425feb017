package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/lmchat/internal/profile"
	teststore "github.com/hrygo/lmchat/store/test"
)

func TestNewServerRoutes(t *testing.T) {
	ctx := context.Background()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"id":"boot-model"}]}`)
	}))
	defer upstream.Close()

	publicDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "index.html"), []byte("<html></html>"), 0o644))

	instanceProfile := &profile.Profile{
		Mode:         "dev",
		Port:         5000,
		PublicDir:    publicDir,
		Version:      "test",
		LMStudioBase: upstream.URL,
	}
	s, err := NewServer(ctx, instanceProfile, teststore.NewTestingStore(ctx, t))
	require.NoError(t, err)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "<html></html>"},
		{"/healthz", http.StatusOK, `"model":"boot-model"`},
		{"/sessions", http.StatusOK, "[]"},
		{"/metrics", http.StatusOK, "lmchat_http_requests_total"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.status, rec.Code)
			require.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestNewServerWithoutModel(t *testing.T) {
	ctx := context.Background()
	refused := httptest.NewServer(http.NotFoundHandler())
	baseURL := refused.URL
	refused.Close()

	s, err := NewServer(ctx, &profile.Profile{Mode: "prod", Port: 5000, LMStudioBase: baseURL}, teststore.NewTestingStore(ctx, t))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"model":""`)
}
