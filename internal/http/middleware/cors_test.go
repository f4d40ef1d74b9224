package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corsRoutes mirrors the public API surface: submissions, the lead form with
// its own permissive preflight, and uploads without an OPTIONS route.
type corsRoutes struct {
	hits map[string]int
}

func newCORSRouter(t *testing.T, origins ...string) (http.Handler, *corsRoutes) {
	t.Helper()
	routes := &corsRoutes{hits: map[string]int{}}
	r := chi.NewRouter()
	r.Use(CORS(origins))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		routes.hits["health"]++
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/contact", func(w http.ResponseWriter, r *http.Request) {
		routes.hits["contact"]++
		w.WriteHeader(http.StatusCreated)
	})
	r.Options("/api/lead-form", func(w http.ResponseWriter, r *http.Request) {
		routes.hits["lead-preflight"]++
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusNoContent)
	})
	r.Post("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		routes.hits["upload"]++
		w.WriteHeader(http.StatusCreated)
	})
	return r, routes
}

func corsRequest(method, target, origin string, preflight bool) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	return req
}

func TestCORS_ListedOriginSubmitsContact(t *testing.T) {
	h, routes := newCORSRouter(t, "https://studio.dev/")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, corsRequest(http.MethodPost, "/api/contact", "https://studio.dev", false))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, routes.hits["contact"])
	assert.Equal(t, "https://studio.dev", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_UnlistedOriginStillReachesSubmission(t *testing.T) {
	h, routes := newCORSRouter(t, "https://studio.dev")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, corsRequest(http.MethodPost, "/api/contact", "https://unknown.example", false))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, routes.hits["contact"])
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestCORS_Preflight(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		origin      string
		preflight   bool
		wantStatus  int
		wantOrigin  string
		wantLeadHit int
	}{
		{
			name:       "listed origin answered by middleware",
			target:     "/api/upload",
			origin:     "https://studio.dev",
			preflight:  true,
			wantStatus: http.StatusNoContent,
			wantOrigin: "https://studio.dev",
		},
		{
			name:       "listed origin on lead form echoes origin",
			target:     "/api/lead-form",
			origin:     "https://studio.dev",
			preflight:  true,
			wantStatus: http.StatusNoContent,
			wantOrigin: "https://studio.dev",
		},
		{
			name:        "unlisted origin falls through to lead form",
			target:      "/api/lead-form",
			origin:      "https://unknown.example",
			preflight:   true,
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "*",
			wantLeadHit: 1,
		},
		{
			name:       "unlisted origin on upload gets router 405",
			target:     "/api/upload",
			origin:     "https://unknown.example",
			preflight:  true,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:        "plain OPTIONS from listed origin reaches lead form",
			target:      "/api/lead-form",
			origin:      "https://studio.dev",
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "*",
			wantLeadHit: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, routes := newCORSRouter(t, "https://studio.dev")
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, corsRequest(http.MethodOptions, tt.target, tt.origin, tt.preflight))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantLeadHit, routes.hits["lead-preflight"])
			assert.Zero(t, routes.hits["upload"])
		})
	}
}

func TestCORS_WildcardEchoesOrigin(t *testing.T) {
	h, routes := newCORSRouter(t, "*")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, corsRequest(http.MethodGet, "/health", "https://random.example", false))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, routes.hits["health"])
	assert.Equal(t, "https://random.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_BlankEntriesAllowNothing(t *testing.T) {
	h, _ := newCORSRouter(t, " ", "")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, corsRequest(http.MethodPost, "/api/contact", "https://studio.dev", false))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
