package serve

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pbakaus/vibe-design-plugins/internal/util"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dist := t.TempDir()
	downloads := filepath.Join(dist, "downloads")
	util.WriteTree(t, dist, map[string]string{
		"catalog.json":                              `{"commands":[]}`,
		"downloads/cursor.zip":                      "cursor bundle",
		"downloads/claude-code.zip":                 "claude bundle",
		"downloads/claude-code/command/audit.zip":   "audit archive",
		"downloads/codex/skill/frontend-design.zip": "skill archive",
	})

	s, err := New(Config{Addr: "127.0.0.1:0", DownloadsDir: downloads, DistDir: dist})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name            string
		method          string
		path            string
		wantStatus      int
		wantBody        string
		wantType        string
		wantDisposition string
	}{
		{
			name:            "bundle",
			path:            "/api/download/bundle/cursor",
			wantStatus:      http.StatusOK,
			wantBody:        "cursor bundle",
			wantType:        "application/zip",
			wantDisposition: `attachment; filename="cursor.zip"`,
		},
		{
			name:       "bundle by alias",
			path:       "/api/download/bundle/claude",
			wantStatus: http.StatusOK,
			wantBody:   "claude bundle",
		},
		{
			name:            "command",
			path:            "/api/download/command/claude-code/audit",
			wantStatus:      http.StatusOK,
			wantBody:        "audit archive",
			wantType:        "application/zip",
			wantDisposition: `attachment; filename="claude-code-audit.zip"`,
		},
		{
			name:       "skill",
			path:       "/api/download/skill/codex/frontend-design",
			wantStatus: http.StatusOK,
			wantBody:   "skill archive",
		},
		{
			name:       "catalog",
			path:       "/api/catalog",
			wantStatus: http.StatusOK,
			wantBody:   `{"commands":[]}`,
			wantType:   "application/json",
		},
		{name: "missing bundle", path: "/api/download/bundle/gemini", wantStatus: http.StatusNotFound},
		{name: "missing entry", path: "/api/download/command/cursor/polish", wantStatus: http.StatusNotFound},
		{name: "unknown provider", path: "/api/download/bundle/vscode", wantStatus: http.StatusBadRequest},
		{name: "unknown kind", path: "/api/download/pattern/cursor/audit", wantStatus: http.StatusBadRequest},
		{name: "invalid id", path: "/api/download/command/cursor/-audit", wantStatus: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodPost, path: "/api/download/bundle/cursor", wantStatus: http.StatusMethodNotAllowed},
		{name: "unknown route", path: "/api/other", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, tt.path, nil)
			rec := httptest.NewRecorder()

			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantBody != "" {
				body, _ := io.ReadAll(rec.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
			}
			if tt.wantType != "" {
				if got := rec.Header().Get("Content-Type"); got != tt.wantType {
					t.Errorf("Content-Type = %q, want %q", got, tt.wantType)
				}
			}
			if tt.wantDisposition != "" {
				if got := rec.Header().Get("Content-Disposition"); got != tt.wantDisposition {
					t.Errorf("Content-Disposition = %q, want %q", got, tt.wantDisposition)
				}
			}
		})
	}
}

func TestServer_ErrorBody(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/download/bundle/vscode", nil))

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if resp.Error != "invalid provider" {
		t.Errorf("Error = %q, want %q", resp.Error, "invalid provider")
	}
	if !strings.Contains(resp.Details, "vscode") {
		t.Errorf("Details = %q, want mention of the provider", resp.Details)
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/catalog", "/api/download/bundle/cursor", "/api/download/command/claude-code/audit"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))

			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405 (body %q)", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if resp.Error != "method not allowed" || !strings.Contains(resp.Details, http.MethodDelete) {
				t.Errorf("unexpected error body %+v", resp)
			}
		})
	}
}

func TestServer_NotFoundBody(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/other", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
}

func TestServer_MissingCatalog(t *testing.T) {
	s, err := New(Config{Addr: ":0", DownloadsDir: t.TempDir(), DistDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid", config: Config{Addr: ":3000", DownloadsDir: "d", DistDir: "dist"}},
		{name: "no addr", config: Config{DownloadsDir: "d", DistDir: "dist"}, wantErr: true},
		{name: "no downloads", config: Config{Addr: ":3000", DistDir: "dist"}, wantErr: true},
		{name: "no dist", config: Config{Addr: ":3000", DownloadsDir: "d"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, err := New(tt.config); (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
