package static

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func newTestSite(t *testing.T) *mux.Router {
	t.Helper()
	root := t.TempDir()
	public := filepath.Join(root, "public")

	writeFile(t, filepath.Join(root, "index.html"), "storefront")
	writeFile(t, filepath.Join(root, "admin.html"), "admin panel")
	writeFile(t, filepath.Join(public, "setup.html"), "setup page")
	writeFile(t, filepath.Join(public, "access.html"), "access page")
	writeFile(t, filepath.Join(public, "css", "style.css"), "body{}")
	// Uploads live outside public/ to check they are mounted on their own.
	uploads := filepath.Join(root, "media")
	writeFile(t, filepath.Join(uploads, "a.png"), "png")

	r := mux.NewRouter()
	New(root, public, uploads).Register(r)
	return r
}

func TestSite(t *testing.T) {
	router := newTestSite(t)

	testCases := []struct {
		name               string
		path               string
		expectedStatusCode int
		expectedBody       string
	}{
		{name: "Asset at root", path: "/css/style.css", expectedStatusCode: http.StatusOK, expectedBody: "body{}"},
		{name: "Asset under public prefix", path: "/public/css/style.css", expectedStatusCode: http.StatusOK, expectedBody: "body{}"},
		{name: "Uploaded image", path: "/uploads/a.png", expectedStatusCode: http.StatusOK, expectedBody: "png"},
		{name: "Missing upload", path: "/uploads/gone.png", expectedStatusCode: http.StatusNotFound},
		{name: "Upload under public prefix is not served", path: "/public/uploads/a.png", expectedStatusCode: http.StatusNotFound},
		{name: "Admin page", path: "/admin", expectedStatusCode: http.StatusOK, expectedBody: "admin panel"},
		{name: "Setup page", path: "/setup", expectedStatusCode: http.StatusOK, expectedBody: "setup page"},
		{name: "Access link page", path: "/access/abc123", expectedStatusCode: http.StatusOK, expectedBody: "access page"},
		{name: "Client route falls back to index", path: "/produits/42", expectedStatusCode: http.StatusOK, expectedBody: "storefront"},
		{name: "Root serves index", path: "/", expectedStatusCode: http.StatusOK, expectedBody: "storefront"},
		{name: "Directory falls back to index", path: "/css/", expectedStatusCode: http.StatusOK, expectedBody: "storefront"},
		{name: "Missing public asset", path: "/public/missing.js", expectedStatusCode: http.StatusNotFound},
		{name: "No listing under public prefix", path: "/public/css/", expectedStatusCode: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tc.path, nil))

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.expectedBody != "" {
				assert.Equal(t, tc.expectedBody, rec.Body.String())
			}
		})
	}
}
