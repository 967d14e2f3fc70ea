package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newServer(t *testing.T, handler http.Handler) string {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}
