package router

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talx-hub/gopher-cashback/internal/config"
	"github.com/talx-hub/gopher-cashback/internal/utils/auth"
)

const secret = "router-test-secret-key"

type stubHandler struct {
	name string
}

func (s stubHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Handler", s.name)
	w.WriteHeader(http.StatusTeapot)
}

type h struct{}

func (h) PostSalesOrder(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "post_sales_order"}.ServeHTTP(w, r)
}
func (h) GetParameters(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "get_parameters"}.ServeHTTP(w, r)
}
func (h) PatchParameters(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "patch_parameters"}.ServeHTTP(w, r)
}
func (h) GetWallet(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "get_wallet"}.ServeHTTP(w, r)
}
func (h) Ping(w http.ResponseWriter, r *http.Request) {
	stubHandler{name: "ping"}.ServeHTTP(w, r)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := New(&config.Config{SecretKey: secret}, slog.Default())
	r.SetRouter(h{})
	srv := httptest.NewServer(r.GetRouter())
	t.Cleanup(srv.Close)
	return srv
}

func token(t *testing.T, role string) string {
	t.Helper()

	tok, err := auth.BuildToken("router-test", role, []byte(secret), time.Minute)
	require.NoError(t, err)
	return tok
}

func TestCustomRouter_Route_happyTests(t *testing.T) {
	srv := newTestServer(t)
	admin := token(t, auth.RoleAdmin)

	tests := []struct {
		method   string
		path     string
		token    string
		wantName string
		wantCode int
	}{
		{http.MethodPost, "/api/sales-orders", "", "post_sales_order", http.StatusTeapot},
		{http.MethodGet, "/api/parameters", "", "get_parameters", http.StatusTeapot},
		{http.MethodPatch, "/api/parameters", admin, "patch_parameters", http.StatusTeapot},
		{http.MethodGet, "/api/customers/BP001/wallet", "", "get_wallet", http.StatusTeapot},
		{http.MethodGet, "/ping", "", "ping", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, http.NoBody)
			require.NoError(t, err)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			err = resp.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantName, resp.Header.Get("X-Handler"))
		})
	}
}

func TestCustomRouter_Route_admin(t *testing.T) {
	srv := newTestServer(t)

	expired, err := auth.BuildToken("router-test", auth.RoleAdmin, []byte(secret), -time.Minute)
	require.NoError(t, err)
	foreign, err := auth.BuildToken("router-test", auth.RoleAdmin, []byte("some-other-secret-key"), time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"not bearer", "Basic YWRtaW46YWRtaW4=", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"foreign secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"not admin", "Bearer " + token(t, "viewer"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/parameters", http.NoBody)
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			err = resp.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Empty(t, resp.Header.Get("X-Handler"))
		})
	}
}

func TestCustomRouter_Route_wrong_routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method   string
		path     string
		wantCode int
	}{
		{http.MethodPost, "/", http.StatusNotFound},
		{http.MethodGet, "/api/", http.StatusNotFound},
		{http.MethodPost, "/api/sales-orders/1", http.StatusNotFound},
		{http.MethodGet, "/api/customers/BP001", http.StatusNotFound},
		{http.MethodGet, "/ping/", http.StatusNotFound},

		{http.MethodGet, "/api/sales-orders", http.StatusMethodNotAllowed},
		{http.MethodPut, "/api/parameters", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/parameters", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/customers/BP001/wallet", http.StatusMethodNotAllowed},
		{http.MethodPost, "/ping?x=true", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, http.NoBody)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			err = resp.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}
