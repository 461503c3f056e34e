package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, method string, headers map[string]string) int {
	req := httptest.NewRequest(method, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestWriteProtect_ReadsPassWithoutKey(t *testing.T) {
	handler := WriteProtectAuth([]string{"secret"})(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.Equal(t, http.StatusOK, serve(handler, method, nil), method)
	}
}

func TestWriteProtect_MutatingMethods_RequireKey(t *testing.T) {
	handler := WriteProtectAuth([]string{"secret"})(okHandler())

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.Equal(t, http.StatusUnauthorized, serve(handler, method, nil), method)
	}
}

func TestWriteProtect_ValidKey(t *testing.T) {
	handler := WriteProtectAuth([]string{"other", "secret"})(okHandler())

	assert.Equal(t, http.StatusOK, serve(handler, http.MethodPost, map[string]string{"X-API-KEY": "secret"}))
	assert.Equal(t, http.StatusOK, serve(handler, http.MethodDelete, map[string]string{"Authorization": "Bearer secret"}))
}

func TestWriteProtect_InvalidKey_Rejected(t *testing.T) {
	handler := WriteProtectAuth([]string{"secret"})(okHandler())

	assert.Equal(t, http.StatusUnauthorized, serve(handler, http.MethodPost, map[string]string{"X-API-KEY": "wrong"}))
	assert.Equal(t, http.StatusUnauthorized, serve(handler, http.MethodPost, map[string]string{"Authorization": "Basic secret"}))
}

func TestWriteProtect_Disabled_PassesAll(t *testing.T) {
	handler := WriteProtectAuth([]string{""})(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		assert.Equal(t, http.StatusOK, serve(handler, method, nil), method)
	}
}

func TestAuthConfig_Enabled(t *testing.T) {
	assert.False(t, NewAuthConfigWithKeys(nil).Enabled())
	assert.False(t, NewAuthConfigWithKeys([]string{""}).Enabled())
	assert.True(t, NewAuthConfigWithKeys([]string{"k"}).Enabled())
}
