package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	apiKeys []string
}

// NewAuthConfigWithKeys creates an AuthConfig. Empty keys are ignored and
// a config with no keys disables authentication.
func NewAuthConfigWithKeys(apiKeys []string) AuthConfig {
	keys := make([]string, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return AuthConfig{apiKeys: keys}
}

// Enabled returns true if authentication is enabled.
func (c AuthConfig) Enabled() bool { return len(c.apiKeys) > 0 }

// Valid reports whether key matches one of the configured keys.
func (c AuthConfig) Valid(key string) bool {
	if key == "" {
		return false
	}
	for _, k := range c.apiKeys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// requestKey reads the key from X-API-KEY or an Authorization bearer token.
func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-KEY"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func readOnly(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// WriteProtect returns a middleware that requires a valid key on mutating methods.
// Reads pass through, as does everything when authentication is disabled.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled() || readOnly(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := requestKey(r)
			if key == "" {
				WriteError(w, r, NewAuthenticationError("X-API-KEY header or bearer token is required"), nil)
				return
			}
			if !config.Valid(key) {
				WriteError(w, r, NewAuthenticationError("invalid API key"), nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtectAuth creates write-protect middleware from a slice of API keys.
func WriteProtectAuth(apiKeys []string) func(http.Handler) http.Handler {
	return WriteProtect(NewAuthConfigWithKeys(apiKeys))
}
