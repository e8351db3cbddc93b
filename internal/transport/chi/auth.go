package chi

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchsync/internal/logger"
)

// APIKeyHeader carries the key for clients that cannot set Authorization.
const APIKeyHeader = "X-API-Key"

// publicPaths bypass authentication so probes and scrapers need no key.
var publicPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

var (
	errMissingKey = errors.New("missing api key")
	errBadScheme  = errors.New("authorization header must use Bearer scheme")
	errUnknownKey = errors.New("invalid api key")
)

// APIKeyAuth rejects requests that present none of apiKeys, either as a Bearer
// token or in the X-API-Key header. Empty keys are ignored; with no keys left the
// middleware passes every request through.
func APIKeyAuth(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := publicPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if err := authorize(keys, r); err != nil {
				logger.FromContext(r.Context()).Warn("request rejected", zap.Error(err))
				writeError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func authorize(keys [][]byte, r *http.Request) error {
	token, err := presentedKey(r)
	if err != nil {
		return err
	}
	matched := 0
	for _, k := range keys {
		matched |= subtle.ConstantTimeCompare(k, []byte(token))
	}
	if matched != 1 {
		return errUnknownKey
	}
	return nil
}

func presentedKey(r *http.Request) (string, error) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			return "", errBadScheme
		}
		return token, nil
	}
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key, nil
	}
	return "", errMissingKey
}
