package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/masembe/momopay-backend/internal/api/httpx"
)

// VerifySignature checks a hex HMAC-SHA256 of the raw request body against
// the X-Signature header. An empty secret disables verification, matching
// providers that sign nothing in sandbox.
func VerifySignature(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "bad_request", "unreadable body", nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			mac := hmac.New(sha256.New, []byte(secret))
			mac.Write(body)
			want := hex.EncodeToString(mac.Sum(nil))
			got := r.Header.Get("X-Signature")
			if got == "" || !hmac.Equal([]byte(want), []byte(got)) {
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_signature", "webhook signature mismatch", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
