package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SignatureHeader carries the carrier's request signature.
const SignatureHeader = "X-Twilio-Signature"

// Signature computes the carrier signature: base64 HMAC-SHA1 over the full
// request URL followed by the form parameters sorted by name, each name
// concatenated with its value.
func Signature(authToken, fullURL string, params url.Values) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(fullURL))
	for _, name := range names {
		mac.Write([]byte(name))
		mac.Write([]byte(params.Get(name)))
	}
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateSignature rejects webhook requests whose signature header does
// not match the recomputed signature for the request.
func ValidateSignature(authToken string, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				log.Warnf("Failed to parse webhook form: %v", err)
			}
			fullURL := "https://" + r.Host + r.URL.RequestURI()
			got := r.Header.Get(SignatureHeader)
			want := Signature(authToken, fullURL, r.PostForm)

			if !hmac.Equal([]byte(got), []byte(want)) {
				log.Errorf("Request authentication failed for %s", fullURL)
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte("Error: request authentication failed."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
