// Package middleware carries the cross-cutting request plumbing: carrier
// signature validation, per-call context recovery and admin JWT auth.
package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/kwchan/bank-ivr/internal/locale"
	"github.com/kwchan/bank-ivr/internal/session"
)

type contextKey string

const (
	callIDKey   contextKey = "callID"
	languageKey contextKey = "language"
)

// CallContext parses the webhook form, recovers the caller's language
// preference from the session store and stashes the call ID and language
// in the request context for the handlers.
func CallContext(sessions *session.Store, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseForm(); err != nil {
				log.Warnf("Failed to parse webhook form: %v", err)
			}
			callID := r.PostFormValue("CallSid")
			log.Infof("CallSid = %s", callID)

			lang := sessions.Language(r.Context(), callID)

			ctx := context.WithValue(r.Context(), callIDKey, callID)
			ctx = context.WithValue(ctx, languageKey, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallID returns the carrier call identifier recovered by CallContext.
func CallID(ctx context.Context) string {
	id, _ := ctx.Value(callIDKey).(string)
	return id
}

// Language returns the caller's language recovered by CallContext,
// defaulting when the middleware never ran.
func Language(ctx context.Context) locale.Language {
	if l, ok := ctx.Value(languageKey).(locale.Language); ok {
		return l
	}
	return locale.Default
}
