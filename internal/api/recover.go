// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/tomtom215/vidshare/internal/logging"
)

// RecoverJSON turns a handler panic into a 500 response in the API
// envelope. http.ErrAbortHandler is re-raised so the server can abort the
// connection as usual. chi's Recoverer stays mounted further out for
// panics in the outer middleware.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			logging.Ctx(r.Context()).Error().
				Str("panic", fmt.Sprint(rec)).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("Handler panicked")
			NewResponseWriter(w, r).Error(http.StatusInternalServerError, ErrCodeInternalError, "Something went wrong")
		}()
		next.ServeHTTP(w, r)
	})
}
