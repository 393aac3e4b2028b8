package main

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/summitpulse/ventiscore/internal/contexthelpers"
	"github.com/summitpulse/ventiscore/internal/logging"
)

type statusResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (mw *statusResponseWriter) WriteHeader(statusCode int) {
	mw.ResponseWriter.WriteHeader(statusCode)
	if !mw.headerWritten {
		mw.statusCode = statusCode
		mw.headerWritten = true
	}
}

func (mw *statusResponseWriter) Write(b []byte) (int, error) {
	mw.headerWritten = true
	written, err := mw.ResponseWriter.Write(b)
	if err != nil {
		return written, fmt.Errorf("write response: %w", err)
	}
	return written, nil
}

func (mw *statusResponseWriter) Unwrap() http.ResponseWriter {
	return mw.ResponseWriter
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
		next.ServeHTTP(w, r)
	})
}

func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		next.ServeHTTP(w, r)
	})
}

func commonContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = contexthelpers.SetCurrentPath(r, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// crossOriginProtection rejects cross-site state-changing requests using the standard
// library's CrossOriginProtection.
func crossOriginProtection(next http.Handler) http.Handler {
	return http.NewCrossOriginProtection().Handler(next)
}

func (app *application) logAndTraceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithAttrs(r.Context(),
			slog.String("trace_id", rand.Text()),
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
		)
		r = r.WithContext(ctx)

		start := time.Now()
		app.logger.LogAttrs(ctx, slog.LevelDebug, "received request")

		sw := newStatusResponseWriter(w)
		next.ServeHTTP(sw, r)

		level := slog.LevelInfo
		if sw.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		app.logger.LogAttrs(r.Context(), level, "request completed",
			slog.Int("status_code", sw.statusCode), slog.Duration("duration", time.Since(start)))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("panic: %v\n%s", recovered, string(debug.Stack()))
				app.serverError(w, r, err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// mustAuthenticate rejects a request with 401 if the caller has no authenticated passkey
// session.
func (app *application) mustAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !contexthelpers.IsAuthenticated(r.Context()) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", slog.Any("error", err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
