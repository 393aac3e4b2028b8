package main

import (
	"fmt"
	"net/http"
)

func (app *application) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(secureHeaders(crossOriginProtection(commonContext(next))))
		}
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(shared(next))
		}
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(
				app.webAuthnHandler.AuthenticateMiddleware(shared(next)))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("POST /api/registration/start", session(http.HandlerFunc(app.beginRegistration)))
	mux.Handle("POST /api/registration/finish", session(http.HandlerFunc(app.finishRegistration)))
	mux.Handle("POST /api/login/start", session(http.HandlerFunc(app.beginLogin)))
	mux.Handle("POST /api/login/finish", session(http.HandlerFunc(app.finishLogin)))
	mux.Handle("POST /api/logout", session(http.HandlerFunc(app.logout)))
	mux.Handle("GET /api/healthy", noAuth(http.HandlerFunc(app.healthy)))

	mux.Handle("GET /api/profile", mustSession(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/profile", mustSession(http.HandlerFunc(app.profilePUT)))

	mux.Handle("POST /api/workouts/score", mustSession(http.HandlerFunc(app.scoreWorkoutPOST)))
	mux.Handle("GET /api/workouts/{id}/report", mustSession(http.HandlerFunc(app.workoutReportGET)))

	mux.Handle("POST /api/batch/recompute", mustSession(http.HandlerFunc(app.batchRecomputePOST)))

	fileServerHandler, err := app.fileServerHandler()
	if err != nil {
		return nil, fmt.Errorf("fileServerHandler: %w", err)
	}
	mux.Handle("/", fileServerHandler)

	return mux, nil
}
