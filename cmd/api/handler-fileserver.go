package main

import (
	"net/http"
)

// fileServerHandler serves the catch-all 404 for any route not otherwise registered. The
// API boundary is JSON-only; there is no static asset tree to serve behind it.
func (app *application) fileServerHandler() (http.Handler, error) {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.notFound(w, r)
	}), nil
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}
