package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (a *API) Router() *mux.Router {
	r := mux.NewRouter()

	s := r.PathPrefix("/auth/").Subrouter()
	s.HandleFunc("/register", a.Register()).Methods("POST")
	s.HandleFunc("/login", a.Login()).Methods("POST")
	s.HandleFunc("/refresh", a.Refresh()).Methods("POST")
	s.HandleFunc("/logout", a.Logout()).Methods("POST")
	s.HandleFunc("/validate", a.Validate()).Methods("GET")
	s.HandleFunc("/me", a.Me()).Methods("GET")
	s.HandleFunc("/health", a.Health()).Methods("GET")

	r.HandleFunc("/.well-known/jwks.json", a.JWKS()).Methods("GET")

	return r
}

// Health reports liveness.
func (a *API) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnJson(map[string]bool{"ok": true}, w)
	}
}

// JWKS serves the published public key set for external verifiers.
func (a *API) JWKS() http.HandlerFunc {
	jwksJSON := a.service.PublicKeySet()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(jwksJSON)
	}
}
