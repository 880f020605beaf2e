package api

import (
	"net/http"
)

// Me returns the account behind a valid bearer access token.
func (a *API) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			writeErrorBody(w, http.StatusUnauthorized, "missing_authorization")
			return
		}

		user, err := a.service.Me(token)
		if err != nil {
			writeError(w, r, err)
			return
		}

		returnJson(&UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		}, w)
	}
}
