package api

import (
	"net/http"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
	All          bool   `json:"all"`
}

type LogoutResponse struct {
	Revoked bool `json:"revoked"`
}

// Logout revokes the presented refresh token, or with all=true every token
// for the user named by the bearer access token.
func (a *API) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := LogoutRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}
		if !req.All && req.RefreshToken == "" {
			logApiErr(r, "missing refresh token")
			writeErrorBody(w, http.StatusBadRequest, "refresh_token required")
			return
		}

		err := a.service.Logout(req.RefreshToken, req.All, extractBearer(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		returnJson(&LogoutResponse{Revoked: true}, w)
	}
}
