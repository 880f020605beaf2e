package api

import (
	"net/http"
)

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *API) Refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := RefreshRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}
		if req.RefreshToken == "" {
			logApiErr(r, "missing refresh token")
			writeErrorBody(w, http.StatusBadRequest, "refresh_token required")
			return
		}

		creds, err := a.service.Refresh(req.RefreshToken)
		if err != nil {
			writeError(w, r, err)
			return
		}

		returnJson(&TokenResponse{
			AccessToken:  creds.AccessToken,
			RefreshToken: creds.RefreshToken,
			TokenType:    "Bearer",
			ExpiresIn:    creds.ExpiresIn,
		}, w)
	}
}
