package api

import (
	"net/http"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Client   string `json:"client"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (a *API) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := LoginRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}
		if req.Email == "" || req.Password == "" {
			logApiErr(r, "missing credentials")
			writeErrorBody(w, http.StatusBadRequest, "email and password required")
			return
		}

		client := req.Client
		if client == "" {
			client = a.defaultClient
		}

		creds, err := a.service.Login(req.Email, req.Password, client)
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
