package api

import (
	"fmt"
	"net/http"
)

type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Subject string `json:"sub,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Validate checks the bearer access token. Always 200: the body carries the
// verdict, and why a token failed is never revealed to the caller.
func (a *API) Validate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			returnJson(&ValidateResponse{Valid: false}, w)
			return
		}

		claims, err := a.service.Validate(token)
		if err != nil {
			logApiErr(r, fmt.Sprintf("token rejected: %v", err))
			returnJson(&ValidateResponse{Valid: false}, w)
			return
		}

		returnJson(&ValidateResponse{
			Valid:   true,
			Subject: claims.Subject,
			Email:   claims.Email,
		}, w)
	}
}
