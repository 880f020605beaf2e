package api

import (
	"encoding/json"
	"net/http"
	"time"
)

type RegistrationRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *API) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := RegistrationRequest{}
		if ok := decodeRequest(&req, w, r); !ok {
			return
		}
		if req.Email == "" || req.Password == "" {
			logApiErr(r, "missing registration fields")
			writeErrorBody(w, http.StatusBadRequest, "email and password required")
			return
		}

		user, err := a.service.Register(req.Email, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(&UserResponse{
			ID:        user.ID,
			Email:     user.Email,
			CreatedAt: user.CreatedAt,
		})
	}
}
