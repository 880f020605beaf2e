package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/mediclogger/auth-service/internal/api"
	"github.com/mediclogger/auth-service/internal/testutil"
)

func TestLogoutEndpoint_RevokesToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	session := loginForTokens(t, env)

	var response api.LogoutResponse
	result := testutil.PostJSON(env.Router, "/auth/logout",
		fmt.Sprintf(`{"refresh_token":"%s"}`, session.RefreshToken),
		&response,
	)
	testutil.ExpectStatus(t, http.StatusOK, result)
	if !response.Revoked {
		t.Error("expected revoked=true")
	}

	refresh := testutil.PostJSON(env.Router, "/auth/refresh",
		fmt.Sprintf(`{"refresh_token":"%s"}`, session.RefreshToken),
		nil,
	)
	testutil.ExpectStatus(t, http.StatusUnauthorized, refresh)
}

func TestLogoutEndpoint_Idempotent(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	result := testutil.PostJSON(env.Router, "/auth/logout",
		`{"refresh_token":"never-issued"}`,
		nil,
	)
	testutil.ExpectStatus(t, http.StatusOK, result)
}

func TestLogoutEndpoint_AllSessions(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	first := loginForTokens(t, env)

	var second api.TokenResponse
	result := testutil.PostJSON(env.Router, "/auth/login",
		fmt.Sprintf(`{"email":"%s@example.org","password":"pw123"}`, t.Name()),
		&second,
	)
	testutil.ExpectStatus(t, http.StatusOK, result)

	logout := testutil.PostJSON(env.Router, "/auth/logout",
		`{"all":true}`,
		nil,
		testutil.BearerAuth(first.AccessToken),
	)
	testutil.ExpectStatus(t, http.StatusOK, logout)

	for i, session := range []api.TokenResponse{first, second} {
		refresh := testutil.PostJSON(env.Router, "/auth/refresh",
			fmt.Sprintf(`{"refresh_token":"%s"}`, session.RefreshToken),
			nil,
		)
		if refresh.Code != http.StatusUnauthorized {
			t.Errorf("session %d should be revoked, got status %d", i, refresh.Code)
		}
	}
}

func TestLogoutEndpoint_AllWithoutAccessToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	result := testutil.PostJSON(env.Router, "/auth/logout", `{"all":true}`, nil)
	testutil.ExpectStatus(t, http.StatusUnauthorized, result)
}

func TestLogoutEndpoint_MissingToken(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	result := testutil.PostJSON(env.Router, "/auth/logout", `{}`, nil)
	testutil.ExpectStatus(t, http.StatusBadRequest, result)
}
