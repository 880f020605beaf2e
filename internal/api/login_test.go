package api_test

import (
	"net/http"
	"testing"

	"github.com/mediclogger/auth-service/internal/api"
	"github.com/mediclogger/auth-service/internal/testutil"
)

func TestLoginEndpoint_Succeeds(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	env.RegisterTestUser(t, "user@example.org", "pw123")

	var response api.TokenResponse
	result := testutil.PostJSON(env.Router, "/auth/login",
		`{"email":"user@example.org","password":"pw123","client":"medic-logger"}`,
		&response,
	)
	testutil.ExpectStatus(t, http.StatusOK, result)

	if response.AccessToken == "" || response.RefreshToken == "" {
		t.Error("expected both tokens in the response")
	}
	if response.TokenType != "Bearer" {
		t.Errorf("expected token_type 'Bearer', got '%s'", response.TokenType)
	}
	if response.ExpiresIn != int(testutil.AccessTTL.Seconds()) {
		t.Errorf("expected expires_in %d, got %d", int(testutil.AccessTTL.Seconds()), response.ExpiresIn)
	}
}

func TestLoginEndpoint_DefaultsClient(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	env.RegisterTestUser(t, "user@example.org", "pw123")

	result := testutil.PostJSON(env.Router, "/auth/login",
		`{"email":"user@example.org","password":"pw123"}`,
		nil,
	)
	testutil.ExpectStatus(t, http.StatusOK, result)
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	env.RegisterTestUser(t, "user@example.org", "pw123")

	var response struct {
		Error string `json:"error"`
	}
	result := testutil.PostJSON(env.Router, "/auth/login",
		`{"email":"user@example.org","password":"wrong"}`,
		&response,
	)
	testutil.ExpectStatus(t, http.StatusUnauthorized, result)
	if response.Error != "invalid_credentials" {
		t.Errorf("expected error 'invalid_credentials', got '%s'", response.Error)
	}
}

func TestLoginEndpoint_UnknownClient(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)
	env.RegisterTestUser(t, "user@example.org", "pw123")

	result := testutil.PostJSON(env.Router, "/auth/login",
		`{"email":"user@example.org","password":"pw123","client":"not-a-client"}`,
		nil,
	)
	testutil.ExpectStatus(t, http.StatusBadRequest, result)
}

func TestLoginEndpoint_RejectsBadRequests(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{not json`},
		{"missing email", `{"password":"pw123"}`},
		{"missing password", `{"email":"user@example.org"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result := testutil.PostJSON(env.Router, "/auth/login", tc.body, nil)
			testutil.ExpectStatus(t, http.StatusBadRequest, result)
		})
	}
}

func TestLoginEndpoint_WrongMethod(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	result := testutil.Get(env.Router, "/auth/login", nil)
	if result.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, result.Code)
	}
}
