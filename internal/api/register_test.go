package api_test

import (
	"net/http"
	"testing"

	"github.com/mediclogger/auth-service/internal/api"
	"github.com/mediclogger/auth-service/internal/testutil"
)

func TestRegisterEndpoint_CreatesUser(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	var response api.UserResponse
	result := testutil.PostJSON(env.Router, "/auth/register",
		`{"email":"new@example.org","password":"pw123"}`,
		&response,
	)
	testutil.ExpectStatus(t, http.StatusCreated, result)

	if response.ID == "" {
		t.Error("expected a generated user id")
	}
	if response.Email != "new@example.org" {
		t.Errorf("expected email 'new@example.org', got '%s'", response.Email)
	}

	// the new account can log in straight away
	login := testutil.PostJSON(env.Router, "/auth/login",
		`{"email":"new@example.org","password":"pw123"}`,
		nil,
	)
	testutil.ExpectStatus(t, http.StatusOK, login)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	first := testutil.PostJSON(env.Router, "/auth/register",
		`{"email":"dupe@example.org","password":"pw123"}`,
		nil,
	)
	testutil.ExpectStatus(t, http.StatusCreated, first)

	var response struct {
		Error string `json:"error"`
	}
	second := testutil.PostJSON(env.Router, "/auth/register",
		`{"email":"dupe@example.org","password":"other"}`,
		&response,
	)
	testutil.ExpectStatus(t, http.StatusConflict, second)
	if response.Error != "user_exists" {
		t.Errorf("expected error 'user_exists', got '%s'", response.Error)
	}
}

func TestRegisterEndpoint_MissingFields(t *testing.T) {
	t.Parallel()
	env := testutil.SetupTestEnv(t)

	result := testutil.PostJSON(env.Router, "/auth/register",
		`{"email":"new@example.org"}`,
		nil,
	)
	testutil.ExpectStatus(t, http.StatusBadRequest, result)
}
