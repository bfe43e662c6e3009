package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody() map[string]string {
	return map[string]string{
		"email":      "alice@example.com",
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Smith",
		"password":   "password123",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	w := performRequest(env.Router, http.MethodPost, "/api/auth/register", "", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.User.Username)

	// The token works against a protected endpoint.
	w = performRequest(env.Router, http.MethodGet, "/api/users/me", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterEndpointValidation(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		mutate func(map[string]string)
		status int
	}{
		{"bad email", func(b map[string]string) { b["email"] = "not-an-email" }, http.StatusBadRequest},
		{"short password", func(b map[string]string) { b["password"] = "short" }, http.StatusBadRequest},
		{"reserved username", func(b map[string]string) { b["username"] = "me" }, http.StatusBadRequest},
		{"username with space", func(b map[string]string) { b["username"] = "bad user" }, http.StatusBadRequest},
		{"missing first name", func(b map[string]string) { delete(b, "first_name") }, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := registerBody()
			tt.mutate(body)
			w := performRequest(env.Router, http.MethodPost, "/api/auth/register", "", body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	env := setupTestEnv(t)

	w := performRequest(env.Router, http.MethodPost, "/api/auth/register", "", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(env.Router, http.MethodPost, "/api/auth/register", "", registerBody())
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestEnv(t)

	w := performRequest(env.Router, http.MethodPost, "/api/auth/register", "", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(env.Router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, w, &resp)
	assert.NotEmpty(t, resp.Token)

	w = performRequest(env.Router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrongpassword",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedEndpointRejectsBadToken(t *testing.T) {
	env := setupTestEnv(t)

	w := performRequest(env.Router, http.MethodGet, "/api/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
