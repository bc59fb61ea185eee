package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/models"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func login(t *testing.T, ts *testServer, email, password, role string) tokenResponse {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    email,
		"password": password,
		"type":     role,
	}, "")
	assertStatus(t, w, http.StatusOK)

	var resp tokenResponse
	decodeBody(t, w, &resp)
	return resp
}

func TestLoginHandsOutBearerToken(t *testing.T) {
	ts := newTestServer(t)
	gym := seedGym(t, ts, "owner@example.com")

	resp := login(t, ts, "owner@example.com", testPassword, auth.RoleGym)
	if resp.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("token_type = %q", resp.TokenType)
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("expires_in = %d", resp.ExpiresIn)
	}

	w := ts.do(t, http.MethodPost, "/api/auth/me", nil, resp.AccessToken)
	assertStatus(t, w, http.StatusOK)

	var me models.Gym
	decodeBody(t, w, &me)
	if me.ID != gym.ID || me.Email != "owner@example.com" {
		t.Fatalf("me = %+v", me)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("me response leaks password material: %s", w.Body.String())
	}
}

func TestLoginWrongPasswordRejected(t *testing.T) {
	ts := newTestServer(t)
	seedGym(t, ts, "owner@example.com")

	w := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "owner@example.com",
		"password": "wrong-password",
		"type":     auth.RoleGym,
	}, "")
	assertStatus(t, w, http.StatusUnauthorized)

	if strings.Contains(w.Body.String(), "access_token") {
		t.Fatal("rejected login must not contain a token")
	}
}

func TestLoginUnknownEmailRejected(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "ghost@example.com",
		"password": testPassword,
		"type":     auth.RoleGym,
	}, "")
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestLoginInvalidRoleRejected(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "owner@example.com",
		"password": testPassword,
		"type":     "admin",
	}, "")
	assertStatus(t, w, http.StatusBadRequest)
}

func TestLoginPerRoleTables(t *testing.T) {
	ts := newTestServer(t)
	gym := seedGym(t, ts, "owner@example.com")
	instructor := seedInstructor(t, ts, gym.ID, "coach@example.com")
	seedClient(t, ts, gym.ID, "member@example.com")

	// The same credentials only work against the table the role selects.
	resp := login(t, ts, "coach@example.com", testPassword, auth.RoleInstructor)

	w := ts.do(t, http.MethodPost, "/api/auth/me", nil, resp.AccessToken)
	assertStatus(t, w, http.StatusOK)

	var me models.Instructor
	decodeBody(t, w, &me)
	if me.ID != instructor.ID {
		t.Fatalf("me.ID = %d, want %d", me.ID, instructor.ID)
	}

	w = ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "coach@example.com",
		"password": testPassword,
		"type":     auth.RoleClient,
	}, "")
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestMeForClientIncludesRelations(t *testing.T) {
	ts := newTestServer(t)
	gym := seedGym(t, ts, "owner@example.com")
	client := seedClient(t, ts, gym.ID, "member@example.com")
	seedContact(t, ts, client.ID)
	seedCondition(t, ts, client.ID)

	resp := login(t, ts, "member@example.com", testPassword, auth.RoleClient)

	w := ts.do(t, http.MethodPost, "/api/auth/me", nil, resp.AccessToken)
	assertStatus(t, w, http.StatusOK)

	var me models.Client
	decodeBody(t, w, &me)
	if len(me.EmergencyContacts) != 1 || len(me.MedicalConditions) != 1 {
		t.Fatalf("relations = %d contacts, %d conditions",
			len(me.EmergencyContacts), len(me.MedicalConditions))
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ts := newTestServer(t)
	seedGym(t, ts, "owner@example.com")

	resp := login(t, ts, "owner@example.com", testPassword, auth.RoleGym)

	w := ts.do(t, http.MethodPost, "/api/auth/logout", nil, resp.AccessToken)
	assertStatus(t, w, http.StatusOK)
	assertMessage(t, w, "Successfully logged out")

	w = ts.do(t, http.MethodPost, "/api/auth/me", nil, resp.AccessToken)
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestRefreshRotatesToken(t *testing.T) {
	ts := newTestServer(t)
	gym := seedGym(t, ts, "owner@example.com")

	old := login(t, ts, "owner@example.com", testPassword, auth.RoleGym)

	w := ts.do(t, http.MethodPost, "/api/auth/refresh", nil, old.AccessToken)
	assertStatus(t, w, http.StatusOK)

	var fresh tokenResponse
	decodeBody(t, w, &fresh)
	if fresh.AccessToken == "" || fresh.AccessToken == old.AccessToken {
		t.Fatal("refresh must issue a different token")
	}

	w = ts.do(t, http.MethodPost, "/api/auth/me", nil, old.AccessToken)
	assertStatus(t, w, http.StatusUnauthorized)

	w = ts.do(t, http.MethodPost, "/api/auth/me", nil, fresh.AccessToken)
	assertStatus(t, w, http.StatusOK)

	var me models.Gym
	decodeBody(t, w, &me)
	if me.ID != gym.ID {
		t.Fatalf("me.ID = %d, want %d", me.ID, gym.ID)
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/gyms", nil, "not-a-jwt")
	assertStatus(t, w, http.StatusUnauthorized)
}
