package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/models"
)

func TestGymCreateAndGet(t *testing.T) {
	ts := newTestServer(t)
	actor := seedGym(t, ts, "owner@example.com")
	token := ts.token(t, auth.RoleGym, actor.ID)

	w := ts.do(t, http.MethodPost, "/api/gyms", validGymPayload("new@example.com"), token)
	assertStatus(t, w, http.StatusCreated)

	var created models.Gym
	decodeBody(t, w, &created)
	if created.ID == 0 {
		t.Fatal("expected created gym to have an id")
	}
	if created.Email != "new@example.com" {
		t.Fatalf("email = %q", created.Email)
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("response leaks password material: %s", w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/api/gyms/"+itoa(created.ID), nil, token)
	assertStatus(t, w, http.StatusOK)

	var loaded models.Gym
	decodeBody(t, w, &loaded)
	if loaded.Name != "Iron Temple" || loaded.City != "Florianopolis" {
		t.Fatalf("unexpected gym: %+v", loaded)
	}
}

func TestGymCreateNormalizesEmail(t *testing.T) {
	ts := newTestServer(t)
	actor := seedGym(t, ts, "owner@example.com")
	token := ts.token(t, auth.RoleGym, actor.ID)

	payload := validGymPayload("  New@Example.COM ")
	w := ts.do(t, http.MethodPost, "/api/gyms", payload, token)
	assertStatus(t, w, http.StatusCreated)

	var created models.Gym
	decodeBody(t, w, &created)
	if created.Email != "new@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
}

func TestGymCreateValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	actor := seedGym(t, ts, "owner@example.com")
	token := ts.token(t, auth.RoleGym, actor.ID)

	payload := validGymPayload("new@example.com")
	payload["name"] = ""
	payload["password"] = "short"

	w := ts.do(t, http.MethodPost, "/api/gyms", payload, token)
	errs := validationErrors(t, w)

	if got := errs["name"]; len(got) != 1 || got[0] != "The name field is required." {
		t.Fatalf("name errors = %v", got)
	}
	if got := errs["password"]; len(got) != 1 || got[0] != "The password must be at least 8 characters." {
		t.Fatalf("password errors = %v", got)
	}
}

func TestGymEmailAlreadyTaken(t *testing.T) {
	ts := newTestServer(t)
	actor := seedGym(t, ts, "owner@example.com")
	token := ts.token(t, auth.RoleGym, actor.ID)

	w := ts.do(t, http.MethodPost, "/api/gyms", validGymPayload("owner@example.com"), token)
	errs := validationErrors(t, w)

	if got := errs["email"]; len(got) != 1 || got[0] != "The email has already been taken." {
		t.Fatalf("email errors = %v", got)
	}
}

func TestGymUpdateKeepsOwnEmail(t *testing.T) {
	ts := newTestServer(t)
	actor := seedGym(t, ts, "owner@example.com")
	token := ts.token(t, auth.RoleGym, actor.ID)

	payload := validGymPayload("owner@example.com")
	payload["name"] = "Iron Temple Renamed"

	w := ts.do(t, http.MethodPut, "/api/gyms/"+itoa(actor.ID), payload, token)
	assertStatus(t, w, http.StatusOK)

	var updated models.Gym
	decodeBody(t, w, &updated)
	if updated.Name != "Iron Temple Renamed" {
		t.Fatalf("name = %q", updated.Name)
	}
	if updated.Email != "owner@example.com" {
		t.Fatalf("email = %q", updated.Email)
	}
}

func TestGymGetNotFound(t *testing.T) {
	ts := newTestServer(t)
	actor := seedGym(t, ts, "owner@example.com")
	token := ts.token(t, auth.RoleGym, actor.ID)

	w := ts.do(t, http.MethodGet, "/api/gyms/9999", nil, token)
	assertStatus(t, w, http.StatusNotFound)
	assertMessage(t, w, "gym not found")
}

func TestGymDeleteCascades(t *testing.T) {
	ts := newTestServer(t)
	actor := seedGym(t, ts, "owner@example.com")
	token := ts.token(t, auth.RoleGym, actor.ID)

	gym := seedGym(t, ts, "doomed@example.com")
	seedInstructor(t, ts, gym.ID, "coach@example.com")
	client := seedClient(t, ts, gym.ID, "member@example.com")
	seedContact(t, ts, client.ID)
	seedCondition(t, ts, client.ID)

	// A sibling gym's client must survive the cascade.
	other := seedClient(t, ts, actor.ID, "other@example.com")
	otherContact := seedContact(t, ts, other.ID)

	w := ts.do(t, http.MethodDelete, "/api/gyms/"+itoa(gym.ID), nil, token)
	assertStatus(t, w, http.StatusOK)
	assertMessage(t, w, "Gym deleted")

	var n int64
	ts.db.Model(&models.Instructor{}).Where("gym_id = ?", gym.ID).Count(&n)
	if n != 0 {
		t.Fatalf("instructors left: %d", n)
	}
	ts.db.Model(&models.Client{}).Where("gym_id = ?", gym.ID).Count(&n)
	if n != 0 {
		t.Fatalf("clients left: %d", n)
	}
	ts.db.Model(&models.EmergencyContact{}).Where("client_id = ?", client.ID).Count(&n)
	if n != 0 {
		t.Fatalf("contacts left: %d", n)
	}
	ts.db.Model(&models.MedicalCondition{}).Where("client_id = ?", client.ID).Count(&n)
	if n != 0 {
		t.Fatalf("conditions left: %d", n)
	}
	ts.db.Model(&models.Gym{}).Where("id = ?", gym.ID).Count(&n)
	if n != 0 {
		t.Fatal("gym row left")
	}

	ts.db.Model(&models.EmergencyContact{}).Where("id = ?", otherContact.ID).Count(&n)
	if n != 1 {
		t.Fatal("sibling gym's contact was deleted")
	}
}

func TestGymListRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/gyms", nil, "")
	assertStatus(t, w, http.StatusUnauthorized)
}

func TestGymCreateRecordsAuditTrail(t *testing.T) {
	ts := newTestServer(t)
	actor := seedGym(t, ts, "owner@example.com")
	token := ts.token(t, auth.RoleGym, actor.ID)

	w := ts.do(t, http.MethodPost, "/api/gyms", validGymPayload("new@example.com"), token)
	assertStatus(t, w, http.StatusCreated)

	waitFor(t, func() bool {
		var n int64
		ts.db.Model(&models.AuditLog{}).
			Where("action = ? AND entity = ? AND actor_role = ?", "gym_created", "gym", auth.RoleGym).
			Count(&n)
		return n == 1
	})

	logsResp := ts.do(t, http.MethodGet, "/api/audit-logs?action=gym_created", nil, token)
	assertStatus(t, logsResp, http.StatusOK)

	var body struct {
		Total int64             `json:"total"`
		Logs  []models.AuditLog `json:"logs"`
	}
	decodeBody(t, logsResp, &body)
	if body.Total != 1 || len(body.Logs) != 1 {
		t.Fatalf("audit listing = %+v", body)
	}
	if body.Logs[0].ActorID == nil || *body.Logs[0].ActorID != actor.ID {
		t.Fatalf("actor id = %v", body.Logs[0].ActorID)
	}
}
