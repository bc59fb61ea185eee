package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/gymtrack/gymtrack-api/internal/auth"
	"github.com/gymtrack/gymtrack-api/internal/config"
	dbpkg "github.com/gymtrack/gymtrack-api/internal/db"
	"github.com/gymtrack/gymtrack-api/internal/models"
	"github.com/gymtrack/gymtrack-api/internal/routes"
)

const testPassword = "supersecret1"

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	tokens    *auth.TokenService
	blacklist *auth.MemoryBlacklist
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// A single connection keeps the in-memory database alive and serializes
	// the async audit writer with the request under test.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	blacklist := auth.NewMemoryBlacklist()

	r := gin.New()
	routes.RegisterRoutes(r, db, cfg, tokens, blacklist)

	return &testServer{router: r, db: db, tokens: tokens, blacklist: blacklist}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) token(t *testing.T, role string, id uint) string {
	t.Helper()

	token, err := ts.tokens.Generate(auth.Principal{Role: role, ID: id})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// waitFor polls until the condition holds, for checks against the async
// audit writer.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func hashPassword(t *testing.T) string {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hashed)
}

// --------- Seeds ---------

func seedGym(t *testing.T, ts *testServer, email string) models.Gym {
	t.Helper()

	gym := models.Gym{
		Name:         "Iron Temple",
		Neighborhood: "Centro",
		Street:       "Rua das Flores",
		Number:       120,
		Zipcode:      "88000-000",
		City:         "Florianopolis",
		Phone:        "4832221100",
		Email:        email,
		PasswordHash: hashPassword(t),
	}
	if err := ts.db.Create(&gym).Error; err != nil {
		t.Fatalf("seed gym: %v", err)
	}
	return gym
}

func seedInstructor(t *testing.T, ts *testServer, gymID uint, email string) models.Instructor {
	t.Helper()

	instructor := models.Instructor{
		GymID:        gymID,
		Name:         "Carlos Mendes",
		Email:        email,
		Phone:        "48999887766",
		PasswordHash: hashPassword(t),
		Arrive:       "08:00",
		Leave:        "17:00",
	}
	if err := ts.db.Create(&instructor).Error; err != nil {
		t.Fatalf("seed instructor: %v", err)
	}
	return instructor
}

func seedClient(t *testing.T, ts *testServer, gymID uint, email string) models.Client {
	t.Helper()

	client := models.Client{
		GymID:        gymID,
		Name:         "Maria Silva",
		Email:        email,
		PasswordHash: hashPassword(t),
		Birthday:     "1995-05-10",
		Sex:          models.SexFeminino,
		Neighborhood: "Trindade",
		Street:       "Rua Lauro Linhares",
		Number:       45,
		Zipcode:      "88036-000",
		City:         "Florianopolis",
	}
	if err := ts.db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return client
}

func seedContact(t *testing.T, ts *testServer, clientID uint) models.EmergencyContact {
	t.Helper()

	contact := models.EmergencyContact{
		ClientID:     clientID,
		Name:         "Joana Silva",
		Phone:        "48988776655",
		Neighborhood: "Trindade",
		Street:       "Rua Lauro Linhares",
		Number:       45,
		Zipcode:      "88036-000",
		City:         "Florianopolis",
	}
	if err := ts.db.Create(&contact).Error; err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return contact
}

func seedCondition(t *testing.T, ts *testServer, clientID uint) models.MedicalCondition {
	t.Helper()

	condition := models.MedicalCondition{
		ClientID:    clientID,
		Name:        "Asthma",
		Description: "Exercise induced asthma",
		Medicine:    "Salbutamol",
	}
	if err := ts.db.Create(&condition).Error; err != nil {
		t.Fatalf("seed condition: %v", err)
	}
	return condition
}

// --------- Payloads ---------

func validGymPayload(email string) map[string]any {
	return map[string]any{
		"name":         "Iron Temple",
		"neighborhood": "Centro",
		"street":       "Rua das Flores",
		"number":       120,
		"zipcode":      "88000-000",
		"city":         "Florianopolis",
		"phone":        "4832221100",
		"email":        email,
		"password":     testPassword,
	}
}

func validInstructorPayload(gymID uint, email string) map[string]any {
	return map[string]any{
		"name":     "Carlos Mendes",
		"email":    email,
		"phone":    "48999887766",
		"password": testPassword,
		"arrive":   "08:00",
		"leave":    "17:00",
		"gym_id":   gymID,
	}
}

func validClientPayload(gymID uint, email string) map[string]any {
	return map[string]any{
		"name":         "Maria Silva",
		"email":        email,
		"password":     testPassword,
		"birthday":     "1995-05-10",
		"sex":          "Feminino",
		"neighborhood": "Trindade",
		"street":       "Rua Lauro Linhares",
		"number":       45,
		"zipcode":      "88036-000",
		"city":         "Florianopolis",
		"gym_id":       gymID,
	}
}

func validContactItem() map[string]any {
	return map[string]any{
		"name":         "Joana Silva",
		"phone":        "48988776655",
		"neighborhood": "Trindade",
		"street":       "Rua Lauro Linhares",
		"number":       45,
		"zipcode":      "88036-000",
		"city":         "Florianopolis",
	}
}

func validConditionItem() map[string]any {
	return map[string]any{
		"name":        "Asthma",
		"description": "Exercise induced asthma",
		"medicine":    "Salbutamol",
	}
}

func uniqueEmail(prefix string, n int) string {
	return fmt.Sprintf("%s%d@example.com", prefix, n)
}

func itoa(id uint) string {
	return fmt.Sprintf("%d", id)
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("status = %d, want %d, body: %s", w.Code, want, w.Body.String())
	}
}

func assertMessage(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()

	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, w, &body)
	if body.Message != want {
		t.Fatalf("message = %q, want %q", body.Message, want)
	}
}

func validationErrors(t *testing.T, w *httptest.ResponseRecorder) map[string][]string {
	t.Helper()

	assertStatus(t, w, http.StatusUnprocessableEntity)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	decodeBody(t, w, &body)
	if len(body.Errors) == 0 {
		t.Fatalf("expected validation errors, body: %s", w.Body.String())
	}
	return body.Errors
}
