package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citysafe/safewatch/internal/analysis"
	"github.com/citysafe/safewatch/internal/assistant"
	"github.com/citysafe/safewatch/internal/auth"
	"github.com/citysafe/safewatch/internal/cache"
	"github.com/citysafe/safewatch/internal/domain"
	"github.com/citysafe/safewatch/internal/logging"
	"github.com/citysafe/safewatch/internal/metrics"
	"github.com/citysafe/safewatch/internal/storage"
)

type fakeIncidentStore struct {
	dataset domain.Dataset
}

func (f *fakeIncidentStore) FetchCategory(_ context.Context, cat domain.Category, _ storage.IncidentQuery) ([]domain.Incident, error) {
	return f.dataset.ByCategory(cat), nil
}

func (f *fakeIncidentStore) FetchDataset(context.Context, storage.IncidentQuery) (*domain.Dataset, error) {
	ds := f.dataset
	return &ds, nil
}

type fakeUserStore struct {
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*domain.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	f.users[user.Username] = user
	return nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, storage.ErrNotFound
}

type fakeContactStore struct {
	contacts []domain.EmergencyContact
}

func (f *fakeContactStore) ListActive(context.Context) ([]domain.EmergencyContact, error) {
	return f.contacts, nil
}

func (f *fakeContactStore) Create(_ context.Context, contact *domain.EmergencyContact) error {
	f.contacts = append(f.contacts, *contact)
	return nil
}

type testEnv struct {
	server *Server
	users  *fakeUserStore
	jwt    *auth.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logging.Nop()
	registry := metrics.New()
	jwtManager := auth.NewManager("test-secret", time.Hour)

	incidents := &fakeIncidentStore{dataset: domain.Dataset{
		Shootings: []domain.Incident{
			{Category: domain.CategoryShooting, Neighbourhood: "Downsview", OccDate: "2023-01-05"},
			{Category: domain.CategoryShooting, Neighbourhood: "Downsview", OccDate: "2023-02-05"},
			{Category: domain.CategoryShooting, Neighbourhood: "Rexdale", OccDate: "2023-01-10"},
		},
	}}
	users := newFakeUserStore()
	contacts := &fakeContactStore{}

	svc := analysis.NewService(0, log, registry.Engine)
	pipeline := NewPipeline(incidents, svc, cache.NewAnalysisCache(nil, 0, log, registry.Engine))
	chat := assistant.NewChatService(nil, pipeline, log)
	parser := assistant.NewQueryParser(nil, log)
	predictor := assistant.NewPredictor(nil, incidents, log, registry.Engine)

	handler := NewHandler(pipeline, incidents, users, contacts, chat, parser, predictor, jwtManager, 4, log)
	server := NewServer(ServerConfig{Name: "safewatch", Version: "test", Port: 0},
		handler, jwtManager, registry, log, nil)

	return &testEnv{server: server, users: users, jwt: jwtManager}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.Engine().ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedUser(t *testing.T, username, password, role string) string {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, e.users.Create(context.Background(), user))

	token, _, err := e.jwt.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(t, http.MethodGet, "/api/v1/analysis/safety", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginAndAccessProtectedRoute(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "analyst", "correct-horse", domain.RoleUser)

	w := env.request(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: "analyst", Password: "correct-horse",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	w = env.request(t, http.MethodGet, "/api/v1/analysis/safety", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "analyst", "correct-horse", domain.RoleUser)

	w := env.request(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{
		Username: "analyst", Password: "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterAndConflict(t *testing.T) {
	env := newTestEnv(t)

	req := RegisterRequest{Username: "newuser", Email: "new@example.com", Password: "long-enough-pass"}
	w := env.request(t, http.MethodPost, "/api/v1/auth/register", "", req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/auth/register", "", req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetIncidents(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "analyst", "pw-longenough", domain.RoleUser)

	w := env.request(t, http.MethodGet, "/api/v1/incidents/shootingIncidents", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count   int               `json:"count"`
		Records []domain.Incident `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
}

func TestGetIncidentsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "analyst", "pw-longenough", domain.RoleUser)

	w := env.request(t, http.MethodGet, "/api/v1/incidents/burglaries", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSafetyAnalysisOrdering(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "analyst", "pw-longenough", domain.RoleUser)

	w := env.request(t, http.MethodGet, "/api/v1/analysis/safety", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profiles []domain.RiskProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profiles))
	require.Len(t, profiles, 2)
	assert.Equal(t, "Downsview", profiles[0].Neighbourhood)
	assert.GreaterOrEqual(t, profiles[0].RiskScore, profiles[1].RiskScore)
}

func TestPredictLocalOnly(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "analyst", "pw-longenough", domain.RoleUser)

	w := env.request(t, http.MethodPost, "/api/v1/predict", token, assistant.PredictRequest{
		Date: "2023-10-11", Location: "D14",
		IncidentType: domain.CategoryHomicide, UseLocalDataOnly: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.FallbackPrediction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.IsLocal)
}

func TestPredictInvalidDate(t *testing.T) {
	env := newTestEnv(t)
	token := env.seedUser(t, "analyst", "pw-longenough", domain.RoleUser)

	w := env.request(t, http.MethodPost, "/api/v1/predict", token, assistant.PredictRequest{
		Date: "soon", Location: "D14", IncidentType: domain.CategoryHomicide,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmergencyContacts(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.seedUser(t, "analyst", "pw-longenough", domain.RoleUser)
	adminToken := env.seedUser(t, "admin", "pw-longenough", domain.RoleAdmin)

	// non-admins cannot create contacts
	w := env.request(t, http.MethodPost, "/api/v1/emergency/contacts", userToken, CreateContactRequest{
		Name: "Victim Services Toronto", Category: "victim-support", Phone: "416-808-7066",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPost, "/api/v1/emergency/contacts", adminToken, CreateContactRequest{
		Name: "Victim Services Toronto", Category: "victim-support", Phone: "416-808-7066",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodGet, "/api/v1/emergency/contacts", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var contacts []domain.EmergencyContact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
	require.Len(t, contacts, 1)
	assert.Equal(t, "Victim Services Toronto", contacts[0].Name)
}
