package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ayo6706/payout-service/internal/api"
	"github.com/ayo6706/payout-service/internal/api/middleware"
	"github.com/ayo6706/payout-service/internal/config"
	"github.com/ayo6706/payout-service/internal/domain"
	"github.com/ayo6706/payout-service/internal/lock"
	"github.com/ayo6706/payout-service/internal/models"
	"github.com/ayo6706/payout-service/internal/service"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testJWTSecret   = "test-secret-0123456789-test-secret"
	testJWTIssuer   = "payout-service-test"
	testJWTAudience = "payout-api-test"
)

// memStore is an in-memory service.PayoutStore for handler tests.
type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.PayoutRequest
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]*models.PayoutRequest)}
}

func (m *memStore) CreatePayout(ctx context.Context, p *models.PayoutRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	m.records[p.ID] = &cp
	return nil
}

func (m *memStore) GetPayout(ctx context.Context, id uuid.UUID) (*models.PayoutRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok {
		return nil, models.ErrPayoutNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) ListPayouts(ctx context.Context) ([]models.PayoutRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.PayoutRequest, 0, len(m.records))
	for _, p := range m.records {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok {
		return models.ErrPayoutNotFound
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) AppendComment(ctx context.Context, id uuid.UUID, status, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok {
		return models.ErrPayoutNotFound
	}
	p.Status = status
	existing := ""
	if p.Comment != nil {
		existing = *p.Comment
	}
	combined := existing + line
	p.Comment = &combined
	p.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) UpdatePayout(ctx context.Context, id uuid.UUID, status, comment *string) (*models.PayoutRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok {
		return nil, models.ErrPayoutNotFound
	}
	if status != nil {
		p.Status = *status
	}
	if comment != nil {
		c := *comment
		p.Comment = &c
	}
	p.UpdatedAt = time.Now()
	cp := *p
	return &cp, nil
}

func (m *memStore) DeletePayout(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return models.ErrPayoutNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memStore) ListStalePending(ctx context.Context, cutoff time.Time, limit int32) ([]uuid.UUID, error) {
	return nil, nil
}

func (m *memStore) FailStuckProcessing(ctx context.Context, cutoff time.Time, line string, limit int32) ([]uuid.UUID, error) {
	return nil, nil
}

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(id uuid.UUID) {}

func setupAPI(t *testing.T) (*api.Router, *memStore) {
	t.Helper()
	middleware.SetJWTSecret(testJWTSecret)
	middleware.SetJWTValidation(testJWTIssuer, testJWTAudience)

	store := newMemStore()
	payoutSvc := service.NewPayoutService(store, lock.NewMemoryLocker(), nopDispatcher{}).
		WithProcessingDelay(0)
	cfg := &config.Config{
		HTTPPort:           "0",
		JWTSecret:          testJWTSecret,
		JWTIssuer:          testJWTIssuer,
		JWTAudience:        testJWTAudience,
		PublicRateLimitRPS: 1000,
	}
	return api.NewRouter(cfg, zap.NewNop(), nil, nil, payoutSvc), store
}

func generateTokenWithRole(userID, role string) string {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"iss":  testJWTIssuer,
		"aud":  testJWTAudience,
		"sub":  userID,
		"iat":  now.Unix(),
		"nbf":  now.Add(-30 * time.Second).Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

func doJSON(t *testing.T, router *api.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.Routes().ServeHTTP(rec, req)
	return rec
}

func createPayout(t *testing.T, router *api.Router, body map[string]interface{}) models.PayoutRequest {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/payouts", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var payout models.PayoutRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payout))
	return payout
}

func TestCreatePayoutEndpoint(t *testing.T) {
	router, store := setupAPI(t)

	payout := createPayout(t, router, map[string]interface{}{
		"amount":            "150.75",
		"currency":          "USD",
		"recipient_details": "Bank account 1234567890",
	})

	require.NotEqual(t, uuid.Nil, payout.ID)
	require.Equal(t, domain.StatusPending, payout.Status)
	require.Equal(t, "USD", payout.Currency)
	require.Equal(t, "150.75", payout.Amount.String())
	require.NotNil(t, store.records[payout.ID])
}

func TestCreatePayoutDefaultsCurrencyEndpoint(t *testing.T) {
	router, _ := setupAPI(t)

	payout := createPayout(t, router, map[string]interface{}{
		"amount":            "250.00",
		"recipient_details": "Card 4111111111111111, Ivanov Ivan",
	})
	require.Equal(t, domain.CurrencyRUB, payout.Currency)
}

func TestCreatePayoutValidationEndpoint(t *testing.T) {
	router, _ := setupAPI(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing_amount", body: map[string]interface{}{"recipient_details": "Bank account 1234567890"}},
		{name: "negative_amount", body: map[string]interface{}{"amount": "-5", "recipient_details": "Bank account 1234567890"}},
		{name: "zero_amount", body: map[string]interface{}{"amount": "0", "recipient_details": "Bank account 1234567890"}},
		{name: "missing_recipient", body: map[string]interface{}{"amount": "10"}},
		{name: "blank_recipient", body: map[string]interface{}{"amount": "10", "recipient_details": "   "}},
		{name: "bad_currency", body: map[string]interface{}{"amount": "10", "currency": "GBP", "recipient_details": "Bank account 1234567890"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/payouts", "", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestGetPayoutEndpoint(t *testing.T) {
	router, _ := setupAPI(t)

	payout := createPayout(t, router, map[string]interface{}{
		"amount":            "99.99",
		"recipient_details": "Bank account 1234567890",
	})

	rec := doJSON(t, router, http.MethodGet, "/api/payouts/"+payout.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched models.PayoutRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, payout.ID, fetched.ID)

	rec = doJSON(t, router, http.MethodGet, "/api/payouts/"+uuid.NewString(), "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/payouts/not-a-uuid", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPayoutsEndpoint(t *testing.T) {
	router, _ := setupAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/api/payouts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	createPayout(t, router, map[string]interface{}{
		"amount":            "10",
		"recipient_details": "Bank account 1234567890",
	})
	createPayout(t, router, map[string]interface{}{
		"amount":            "20",
		"recipient_details": "Bank account 1234567890",
	})

	rec = doJSON(t, router, http.MethodGet, "/api/payouts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.PayoutRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
}

func TestUpdatePayoutEndpoint(t *testing.T) {
	router, _ := setupAPI(t)
	token := generateTokenWithRole(uuid.NewString(), "admin")

	payout := createPayout(t, router, map[string]interface{}{
		"amount":            "10",
		"recipient_details": "Bank account 1234567890",
	})

	rec := doJSON(t, router, http.MethodPatch, "/api/payouts/"+payout.ID.String(), token,
		map[string]interface{}{"status": "cancelled", "comment": "duplicate request"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.PayoutRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, domain.StatusCancelled, updated.Status)
	require.NotNil(t, updated.Comment)
	require.Equal(t, "duplicate request", *updated.Comment)

	rec = doJSON(t, router, http.MethodPatch, "/api/payouts/"+payout.ID.String(), token,
		map[string]interface{}{"status": "done"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/api/payouts/"+uuid.NewString(), token,
		map[string]interface{}{"status": "cancelled"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePayoutTerminalConflict(t *testing.T) {
	router, store := setupAPI(t)
	token := generateTokenWithRole(uuid.NewString(), "admin")

	payout := createPayout(t, router, map[string]interface{}{
		"amount":            "10",
		"recipient_details": "Bank account 1234567890",
	})
	store.records[payout.ID].Status = domain.StatusCompleted

	rec := doJSON(t, router, http.MethodPatch, "/api/payouts/"+payout.ID.String(), token,
		map[string]interface{}{"status": "pending"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeletePayoutEndpoint(t *testing.T) {
	router, _ := setupAPI(t)
	token := generateTokenWithRole(uuid.NewString(), "admin")

	payout := createPayout(t, router, map[string]interface{}{
		"amount":            "10",
		"recipient_details": "Bank account 1234567890",
	})

	rec := doJSON(t, router, http.MethodDelete, "/api/payouts/"+payout.ID.String(), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/payouts/"+payout.ID.String(), token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminGuardOnMutations(t *testing.T) {
	router, _ := setupAPI(t)

	payout := createPayout(t, router, map[string]interface{}{
		"amount":            "10",
		"recipient_details": "Bank account 1234567890",
	})
	path := "/api/payouts/" + payout.ID.String()

	rec := doJSON(t, router, http.MethodPatch, path, "", map[string]interface{}{"comment": "x"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken := generateTokenWithRole(uuid.NewString(), "user")
	rec = doJSON(t, router, http.MethodPatch, path, userToken, map[string]interface{}{"comment": "x"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, path, "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, path, userToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthDisabledAllowsMutations(t *testing.T) {
	store := newMemStore()
	payoutSvc := service.NewPayoutService(store, lock.NewMemoryLocker(), nopDispatcher{}).
		WithProcessingDelay(0)
	cfg := &config.Config{
		HTTPPort:           "0",
		AuthDisabled:       true,
		PublicRateLimitRPS: 1000,
	}
	router := api.NewRouter(cfg, zap.NewNop(), nil, nil, payoutSvc)

	payout := createPayout(t, router, map[string]interface{}{
		"amount":            "10",
		"recipient_details": "Bank account 1234567890",
	})

	rec := doJSON(t, router, http.MethodPatch, "/api/payouts/"+payout.ID.String(), "",
		map[string]interface{}{"status": "cancelled"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := setupAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenAPISpecServed(t *testing.T) {
	router, _ := setupAPI(t)

	rec := doJSON(t, router, http.MethodGet, "/openapi.yaml", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/api/payouts")
}
